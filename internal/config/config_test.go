package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Limits.MaxConnectionRequestsPerDay)
	assert.Equal(t, 15, cfg.Limits.MaxMessagesPerDay)
	assert.Equal(t, 30, cfg.Limits.DelayBetweenActionsMin)
	assert.Equal(t, 120, cfg.Limits.DelayBetweenActionsMax)
	assert.True(t, cfg.Limits.RateLimitEnabled)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "outreach.db", cfg.Database.Path)
	assert.Contains(t, cfg.Templates.ConnectionNote, "{{Name}}")
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
limits:
  max_connection_requests_per_day: 5
  max_messages_per_day: 3
browser:
  headless: false
database:
  path: /tmp/custom.db
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Limits.MaxConnectionRequestsPerDay)
	assert.Equal(t, 3, cfg.Limits.MaxMessagesPerDay)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "/tmp/custom.db", cfg.Database.Path)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30, cfg.Limits.DelayBetweenActionsMin)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("OUTREACH_DB_PATH", "/tmp/env.db")
	t.Setenv("MAX_CONNECTION_REQUESTS_PER_DAY", "7")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, 7, cfg.Limits.MaxConnectionRequestsPerDay)
}

func TestValidateRejectsOutOfRangeLimits(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"connections too high", "limits:\n  max_connection_requests_per_day: 101\n"},
		{"connections zero", "limits:\n  max_connection_requests_per_day: 0\n"},
		{"messages too high", "limits:\n  max_messages_per_day: 51\n"},
		{"delay min zero", "limits:\n  delay_between_actions_min: 0\n"},
		{"delay max below min", "limits:\n  delay_between_actions_min: 60\n  delay_between_actions_max: 30\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestCredentials(t *testing.T) {
	t.Setenv("LINKEDIN_EMAIL", "")
	t.Setenv("LINKEDIN_PASSWORD", "")
	_, _, err := Credentials()
	require.Error(t, err)

	t.Setenv("LINKEDIN_EMAIL", "me@example.com")
	t.Setenv("LINKEDIN_PASSWORD", "secret")
	email, password, err := Credentials()
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", email)
	assert.Equal(t, "secret", password)
}
