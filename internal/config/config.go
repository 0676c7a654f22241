package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LinkedIn struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"linkedin"`
	Search struct {
		Defaults struct {
			Keywords string `yaml:"keywords"`
			Location string `yaml:"location"`
			Industry string `yaml:"industry"`
		} `yaml:"defaults"`
		MaxProfilesPerSearch int `yaml:"max_profiles_per_search"`
	} `yaml:"search"`
	Limits struct {
		MaxConnectionRequestsPerDay int  `yaml:"max_connection_requests_per_day"`
		MaxMessagesPerDay           int  `yaml:"max_messages_per_day"`
		DelayBetweenActionsMin      int  `yaml:"delay_between_actions_min"` // seconds
		DelayBetweenActionsMax      int  `yaml:"delay_between_actions_max"` // seconds
		RateLimitEnabled            bool `yaml:"rate_limit_enabled"`
	} `yaml:"limits"`
	Browser struct {
		Headless          bool   `yaml:"headless"`
		UserAgent         string `yaml:"user_agent"`
		MinDelayMs        int    `yaml:"min_delay_ms"`
		MaxDelayMs        int    `yaml:"max_delay_ms"`
		ViewportWidthMin  int    `yaml:"viewport_width_min"`
		ViewportWidthMax  int    `yaml:"viewport_width_max"`
		ViewportHeightMin int    `yaml:"viewport_height_min"`
		ViewportHeightMax int    `yaml:"viewport_height_max"`
		ActiveStart       string `yaml:"active_start"`
		ActiveEnd         string `yaml:"active_end"`
	} `yaml:"browser"`
	Templates struct {
		ConnectionNote string `yaml:"connection_note_template"`
		FollowUp       string `yaml:"follow_up_message_template"`
	} `yaml:"templates"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Load reads the YAML config at path (missing file falls back to defaults),
// applies environment overrides and validates the result. Invalid configuration
// is rejected here, at startup, never at use.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // optional
	cfg := defaultConfig()
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultConfig() Config {
	var cfg Config
	cfg.LinkedIn.BaseURL = "https://www.linkedin.com/"
	cfg.Search.MaxProfilesPerSearch = 200
	cfg.Limits.MaxConnectionRequestsPerDay = 20
	cfg.Limits.MaxMessagesPerDay = 15
	cfg.Limits.DelayBetweenActionsMin = 30
	cfg.Limits.DelayBetweenActionsMax = 120
	cfg.Limits.RateLimitEnabled = true
	cfg.Browser.Headless = true
	cfg.Browser.MinDelayMs = 120
	cfg.Browser.MaxDelayMs = 900
	cfg.Browser.ViewportWidthMin = 1280
	cfg.Browser.ViewportWidthMax = 1680
	cfg.Browser.ViewportHeightMin = 720
	cfg.Browser.ViewportHeightMax = 1050
	cfg.Browser.ActiveStart = "09:00"
	cfg.Browser.ActiveEnd = "18:00"
	cfg.Templates.ConnectionNote = "Hi {{Name}}, noticed your work at {{Company}} as {{Title}} - would love to connect."
	cfg.Templates.FollowUp = "Thanks for connecting, {{Name}}! Always glad to meet people working on {{Title}}."
	cfg.Database.Path = "outreach.db"
	cfg.Logging.Level = "info"
	return cfg
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OUTREACH_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("OUTREACH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HEADLESS_BROWSER"); v != "" {
		cfg.Browser.Headless = v == "1" || v == "true"
	}
	if v := os.Getenv("RATE_LIMIT_ENABLED"); v != "" {
		cfg.Limits.RateLimitEnabled = v == "1" || v == "true"
	}
	if n, err := strconv.Atoi(os.Getenv("MAX_CONNECTION_REQUESTS_PER_DAY")); err == nil {
		cfg.Limits.MaxConnectionRequestsPerDay = n
	}
	if n, err := strconv.Atoi(os.Getenv("MAX_MESSAGES_PER_DAY")); err == nil {
		cfg.Limits.MaxMessagesPerDay = n
	}
}

func validate(cfg *Config) error {
	if cfg.LinkedIn.BaseURL == "" {
		return errors.New("linkedin.base_url is required")
	}
	l := cfg.Limits
	if l.MaxConnectionRequestsPerDay < 1 || l.MaxConnectionRequestsPerDay > 100 {
		return errors.New("limits.max_connection_requests_per_day must be between 1 and 100")
	}
	if l.MaxMessagesPerDay < 1 || l.MaxMessagesPerDay > 50 {
		return errors.New("limits.max_messages_per_day must be between 1 and 50")
	}
	if l.DelayBetweenActionsMin <= 0 {
		return errors.New("limits.delay_between_actions_min must be > 0")
	}
	if l.DelayBetweenActionsMax < l.DelayBetweenActionsMin {
		return errors.New("limits.delay_between_actions_max must be >= delay_between_actions_min")
	}
	if cfg.Search.MaxProfilesPerSearch <= 0 {
		return errors.New("search.max_profiles_per_search must be > 0")
	}
	return nil
}

// Credentials returns the LinkedIn credentials from the environment. Commands
// that drive the browser require them; offline commands do not, so they are
// checked where needed instead of in validate.
func Credentials() (email, password string, err error) {
	email = os.Getenv("LINKEDIN_EMAIL")
	password = os.Getenv("LINKEDIN_PASSWORD")
	if email == "" || password == "" {
		return "", "", errors.New("LINKEDIN_EMAIL and LINKEDIN_PASSWORD are required in env")
	}
	return email, password, nil
}
