package linkedin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProfileURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://www.linkedin.com/in/jane-doe/", "https://www.linkedin.com/in/jane-doe"},
		{"https://www.linkedin.com/in/jane-doe?miniProfileUrn=abc", "https://www.linkedin.com/in/jane-doe"},
		{"https://www.linkedin.com/in/jane-doe#section", "https://www.linkedin.com/in/jane-doe"},
		{"/in/jane-doe/", "https://www.linkedin.com/in/jane-doe"},
		{"https://www.linkedin.com/in/jane-doe", "https://www.linkedin.com/in/jane-doe"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeProfileURL(tc.in), "input %q", tc.in)
	}
}

func TestValidProfileURL(t *testing.T) {
	valid := []string{
		"https://www.linkedin.com/in/jane-doe",
		"https://linkedin.com/in/jane_doe-123",
		"https://www.linkedin.com/in/j%C3%A4ne/",
	}
	for _, u := range valid {
		assert.True(t, ValidProfileURL(u), "should accept %q", u)
	}

	invalid := []string{
		"https://www.linkedin.com/company/acme",
		"https://www.linkedin.com/search/results/people/",
		"https://evil.example.com/in/jane-doe",
		"https://www.linkedin.com/in/",
		"not a url at all",
	}
	for _, u := range invalid {
		assert.False(t, ValidProfileURL(u), "should reject %q", u)
	}
}
