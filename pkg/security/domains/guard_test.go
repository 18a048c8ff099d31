package domains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGuard_InvalidPattern(t *testing.T) {
	_, err := NewGuard([]string{"[bing.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid domain pattern")
}

func TestGuard_EmptyAllowsEverything(t *testing.T) {
	g, err := NewGuard(nil)
	require.NoError(t, err)

	assert.False(t, g.Enabled())
	assert.True(t, g.Allowed("https://anything.example.org/path"))
	assert.True(t, g.Allowed("::not a url"))

	var nilGuard *Guard
	assert.True(t, nilGuard.Allowed("https://bing.com"))
}

func TestGuard_Allowed(t *testing.T) {
	g, err := NewGuard([]string{"bing.com", "*.bing.com", "**.openai.com", " ", "Example.ORG"})
	require.NoError(t, err)
	require.True(t, g.Enabled())
	assert.Equal(t, []string{"bing.com", "*.bing.com", "**.openai.com", "example.org"}, g.Patterns())

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"exact host", "https://bing.com/search?q=openai", true},
		{"single subdomain", "https://www.bing.com/", true},
		{"nested subdomain not matched by single star", "https://a.b.bing.com/", false},
		{"nested subdomain matched by double star", "https://cdn.static.openai.com/x.png", true},
		{"host with port", "http://bing.com:8080/", true},
		{"case insensitive", "https://WWW.BING.COM/", true},
		{"case insensitive pattern", "https://example.org", true},
		{"other host", "https://evil.com/", false},
		{"suffix lookalike", "https://notbing.com/", false},
		{"blank page", "about:blank", true},
		{"data url", "data:text/html,hi", true},
		{"http without host", "http:///path", false},
		{"unparseable", "http://[::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Allowed(tt.url))
		})
	}
}
