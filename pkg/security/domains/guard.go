// Package domains restricts which hosts the browser may end up on.
//
// Patterns are gobwas/glob expressions matched against the page hostname,
// with '.' as the separator so that "*.example.com" matches one label and
// "**.example.com" matches any number of labels.
package domains

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Guard matches page URLs against a list of allowed host patterns.
// A Guard with no patterns allows every host.
type Guard struct {
	patterns []string
	allowed  []glob.Glob
}

// NewGuard compiles the allowed host patterns.
func NewGuard(patterns []string) (*Guard, error) {
	g := &Guard{}

	for _, pattern := range patterns {
		p := strings.ToLower(strings.TrimSpace(pattern))
		if p == "" {
			continue
		}
		compiled, err := glob.Compile(p, '.')
		if err != nil {
			return nil, fmt.Errorf("invalid domain pattern '%s': %w", pattern, err)
		}
		g.patterns = append(g.patterns, p)
		g.allowed = append(g.allowed, compiled)
	}

	return g, nil
}

// Patterns returns the normalized patterns the guard was built from.
func (g *Guard) Patterns() []string {
	return append([]string(nil), g.patterns...)
}

// Enabled reports whether the guard restricts anything.
func (g *Guard) Enabled() bool {
	return g != nil && len(g.allowed) > 0
}

// Allowed reports whether rawURL points at an allowed host.
// Non-network pages (about:blank, data: and similar) have no host and are
// always allowed.
func (g *Guard) Allowed(rawURL string) bool {
	if !g.Enabled() {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return u.Scheme != "http" && u.Scheme != "https"
	}

	for _, pattern := range g.allowed {
		if pattern.Match(host) {
			return true
		}
	}
	return false
}
