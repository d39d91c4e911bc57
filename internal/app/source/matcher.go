package source

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Matcher checks if file paths match the configured include/ignore patterns
type Matcher interface {
	Match(path string) bool
}

// matcher implements the Matcher interface
type matcher struct {
	includes []glob.Glob
	ignores  []glob.Glob
}

// NewMatcher creates a new Matcher. With no include patterns every
// non-ignored path matches.
func NewMatcher(includes, ignores []string) (Matcher, error) {
	m := &matcher{
		includes: make([]glob.Glob, 0, len(includes)),
		ignores:  make([]glob.Glob, 0, len(ignores)),
	}

	for _, p := range includes {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}

		m.includes = append(m.includes, g)
	}

	for _, p := range ignores {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, err
		}

		m.ignores = append(m.ignores, g)
	}

	return m, nil
}

// Match returns true if the path matches any include pattern and no ignore
// pattern
func (m *matcher) Match(path string) bool {
	path = normalizePath(path)

	for _, ignore := range m.ignores {
		if ignore.Match(path) {
			return false
		}
	}

	if len(m.includes) == 0 {
		return true
	}

	for _, include := range m.includes {
		if include.Match(path) {
			return true
		}
	}

	return false
}

// normalizePath converts path separators and removes leading ./
func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")

	return path
}
