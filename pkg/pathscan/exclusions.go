package pathscan

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Exclusions holds the glob patterns a scan skips. Patterns without a
// slash match against an entry's base name anywhere in the tree
// (gitignore-style, "node_modules" or "*.log"); patterns with a slash
// match against the full relative key using doublestar syntax
// ("build/**", "docs/*.tmp"). Matching is case-sensitive.
type Exclusions struct {
	basename []string
	relative []string
}

// NewExclusions categorizes patterns once so matching stays cheap inside
// the walk loop. Patterns are matched against forward-slash keys
// regardless of host separator.
func NewExclusions(patterns []string) Exclusions {
	var e Exclusions
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = strings.ReplaceAll(p, "\\", "/")
		if strings.Contains(p, "/") {
			e.relative = append(e.relative, strings.TrimSuffix(p, "/"))
		} else {
			e.basename = append(e.basename, p)
		}
	}
	return e
}

// Empty reports whether no patterns are configured.
func (e Exclusions) Empty() bool {
	return len(e.basename) == 0 && len(e.relative) == 0
}

// Matches reports whether the entry with the given forward-slash
// relative key and base name is excluded.
func (e Exclusions) Matches(relKey, basename string) bool {
	for _, p := range e.basename {
		if ok, _ := doublestar.Match(p, basename); ok {
			return true
		}
	}
	for _, p := range e.relative {
		if ok, _ := doublestar.Match(p, relKey); ok {
			return true
		}
	}
	return false
}
