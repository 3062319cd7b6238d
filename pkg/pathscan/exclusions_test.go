package pathscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExclusionsMatches(t *testing.T) {
	excl := NewExclusions([]string{"*.log", "node_modules", "build/**", "docs/*.tmp", ""})

	testCases := []struct {
		name     string
		relKey   string
		basename string
		expected bool
	}{
		{"Basename glob at root", "app.log", "app.log", true},
		{"Basename glob nested", "sub/deep/app.log", "app.log", true},
		{"Literal basename anywhere", "x/node_modules", "node_modules", true},
		{"Relative pattern under the anchor", "build/out/a.bin", "a.bin", true},
		{"Relative pattern elsewhere", "docs/build/a.bin", "a.bin", false},
		{"Single-star relative pattern", "docs/x.tmp", "x.tmp", true},
		{"Single star does not cross slashes", "docs/sub/x.tmp", "x.tmp", false},
		{"Unrelated file", "src/main.go", "main.go", false},
		{"Case sensitive", "APP.LOG", "APP.LOG", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, excl.Matches(tc.relKey, tc.basename))
		})
	}
}

func TestExclusionsEmpty(t *testing.T) {
	assert.True(t, NewExclusions(nil).Empty())
	assert.True(t, NewExclusions([]string{"", "  "}).Empty())
	assert.False(t, NewExclusions([]string{"*.log"}).Empty())
}

func TestExclusionsBackslashPatterns(t *testing.T) {
	// Windows-style patterns are normalized to forward slashes.
	excl := NewExclusions([]string{`build\**`})
	assert.True(t, excl.Matches("build/out.bin", "out.bin"))
}
