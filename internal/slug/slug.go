// Package slug derives URL-safe permalinks from article titles.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s-]`)
	separators = regexp.MustCompile(`[\s_-]+`)
)

// Make converts a title to a lowercase slug containing only letters, digits
// and single hyphens. An empty title yields an empty slug.
func Make(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = nonWord.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// EnsureUnique appends -1, -2, ... to candidate until it no longer collides
// with a permalink owned by a different article. taken maps permalink to the
// owning article id; excludeID is the article being saved, so its own current
// permalink never counts as a collision.
func EnsureUnique(candidate string, taken map[string]string, excludeID string) string {
	result := candidate
	counter := 1
	for {
		owner, exists := taken[result]
		if !exists || owner == excludeID {
			return result
		}
		result = fmt.Sprintf("%s-%d", candidate, counter)
		counter++
	}
}
