// Package markdown reduces Markdown source to plain text for excerpts. It is
// not a renderer; the output is only ever used for previews.
package markdown

import (
	"regexp"
	"strings"
)

// The replacements run in a fixed order: later patterns assume the earlier
// removals already happened.
var replacements = []struct {
	re   *regexp.Regexp
	with string
}{
	{regexp.MustCompile("(?s)```.*?```"), ""},          // fenced code blocks
	{regexp.MustCompile("`([^`]+)`"), "$1"},            // inline code
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},         // heading markers
	{regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`), ""},     // horizontal rules
	{regexp.MustCompile(`(?m)^\s*>+`), ""},             // blockquote markers
	{regexp.MustCompile(`\*\*(.*?)\*\*`), "$1"},        // bold
	{regexp.MustCompile(`__(.*?)__`), "$1"},            // bold (underscore)
	{regexp.MustCompile(`\*(.*?)\*`), "$1"},            // italic
	{regexp.MustCompile(`_(.*?)_`), "$1"},              // italic (underscore)
	{regexp.MustCompile(`~~(.*?)~~`), "$1"},            // strikethrough
	{regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`), "$1"}, // images: keep alt, drop URL
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},  // inline links
	{regexp.MustCompile(`\[([^\]]+)\]\[[^\]]*\]`), "$1"}, // reference links
	{regexp.MustCompile(`(?m)^\s*[-*+]\s+`), ""},       // unordered list markers
	{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},       // ordered list markers
	{regexp.MustCompile(`\|[^|\n]*\|`), ""},            // table cells
	{regexp.MustCompile(`[-:|]+`), ""},                 // table separators
	{regexp.MustCompile(`\n+`), " "},                   // newlines to spaces
	{regexp.MustCompile(`\s+`), " "},                   // collapse whitespace
}

var leadingPunct = regexp.MustCompile(`^[\s#>*+-]*`)

// Strip converts Markdown source to a single line of plain text.
func Strip(md string) string {
	if md == "" {
		return ""
	}
	out := md
	for _, r := range replacements {
		out = r.re.ReplaceAllString(out, r.with)
	}
	out = strings.TrimSpace(out)
	return leadingPunct.ReplaceAllString(out, "")
}

// Excerpt strips md and truncates the result to limit runes, appending an
// ellipsis marker only when something was cut off.
func Excerpt(md string, limit int) string {
	plain := Strip(md)
	runes := []rune(plain)
	if len(runes) <= limit {
		return plain
	}
	return string(runes[:limit]) + "..."
}
