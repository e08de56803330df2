// Package htmlsanitize cleans user-supplied text before it is stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy  = newRichPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// newRichPolicy allows basic formatting and safe links for descriptions.
func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Sanitize keeps basic formatting (paragraphs, emphasis, lists, links) and
// removes scripts, event handlers, iframes and javascript: URLs.
func Sanitize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return strings.TrimSpace(richPolicy.Sanitize(s))
}

// PlainText strips every tag and returns unescaped, trimmed text. Used for
// bios, skills, titles and other fields rendered as text.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(s)))
}

// PlainTextList applies PlainText to every entry.
func PlainTextList(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = PlainText(s)
	}
	return out
}
