// Package normalize trims and canonicalizes user-supplied values before
// they are validated or stored.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Name trims a display name and preserves its case.
func Name(s string) string { return strings.TrimSpace(s) }

// Status lowercases and trims a status value.
func Status(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Role lowercases and trims a role name.
func Role(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// QueryParam trims a query string value.
func QueryParam(s string) string { return strings.TrimSpace(s) }

// List trims every entry, drops blanks and removes exact duplicates while
// keeping first-seen order. A nil or all-blank input returns an empty slice.
func List(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
