package grading

import "strings"

// ParseBulk splits a newline- or comma-separated block into trimmed,
// non-empty items, keeping input order.
func ParseBulk(input string) []string {
	parts := strings.FieldsFunc(input, func(r rune) bool {
		return r == '\n' || r == ',' || r == '\r'
	})
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			items = append(items, p)
		}
	}
	return items
}
