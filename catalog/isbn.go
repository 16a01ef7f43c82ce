package catalog

import "strings"

// CleanISBN strips the hyphens and spaces people paste along with an ISBN.
func CleanISBN(query string) string {
	return strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(query))
}

// IsISBN reports whether query should be looked up directly as an ISBN
// rather than searched as a title: all digits once separators are removed,
// with an X check digit allowed on ten-character values.
func IsISBN(query string) bool {
	s := CleanISBN(query)
	if s == "" {
		return false
	}
	for i, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if (r == 'X' || r == 'x') && i == len(s)-1 && len(s) == 10 {
			continue
		}
		return false
	}
	return true
}
