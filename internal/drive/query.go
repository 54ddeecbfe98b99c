package drive

import "strings"

var queryEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

// EscapeQueryValue escapes s for use inside a single-quoted Drive query string.
func EscapeQueryValue(s string) string {
	return queryEscaper.Replace(s)
}

// NameContainsQuery builds the query matching non-trashed files whose name
// contains fragment.
func NameContainsQuery(fragment string) string {
	return "name contains '" + EscapeQueryValue(fragment) + "' and trashed = false"
}
