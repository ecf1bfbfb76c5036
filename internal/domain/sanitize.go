package domain

import (
	"html"
	"strings"
)

// Sanitize trims surrounding whitespace and escapes HTML metacharacters
// (including quotes). It is applied before storage, so everything that
// reaches a repository is already safe to place into markup verbatim.
func Sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
