// Package normalize canonicalizes user input before it is validated or stored.
package normalize

import (
	"path"
	"strings"
)

// Email trims and lower-cases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses inner runs of spaces.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Role trims and lower-cases a role name.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// FileName reduces an uploaded file name to its base name. Both / and \
// separators are stripped. It returns "" for names that reduce to nothing
// or to a directory reference.
func FileName(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, `\`, "/"))
	if s == "" {
		return ""
	}
	base := path.Base(s)
	switch base {
	case ".", "..", "/":
		return ""
	}
	return base
}
