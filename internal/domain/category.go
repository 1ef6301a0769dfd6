package domain

import (
	"strings"
	"unicode"
)

// Category represents a canonical article category. Categories are created
// lazily the first time a new label is seen for a source that permits it.
type Category struct {
	ID   string `json:"id" db:"id"`
	Slug string `json:"slug" db:"slug"`
	Name string `json:"name" db:"name"`
}

// Slugify converts a raw category label to its canonical slug: lowercase,
// non-alphanumeric runs collapse to a single hyphen, no leading or trailing
// hyphens. Unicode letters and digits are preserved so that labels such as
// "Domácí" keep their accented characters.
func Slugify(label string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen

	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
