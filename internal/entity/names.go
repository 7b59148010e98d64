package entity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Key returns the lookup key for a table entry or block name. Names are
// case-insensitive and compared in NFC form, so "Ä" typed as one or two
// code points refers to the same layer. Layout names are not folded.
func Key(name string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
}

// invalidNameChars may not appear in table entry names.
const invalidNameChars = `<>/\":;?*|=` + "`"

// IsValidName reports whether name can be used as a table entry name.
func IsValidName(name string) bool {
	if name == "" || strings.TrimSpace(name) != name {
		return false
	}
	return !strings.ContainsAny(name, invalidNameChars)
}
