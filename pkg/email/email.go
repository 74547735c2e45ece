// Package email derives presentable names from email addresses. The server
// uses it to seed the bootstrap staff account, whose configuration carries
// only an email and a password.
package email

import (
	"strings"
	"unicode"
)

const fallbackName = "User"

// DeriveNameFromEmail guesses a first and last name from the local part of
// an address: "amina.okafor@example.org" becomes ("Amina", "Okafor"). With a
// single segment the last name falls back to "User"; with more than two, the
// middle segments are ignored.
func DeriveNameFromEmail(email string) (first, last string) {
	local := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		local = email[:at]
	}

	segments := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(segments) == 0 {
		return fallbackName, fallbackName
	}

	first = capitalize(segments[0])
	last = fallbackName
	if len(segments) > 1 {
		last = capitalize(segments[len(segments)-1])
	}
	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
