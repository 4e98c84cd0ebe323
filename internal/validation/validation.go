// Package validation checks the free-text location submitted to the advisory form.
package validation

import (
	"errors"
	"strings"
	"unicode"
)

// Location length bounds in runes.
const (
	MinLocationLen = 2
	MaxLocationLen = 100
)

var (
	ErrLocationEmpty        = errors.New("location is required")
	ErrLocationTooShort     = errors.New("location too short")
	ErrLocationTooLong      = errors.New("location too long")
	ErrLocationInvalidChars = errors.New("location contains invalid characters")
)

// ValidateLocation trims input and checks it against the length bounds and the
// allowed character set. Place names such as "St. John's" or "Aix-en-Provence, FR" pass.
func ValidateLocation(input string) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	switch n := len(r); {
	case n == 0:
		return "", ErrLocationEmpty
	case n < MinLocationLen:
		return "", ErrLocationTooShort
	case n > MaxLocationLen:
		return "", ErrLocationTooLong
	}
	for _, c := range r {
		if !isAllowedLocationRune(c) {
			return "", ErrLocationInvalidChars
		}
	}
	return s, nil
}

// Message returns the text shown on the form for a validation error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrLocationEmpty):
		return "Please enter a location."
	case errors.Is(err, ErrLocationTooShort):
		return "Location is too short."
	case errors.Is(err, ErrLocationTooLong):
		return "Location is too long."
	case errors.Is(err, ErrLocationInvalidChars):
		return "Location may only contain letters, digits, spaces and , . ' -"
	default:
		return "Invalid location."
	}
}

func isAllowedLocationRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
		return true
	}
	switch r {
	case ' ', ',', '-', '.', '\'':
		return true
	}
	return false
}
