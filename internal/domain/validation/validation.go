// Package validation holds the input error shared by the domain services.
package validation

import (
	"strings"
	"unicode/utf8"
)

// Error reports a single rejected input field.
type Error struct {
	Field   string
	Message string
}

func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// RequiredText trims value and checks it is between 1 and max characters.
func RequiredText(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", New(field, field+" is required")
	}
	if utf8.RuneCountInString(value) > max {
		return "", New(field, field+" is too long")
	}
	return value, nil
}
