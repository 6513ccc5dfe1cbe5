package market

import (
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLen   = 200
	maxTextLen    = 5000
	maxMessageLen = 2000
)

// requireText trims s and checks it is non-empty and at most max runes.
func requireText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalidField(KindInvalidInput, field, field+" is required")
	}
	if utf8.RuneCountInString(s) > max {
		return "", invalidField(KindInvalidInput, field, field+" is too long")
	}
	return s, nil
}

// optionalText trims s and checks it is at most max runes.
func optionalText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > max {
		return "", invalidField(KindInvalidInput, field, field+" is too long")
	}
	return s, nil
}
