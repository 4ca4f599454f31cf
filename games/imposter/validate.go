/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package imposter

import (
	"strings"
	"unicode/utf8"
)

const (
	CodeLength    = 4
	MinNameLength = 2
	MaxNameLength = 12
)

// Language is one of the supported word-list languages.
type Language string

const (
	English  Language = "en"
	Albanian Language = "sq"
	Spanish  Language = "es"
	German   Language = "de"
)

// DefaultLanguage is used when a word table has no entries for a language.
const DefaultLanguage = English

// Languages lists every supported language in a stable order.
func Languages() []Language {
	return []Language{English, Albanian, Spanish, German}
}

func (l Language) Valid() bool {
	switch l {
	case English, Albanian, Spanish, German:
		return true
	}

	return false
}

// ParseLanguage validates a language code.
func ParseLanguage(s string) (Language, error) {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", invalid("language", "must be one of en, sq, es, de")
	}

	return l, nil
}

// NormalizeName trims surrounding whitespace and checks the display name length.
func NormalizeName(s string) (string, error) {
	name := strings.TrimSpace(s)

	n := utf8.RuneCountInString(name)
	switch {
	case n < MinNameLength:
		return "", invalid("name", "must be at least %d characters", MinNameLength)
	case n > MaxNameLength:
		return "", invalid("name", "must be at most %d characters", MaxNameLength)
	}

	return name, nil
}

// NormalizeCode upper-cases a room code and checks it is four letters A-Z.
func NormalizeCode(s string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(s))

	if len(code) != CodeLength {
		return "", invalid("code", "must be exactly %d letters", CodeLength)
	}

	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return "", invalid("code", "must contain only letters")
		}
	}

	return code, nil
}
