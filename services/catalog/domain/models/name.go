package models

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ghuser/catalog/services/catalog/domain"
)

// NormalizeName upper-cases the first rune of raw and lower-cases the rest.
// Surrounding whitespace is preserved.
func NormalizeName(raw string) (string, error) {
	if raw == "" {
		return "", domain.NewValidationError("name must not be empty")
	}
	first, size := utf8.DecodeRuneInString(raw)
	return string(unicode.ToUpper(first)) + strings.ToLower(raw[size:]), nil
}

// ParseIdentifier turns a URL slug back into a name: dashes become spaces
// and surrounding whitespace is trimmed.
func ParseIdentifier(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "-", " "))
}

// IsEntityID reports whether raw is a canonical UUID string.
func IsEntityID(raw string) bool {
	if len(raw) != 36 {
		return false
	}
	_, err := uuid.Parse(raw)
	return err == nil
}

// ParseEntityID parses raw as an entity id, failing with a ValidationError
// naming kind when the shape is wrong.
func ParseEntityID(kind, raw string) (uuid.UUID, error) {
	if !IsEntityID(raw) {
		return uuid.Nil, domain.NewValidationError("invalid %s id", kind)
	}
	return uuid.MustParse(raw), nil
}
