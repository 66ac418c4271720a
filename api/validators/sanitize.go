package validators

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/brewhouse-backend/pkg/errors"
)

// SanitizeString trims input and caps it at maxLen characters. A maxLen of
// zero or less disables the cap.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen <= 0 || utf8.RuneCountInString(trimmed) <= maxLen {
		return trimmed
	}
	runes := []rune(trimmed)
	return string(runes[:maxLen])
}

// SanitizeOptional applies SanitizeString to a present value and keeps nil
// as nil.
func SanitizeOptional(input *string, maxLen int) *string {
	if input == nil {
		return nil
	}
	sanitized := SanitizeString(*input, maxLen)
	return &sanitized
}

// EscapeText trims input and escapes HTML metacharacters so stored text is
// safe to render.
func EscapeText(input string) string {
	return html.EscapeString(strings.TrimSpace(input))
}

// EscapeOptional applies EscapeText to a present value and keeps nil as nil.
func EscapeOptional(input *string) *string {
	if input == nil {
		return nil
	}
	escaped := EscapeText(*input)
	return &escaped
}

// EscapedLimits checks escaped values against their column widths. Escaping
// can grow text up to five times, so a value that passed its max= tag may
// still not fit.
type EscapedLimits struct {
	details map[string]string
}

// Check records field when value is longer than maxLen characters.
func (l *EscapedLimits) Check(field, value string, maxLen int) {
	if utf8.RuneCountInString(value) <= maxLen {
		return
	}
	if l.details == nil {
		l.details = make(map[string]string)
	}
	l.details[field] = fmt.Sprintf("must be at most %d characters once HTML-escaped", maxLen)
}

// Err returns a validation error listing every field that did not fit.
func (l *EscapedLimits) Err() error {
	if len(l.details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(l.details)
}
