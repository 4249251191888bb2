package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Bounds on caller-supplied pagination and limit parameters.
const (
	MaxPageSize = 200
	MaxLimit    = 50

	DefaultPageSize = 20
)

// allowedOrderings is the allowlist of ordering values forwarded to
// the upstream API.
var allowedOrderings = map[string]bool{
	"title":       true,
	"-title":      true,
	"created_at":  true,
	"-created_at": true,
}

// ValidationError describes a rejected request parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// SanitizeString strips control characters (except whitespace) and
// trims the result.
func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}

// ParsePage parses an optional page query parameter. Empty means page 1.
func ParsePage(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, &ValidationError{Field: "page", Message: "must be a positive integer"}
	}
	return page, nil
}

// ParsePageSize parses an optional page_size query parameter, bounded
// by MaxPageSize.
func ParsePageSize(raw string) (int, error) {
	if raw == "" {
		return DefaultPageSize, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size < 1 {
		return 0, &ValidationError{Field: "page_size", Message: "must be a positive integer"}
	}
	if size > MaxPageSize {
		return 0, &ValidationError{Field: "page_size", Message: fmt.Sprintf("cannot exceed %d", MaxPageSize)}
	}
	return size, nil
}

// ParseLimit parses an optional limit query parameter with a default,
// bounded by MaxLimit.
func ParseLimit(raw string, defaultValue int) (int, error) {
	if raw == "" {
		return defaultValue, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, &ValidationError{Field: "limit", Message: "must be a positive integer"}
	}
	if limit > MaxLimit {
		return 0, &ValidationError{Field: "limit", Message: fmt.Sprintf("cannot exceed %d", MaxLimit)}
	}
	return limit, nil
}

// ValidateOrdering checks an ordering value against the allowlist.
// Empty is valid and means upstream default order.
func ValidateOrdering(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if !allowedOrderings[raw] {
		return "", &ValidationError{Field: "ordering", Message: "unsupported ordering"}
	}
	return raw, nil
}

// ParseExcludeIDs splits a comma-separated id list, dropping empties.
func ParseExcludeIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = SanitizeString(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
