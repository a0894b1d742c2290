package utils

import "strings"

func Ptr[T any](v T) *T {
	return &v
}

func OrZero[T comparable](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Returns nil on an empty or all whitespace string
func StringOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CollapseSpaces trims s and squeezes inner whitespace runs to one space, so
// "  Nguyễn   Văn  A " and "Nguyễn Văn A" name the same player.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
