package validation

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ParseISOTime accepts RFC 3339 timestamps with or without fractional
// seconds, plus a bare date.
func ParseISOTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, value)
}

func isoDateValidation(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, err := ParseISOTime(value)
	return err == nil
}
