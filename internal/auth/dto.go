package auth

import (
	"strings"

	"github.com/frahmantamala/insight-pulse/internal/core/common/validation"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() error {
	if err := validation.Struct(d); err != nil {
		return ValidationError{Msg: "Missing username or password"}
	}
	return nil
}

func (d LoginDTO) normalized() LoginDTO {
	d.Username = strings.TrimSpace(d.Username)
	return d
}
