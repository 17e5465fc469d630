package auth

import (
	"fmt"
	"strings"
)

// LoginDTO is the transport shape accepted by the login handler.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordDTO is the payload for an authenticated password change.
type ChangePasswordDTO struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

// Validate checks required fields and normalizes the email to lower-case,
// matching the case-insensitive uniqueness rule on the users table.
func (d *LoginDTO) Validate() error {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d ChangePasswordDTO) Validate(passwordMinLength int) error {
	if d.CurrentPassword == "" {
		return ValidationError{Msg: "current_password is required"}
	}
	if len(d.NewPassword) < passwordMinLength {
		return ValidationError{Msg: fmt.Sprintf("new password must be at least %d characters", passwordMinLength)}
	}
	return nil
}
