package user

import (
	"fmt"
	"strings"

	"github.com/satyapradip/employee-task-management/internal"
)

// CreateUserDTO is the admin-facing payload for registering an account.
type CreateUserDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (d *CreateUserDTO) Validate(passwordMinLength int) *internal.AppError {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Name = strings.TrimSpace(d.Name)

	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return internal.NewValidationFieldError("email", "a valid email is required", internal.ErrCodeValidationFailed)
	}
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if len(d.Password) < passwordMinLength {
		return internal.NewValidationError(fmt.Sprintf("Password must be at least %d characters", passwordMinLength), internal.ErrCodePasswordTooShort)
	}
	if d.Role == "" {
		d.Role = string(RoleEmployee)
	}
	if !Role(d.Role).Valid() {
		return internal.NewValidationFieldError("role", "role must be admin or employee", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateUserDTO is the admin-facing payload for editing an account. Email is
// immutable; pointer fields distinguish absent from empty.
type UpdateUserDTO struct {
	Name *string `json:"name,omitempty"`
	Role *string `json:"role,omitempty"`
}

func (d *UpdateUserDTO) Validate() *internal.AppError {
	if d.Name != nil && strings.TrimSpace(*d.Name) == "" {
		return internal.NewValidationFieldError("name", "name cannot be empty", internal.ErrCodeValidationFailed)
	}
	if d.Role != nil && !Role(*d.Role).Valid() {
		return internal.NewValidationFieldError("role", "role must be admin or employee", internal.ErrCodeValidationFailed)
	}
	return nil
}

// ListUsersFilter narrows List results.
type ListUsersFilter struct {
	Role   *Role
	Active *bool
	// Search matches a case-insensitive substring of name or email.
	Search string
	Limit  int
	Offset int
}
