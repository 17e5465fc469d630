package user

import (
	"time"
)

// Role is the closed set of user roles. There is no hierarchy between them.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// User is the account record. PasswordHash and the reset-token fields never
// appear in any outward-facing representation.
type User struct {
	ID                  int64      `json:"id" gorm:"primaryKey"`
	Email               string     `json:"email" gorm:"column:email;uniqueIndex;not null"`
	Name                string     `json:"name" gorm:"column:name;not null"`
	Role                Role       `json:"role" gorm:"column:role;type:varchar(20);not null;default:employee"`
	PasswordHash        string     `json:"-" gorm:"column:password_hash;not null"`
	IsActive            bool       `json:"is_active" gorm:"column:is_active;default:true"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty" gorm:"column:last_login_at"`
	ResetTokenHash      *string    `json:"-" gorm:"column:reset_token_hash"`
	ResetTokenExpiresAt *time.Time `json:"-" gorm:"column:reset_token_expires_at"`
	CreatedAt           time.Time  `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt           time.Time  `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsEmployee() bool {
	return u.Role == RoleEmployee
}

// HasActiveResetToken reports whether an unexpired reset token is stored.
func (u *User) HasActiveResetToken(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now)
}
