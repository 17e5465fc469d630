package postgres

import (
	"strings"
	"time"

	"github.com/satyapradip/employee-task-management/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements the user storage interfaces using GORM. The one
// repository backs the user service, the auth service and the password-reset
// flow, each of which declares only the slice it needs.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create saves a new user to the database
func (r *UserRepository) Create(u *user.User) error {
	return r.db.Create(u).Error
}

// GetByID retrieves a user by its ID
func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var u user.User
	err := r.db.Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail retrieves a user by email, matched case-insensitively
func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var u user.User
	err := r.db.Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// List retrieves users matching the filter plus the total match count
func (r *UserRepository) List(filter user.ListUsersFilter) ([]*user.User, int64, error) {
	query := r.db.Model(&user.User{})

	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*user.User
	err := query.Order("name ASC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&users).Error
	return users, total, err
}

// Update persists name and role changes
func (r *UserRepository) Update(u *user.User) error {
	u.UpdatedAt = time.Now()
	return r.db.Save(u).Error
}

// SetActive flips the soft-delete flag
func (r *UserRepository) SetActive(id int64, active bool) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": time.Now(),
		}).Error
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(id int64, passwordHash string) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		}).Error
}

// UpdateLastLogin stamps the most recent successful authentication
func (r *UserRepository) UpdateLastLogin(id int64, at time.Time) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// GetByResetTokenHash finds the user holding an unexpired reset token. An
// expired token is indistinguishable from an unknown one.
func (r *UserRepository) GetByResetTokenHash(hash string, now time.Time) (*user.User, error) {
	var u user.User
	err := r.db.Where("reset_token_hash = ? AND reset_token_expires_at > ?", hash, now).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetResetToken stores a reset token hash, overwriting any previous one so
// only the latest issued token is redeemable
func (r *UserRepository) SetResetToken(userID int64, hash string, expiresAt time.Time) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_token_hash":       hash,
			"reset_token_expires_at": expiresAt,
			"updated_at":             time.Now(),
		}).Error
}

// ClearResetToken removes a stored reset token
func (r *UserRepository) ClearResetToken(userID int64) error {
	return r.db.Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_token_hash":       nil,
			"reset_token_expires_at": nil,
			"updated_at":             time.Now(),
		}).Error
}
