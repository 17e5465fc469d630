package user

import (
	"log/slog"

	"github.com/satyapradip/employee-task-management/internal"
)

// Repository defines the data access methods the user service needs.
type Repository interface {
	Create(u *User) error
	GetByID(id int64) (*User, error)
	GetByEmail(email string) (*User, error)
	List(filter ListUsersFilter) ([]*User, int64, error)
	Update(u *User) error
	SetActive(id int64, active bool) error
}

// PasswordHasher abstracts the credential store's one-way hash. Satisfied by
// the auth service so hashing cost lives in one place.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo              Repository
	hasher            PasswordHasher
	logger            *slog.Logger
	passwordMinLength int
}

func NewService(repo Repository, hasher PasswordHasher, logger *slog.Logger, passwordMinLength int) *Service {
	if passwordMinLength <= 0 {
		passwordMinLength = internal.DefaultPasswordMinLength
	}
	return &Service{
		repo:              repo,
		hasher:            hasher,
		logger:            logger,
		passwordMinLength: passwordMinLength,
	}
}

// Create registers a new account. Email uniqueness is case-insensitive; the
// DTO normalizes to lower-case before the duplicate check and the write.
func (s *Service) Create(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(s.passwordMinLength); err != nil {
		return nil, err
	}

	if existing, err := s.repo.GetByEmail(dto.Email); err == nil && existing != nil {
		s.logger.Warn("create user rejected: email already registered", "email", dto.Email)
		return nil, internal.ErrEmailTaken
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Email:        dto.Email,
		Name:         dto.Name,
		Role:         Role(dto.Role),
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := s.repo.Create(u); err != nil {
		s.logger.Error("failed to create user", "error", err, "email", dto.Email)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.logger.Info("user created", "user_id", u.ID, "email", u.Email, "role", u.Role)
	return u, nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

func (s *Service) List(filter ListUsersFilter) ([]*User, int64, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	users, total, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, 0, internal.NewInternalError("failed to list users", err)
	}
	return users, total, nil
}

// Update edits name and role. Email is immutable; password changes go
// through the auth service, never through here.
func (s *Service) Update(id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrUserNotFound
	}

	if dto.Name != nil {
		u.Name = *dto.Name
	}
	if dto.Role != nil {
		u.Role = Role(*dto.Role)
	}

	if err := s.repo.Update(u); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to update user", err)
	}

	s.logger.Info("user updated", "user_id", u.ID)
	return u, nil
}

// Deactivate soft-deletes an account. The record and its task history stay;
// the user simply can no longer authenticate. Admins cannot deactivate
// themselves.
func (s *Service) Deactivate(id, actorID int64) error {
	if id == actorID {
		return internal.NewValidationError("You cannot deactivate your own account", internal.ErrCodeValidationFailed)
	}

	u, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrUserNotFound
	}

	if !u.IsActive {
		return nil
	}

	if err := s.repo.SetActive(id, false); err != nil {
		s.logger.Error("failed to deactivate user", "error", err, "user_id", id)
		return internal.NewInternalError("failed to deactivate user", err)
	}

	s.logger.Info("user deactivated", "user_id", id, "actor_id", actorID)
	return nil
}

// Reactivate restores a soft-deleted account.
func (s *Service) Reactivate(id int64) error {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrUserNotFound
	}

	if u.IsActive {
		return nil
	}

	if err := s.repo.SetActive(id, true); err != nil {
		s.logger.Error("failed to reactivate user", "error", err, "user_id", id)
		return internal.NewInternalError("failed to reactivate user", err)
	}

	s.logger.Info("user reactivated", "user_id", id)
	return nil
}
