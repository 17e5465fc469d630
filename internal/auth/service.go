package auth

import (
	"log/slog"
	"time"

	"github.com/satyapradip/employee-task-management/internal"
	"github.com/satyapradip/employee-task-management/internal/user"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the slice of user storage the auth service depends on.
type UserRepository interface {
	GetByEmail(email string) (*user.User, error)
	GetByID(id int64) (*user.User, error)
	UpdatePassword(id int64, passwordHash string) error
	UpdateLastLogin(id int64, at time.Time) error
}

// Service is the credential store plus session issuing. Password hashes are
// produced only here and in the password-reset flow, never on unrelated
// writes, which avoids double-hashing an already-hashed value on save.
type Service struct {
	users             UserRepository
	tokens            TokenGenerator
	logger            *slog.Logger
	bcryptCost        int
	passwordMinLength int
}

func NewService(users UserRepository, tokens TokenGenerator, logger *slog.Logger, bcryptCost, passwordMinLength int) *Service {
	if bcryptCost < internal.DefaultBCryptCost {
		bcryptCost = internal.DefaultBCryptCost
	}
	if passwordMinLength <= 0 {
		passwordMinLength = internal.DefaultPasswordMinLength
	}
	return &Service{
		users:             users,
		tokens:            tokens,
		logger:            logger,
		bcryptCost:        bcryptCost,
		passwordMinLength: passwordMinLength,
	}
}

// LoginResult pairs the minted session token with the authenticated user.
type LoginResult struct {
	Token SessionToken `json:"session"`
	User  *user.User   `json:"user"`
}

// Authenticate validates credentials and returns a session token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(dto LoginDTO) (*LoginResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(dto.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(u.PasswordHash, dto.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !u.IsActive {
		return nil, ErrUserInactive
	}

	token, err := s.tokens.GenerateSessionToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		s.logger.Error("failed to sign session token", "error", err, "user_id", u.ID)
		return nil, err
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(u.ID, now); err != nil {
		// Best effort: a failed last-login write must not block the login.
		s.logger.Warn("failed to record last login", "error", err, "user_id", u.ID)
	} else {
		u.LastLoginAt = &now
	}

	s.logger.Info("user authenticated", "user_id", u.ID, "role", u.Role)
	return &LoginResult{Token: token, User: u}, nil
}

// IssueSessionFor mints a session token for an already-verified user, used
// by the password-reset flow to log the user in after a completed reset.
func (s *Service) IssueSessionFor(u *user.User) (SessionToken, error) {
	return s.tokens.GenerateSessionToken(u.ID, u.Email, string(u.Role))
}

// ValidateAccessToken verifies a session token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.ValidateToken(tokenString)
}

// ResolvePrincipal loads the current user record behind a set of verified
// claims. The record is re-read on every request so a deactivated or deleted
// user is rejected even while holding a token that is still signed and
// unexpired.
func (s *Service) ResolvePrincipal(claims *Claims) (*internal.Principal, error) {
	u, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}

	return &internal.Principal{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}, nil
}

// ChangePassword verifies the current password before re-hashing the new one.
func (s *Service) ChangePassword(userID int64, dto ChangePasswordDTO) error {
	if err := dto.Validate(s.passwordMinLength); err != nil {
		return err
	}

	u, err := s.users.GetByID(userID)
	if err != nil {
		return internal.ErrUserNotFound
	}

	if err := VerifyPassword(u.PasswordHash, dto.CurrentPassword); err != nil {
		return ErrWrongPassword
	}

	hash, err := s.HashPassword(dto.NewPassword)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	if err := s.users.UpdatePassword(userID, hash); err != nil {
		s.logger.Error("failed to update password", "error", err, "user_id", userID)
		return internal.NewInternalError("failed to update password", err)
	}

	s.logger.Info("password changed", "user_id", userID)
	return nil
}

// HashPassword creates a bcrypt hash at the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext candidate against a stored bcrypt
// hash using bcrypt's own constant-time comparison.
func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// HashPassword is the package-level variant for callers that carry their own
// cost, such as the seeder.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
