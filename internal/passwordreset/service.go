package passwordreset

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/satyapradip/employee-task-management/internal"
	"github.com/satyapradip/employee-task-management/internal/auth"
	"github.com/satyapradip/employee-task-management/internal/notification"
	"github.com/satyapradip/employee-task-management/internal/user"
)

// Repository is the slice of user storage the reset flow touches.
type Repository interface {
	GetByEmail(email string) (*user.User, error)
	// GetByResetTokenHash matches only when the stored expiry is after now.
	GetByResetTokenHash(hash string, now time.Time) (*user.User, error)
	SetResetToken(userID int64, hash string, expiresAt time.Time) error
	ClearResetToken(userID int64) error
	UpdatePassword(userID int64, passwordHash string) error
}

// SessionIssuer mints the auto-login token returned after a completed reset.
type SessionIssuer interface {
	IssueSessionFor(u *user.User) (auth.SessionToken, error)
}

// PasswordHasher abstracts the credential store's one-way hash.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo              Repository
	mailer            notification.Mailer
	sessions          SessionIssuer
	hasher            PasswordHasher
	logger            *slog.Logger
	tokenTTL          time.Duration
	passwordMinLength int
	clientBaseURL     string
}

func NewService(repo Repository, mailer notification.Mailer, sessions SessionIssuer, hasher PasswordHasher, logger *slog.Logger, cfg internal.SecurityConfig, clientBaseURL string) *Service {
	ttl := cfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = internal.DefaultResetTokenTTL
	}
	minLen := cfg.PasswordMinLength
	if minLen <= 0 {
		minLen = internal.DefaultPasswordMinLength
	}
	return &Service{
		repo:              repo,
		mailer:            mailer,
		sessions:          sessions,
		hasher:            hasher,
		logger:            logger,
		tokenTTL:          ttl,
		passwordMinLength: minLen,
		clientBaseURL:     strings.TrimRight(clientBaseURL, "/"),
	}
}

// RequestReset issues a reset token and mails it. The outcome is identical
// from the caller's perspective whether or not the email exists, so the
// endpoint cannot be used to enumerate accounts. Reissuing overwrites the
// stored hash, which invalidates any previously issued token. If mail
// delivery fails the token is rolled back immediately: an undeliverable
// token must not stay redeemable.
func (s *Service) RequestReset(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.GetByEmail(email)
	if err != nil || u == nil {
		s.logger.Info("password reset requested for unknown email")
		return nil
	}
	if !u.IsActive {
		s.logger.Info("password reset requested for deactivated account", "user_id", u.ID)
		return nil
	}

	if u.HasActiveResetToken(time.Now()) {
		s.logger.Info("reissuing reset token; previous token is now invalid", "user_id", u.ID)
	}

	token, err := NewResetToken()
	if err != nil {
		s.logger.Error("failed to generate reset token", "error", err)
		return internal.NewInternalError("failed to generate reset token", err)
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	if err := s.repo.SetResetToken(u.ID, HashToken(token), expiresAt); err != nil {
		s.logger.Error("failed to store reset token", "error", err, "user_id", u.ID)
		return internal.NewInternalError("failed to store reset token", err)
	}

	resetLink := s.clientBaseURL + "/reset-password/" + token
	msg := notification.PasswordResetMessage(u.Name, resetLink)

	if _, err := s.mailer.Send(u.Email, msg.Subject, msg.HTMLBody, msg.TextBody); err != nil {
		if clearErr := s.repo.ClearResetToken(u.ID); clearErr != nil {
			s.logger.Error("failed to roll back reset token after send failure", "error", clearErr, "user_id", u.ID)
		}
		return internal.NewInternalError("failed to send reset email", err)
	}

	s.logger.Info("password reset token issued", "user_id", u.ID, "expires_at", expiresAt)
	return nil
}

// VerifyResult is returned by the read-only token check used by the client
// to pre-validate a link before rendering the reset form.
type VerifyResult struct {
	Valid bool   `json:"valid"`
	Email string `json:"email,omitempty"`
}

// VerifyResetToken checks a token without consuming it. Repeated lookups
// with an unconsumed token are idempotent until the reset completes.
func (s *Service) VerifyResetToken(token string) (*VerifyResult, error) {
	u, err := s.repo.GetByResetTokenHash(HashToken(token), time.Now())
	if err != nil || u == nil {
		return nil, internal.ErrInvalidResetToken
	}
	return &VerifyResult{Valid: true, Email: MaskEmail(u.Email)}, nil
}

// ResetResult is the outcome of a completed reset: the user is auto-logged
// in with a fresh session token.
type ResetResult struct {
	Session auth.SessionToken `json:"session"`
	User    *user.User        `json:"user"`
}

// CompleteReset consumes the token and sets the new password. The password
// length check runs before the lookup, so a too-short password leaves the
// token valid for a subsequent correct attempt. Invalid and expired tokens
// are indistinguishable.
func (s *Service) CompleteReset(token, newPassword string) (*ResetResult, error) {
	if len(newPassword) < s.passwordMinLength {
		return nil, internal.NewValidationError(fmt.Sprintf("Password must be at least %d characters", s.passwordMinLength), internal.ErrCodePasswordTooShort)
	}

	u, err := s.repo.GetByResetTokenHash(HashToken(token), time.Now())
	if err != nil || u == nil {
		return nil, internal.ErrInvalidResetToken
	}

	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	if err := s.repo.UpdatePassword(u.ID, hash); err != nil {
		s.logger.Error("failed to update password", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("failed to update password", err)
	}

	if err := s.repo.ClearResetToken(u.ID); err != nil {
		s.logger.Error("failed to clear consumed reset token", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("failed to clear reset token", err)
	}

	session, err := s.sessions.IssueSessionFor(u)
	if err != nil {
		s.logger.Error("failed to issue session after reset", "error", err, "user_id", u.ID)
		return nil, internal.NewInternalError("failed to issue session token", err)
	}

	s.logger.Info("password reset completed", "user_id", u.ID)
	return &ResetResult{Session: session, User: u}, nil
}
