package auth_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/satyapradip/employee-task-management/internal/auth"
	"github.com/satyapradip/employee-task-management/internal/user"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

// Mock user repository for testing
type mockUserRepository struct {
	usersByID      map[int64]*user.User
	usersByEmail   map[string]*user.User
	lastLoginError error
	updateError    error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		usersByID:    make(map[int64]*user.User),
		usersByEmail: make(map[string]*user.User),
	}
}

func (m *mockUserRepository) add(u *user.User) {
	m.usersByID[u.ID] = u
	m.usersByEmail[u.Email] = u
}

func (m *mockUserRepository) GetByEmail(email string) (*user.User, error) {
	u, exists := m.usersByEmail[email]
	if !exists {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockUserRepository) GetByID(id int64) (*user.User, error) {
	u, exists := m.usersByID[id]
	if !exists {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockUserRepository) UpdatePassword(id int64, passwordHash string) error {
	if m.updateError != nil {
		return m.updateError
	}
	if u, exists := m.usersByID[id]; exists {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockUserRepository) UpdateLastLogin(id int64, at time.Time) error {
	if m.lastLoginError != nil {
		return m.lastLoginError
	}
	if u, exists := m.usersByID[id]; exists {
		u.LastLoginAt = &at
	}
	return nil
}

var _ = Describe("AuthService", func() {
	var (
		repo    *mockUserRepository
		tokens  *auth.JWTTokenGenerator
		service *auth.Service
	)

	testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	const secret = "test-secret-that-is-long-enough-0123"

	BeforeEach(func() {
		repo = newMockUserRepository()
		tokens = auth.NewJWTTokenGenerator(secret, time.Hour)
		service = auth.NewService(repo, tokens, testLogger, 10, 6)

		hash, err := service.HashPassword("correct-password")
		Expect(err).NotTo(HaveOccurred())

		repo.add(&user.User{
			ID:           1,
			Email:        "emp@mail.com",
			Name:         "Employee",
			Role:         user.RoleEmployee,
			PasswordHash: hash,
			IsActive:     true,
		})
	})

	Describe("Authenticate", func() {
		It("returns a session token and the user on valid credentials", func() {
			result, err := service.Authenticate(auth.LoginDTO{Email: "emp@mail.com", Password: "correct-password"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Token.Token).NotTo(BeEmpty())
			Expect(result.User.ID).To(Equal(int64(1)))
			Expect(result.User.LastLoginAt).NotTo(BeNil())
		})

		It("matches the email case-insensitively", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "EMP@mail.com", Password: "correct-password"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns the same error for unknown email and wrong password", func() {
			_, errUnknown := service.Authenticate(auth.LoginDTO{Email: "nobody@mail.com", Password: "whatever"})
			_, errWrong := service.Authenticate(auth.LoginDTO{Email: "emp@mail.com", Password: "wrong"})

			Expect(errUnknown).To(Equal(auth.ErrInvalidCredentials))
			Expect(errWrong).To(Equal(auth.ErrInvalidCredentials))
		})

		It("rejects deactivated accounts even with valid credentials", func() {
			repo.usersByID[1].IsActive = false

			_, err := service.Authenticate(auth.LoginDTO{Email: "emp@mail.com", Password: "correct-password"})
			Expect(err).To(Equal(auth.ErrUserInactive))
		})

		It("still succeeds when the last-login write fails", func() {
			repo.lastLoginError = errors.New("db down")

			_, err := service.Authenticate(auth.LoginDTO{Email: "emp@mail.com", Password: "correct-password"})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("session tokens", func() {
		It("round-trips claims through generate and validate", func() {
			token, err := tokens.GenerateSessionToken(1, "emp@mail.com", "employee")
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(token.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(1)))
			Expect(claims.Email).To(Equal("emp@mail.com"))
			Expect(claims.Role).To(Equal("employee"))
		})

		It("rejects an expired token distinctly from a malformed one", func() {
			expired := auth.NewJWTTokenGenerator(secret, -time.Minute)
			token, err := expired.GenerateSessionToken(1, "emp@mail.com", "employee")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(token.Token)
			Expect(err).To(Equal(auth.ErrTokenExpired))

			_, err = service.ValidateAccessToken("not-a-token")
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})

		It("rejects a token signed with a different secret", func() {
			forged := auth.NewJWTTokenGenerator("another-secret-also-long-enough-9876", time.Hour)
			token, err := forged.GenerateSessionToken(1, "emp@mail.com", "admin")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(token.Token)
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})
	})

	Describe("ResolvePrincipal", func() {
		It("re-reads the user and rejects a deactivated account", func() {
			token, err := tokens.GenerateSessionToken(1, "emp@mail.com", "employee")
			Expect(err).NotTo(HaveOccurred())
			claims, err := service.ValidateAccessToken(token.Token)
			Expect(err).NotTo(HaveOccurred())

			repo.usersByID[1].IsActive = false
			_, err = service.ResolvePrincipal(claims)
			Expect(err).To(Equal(auth.ErrUserInactive))
		})

		It("builds the principal from the stored record", func() {
			claims := &auth.Claims{UserID: 1, Email: "emp@mail.com", Role: "employee"}
			principal, err := service.ResolvePrincipal(claims)
			Expect(err).NotTo(HaveOccurred())
			Expect(principal.ID).To(Equal(int64(1)))
			Expect(principal.Role).To(Equal("employee"))
			Expect(principal.IsAdmin()).To(BeFalse())
		})
	})

	Describe("ChangePassword", func() {
		It("requires the current password to match", func() {
			err := service.ChangePassword(1, auth.ChangePasswordDTO{
				CurrentPassword: "wrong",
				NewPassword:     "new-password",
			})
			Expect(err).To(Equal(auth.ErrWrongPassword))
		})

		It("rejects a new password below the minimum length", func() {
			err := service.ChangePassword(1, auth.ChangePasswordDTO{
				CurrentPassword: "correct-password",
				NewPassword:     "short",
			})
			Expect(err).To(BeAssignableToTypeOf(auth.ValidationError{}))
		})

		It("re-hashes and stores the new password", func() {
			err := service.ChangePassword(1, auth.ChangePasswordDTO{
				CurrentPassword: "correct-password",
				NewPassword:     "brand-new-password",
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(auth.VerifyPassword(repo.usersByID[1].PasswordHash, "brand-new-password")).To(Succeed())
			Expect(auth.VerifyPassword(repo.usersByID[1].PasswordHash, "correct-password")).NotTo(Succeed())
		})
	})
})
