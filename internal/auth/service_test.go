package auth_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/migration-tracker/internal/auth"
)

// Mock auth repository for testing
type mockAuthRepository struct {
	passwordHash string
	userID       string
	userContext  *auth.UserContext
	lookupError  error
}

func (m *mockAuthRepository) GetPasswordForEmail(email string) (string, string, error) {
	if m.lookupError != nil {
		return "", "", m.lookupError
	}
	return m.passwordHash, m.userID, nil
}

func (m *mockAuthRepository) GetUserWithGrants(userID int64) (*auth.UserContext, error) {
	if m.lookupError != nil {
		return nil, m.lookupError
	}
	return m.userContext, nil
}

var _ = Describe("AuthService", func() {
	var (
		repo     *mockAuthRepository
		tokenGen *auth.JWTTokenGenerator
		service  *auth.Service
	)

	BeforeEach(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())

		repo = &mockAuthRepository{
			passwordHash: string(hash),
			userID:       "42",
			userContext: &auth.UserContext{
				UserID: 42,
				Email:  "dina@mail.com",
				Role:   auth.RoleMember,
			},
		}
		tokenGen = auth.NewJWTTokenGenerator(
			"test-access-secret-at-least-32-bytes!!",
			"test-refresh-secret-at-least-32-byte!!",
			time.Minute,
			time.Hour,
		)
		service = auth.NewService(repo, tokenGen, bcrypt.MinCost)
	})

	Describe("Authenticate", func() {
		It("should return a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "dina@mail.com", Password: "correct-password"})

			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
		})

		It("should reject a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "dina@mail.com", Password: "wrong"})

			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("should report unknown emails as invalid credentials, not as missing users", func() {
			repo.lookupError = errors.New("sql: no rows in result set")

			_, err := service.Authenticate(auth.LoginDTO{Email: "nobody@mail.com", Password: "whatever"})

			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})
	})

	Describe("token validation", func() {
		It("should round-trip claims through an issued access token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "dina@mail.com", Password: "correct-password"})
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("42"))
		})

		It("should reject a garbage token", func() {
			_, err := service.ValidateAccessToken("not-a-jwt")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RefreshTokens", func() {
		It("should issue a new pair from a valid refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "dina@mail.com", Password: "correct-password"})
			Expect(err).NotTo(HaveOccurred())

			renewed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(renewed.AccessToken).NotTo(BeEmpty())
		})
	})

	Describe("GetUserWithGrants", func() {
		It("should return the resolved user context", func() {
			user, err := service.GetUserWithGrants(42)
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Email).To(Equal("dina@mail.com"))
		})
	})
})
