package ports

import (
	"context"
	"time"

	"github.com/safecity/incident-dashboard/internal/core/domain"
)

// RegisterInput carries the fields of a self-service sign up.
type RegisterInput struct {
	Name     string
	LastName string
	Email    string
	Password string
}

// TokenClaims is the verified content of an access token.
type TokenClaims struct {
	UserID    int64
	Roles     []string
	TokenID   string
	ExpiresAt time.Time
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken string
	ExpiresIn   time.Duration
	User        *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, claims TokenClaims) error
	Me(ctx context.Context, userID int64) (*domain.User, error)
	// Verify parses and validates a bearer token, including revocation.
	Verify(ctx context.Context, token string) (*TokenClaims, error)
}
