package ports

import (
	"context"
	"time"

	"github.com/sportify/camp-server/internal/core/domain"
)

// RegisterInput carries the fields accepted on identity registration.
type RegisterInput struct {
	Email    string
	Name     string
	PhotoURL string
}

// TokenResult is returned after issuing a credential.
type TokenResult struct {
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Identity, error)
	IssueToken(ctx context.Context, email string) (*TokenResult, error)
}

// Authenticator verifies an Authorization header value and returns the
// subject email.
type Authenticator interface {
	Authenticate(header string) (string, error)
}

// RoleAuthorizer checks the current stored role of an identity.
type RoleAuthorizer interface {
	Authorize(ctx context.Context, email string, roles ...domain.Role) error
}

// UserService covers identity administration.
type UserService interface {
	List(ctx context.Context) ([]*domain.Identity, error)
	Role(ctx context.Context, email string) (domain.Role, error)
	Promote(ctx context.Context, actorEmail, id string, role domain.Role) (*domain.Identity, error)
}
