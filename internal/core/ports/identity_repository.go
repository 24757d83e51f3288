package ports

import (
	"context"

	"github.com/sportify/camp-server/internal/core/domain"
)

// IdentityRepository defines persistence operations for identities.
type IdentityRepository interface {
	// Create inserts a new identity. Returns domain.ErrIdentityExists when the
	// email is already registered.
	Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error)
	FindByEmail(ctx context.Context, email string) (*domain.Identity, error)
	FindByID(ctx context.Context, id string) (*domain.Identity, error)
	List(ctx context.Context) ([]*domain.Identity, error)
	// SetRole overwrites the stored role and returns the updated identity.
	SetRole(ctx context.Context, id string, role domain.Role) (*domain.Identity, error)
}
