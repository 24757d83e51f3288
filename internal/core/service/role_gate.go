package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
	"github.com/sportify/camp-server/internal/pkg/metrics"
)

// RoleGate authorizes an identity against the role currently stored for it.
// The lookup is repeated on every call so that a promotion or demotion is
// visible on the next request, whatever credential the caller holds.
type RoleGate struct {
	identities ports.IdentityRepository
}

func NewRoleGate(identities ports.IdentityRepository) *RoleGate {
	return &RoleGate{identities: identities}
}

// Authorize returns nil when the stored role of email is one of roles and
// domain.ErrForbidden otherwise. An unknown identity is forbidden.
func (g *RoleGate) Authorize(ctx context.Context, email string, roles ...domain.Role) error {
	identity, err := g.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			metrics.RoleDecisionsTotal.WithLabelValues("forbid").Inc()
			return domain.ErrForbidden
		}
		return fmt.Errorf("role gate: %w", err)
	}

	if identity.Role.Valid() {
		for _, r := range roles {
			if identity.Role == r {
				metrics.RoleDecisionsTotal.WithLabelValues("allow").Inc()
				return nil
			}
		}
	}

	metrics.RoleDecisionsTotal.WithLabelValues("forbid").Inc()
	return domain.ErrForbidden
}
