package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
)

// UserService implements identity administration.
type UserService struct {
	repo     ports.IdentityRepository
	activity ports.ActivitySink
	log      zerolog.Logger
}

func NewUserService(repo ports.IdentityRepository, activity ports.ActivitySink, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, activity: activity, log: log}
}

func (s *UserService) List(ctx context.Context) ([]*domain.Identity, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	return users, nil
}

// Role returns the role currently stored for email.
func (s *UserService) Role(ctx context.Context, email string) (domain.Role, error) {
	identity, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return "", err
	}
	return identity.Role, nil
}

// Promote sets the role of the identity with the given id. The change is
// visible to the role gate on the next request.
func (s *UserService) Promote(ctx context.Context, actorEmail, id string, role domain.Role) (*domain.Identity, error) {
	if !role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	updated, err := s.repo.SetRole(ctx, id, role)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("actor", actorEmail).
		Str("email", updated.Email).
		Str("role", string(role)).
		Msg("role changed")

	s.activity.Enqueue(domain.ActivityEvent{
		Kind:    domain.ActivityRoleChanged,
		Actor:   actorEmail,
		Subject: updated.Email,
		Detail:  string(role),
		At:      time.Now().UTC(),
	})
	return updated, nil
}
