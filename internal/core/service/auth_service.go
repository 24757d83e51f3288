package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
)

// AuthOptions tunes registration and credential issuance.
type AuthOptions struct {
	// RequireRegistered refuses credentials for emails with no identity.
	RequireRegistered bool
	// BootstrapAdminEmail is registered with the admin role instead of student.
	BootstrapAdminEmail string
}

// AuthService implements registration and credential issuance.
type AuthService struct {
	repo   ports.IdentityRepository
	issuer *TokenIssuer
	opts   AuthOptions
	log    zerolog.Logger
}

func NewAuthService(repo ports.IdentityRepository, issuer *TokenIssuer, opts AuthOptions, log zerolog.Logger) *AuthService {
	opts.BootstrapAdminEmail = domain.NormalizeEmail(opts.BootstrapAdminEmail)
	return &AuthService{repo: repo, issuer: issuer, opts: opts, log: log}
}

// Register creates a student identity for an unseen email.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Identity, error) {
	email := domain.NormalizeEmail(input.Email)
	if email == "" {
		return nil, domain.ErrInvalidInput
	}

	role := domain.RoleStudent
	if s.opts.BootstrapAdminEmail != "" && email == s.opts.BootstrapAdminEmail {
		role = domain.RoleAdmin
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Identity{
		Email:     email,
		Name:      input.Name,
		PhotoURL:  input.PhotoURL,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrIdentityExists) {
			return nil, err
		}
		return nil, fmt.Errorf("register identity: %w", err)
	}

	s.log.Info().Str("email", email).Str("role", string(role)).Msg("identity registered")
	return created, nil
}

// IssueToken mints a credential for email. When RequireRegistered is set the
// email must belong to a registered identity.
func (s *AuthService) IssueToken(ctx context.Context, email string) (*ports.TokenResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.ErrInvalidInput
	}

	if s.opts.RequireRegistered {
		if _, err := s.repo.FindByEmail(ctx, email); err != nil {
			if errors.Is(err, domain.ErrIdentityNotFound) {
				s.log.Warn().Str("email", email).Msg("token requested for unregistered email")
				return nil, domain.ErrUnauthenticated
			}
			return nil, fmt.Errorf("issue token: %w", err)
		}
	}

	token, exp, err := s.issuer.Issue(email)
	if err != nil {
		return nil, err
	}
	return &ports.TokenResult{Token: token, ExpiresAt: exp}, nil
}
