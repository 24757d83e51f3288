package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/pkg/metrics"
)

// TokenTTL is the fixed lifetime of an issued credential.
const TokenTTL = time.Hour

// TokenIssuer mints HS256 bearer credentials. The subject is the claimed
// email; no role is embedded.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

// Issue signs a credential for email. It does not check that email belongs to
// a registered identity.
//
// NumericDate claims carry whole seconds, so the issue instant is rounded up
// to the next second. The returned expiry is exactly the exp claim and is
// never earlier than the call time plus TokenTTL.
func (i *TokenIssuer) Issue(email string) (string, time.Time, error) {
	issued := ceilSecond(i.now().UTC())
	exp := issued.Add(TokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	metrics.TokensIssuedTotal.Inc()
	return signed, exp, nil
}

// AuthGuard verifies bearer credentials produced by TokenIssuer.
type AuthGuard struct {
	secret []byte
	now    func() time.Time
}

func NewAuthGuard(secret string) *AuthGuard {
	return &AuthGuard{secret: []byte(secret), now: time.Now}
}

// Authenticate checks an Authorization header value and returns the subject
// email. Every failure is reported as domain.ErrUnauthenticated.
func (g *AuthGuard) Authenticate(header string) (string, error) {
	if header == "" {
		metrics.AuthRejectionsTotal.WithLabelValues("missing").Inc()
		return "", domain.ErrUnauthenticated
	}

	scheme, raw, ok := strings.Cut(header, " ")
	raw = strings.TrimSpace(raw)
	if !ok || !strings.EqualFold(scheme, "bearer") || raw == "" {
		metrics.AuthRejectionsTotal.WithLabelValues("malformed").Inc()
		return "", domain.ErrUnauthenticated
	}

	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return g.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		// exp itself is still valid; the library only accepts now < exp+leeway.
		jwt.WithLeeway(time.Nanosecond),
		jwt.WithTimeFunc(g.now),
	)
	if err != nil || !tkn.Valid || claims.Subject == "" {
		metrics.AuthRejectionsTotal.WithLabelValues("invalid").Inc()
		return "", domain.ErrUnauthenticated
	}

	return claims.Subject, nil
}

func ceilSecond(t time.Time) time.Time {
	if r := t.Truncate(time.Second); !r.Equal(t) {
		return r.Add(time.Second)
	}
	return t
}
