// Package payment contains PaymentGateway adapters.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sportify/camp-server/internal/core/domain"
)

// DefaultHoldTTL bounds how long an uncaptured authorization is kept.
const DefaultHoldTTL = 30 * time.Minute

// ErrAmountAboveLimit is returned when an authorization exceeds the
// configured ceiling.
var ErrAmountAboveLimit = errors.New("amount above authorization limit")

// ErrUnknownAuthorization is returned by Capture and Cancel for refs that were
// never issued, are already settled, or have expired.
var ErrUnknownAuthorization = errors.New("unknown authorization")

type Config struct {
	Currency  string
	MaxAmount float64       // 0 = no ceiling
	HoldTTL   time.Duration // 0 = DefaultHoldTTL
}

type hold struct {
	amount  float64
	expires time.Time
}

// LocalGateway authorizes payments in process. It issues intent-style handles
// (pi_<uuid> plus a client secret) so the HTTP contract matches a hosted
// provider. A hold lives until it is captured, cancelled, or expires.
type LocalGateway struct {
	cfg Config
	now func() time.Time

	mu     sync.Mutex
	active map[string]hold
}

func NewLocalGateway(cfg Config) *LocalGateway {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.HoldTTL <= 0 {
		cfg.HoldTTL = DefaultHoldTTL
	}
	return &LocalGateway{cfg: cfg, now: time.Now, active: make(map[string]hold)}
}

func (g *LocalGateway) Authorize(ctx context.Context, amount float64) (*domain.PaymentAuthorization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, domain.ErrInvalidAmount
	}
	if g.cfg.MaxAmount > 0 && amount > g.cfg.MaxAmount {
		return nil, fmt.Errorf("%w: %.2f > %.2f", ErrAmountAboveLimit, amount, g.cfg.MaxAmount)
	}

	id := uuid.New()
	ref := "pi_" + strings.ReplaceAll(id.String(), "-", "")

	g.mu.Lock()
	now := g.now()
	g.pruneLocked(now)
	g.active[ref] = hold{amount: amount, expires: now.Add(g.cfg.HoldTTL)}
	g.mu.Unlock()

	return &domain.PaymentAuthorization{
		Ref:          ref,
		ClientSecret: ref + "_secret_" + uuid.NewString()[:8],
		Amount:       amount,
		Currency:     g.cfg.Currency,
	}, nil
}

// Capture settles a live hold and forgets it.
func (g *LocalGateway) Capture(_ context.Context, ref string) error {
	return g.release(ref)
}

func (g *LocalGateway) Cancel(_ context.Context, ref string) error {
	return g.release(ref)
}

// Outstanding returns the number of live holds.
func (g *LocalGateway) Outstanding() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pruneLocked(g.now())
	return len(g.active)
}

func (g *LocalGateway) release(ref string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	h, ok := g.active[ref]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAuthorization, ref)
	}
	delete(g.active, ref)
	if g.now().After(h.expires) {
		return fmt.Errorf("%w: %s expired", ErrUnknownAuthorization, ref)
	}
	return nil
}

func (g *LocalGateway) pruneLocked(now time.Time) {
	for ref, h := range g.active {
		if now.After(h.expires) {
			delete(g.active, ref)
		}
	}
}
