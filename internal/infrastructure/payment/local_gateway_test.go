package payment

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sportify/camp-server/internal/core/domain"
)

func TestLocalGateway_Authorize(t *testing.T) {
	g := NewLocalGateway(Config{Currency: "eur", MaxAmount: 100})

	auth, err := g.Authorize(context.Background(), 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(auth.Ref, "pi_") {
		t.Errorf("ref %q should start with pi_", auth.Ref)
	}
	if !strings.HasPrefix(auth.ClientSecret, auth.Ref+"_secret_") {
		t.Errorf("client secret %q not derived from ref", auth.ClientSecret)
	}
	if auth.Amount != 50 || auth.Currency != "eur" {
		t.Errorf("got %+v", auth)
	}
	if g.Outstanding() != 1 {
		t.Errorf("Outstanding = %d, want 1", g.Outstanding())
	}
}

func TestLocalGateway_UniqueRefs(t *testing.T) {
	g := NewLocalGateway(Config{})
	a, _ := g.Authorize(context.Background(), 1)
	b, _ := g.Authorize(context.Background(), 1)
	if a.Ref == b.Ref {
		t.Error("two authorizations share a ref")
	}
	if a.Currency != "usd" {
		t.Errorf("default currency = %q, want usd", a.Currency)
	}
}

func TestLocalGateway_Rejections(t *testing.T) {
	g := NewLocalGateway(Config{MaxAmount: 100})

	if _, err := g.Authorize(context.Background(), 100.01); !errors.Is(err, ErrAmountAboveLimit) {
		t.Errorf("got %v, want ErrAmountAboveLimit", err)
	}
	if _, err := g.Authorize(context.Background(), -1); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("got %v, want ErrInvalidAmount", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := g.Authorize(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestLocalGateway_Cancel(t *testing.T) {
	g := NewLocalGateway(Config{})
	auth, _ := g.Authorize(context.Background(), 10)

	if err := g.Cancel(context.Background(), auth.Ref); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", g.Outstanding())
	}
	if err := g.Cancel(context.Background(), auth.Ref); !errors.Is(err, ErrUnknownAuthorization) {
		t.Errorf("second cancel: got %v, want ErrUnknownAuthorization", err)
	}
}

func TestLocalGateway_Capture(t *testing.T) {
	g := NewLocalGateway(Config{})
	auth, _ := g.Authorize(context.Background(), 10)

	if err := g.Capture(context.Background(), auth.Ref); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", g.Outstanding())
	}
	if err := g.Capture(context.Background(), auth.Ref); !errors.Is(err, ErrUnknownAuthorization) {
		t.Errorf("second capture: got %v, want ErrUnknownAuthorization", err)
	}
	if err := g.Cancel(context.Background(), auth.Ref); !errors.Is(err, ErrUnknownAuthorization) {
		t.Errorf("cancel after capture: got %v, want ErrUnknownAuthorization", err)
	}
}

func TestLocalGateway_HoldsExpire(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	g := NewLocalGateway(Config{HoldTTL: time.Minute})
	g.now = func() time.Time { return now }

	stale, _ := g.Authorize(context.Background(), 10)
	for i := 0; i < 99; i++ {
		if _, err := g.Authorize(context.Background(), 10); err != nil {
			t.Fatalf("authorize: %v", err)
		}
	}
	if g.Outstanding() != 100 {
		t.Fatalf("Outstanding = %d, want 100", g.Outstanding())
	}

	now = now.Add(time.Minute + time.Second)
	fresh, _ := g.Authorize(context.Background(), 10)
	if g.Outstanding() != 1 {
		t.Errorf("Outstanding = %d, want 1 after expiry", g.Outstanding())
	}
	if err := g.Capture(context.Background(), stale.Ref); !errors.Is(err, ErrUnknownAuthorization) {
		t.Errorf("capture of expired hold: got %v, want ErrUnknownAuthorization", err)
	}
	if err := g.Capture(context.Background(), fresh.Ref); err != nil {
		t.Errorf("capture of live hold: %v", err)
	}
}

func TestLocalGateway_DefaultHoldTTL(t *testing.T) {
	if g := NewLocalGateway(Config{}); g.cfg.HoldTTL != DefaultHoldTTL {
		t.Errorf("HoldTTL = %v, want %v", g.cfg.HoldTTL, DefaultHoldTTL)
	}
}
