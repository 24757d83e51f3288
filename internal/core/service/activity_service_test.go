package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sportify/camp-server/internal/core/domain"
)

type recordingActivityRepo struct {
	inserted []domain.ActivityEvent
	err      error
}

func (r *recordingActivityRepo) Insert(_ context.Context, e *domain.ActivityEvent) error {
	if r.err != nil {
		return r.err
	}
	r.inserted = append(r.inserted, *e)
	return nil
}

func TestActivityService_Process(t *testing.T) {
	repo := &recordingActivityRepo{}
	svc := NewActivityService(repo, discardLogger)

	ev := domain.ActivityEvent{
		Kind:    domain.ActivityClassApproved,
		Actor:   "root@camp.io",
		Subject: "c1",
		ClassID: "c1",
		At:      time.Now(),
	}
	if err := svc.Process(context.Background(), ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.inserted) != 1 || repo.inserted[0].Kind != domain.ActivityClassApproved {
		t.Fatalf("inserted = %+v", repo.inserted)
	}
}

func TestActivityService_ProcessWrapsStoreError(t *testing.T) {
	repo := &recordingActivityRepo{err: errStore}
	svc := NewActivityService(repo, discardLogger)

	err := svc.Process(context.Background(), domain.ActivityEvent{Kind: domain.ActivityRoleChanged})
	if !errors.Is(err, errStore) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}
