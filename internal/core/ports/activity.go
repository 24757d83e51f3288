package ports

import (
	"context"

	"github.com/sportify/camp-server/internal/core/domain"
)

// ActivityRepository persists audit trail entries.
type ActivityRepository interface {
	Insert(ctx context.Context, event *domain.ActivityEvent) error
}

// ActivityService processes a single audit event.
type ActivityService interface {
	Process(ctx context.Context, event domain.ActivityEvent) error
}

// ActivitySink accepts audit events for asynchronous processing.
type ActivitySink interface {
	Enqueue(event domain.ActivityEvent)
}
