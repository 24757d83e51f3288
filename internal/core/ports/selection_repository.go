package ports

import (
	"context"

	"github.com/sportify/camp-server/internal/core/domain"
)

// SelectionRepository defines persistence operations for pending selections.
type SelectionRepository interface {
	// Create inserts a selection. Returns domain.ErrSelectionExists when one is
	// already outstanding for the same (student, class) pair.
	Create(ctx context.Context, sel *domain.SelectionRequest) (*domain.SelectionRequest, error)
	Exists(ctx context.Context, studentEmail, classID string) (bool, error)
	FindByID(ctx context.Context, id string) (*domain.SelectionRequest, error)
	ListByStudent(ctx context.Context, studentEmail string) ([]*domain.SelectionRequest, error)
	Delete(ctx context.Context, id string) error
}
