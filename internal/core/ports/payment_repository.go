package ports

import (
	"context"

	"github.com/sportify/camp-server/internal/core/domain"
)

// PaymentRepository defines persistence operations for payment records.
type PaymentRepository interface {
	// Create inserts a record. Returns domain.ErrCommitInProgress when a record
	// for the same selection already exists.
	Create(ctx context.Context, rec *domain.PaymentRecord) (*domain.PaymentRecord, error)
	FindBySelectionID(ctx context.Context, selectionID string) (*domain.PaymentRecord, error)
	ListByStudent(ctx context.Context, studentEmail string) ([]*domain.PaymentRecord, error)
	// ExistsForClass reports whether the student already paid for the class.
	ExistsForClass(ctx context.Context, studentEmail, classID string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// PaymentGateway authorizes amounts with the external payment provider.
type PaymentGateway interface {
	Authorize(ctx context.Context, amount float64) (*domain.PaymentAuthorization, error)
	// Capture settles an authorization once the enrollment is recorded.
	Capture(ctx context.Context, ref string) error
	// Cancel voids an authorization that will not be captured.
	Cancel(ctx context.Context, ref string) error
}

// Transactor runs a unit of work against the store.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	// Atomic reports whether a failed unit of work is rolled back by the
	// store. When false, callers must compensate themselves.
	Atomic() bool
}
