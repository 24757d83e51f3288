package ports

import (
	"context"

	"github.com/sportify/camp-server/internal/core/domain"
)

// SelectionService manages pending class selections.
type SelectionService interface {
	Select(ctx context.Context, studentEmail, classID string) (*domain.SelectionRequest, error)
	ListByStudent(ctx context.Context, studentEmail string) ([]*domain.SelectionRequest, error)
	Cancel(ctx context.Context, studentEmail, selectionID string) error
}

// CommitInput carries everything needed to turn a selection into an
// enrollment.
type CommitInput struct {
	SelectionID  string
	StudentEmail string
	ClassID      string
	Price        float64
}

// CommitResult is returned by a successful commit.
type CommitResult struct {
	Payment  *domain.PaymentRecord
	Enrolled int
	// AlreadyCommitted is true when a payment for the selection already
	// existed and nothing was charged.
	AlreadyCommitted bool
}

// EnrollmentService defines the payment and commit use cases.
type EnrollmentService interface {
	CreatePaymentIntent(ctx context.Context, amount float64) (*domain.PaymentAuthorization, error)
	Commit(ctx context.Context, input CommitInput) (*CommitResult, error)
	ListPayments(ctx context.Context, studentEmail string) ([]*domain.PaymentRecord, error)
}
