package ports

import (
	"context"

	"github.com/sportify/camp-server/internal/core/domain"
)

// ClassFilter narrows ListClasses. Zero values mean "no filter".
type ClassFilter struct {
	Status          domain.ClassStatus
	InstructorEmail string
}

// ClassPatch carries the instructor-editable fields of a pending class.
type ClassPatch struct {
	Name     string
	ImageURL string
	Price    float64
	Seats    int
}

// ClassRepository defines persistence operations for class offerings.
type ClassRepository interface {
	Create(ctx context.Context, class *domain.ClassOffering) (*domain.ClassOffering, error)
	FindByID(ctx context.Context, id string) (*domain.ClassOffering, error)
	List(ctx context.Context, filter ClassFilter) ([]*domain.ClassOffering, error)
	// UpdatePending applies patch only while the class is pending and owned by
	// instructorEmail.
	UpdatePending(ctx context.Context, id, instructorEmail string, patch ClassPatch) (*domain.ClassOffering, error)
	// Review moves a pending class to status in one conditional write.
	// Returns domain.ErrInvalidTransition when the class is no longer pending.
	Review(ctx context.Context, id string, status domain.ClassStatus, feedback string) (*domain.ClassOffering, error)
	// ApplyEnrollment atomically counts paymentID toward the enrolled counter
	// and returns the new value. It respects seats (domain.ErrClassFull) and is
	// a no-op returning the current value when paymentID is already counted.
	ApplyEnrollment(ctx context.Context, id, paymentID string) (int, error)
	// RevertEnrollment removes paymentID from the counter, if it was counted.
	RevertEnrollment(ctx context.Context, id, paymentID string) (int, error)
}
