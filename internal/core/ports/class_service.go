package ports

import (
	"context"

	"github.com/sportify/camp-server/internal/core/domain"
)

// CreateClassInput carries a new class proposal.
type CreateClassInput struct {
	Name            string
	ImageURL        string
	InstructorName  string
	InstructorEmail string
	Price           float64
	Seats           int
}

// ClassService defines class offering use cases.
type ClassService interface {
	Create(ctx context.Context, input CreateClassInput) (*domain.ClassOffering, error)
	Get(ctx context.Context, id string) (*domain.ClassOffering, error)
	ListAll(ctx context.Context) ([]*domain.ClassOffering, error)
	ListApproved(ctx context.Context) ([]*domain.ClassOffering, error)
	ListByInstructor(ctx context.Context, email string) ([]*domain.ClassOffering, error)
	Update(ctx context.Context, id, instructorEmail string, patch ClassPatch) (*domain.ClassOffering, error)
	Approve(ctx context.Context, adminEmail, id string) (*domain.ClassOffering, error)
	Deny(ctx context.Context, adminEmail, id, feedback string) (*domain.ClassOffering, error)
}
