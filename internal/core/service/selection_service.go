package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
)

// SelectionService manages students' pending class selections.
type SelectionService struct {
	selections ports.SelectionRepository
	classes    ports.ClassRepository
	payments   ports.PaymentRepository
	log        zerolog.Logger
}

func NewSelectionService(
	selections ports.SelectionRepository,
	classes ports.ClassRepository,
	payments ports.PaymentRepository,
	log zerolog.Logger,
) *SelectionService {
	return &SelectionService{selections: selections, classes: classes, payments: payments, log: log}
}

// Select records a tentative pick of an accepted class. At most one selection
// may be outstanding per (student, class) pair, and a student who already paid
// for the class cannot select it again.
func (s *SelectionService) Select(ctx context.Context, studentEmail, classID string) (*domain.SelectionRequest, error) {
	studentEmail = domain.NormalizeEmail(studentEmail)
	if studentEmail == "" || classID == "" {
		return nil, domain.ErrInvalidInput
	}

	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if class.Status != domain.ClassAccepted {
		return nil, domain.ErrClassNotOpen
	}
	if !class.HasCapacity() {
		return nil, domain.ErrClassFull
	}

	exists, err := s.selections.Exists(ctx, studentEmail, class.ID)
	if err != nil {
		return nil, fmt.Errorf("select class: %w", err)
	}
	if exists {
		return nil, domain.ErrSelectionExists
	}

	paid, err := s.payments.ExistsForClass(ctx, studentEmail, class.ID)
	if err != nil {
		return nil, fmt.Errorf("select class: %w", err)
	}
	if paid {
		return nil, domain.ErrAlreadyEnrolled
	}

	sel, err := s.selections.Create(ctx, &domain.SelectionRequest{
		StudentEmail: studentEmail,
		ClassID:      class.ID,
		ClassName:    class.Name,
		Price:        class.Price,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("selection_id", sel.ID).Str("student", studentEmail).Str("class_id", class.ID).Msg("class selected")
	return sel, nil
}

func (s *SelectionService) ListByStudent(ctx context.Context, studentEmail string) ([]*domain.SelectionRequest, error) {
	return s.selections.ListByStudent(ctx, domain.NormalizeEmail(studentEmail))
}

// Cancel removes a selection owned by studentEmail.
func (s *SelectionService) Cancel(ctx context.Context, studentEmail, selectionID string) error {
	sel, err := s.selections.FindByID(ctx, selectionID)
	if err != nil {
		return err
	}
	if sel.StudentEmail != domain.NormalizeEmail(studentEmail) {
		return domain.ErrForbidden
	}
	if err := s.selections.Delete(ctx, sel.ID); err != nil {
		return err
	}

	s.log.Info().Str("selection_id", sel.ID).Str("student", sel.StudentEmail).Msg("selection cancelled")
	return nil
}
