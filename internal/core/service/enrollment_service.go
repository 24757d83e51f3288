package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
	"github.com/sportify/camp-server/internal/pkg/metrics"
)

// CommitLock serializes concurrent commits of the same selection (Redis).
type CommitLock interface {
	Acquire(ctx context.Context, selectionID string) (token string, acquired bool, err error)
	Release(ctx context.Context, selectionID, token string) error
}

// EnrollmentService turns selections into paid enrollments.
type EnrollmentService struct {
	selections ports.SelectionRepository
	classes    ports.ClassRepository
	payments   ports.PaymentRepository
	gateway    ports.PaymentGateway
	tx         ports.Transactor
	lock       CommitLock
	activity   ports.ActivitySink
	log        zerolog.Logger
}

func NewEnrollmentService(
	selections ports.SelectionRepository,
	classes ports.ClassRepository,
	payments ports.PaymentRepository,
	gateway ports.PaymentGateway,
	tx ports.Transactor,
	lock CommitLock,
	activity ports.ActivitySink,
	log zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		selections: selections,
		classes:    classes,
		payments:   payments,
		gateway:    gateway,
		tx:         tx,
		lock:       lock,
		activity:   activity,
		log:        log,
	}
}

// CreatePaymentIntent asks the gateway to authorize amount and returns the
// client-confirmable handle.
func (s *EnrollmentService) CreatePaymentIntent(ctx context.Context, amount float64) (*domain.PaymentAuthorization, error) {
	if !validPrice(amount) {
		return nil, domain.ErrInvalidAmount
	}
	auth, err := s.gateway.Authorize(ctx, amount)
	if err != nil {
		return nil, declined(err)
	}
	return auth, nil
}

// Commit charges the student for a selection and converts it into an
// enrollment.
//
// A payment record keyed by the selection id makes the call idempotent: a
// replay returns the existing record without charging again, finishing any
// step an interrupted commit left undone. Recording the payment, counting it
// toward the class, and removing the selection run as one unit of work. When
// the store cannot roll back, completed steps are compensated in reverse order
// and the gateway authorization is voided. A successful commit captures the
// authorization.
func (s *EnrollmentService) Commit(ctx context.Context, in ports.CommitInput) (*ports.CommitResult, error) {
	start := time.Now()
	defer func() { metrics.CommitDuration.Observe(time.Since(start).Seconds()) }()

	in.StudentEmail = domain.NormalizeEmail(in.StudentEmail)
	if in.SelectionID == "" || in.StudentEmail == "" || in.ClassID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !validPrice(in.Price) {
		return nil, domain.ErrInvalidAmount
	}

	token, locked, err := s.lock.Acquire(ctx, in.SelectionID)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Str("selection_id", in.SelectionID).Msg("commit lock unavailable, relying on payment index")
	case !locked:
		metrics.EnrollmentCommitsTotal.WithLabelValues("conflict").Inc()
		return nil, domain.ErrCommitInProgress
	default:
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx), in.SelectionID, token); err != nil {
				s.log.Warn().Err(err).Str("selection_id", in.SelectionID).Msg("failed to release commit lock")
			}
		}()
	}

	// 0. Idempotency: a recorded payment means this selection is settled.
	existing, err := s.payments.FindBySelectionID(ctx, in.SelectionID)
	if err == nil {
		return s.replay(ctx, in, existing)
	}
	if !errors.Is(err, domain.ErrPaymentNotFound) {
		return nil, s.failed(fmt.Errorf("commit: find payment: %w", err))
	}

	sel, class, err := s.loadSelection(ctx, in)
	if err != nil {
		return nil, s.failed(err)
	}

	// 1. Authorize. Nothing has been written yet, so a decline is retryable.
	auth, err := s.gateway.Authorize(ctx, in.Price)
	if err != nil {
		metrics.EnrollmentCommitsTotal.WithLabelValues("declined").Inc()
		s.log.Warn().Err(err).Str("selection_id", sel.ID).Float64("amount", in.Price).Msg("payment declined")
		return nil, declined(err)
	}

	record := &domain.PaymentRecord{
		SelectionID:  sel.ID,
		StudentEmail: sel.StudentEmail,
		ClassID:      class.ID,
		ClassName:    class.Name,
		Amount:       in.Price,
		PaymentRef:   auth.Ref,
		CreatedAt:    time.Now().UTC(),
	}

	var (
		committed *domain.PaymentRecord
		enrolled  int
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		sg := newSaga(!s.tx.Atomic(), s.log)

		// 2. Record payment.
		created, err := s.payments.Create(ctx, record)
		if err != nil {
			return fmt.Errorf("record payment: %w", err)
		}
		sg.onFailure("delete_payment", func(ctx context.Context) error {
			return s.payments.Delete(ctx, created.ID)
		})

		// 3. Count the payment toward capacity. Keyed by payment id, so a
		// replay after a crash here can finish the step without double counting.
		n, err := s.classes.ApplyEnrollment(ctx, class.ID, created.ID)
		if err != nil {
			sg.compensate(ctx)
			return fmt.Errorf("apply enrollment: %w", err)
		}
		sg.onFailure("revert_enrollment", func(ctx context.Context) error {
			_, err := s.classes.RevertEnrollment(ctx, class.ID, created.ID)
			return err
		})

		// 4. Retire the selection.
		if err := s.selections.Delete(ctx, sel.ID); err != nil {
			sg.compensate(ctx)
			return fmt.Errorf("retire selection: %w", err)
		}

		committed, enrolled = created, n
		return nil
	})
	if err != nil {
		s.voidAuthorization(ctx, auth.Ref)
		return nil, s.failed(fmt.Errorf("commit: %w", err))
	}

	s.captureAuthorization(ctx, auth.Ref)

	metrics.EnrollmentCommitsTotal.WithLabelValues("committed").Inc()
	s.log.Info().
		Str("selection_id", sel.ID).
		Str("student", sel.StudentEmail).
		Str("class_id", class.ID).
		Int("enrolled", enrolled).
		Msg("enrollment committed")

	s.activity.Enqueue(domain.ActivityEvent{
		Kind:    domain.ActivityEnrollmentCommitted,
		Actor:   sel.StudentEmail,
		Subject: sel.StudentEmail,
		ClassID: class.ID,
		Amount:  in.Price,
		At:      committed.CreatedAt,
	})

	return &ports.CommitResult{Payment: committed, Enrolled: enrolled}, nil
}

// ListPayments returns a student's payment records, newest first.
func (s *EnrollmentService) ListPayments(ctx context.Context, studentEmail string) ([]*domain.PaymentRecord, error) {
	return s.payments.ListByStudent(ctx, domain.NormalizeEmail(studentEmail))
}

func (s *EnrollmentService) loadSelection(ctx context.Context, in ports.CommitInput) (*domain.SelectionRequest, *domain.ClassOffering, error) {
	sel, err := s.selections.FindByID(ctx, in.SelectionID)
	if err != nil {
		return nil, nil, err
	}
	if sel.StudentEmail != in.StudentEmail {
		return nil, nil, domain.ErrForbidden
	}
	if sel.ClassID != in.ClassID || math.Abs(sel.Price-in.Price) > 1e-9 {
		return nil, nil, domain.ErrSelectionMismatch
	}

	class, err := s.classes.FindByID(ctx, sel.ClassID)
	if err != nil {
		return nil, nil, err
	}
	if class.Status != domain.ClassAccepted {
		return nil, nil, domain.ErrClassNotOpen
	}
	if !class.HasCapacity() {
		return nil, nil, domain.ErrClassFull
	}
	return sel, class, nil
}

func (s *EnrollmentService) replay(ctx context.Context, in ports.CommitInput, rec *domain.PaymentRecord) (*ports.CommitResult, error) {
	if rec.StudentEmail != in.StudentEmail {
		return nil, domain.ErrForbidden
	}

	// A selection left behind by an interrupted commit would let the student
	// pay again; remove it.
	if err := s.selections.Delete(ctx, rec.SelectionID); err != nil && !errors.Is(err, domain.ErrSelectionNotFound) {
		s.log.Warn().Err(err).Str("selection_id", rec.SelectionID).Msg("failed to remove settled selection")
	}

	// The commit may have stopped between recording the payment and counting
	// it. Applying again is a no-op once the payment is counted.
	enrolled, err := s.classes.ApplyEnrollment(ctx, rec.ClassID, rec.ID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrClassFull):
		s.log.Error().Err(err).Str("selection_id", rec.SelectionID).Str("class_id", rec.ClassID).
			Msg("paid enrollment could not be counted, class is full")
		if class, ferr := s.classes.FindByID(ctx, rec.ClassID); ferr == nil {
			enrolled = class.Enrolled
		}
	case errors.Is(err, domain.ErrClassNotFound):
		s.log.Warn().Err(err).Str("class_id", rec.ClassID).Msg("class lookup failed on replay")
	default:
		return nil, s.failed(fmt.Errorf("commit: finish enrollment: %w", err))
	}

	metrics.EnrollmentCommitsTotal.WithLabelValues("replayed").Inc()
	s.log.Info().Str("selection_id", rec.SelectionID).Msg("idempotent replay")
	return &ports.CommitResult{Payment: rec, Enrolled: enrolled, AlreadyCommitted: true}, nil
}

func (s *EnrollmentService) voidAuthorization(ctx context.Context, ref string) {
	if err := s.gateway.Cancel(context.WithoutCancel(ctx), ref); err != nil {
		metrics.CommitCompensationsTotal.WithLabelValues("void_authorization", "error").Inc()
		s.log.Error().Err(err).Str("payment_ref", ref).Msg("failed to void authorization")
		return
	}
	metrics.CommitCompensationsTotal.WithLabelValues("void_authorization", "ok").Inc()
}

// captureAuthorization settles the gateway hold once the enrollment is
// durable. A failure is logged only; the gateway expires uncaptured holds.
func (s *EnrollmentService) captureAuthorization(ctx context.Context, ref string) {
	if err := s.gateway.Capture(context.WithoutCancel(ctx), ref); err != nil {
		metrics.PaymentCapturesTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("payment_ref", ref).Msg("failed to capture authorization")
		return
	}
	metrics.PaymentCapturesTotal.WithLabelValues("ok").Inc()
}

func (s *EnrollmentService) failed(err error) error {
	metrics.EnrollmentCommitsTotal.WithLabelValues("failed").Inc()
	return err
}

// declined classifies any gateway failure as a retryable decline.
func declined(err error) error {
	if errors.Is(err, domain.ErrPaymentDeclined) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrPaymentDeclined, err)
}
