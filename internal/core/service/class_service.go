package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sportify/camp-server/internal/core/domain"
	"github.com/sportify/camp-server/internal/core/ports"
	"github.com/sportify/camp-server/internal/pkg/metrics"
)

// ClassService implements class proposal and review.
type ClassService struct {
	repo     ports.ClassRepository
	activity ports.ActivitySink
	log      zerolog.Logger
}

func NewClassService(repo ports.ClassRepository, activity ports.ActivitySink, log zerolog.Logger) *ClassService {
	return &ClassService{repo: repo, activity: activity, log: log}
}

// Create stores a new pending class proposed by an instructor.
func (s *ClassService) Create(ctx context.Context, in ports.CreateClassInput) (*domain.ClassOffering, error) {
	if strings.TrimSpace(in.Name) == "" || !validPrice(in.Price) || in.Seats < 0 {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.ClassOffering{
		Name:            strings.TrimSpace(in.Name),
		ImageURL:        in.ImageURL,
		InstructorName:  in.InstructorName,
		InstructorEmail: domain.NormalizeEmail(in.InstructorEmail),
		Price:           in.Price,
		Seats:           in.Seats,
		Status:          domain.ClassPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create class")
		return nil, err
	}

	s.log.Info().Str("class_id", created.ID).Str("instructor", created.InstructorEmail).Msg("class proposed")
	return created, nil
}

func (s *ClassService) Get(ctx context.Context, id string) (*domain.ClassOffering, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ClassService) ListAll(ctx context.Context) ([]*domain.ClassOffering, error) {
	return s.repo.List(ctx, ports.ClassFilter{})
}

func (s *ClassService) ListApproved(ctx context.Context) ([]*domain.ClassOffering, error) {
	return s.repo.List(ctx, ports.ClassFilter{Status: domain.ClassAccepted})
}

func (s *ClassService) ListByInstructor(ctx context.Context, email string) ([]*domain.ClassOffering, error) {
	return s.repo.List(ctx, ports.ClassFilter{InstructorEmail: domain.NormalizeEmail(email)})
}

// Update edits a class. Only the owning instructor may edit, and only while
// the class is still pending review.
func (s *ClassService) Update(ctx context.Context, id, instructorEmail string, patch ports.ClassPatch) (*domain.ClassOffering, error) {
	if strings.TrimSpace(patch.Name) == "" || !validPrice(patch.Price) || patch.Seats < 0 {
		return nil, domain.ErrInvalidInput
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.InstructorEmail != domain.NormalizeEmail(instructorEmail) {
		return nil, domain.ErrForbidden
	}
	if current.Status != domain.ClassPending {
		return nil, domain.ErrInvalidTransition
	}

	return s.repo.UpdatePending(ctx, id, current.InstructorEmail, patch)
}

// Approve moves a pending class to accepted.
func (s *ClassService) Approve(ctx context.Context, adminEmail, id string) (*domain.ClassOffering, error) {
	return s.review(ctx, adminEmail, id, domain.ClassAccepted, "")
}

// Deny moves a pending class to denied with optional feedback. A class that
// was already reviewed is rejected with domain.ErrInvalidTransition.
func (s *ClassService) Deny(ctx context.Context, adminEmail, id, feedback string) (*domain.ClassOffering, error) {
	return s.review(ctx, adminEmail, id, domain.ClassDenied, strings.TrimSpace(feedback))
}

func (s *ClassService) review(ctx context.Context, adminEmail, id string, status domain.ClassStatus, feedback string) (*domain.ClassOffering, error) {
	class, err := s.repo.Review(ctx, id, status, feedback)
	if err != nil {
		return nil, err
	}

	metrics.ClassReviewsTotal.WithLabelValues(string(status)).Inc()
	s.log.Info().Str("class_id", id).Str("status", string(status)).Str("admin", adminEmail).Msg("class reviewed")

	kind := domain.ActivityClassApproved
	if status == domain.ClassDenied {
		kind = domain.ActivityClassDenied
	}
	s.activity.Enqueue(domain.ActivityEvent{
		Kind:    kind,
		Actor:   adminEmail,
		Subject: class.InstructorEmail,
		ClassID: class.ID,
		Detail:  feedback,
		At:      time.Now().UTC(),
	})
	return class, nil
}

// validPrice reports whether p is a finite, non-negative amount.
func validPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p >= 0
}
