package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sportify/camp-server/internal/pkg/metrics"
)

type compensation struct {
	step string
	fn   func(ctx context.Context) error
}

// saga collects compensating actions for a multi-record write that the store
// cannot roll back. A disabled saga records nothing.
type saga struct {
	enabled bool
	steps   []compensation
	log     zerolog.Logger
}

func newSaga(enabled bool, log zerolog.Logger) *saga {
	return &saga{enabled: enabled, log: log}
}

// onFailure registers fn to undo a step that has just completed.
func (s *saga) onFailure(step string, fn func(ctx context.Context) error) {
	if !s.enabled {
		return
	}
	s.steps = append(s.steps, compensation{step: step, fn: fn})
}

// compensate runs the registered actions in reverse order. It keeps going
// after a failed action so that as much as possible is undone.
func (s *saga) compensate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i := len(s.steps) - 1; i >= 0; i-- {
		c := s.steps[i]
		if err := c.fn(ctx); err != nil {
			metrics.CommitCompensationsTotal.WithLabelValues(c.step, "error").Inc()
			s.log.Error().Err(err).Str("step", c.step).Msg("compensation failed")
			continue
		}
		metrics.CommitCompensationsTotal.WithLabelValues(c.step, "ok").Inc()
		s.log.Warn().Str("step", c.step).Msg("compensation applied")
	}
	s.steps = nil
}
