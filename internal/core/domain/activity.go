package domain

import "time"

// ActivityKind names an audited state change.
type ActivityKind string

const (
	ActivityEnrollmentCommitted ActivityKind = "enrollment_committed"
	ActivityClassApproved       ActivityKind = "class_approved"
	ActivityClassDenied         ActivityKind = "class_denied"
	ActivityRoleChanged         ActivityKind = "role_changed"
)

// ActivityEvent is one entry of the audit trail.
type ActivityEvent struct {
	Kind    ActivityKind
	Actor   string // email of whoever caused the change
	Subject string // affected identity email or class id
	ClassID string
	Amount  float64
	Detail  string
	At      time.Time
}
