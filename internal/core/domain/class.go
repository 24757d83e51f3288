package domain

import (
	"slices"
	"time"
)

// ClassStatus represents the review state of a class offering.
type ClassStatus string

const (
	ClassPending  ClassStatus = "pending"
	ClassAccepted ClassStatus = "accepted"
	ClassDenied   ClassStatus = "denied"
)

// validReviews defines the allowed review transitions. Accepted and denied
// are terminal.
var validReviews = map[ClassStatus][]ClassStatus{
	ClassPending: {ClassAccepted, ClassDenied},
}

// CanTransitionTo reports whether a review may move a class from s to next.
func (s ClassStatus) CanTransitionTo(next ClassStatus) bool {
	for _, allowed := range validReviews[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ClassOffering is a camp class proposed by an instructor.
type ClassOffering struct {
	ID              string      `json:"id" bson:"_id,omitempty"`
	Name            string      `json:"name" bson:"name"`
	ImageURL        string      `json:"image_url,omitempty" bson:"image_url,omitempty"`
	InstructorName  string      `json:"instructor_name" bson:"instructor_name"`
	InstructorEmail string      `json:"instructor_email" bson:"instructor_email"`
	Price           float64     `json:"price" bson:"price"`
	Seats           int         `json:"seats" bson:"seats"` // 0 = unlimited
	Status          ClassStatus `json:"status" bson:"status"`
	Feedback        string      `json:"feedback,omitempty" bson:"feedback,omitempty"`
	Enrolled        int         `json:"enrolled" bson:"enrolled"`
	EnrollmentIDs   []string    `json:"-" bson:"enrollment_ids,omitempty"` // payments counted in Enrolled
	CreatedAt       time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" bson:"updated_at"`
}

// HasEnrollment reports whether paymentID is already counted in Enrolled.
func (c *ClassOffering) HasEnrollment(paymentID string) bool {
	return slices.Contains(c.EnrollmentIDs, paymentID)
}

// HasCapacity reports whether one more student fits.
func (c *ClassOffering) HasCapacity() bool {
	return c.Seats <= 0 || c.Enrolled < c.Seats
}
