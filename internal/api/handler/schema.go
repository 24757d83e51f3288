package handler

import (
	"time"

	"github.com/sportify/camp-server/internal/core/domain"
)

// --- Auth / users ---

type tokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type registerRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photo_url" validate:"omitempty,url"`
}

type roleResponse struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// --- Classes ---

type createClassRequest struct {
	Name           string  `json:"name"            validate:"required"`
	ImageURL       string  `json:"image_url"       validate:"omitempty,url"`
	InstructorName string  `json:"instructor_name"`
	Price          float64 `json:"price"           validate:"min=0"`
	Seats          int     `json:"seats"           validate:"min=0"`
}

type updateClassRequest struct {
	Name     string  `json:"name"      validate:"required"`
	ImageURL string  `json:"image_url" validate:"omitempty,url"`
	Price    float64 `json:"price"     validate:"min=0"`
	Seats    int     `json:"seats"     validate:"min=0"`
}

type denyRequest struct {
	Feedback string `json:"feedback" validate:"required"`
}

// --- Enrollment ---

type selectRequest struct {
	ClassID string `json:"class_id" validate:"required"`
}

type paymentIntentRequest struct {
	Price float64 `json:"price" validate:"min=0"`
}

type paymentIntentResponse struct {
	ClientSecret string  `json:"client_secret"`
	PaymentRef   string  `json:"payment_ref"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

type commitRequest struct {
	SelectionID string  `json:"selection_id" validate:"required"`
	ClassID     string  `json:"class_id"     validate:"required"`
	Price       float64 `json:"price"        validate:"min=0"`
}

type commitResponse struct {
	Payment          *domain.PaymentRecord `json:"payment"`
	Enrolled         int                   `json:"enrolled"`
	AlreadyCommitted bool                  `json:"already_committed"`
}

type messageResponse struct {
	Message string `json:"message"`
}
