package domain

import "time"

// SelectionRequest is a student's tentative pick of a class, pending payment.
type SelectionRequest struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	StudentEmail string    `json:"student_email" bson:"student_email"`
	ClassID      string    `json:"class_id" bson:"class_id"`
	ClassName    string    `json:"class_name" bson:"class_name"`
	Price        float64   `json:"price" bson:"price"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// PaymentRecord is the proof of a committed enrollment. SelectionID is the
// idempotency key: at most one record exists per selection.
type PaymentRecord struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	SelectionID  string    `json:"selection_id" bson:"selection_id"`
	StudentEmail string    `json:"student_email" bson:"student_email"`
	ClassID      string    `json:"class_id" bson:"class_id"`
	ClassName    string    `json:"class_name" bson:"class_name"`
	Amount       float64   `json:"amount" bson:"amount"`
	PaymentRef   string    `json:"payment_ref" bson:"payment_ref"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// PaymentAuthorization is the gateway's answer to an authorization request.
type PaymentAuthorization struct {
	Ref          string
	ClientSecret string
	Amount       float64
	Currency     string
}
