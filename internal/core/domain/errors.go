package domain

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidInput    = errors.New("invalid input")

	ErrIdentityExists   = errors.New("identity already exists")
	ErrIdentityNotFound = errors.New("identity not found")

	ErrClassNotFound     = errors.New("class not found")
	ErrClassNotOpen      = errors.New("class is not open for enrollment")
	ErrClassFull         = errors.New("class is full")
	ErrInvalidTransition = errors.New("invalid class status transition")

	ErrSelectionExists   = errors.New("class already selected")
	ErrSelectionNotFound = errors.New("selection not found")
	ErrSelectionMismatch = errors.New("selection does not match request")
	ErrAlreadyEnrolled   = errors.New("already enrolled in class")

	ErrInvalidAmount    = errors.New("invalid payment amount")
	ErrPaymentDeclined  = errors.New("payment declined")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrCommitInProgress = errors.New("enrollment commit already in progress")
)
