package domain

import "errors"

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrBookingConflict is returned by the commit path when a concurrent
	// write claimed an overlapping booking after validation passed.
	ErrBookingConflict = errors.New("booking conflict")
)
