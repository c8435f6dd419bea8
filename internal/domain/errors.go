package domain

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("listing was modified concurrently")
	ErrStorage         = errors.New("image storage failure")
	ErrRepository      = errors.New("repository failure")
)
