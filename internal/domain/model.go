package domain

import "time"

// Listing is a catalog record for a rental vehicle. ImageID references the
// stored image file owned by this listing, or is empty when no image was
// uploaded. Version is the optimistic-concurrency token checked by the
// repository on every update.
type Listing struct {
	ID           string
	Name         string
	Brand        string
	Color        string
	Price        int64
	Year         int
	Type         string
	Description  string
	Transmission string
	ImageID      string
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "PENDING"
	BookingStatusApproved BookingStatus = "APPROVED"
	BookingStatusRejected BookingStatus = "REJECTED"
)

// DecisionApprove is the only decision value that approves a booking.
// Every other value, including blank input, rejects it.
const DecisionApprove = "Approve"

// Booking is a reservation of a listing for a date range. Status transitions
// only from PENDING to APPROVED or REJECTED via an explicit admin decision.
type Booking struct {
	ID            string
	ListingID     string
	CustomerEmail string
	FromDate      time.Time
	ToDate        time.Time
	Days          int64
	Price         int64
	Status        BookingStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
