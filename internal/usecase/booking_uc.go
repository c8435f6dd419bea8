package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rentalhub/rental-service/internal/domain"
	"github.com/rentalhub/rental-service/internal/platform/logger"
	"go.uber.org/zap"
)

// DecisionMailer notifies a customer of the decision taken on their booking.
type DecisionMailer interface {
	SendBookingDecisionEmail(toEmail string, booking *domain.Booking) error
}

// BookingInput carries the client-supplied fields for a new booking.
type BookingInput struct {
	ListingID     string
	CustomerEmail string
	FromDate      time.Time
	ToDate        time.Time
}

// BookingUsecase implements booking creation, listing and the admin status
// decision.
type BookingUsecase struct {
	bookings domain.BookingRepository
	listings domain.ListingRepository
	mailer   DecisionMailer
	events   EventPublisher
	logger   *logger.Logger
}

// NewBookingUsecase creates a BookingUsecase. mailer and events are
// optional; nil disables them.
func NewBookingUsecase(
	bookings domain.BookingRepository,
	listings domain.ListingRepository,
	mailer DecisionMailer,
	events EventPublisher,
	log *logger.Logger,
) *BookingUsecase {
	return &BookingUsecase{
		bookings: bookings,
		listings: listings,
		mailer:   mailer,
		events:   events,
		logger:   log.Named("BookingUsecase"),
	}
}

// CreateBooking validates the referenced listing, prices the requested date
// range and stores the booking as PENDING.
func (uc *BookingUsecase) CreateBooking(ctx context.Context, input BookingInput) (*domain.Booking, error) {
	uc.logger.Info("Creating booking", zap.String("listing_id", input.ListingID))

	if input.ListingID == "" {
		return nil, fmt.Errorf("%w: listing id is required", domain.ErrInvalidInput)
	}
	if !input.ToDate.After(input.FromDate) {
		return nil, fmt.Errorf("%w: to date must be after from date", domain.ErrInvalidInput)
	}

	listing, err := uc.listings.FindByID(ctx, input.ListingID)
	if err != nil {
		uc.logger.Warn("Failed to resolve listing for booking", zap.String("listing_id", input.ListingID), zap.Error(err))
		return nil, err
	}

	days := int64(input.ToDate.Sub(input.FromDate) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		ListingID:     listing.ID,
		CustomerEmail: input.CustomerEmail,
		FromDate:      input.FromDate,
		ToDate:        input.ToDate,
		Days:          days,
		Price:         days * listing.Price,
		Status:        domain.BookingStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.bookings.Create(ctx, booking); err != nil {
		uc.logger.Error("Failed to create booking in repository", zap.Error(err), zap.String("listing_id", input.ListingID))
		return nil, err
	}

	uc.publish(ctx, "booking.created", bookingEvent(booking))

	uc.logger.Info("Booking created", zap.String("booking_id", booking.ID), zap.Int64("days", days))
	return booking, nil
}

// ListBookings returns all bookings.
func (uc *BookingUsecase) ListBookings(ctx context.Context) ([]*domain.Booking, error) {
	bookings, err := uc.bookings.FindAll(ctx)
	if err != nil {
		uc.logger.Error("Failed to list bookings", zap.Error(err))
		return nil, err
	}
	return bookings, nil
}

// ChangeStatus applies an admin decision to a booking. Only the literal
// "Approve" approves; every other value, blank input included, rejects.
func (uc *BookingUsecase) ChangeStatus(ctx context.Context, bookingID, decision string) (*domain.Booking, error) {
	uc.logger.Info("Changing booking status", zap.String("booking_id", bookingID), zap.String("decision", decision))

	booking, err := uc.bookings.FindByID(ctx, bookingID)
	if err != nil {
		uc.logger.Warn("Failed to find booking for status change", zap.String("booking_id", bookingID), zap.Error(err))
		return nil, err
	}

	if decision == domain.DecisionApprove {
		booking.Status = domain.BookingStatusApproved
	} else {
		booking.Status = domain.BookingStatusRejected
	}
	booking.UpdatedAt = time.Now().UTC()

	if err := uc.bookings.Update(ctx, booking); err != nil {
		uc.logger.Error("Failed to update booking status", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, err
	}

	uc.publish(ctx, "booking.status_changed", bookingEvent(booking))

	if uc.mailer != nil && booking.CustomerEmail != "" {
		if err := uc.mailer.SendBookingDecisionEmail(booking.CustomerEmail, booking); err != nil {
			uc.logger.Warn("Failed to send booking decision email",
				zap.String("booking_id", booking.ID), zap.Error(err))
		}
	}

	uc.logger.Info("Booking status changed",
		zap.String("booking_id", booking.ID), zap.String("status", string(booking.Status)))
	return booking, nil
}

func (uc *BookingUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func bookingEvent(b *domain.Booking) map[string]interface{} {
	return map[string]interface{}{
		"booking_id": b.ID,
		"listing_id": b.ListingID,
		"status":     string(b.Status),
		"days":       b.Days,
		"price":      b.Price,
		"updated_at": b.UpdatedAt.Format(time.RFC3339Nano),
	}
}
