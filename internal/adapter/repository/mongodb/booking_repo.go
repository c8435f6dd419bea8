package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rentalhub/rental-service/internal/domain"
	"github.com/rentalhub/rental-service/internal/platform/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const bookingCollectionName = "bookings"

// BookingRepository implements domain.BookingRepository using MongoDB.
type BookingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewBookingRepository(db *mongo.Database, log *logger.Logger) (*BookingRepository, error) {
	collection := db.Collection(bookingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Error("Failed to create indexes for bookings collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for bookings collection")
	}

	return &BookingRepository{
		collection: collection,
		logger:     log.Named("BookingRepository"),
	}, nil
}

func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	doc, err := fromDomainBooking(booking)
	if err != nil {
		r.logger.Error("Failed to convert booking to document for Create", zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}

	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert booking into DB", zap.Error(err))
		return fmt.Errorf("%w: insert booking: %v", domain.ErrRepository, err)
	}

	booking.ID = doc.ID.Hex()
	booking.CreatedAt = doc.CreatedAt
	booking.UpdatedAt = doc.UpdatedAt
	r.logger.Info("Booking created in DB", zap.String("booking_id", booking.ID), zap.String("listing_id", booking.ListingID))
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	doc, err := fromDomainBooking(booking)
	if err != nil {
		r.logger.Warn("Invalid booking id for Update", zap.String("booking_id", booking.ID), zap.Error(err))
		return fmt.Errorf("%w: id %q", domain.ErrBookingNotFound, booking.ID)
	}
	doc.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"status":     doc.Status,
		"updated_at": doc.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if err != nil {
		r.logger.Error("Failed to update booking in DB", zap.Error(err), zap.String("booking_id", booking.ID))
		return fmt.Errorf("%w: update booking %s: %v", domain.ErrRepository, booking.ID, err)
	}
	if result.MatchedCount == 0 {
		r.logger.Warn("Booking not found for update", zap.String("booking_id", booking.ID))
		return fmt.Errorf("%w: id %q", domain.ErrBookingNotFound, booking.ID)
	}

	booking.UpdatedAt = doc.UpdatedAt
	r.logger.Info("Booking updated in DB", zap.String("booking_id", booking.ID), zap.String("status", string(booking.Status)))
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: id %q", domain.ErrBookingNotFound, id)
	}

	var doc bookingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: id %q", domain.ErrBookingNotFound, id)
		}
		r.logger.Error("Failed to get booking by ID from DB", zap.Error(err), zap.String("booking_id", id))
		return nil, fmt.Errorf("%w: find booking %s: %v", domain.ErrRepository, id, err)
	}
	return doc.toDomain(), nil
}

func (r *BookingRepository) FindAll(ctx context.Context) ([]*domain.Booking, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		r.logger.Error("Failed to list bookings from DB", zap.Error(err))
		return nil, fmt.Errorf("%w: list bookings: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*domain.Booking, 0)
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Error("Failed to decode booking document", zap.Error(err))
			return nil, fmt.Errorf("%w: decode booking: %v", domain.ErrRepository, err)
		}
		bookings = append(bookings, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: booking cursor: %v", domain.ErrRepository, err)
	}
	return bookings, nil
}
