package mongodb

import (
	"time"

	"github.com/rentalhub/rental-service/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type listingDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Brand        string             `bson:"brand"`
	Color        string             `bson:"color"`
	Price        int64              `bson:"price"`
	Year         int                `bson:"year"`
	Type         string             `bson:"type"`
	Description  string             `bson:"description"`
	Transmission string             `bson:"transmission"`
	ImageID      string             `bson:"image_id,omitempty"`
	Version      int64              `bson:"version"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *listingDocument) toDomain() *domain.Listing {
	return &domain.Listing{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Brand:        d.Brand,
		Color:        d.Color,
		Price:        d.Price,
		Year:         d.Year,
		Type:         d.Type,
		Description:  d.Description,
		Transmission: d.Transmission,
		ImageID:      d.ImageID,
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func fromDomainListing(l *domain.Listing) (*listingDocument, error) {
	doc := &listingDocument{
		Name:         l.Name,
		Brand:        l.Brand,
		Color:        l.Color,
		Price:        l.Price,
		Year:         l.Year,
		Type:         l.Type,
		Description:  l.Description,
		Transmission: l.Transmission,
		ImageID:      l.ImageID,
		Version:      l.Version,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
	if l.ID != "" {
		oid, err := primitive.ObjectIDFromHex(l.ID)
		if err != nil {
			return nil, err
		}
		doc.ID = oid
	}
	return doc, nil
}

type bookingDocument struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	ListingID     string             `bson:"listing_id"`
	CustomerEmail string             `bson:"customer_email,omitempty"`
	FromDate      time.Time          `bson:"from_date"`
	ToDate        time.Time          `bson:"to_date"`
	Days          int64              `bson:"days"`
	Price         int64              `bson:"price"`
	Status        string             `bson:"status"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (d *bookingDocument) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:            d.ID.Hex(),
		ListingID:     d.ListingID,
		CustomerEmail: d.CustomerEmail,
		FromDate:      d.FromDate,
		ToDate:        d.ToDate,
		Days:          d.Days,
		Price:         d.Price,
		Status:        domain.BookingStatus(d.Status),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func fromDomainBooking(b *domain.Booking) (*bookingDocument, error) {
	doc := &bookingDocument{
		ListingID:     b.ListingID,
		CustomerEmail: b.CustomerEmail,
		FromDate:      b.FromDate,
		ToDate:        b.ToDate,
		Days:          b.Days,
		Price:         b.Price,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
	if b.ID != "" {
		oid, err := primitive.ObjectIDFromHex(b.ID)
		if err != nil {
			return nil, err
		}
		doc.ID = oid
	}
	return doc, nil
}
