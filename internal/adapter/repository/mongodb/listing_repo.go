package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/rentalhub/rental-service/internal/domain"
	"github.com/rentalhub/rental-service/internal/platform/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const listingCollectionName = "listings"

// ListingRepository implements domain.ListingRepository using MongoDB.
type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

// NewListingRepository creates the repository and ensures its indexes.
func NewListingRepository(db *mongo.Database, log *logger.Logger) (*ListingRepository, error) {
	collection := db.Collection(listingCollectionName)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "brand", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// Indexes may already exist or be managed externally; not fatal.
		log.Error("Failed to create indexes for listings collection", zap.Error(err))
	} else {
		log.Info("Successfully ensured indexes for listings collection")
	}

	return &ListingRepository{
		collection: collection,
		logger:     log.Named("ListingRepository"),
	}, nil
}

// Create inserts a new listing and stamps it with version 1.
func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	doc, err := fromDomainListing(listing)
	if err != nil {
		r.logger.Error("Failed to convert listing to document for Create", zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrRepository, err)
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}

	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	doc.Version = 1

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert listing into DB", zap.Error(err))
		return fmt.Errorf("%w: insert listing: %v", domain.ErrRepository, err)
	}

	listing.ID = doc.ID.Hex()
	listing.Version = doc.Version
	listing.CreatedAt = doc.CreatedAt
	listing.UpdatedAt = doc.UpdatedAt
	r.logger.Info("Listing created in DB", zap.String("listing_id", listing.ID))
	return nil
}

// Update rewrites the listing guarded by its version token. A write whose
// version no longer matches the stored document yields domain.ErrConflict.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	doc, err := fromDomainListing(listing)
	if err != nil {
		r.logger.Warn("Invalid listing id for Update", zap.String("listing_id", listing.ID), zap.Error(err))
		return fmt.Errorf("%w: id %q", domain.ErrListingNotFound, listing.ID)
	}
	doc.UpdatedAt = time.Now().UTC()

	filter := bson.M{"_id": doc.ID, "version": listing.Version}
	update := bson.M{"$set": bson.M{
		"name":         doc.Name,
		"brand":        doc.Brand,
		"color":        doc.Color,
		"price":        doc.Price,
		"year":         doc.Year,
		"type":         doc.Type,
		"description":  doc.Description,
		"transmission": doc.Transmission,
		"image_id":     doc.ImageID,
		"version":      listing.Version + 1,
		"updated_at":   doc.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.logger.Error("Failed to update listing in DB", zap.Error(err), zap.String("listing_id", listing.ID))
		return fmt.Errorf("%w: update listing %s: %v", domain.ErrRepository, listing.ID, err)
	}
	if result.MatchedCount == 0 {
		// Distinguish a concurrent writer from a deleted document.
		count, countErr := r.collection.CountDocuments(ctx, bson.M{"_id": doc.ID})
		if countErr != nil {
			r.logger.Error("Failed to resolve update miss", zap.Error(countErr), zap.String("listing_id", listing.ID))
			return fmt.Errorf("%w: update listing %s: %v", domain.ErrRepository, listing.ID, countErr)
		}
		if count > 0 {
			r.logger.Warn("Listing version conflict on update",
				zap.String("listing_id", listing.ID),
				zap.Int64("expected_version", listing.Version))
			return fmt.Errorf("%w: listing %s", domain.ErrConflict, listing.ID)
		}
		r.logger.Warn("Listing not found for update", zap.String("listing_id", listing.ID))
		return fmt.Errorf("%w: id %q", domain.ErrListingNotFound, listing.ID)
	}

	listing.Version++
	listing.UpdatedAt = doc.UpdatedAt
	r.logger.Info("Listing updated in DB", zap.String("listing_id", listing.ID), zap.Int64("version", listing.Version))
	return nil
}

// Delete removes the listing record.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: id %q", domain.ErrListingNotFound, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		r.logger.Error("Failed to delete listing from DB", zap.Error(err), zap.String("listing_id", id))
		return fmt.Errorf("%w: delete listing %s: %v", domain.ErrRepository, id, err)
	}
	if result.DeletedCount == 0 {
		r.logger.Warn("Listing not found for deletion", zap.String("listing_id", id))
		return fmt.Errorf("%w: id %q", domain.ErrListingNotFound, id)
	}
	r.logger.Info("Listing deleted from DB", zap.String("listing_id", id))
	return nil
}

// FindByID fetches a single listing.
func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: id %q", domain.ErrListingNotFound, id)
	}

	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: id %q", domain.ErrListingNotFound, id)
		}
		r.logger.Error("Failed to get listing by ID from DB", zap.Error(err), zap.String("listing_id", id))
		return nil, fmt.Errorf("%w: find listing %s: %v", domain.ErrRepository, id, err)
	}
	return doc.toDomain(), nil
}

// FindByCriteria enumerates listings matching every non-empty criterion as a
// case-insensitive substring, in the store's natural order.
func (r *ListingRepository) FindByCriteria(ctx context.Context, criteria domain.SearchCriteria) ([]*domain.Listing, error) {
	query := bson.M{}
	addRegex(query, "brand", criteria.Brand)
	addRegex(query, "type", criteria.Type)
	addRegex(query, "transmission", criteria.Transmission)
	addRegex(query, "color", criteria.Color)

	cursor, err := r.collection.Find(ctx, query)
	if err != nil {
		r.logger.Error("Failed to search listings in DB", zap.Error(err), zap.Any("criteria", criteria))
		return nil, fmt.Errorf("%w: search listings: %v", domain.ErrRepository, err)
	}
	defer cursor.Close(ctx)

	listings := make([]*domain.Listing, 0)
	for cursor.Next(ctx) {
		var doc listingDocument
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Error("Failed to decode listing document", zap.Error(err))
			return nil, fmt.Errorf("%w: decode listing: %v", domain.ErrRepository, err)
		}
		listings = append(listings, doc.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: listing cursor: %v", domain.ErrRepository, err)
	}
	return listings, nil
}

func addRegex(query bson.M, field, value string) {
	if value == "" {
		return
	}
	query[field] = primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}
