package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rentalhub/rental-service/internal/domain"
	"github.com/rentalhub/rental-service/internal/platform/logger"
	"go.uber.org/zap"
)

// EventPublisher publishes domain events after successful mutations.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
}

// ListingCache caches single-listing lookups. GetListing returns (nil, nil)
// on a miss.
type ListingCache interface {
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	SetListing(ctx context.Context, listing *domain.Listing) error
	DeleteListing(ctx context.Context, id string) error
}

// ListingInput carries the client-supplied listing fields.
type ListingInput struct {
	Name         string
	Brand        string
	Color        string
	Price        int64
	Year         int
	Type         string
	Description  string
	Transmission string
}

// ImageUpload carries raw image bytes with the client's declared content
// type and original filename (used only as an extension hint).
type ImageUpload struct {
	Content     []byte
	ContentType string
	Filename    string
}

// CatalogUsecase implements the listing lifecycle and couples it to the
// image store: a listing owns at most one stored image, and no successful
// operation leaves an orphaned image behind.
type CatalogUsecase struct {
	repo    domain.ListingRepository
	storage domain.ImageStorage
	cache   ListingCache
	events  EventPublisher
	logger  *logger.Logger
}

// NewCatalogUsecase creates a CatalogUsecase. cache and events are optional;
// nil disables them.
func NewCatalogUsecase(
	repo domain.ListingRepository,
	storage domain.ImageStorage,
	cache ListingCache,
	events EventPublisher,
	log *logger.Logger,
) *CatalogUsecase {
	return &CatalogUsecase{
		repo:    repo,
		storage: storage,
		cache:   cache,
		events:  events,
		logger:  log.Named("CatalogUsecase"),
	}
}

func (in ListingInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if in.Brand == "" {
		return fmt.Errorf("%w: brand is required", domain.ErrInvalidInput)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

// CreateListing stores the image first (when supplied), attaches its
// identifier and persists the record. Any image validation or storage
// failure aborts the whole operation and propagates.
func (uc *CatalogUsecase) CreateListing(ctx context.Context, input ListingInput, image *ImageUpload) (*domain.Listing, error) {
	uc.logger.Info("Creating listing", zap.String("name", input.Name), zap.String("brand", input.Brand))

	if err := input.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listing := &domain.Listing{
		Name:         input.Name,
		Brand:        input.Brand,
		Color:        input.Color,
		Price:        input.Price,
		Year:         input.Year,
		Type:         input.Type,
		Description:  input.Description,
		Transmission: input.Transmission,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if image != nil {
		imageID, err := uc.storage.Save(ctx, image.Content, image.ContentType, image.Filename)
		if err != nil {
			uc.logger.Error("Failed to store listing image", zap.Error(err), zap.String("name", input.Name))
			return nil, err
		}
		listing.ImageID = imageID
	}

	if err := uc.repo.Create(ctx, listing); err != nil {
		uc.logger.Error("Failed to create listing in repository", zap.Error(err), zap.String("name", input.Name))
		if listing.ImageID != "" {
			uc.removeImage(ctx, listing.ImageID)
		}
		return nil, err
	}

	uc.cacheSet(ctx, listing)
	uc.publish(ctx, "listing.created", listingEvent(listing))

	uc.logger.Info("Listing created", zap.String("listing_id", listing.ID))
	return listing, nil
}

// UpdateListing replaces the listing fields and, when a new image is
// supplied, its image. Ordering is save-new, persist, delete-old: a failed
// save leaves everything untouched, and a failed persist removes the
// just-saved image again so the old record keeps its valid reference.
func (uc *CatalogUsecase) UpdateListing(ctx context.Context, id string, input ListingInput, image *ImageUpload) (*domain.Listing, error) {
	uc.logger.Info("Updating listing", zap.String("listing_id", id))

	if err := input.validate(); err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		uc.logger.Warn("Failed to find listing for update", zap.String("listing_id", id), zap.Error(err))
		return nil, err
	}

	updated := *existing
	updated.Name = input.Name
	updated.Brand = input.Brand
	updated.Color = input.Color
	updated.Price = input.Price
	updated.Year = input.Year
	updated.Type = input.Type
	updated.Description = input.Description
	updated.Transmission = input.Transmission
	updated.UpdatedAt = time.Now().UTC()

	oldImageID := existing.ImageID
	if image != nil {
		newImageID, err := uc.storage.Save(ctx, image.Content, image.ContentType, image.Filename)
		if err != nil {
			uc.logger.Error("Failed to store replacement image", zap.Error(err), zap.String("listing_id", id))
			return nil, err
		}
		updated.ImageID = newImageID
	}

	if err := uc.repo.Update(ctx, &updated); err != nil {
		uc.logger.Error("Failed to update listing in repository", zap.Error(err), zap.String("listing_id", id))
		if image != nil && updated.ImageID != "" {
			// The record still references the old image; remove the one we
			// just saved so it does not end up orphaned.
			uc.removeImage(ctx, updated.ImageID)
		}
		return nil, err
	}

	if image != nil && oldImageID != "" && oldImageID != updated.ImageID {
		uc.removeImage(ctx, oldImageID)
	}

	uc.cacheSet(ctx, &updated)
	uc.publish(ctx, "listing.updated", listingEvent(&updated))

	uc.logger.Info("Listing updated", zap.String("listing_id", id), zap.Int64("version", updated.Version))
	return &updated, nil
}

// DeleteListing removes the listing's image (best effort) and then the
// record itself.
func (uc *CatalogUsecase) DeleteListing(ctx context.Context, id string) error {
	uc.logger.Info("Deleting listing", zap.String("listing_id", id))

	existing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		uc.logger.Warn("Failed to find listing for deletion", zap.String("listing_id", id), zap.Error(err))
		return err
	}

	if existing.ImageID != "" {
		uc.removeImage(ctx, existing.ImageID)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		uc.logger.Error("Failed to delete listing in repository", zap.Error(err), zap.String("listing_id", id))
		return err
	}

	uc.cacheDelete(ctx, id)
	uc.publish(ctx, "listing.deleted", map[string]interface{}{"listing_id": id})

	uc.logger.Info("Listing deleted", zap.String("listing_id", id))
	return nil
}

// GetListing fetches a single listing, consulting the cache first.
func (uc *CatalogUsecase) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	if uc.cache != nil {
		cached, err := uc.cache.GetListing(ctx, id)
		if err != nil {
			uc.logger.Warn("Listing cache lookup failed", zap.String("listing_id", id), zap.Error(err))
		} else if cached != nil {
			uc.logger.Debug("Listing fetched from cache", zap.String("listing_id", id))
			return cached, nil
		}
	}

	listing, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.cacheSet(ctx, listing)
	return listing, nil
}

// SearchListings returns listings matching the criteria; empty criteria
// match every listing.
func (uc *CatalogUsecase) SearchListings(ctx context.Context, criteria domain.SearchCriteria) ([]*domain.Listing, error) {
	uc.logger.Debug("Searching listings", zap.Any("criteria", criteria))
	listings, err := uc.repo.FindByCriteria(ctx, criteria)
	if err != nil {
		uc.logger.Error("Failed to search listings", zap.Error(err), zap.Any("criteria", criteria))
		return nil, err
	}
	return listings, nil
}

// ImageURL maps a stored image identifier to its public path.
func (uc *CatalogUsecase) ImageURL(imageID string) string {
	return uc.storage.URL(imageID)
}

// removeImage deletes a stored image without letting a storage failure block
// the enclosing mutation. A failed delete leaves an orphaned file at worst,
// never a dangling reference.
func (uc *CatalogUsecase) removeImage(ctx context.Context, imageID string) {
	if err := uc.storage.Delete(ctx, imageID); err != nil {
		uc.logger.Warn("Image cleanup failed, file may be orphaned",
			zap.String("image_id", imageID), zap.Error(err))
	}
}

func (uc *CatalogUsecase) cacheSet(ctx context.Context, listing *domain.Listing) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.SetListing(ctx, listing); err != nil {
		uc.logger.Warn("Failed to cache listing", zap.String("listing_id", listing.ID), zap.Error(err))
	}
}

func (uc *CatalogUsecase) cacheDelete(ctx context.Context, id string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteListing(ctx, id); err != nil {
		uc.logger.Warn("Failed to invalidate listing cache", zap.String("listing_id", id), zap.Error(err))
	}
}

func (uc *CatalogUsecase) publish(ctx context.Context, subject string, data interface{}) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, subject, data); err != nil {
		uc.logger.Warn("Failed to publish event", zap.String("subject", subject), zap.Error(err))
	}
}

func listingEvent(l *domain.Listing) map[string]interface{} {
	return map[string]interface{}{
		"listing_id": l.ID,
		"name":       l.Name,
		"brand":      l.Brand,
		"price":      l.Price,
		"image_id":   l.ImageID,
		"updated_at": l.UpdatedAt.Format(time.RFC3339Nano),
	}
}
