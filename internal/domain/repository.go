package domain

import "context"

type ListingRepository interface {
	Create(ctx context.Context, listing *Listing) error
	// Update persists the listing only if the stored version still equals
	// listing.Version; a stale version yields ErrConflict.
	Update(ctx context.Context, listing *Listing) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Listing, error)
	FindByCriteria(ctx context.Context, criteria SearchCriteria) ([]*Listing, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	Update(ctx context.Context, booking *Booking) error
	FindByID(ctx context.Context, id string) (*Booking, error)
	FindAll(ctx context.Context) ([]*Booking, error)
}

// ImageStorage owns the binary image assets referenced by listings.
type ImageStorage interface {
	// Save validates and stores the image, returning its generated
	// identifier. The identifier is never derived from client input beyond
	// the file-extension hint in originalName.
	Save(ctx context.Context, content []byte, contentType, originalName string) (string, error)
	// Delete removes the stored file. A missing file is a successful no-op.
	Delete(ctx context.Context, imageID string) error
	// URL maps an identifier to its public path. Empty in, empty out.
	URL(imageID string) string
}
