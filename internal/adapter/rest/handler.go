package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rentalhub/rental-service/internal/domain"
	"github.com/rentalhub/rental-service/internal/platform/logger"
	"github.com/rentalhub/rental-service/internal/platform/metrics"
	"github.com/rentalhub/rental-service/internal/usecase"
	"go.uber.org/zap"
)

const (
	maxUploadBytes = 10 << 20 // 10 MiB multipart memory limit
	dateLayout     = "2006-01-02"
)

// CatalogService is the listing surface the handler depends on.
type CatalogService interface {
	CreateListing(ctx context.Context, input usecase.ListingInput, image *usecase.ImageUpload) (*domain.Listing, error)
	UpdateListing(ctx context.Context, id string, input usecase.ListingInput, image *usecase.ImageUpload) (*domain.Listing, error)
	DeleteListing(ctx context.Context, id string) error
	GetListing(ctx context.Context, id string) (*domain.Listing, error)
	SearchListings(ctx context.Context, criteria domain.SearchCriteria) ([]*domain.Listing, error)
	ImageURL(imageID string) string
}

// BookingService is the booking surface the handler depends on.
type BookingService interface {
	CreateBooking(ctx context.Context, input usecase.BookingInput) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]*domain.Booking, error)
	ChangeStatus(ctx context.Context, bookingID, decision string) (*domain.Booking, error)
}

// Handler translates HTTP requests into usecase calls.
type Handler struct {
	catalog  CatalogService
	bookings BookingService
	metrics  *metrics.Manager
	logger   *logger.Logger
}

func NewHandler(catalog CatalogService, bookings BookingService, m *metrics.Manager, log *logger.Logger) *Handler {
	return &Handler{
		catalog:  catalog,
		bookings: bookings,
		metrics:  m,
		logger:   log.Named("RESTHandler"),
	}
}

type listingResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Brand        string `json:"brand"`
	Color        string `json:"color"`
	Price        int64  `json:"price"`
	Year         int    `json:"year"`
	Type         string `json:"type"`
	Description  string `json:"description"`
	Transmission string `json:"transmission"`
	ImageURL     string `json:"imageUrl,omitempty"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

type bookingResponse struct {
	ID            string `json:"id"`
	ListingID     string `json:"listingId"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	FromDate      string `json:"fromDate"`
	ToDate        string `json:"toDate"`
	Days          int64  `json:"days"`
	Price         int64  `json:"price"`
	Status        string `json:"status"`
}

func (h *Handler) toListingResponse(l *domain.Listing) listingResponse {
	return listingResponse{
		ID:           l.ID,
		Name:         l.Name,
		Brand:        l.Brand,
		Color:        l.Color,
		Price:        l.Price,
		Year:         l.Year,
		Type:         l.Type,
		Description:  l.Description,
		Transmission: l.Transmission,
		ImageURL:     h.catalog.ImageURL(l.ImageID),
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    l.UpdatedAt.Format(time.RFC3339),
	}
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		ListingID:     b.ListingID,
		CustomerEmail: b.CustomerEmail,
		FromDate:      b.FromDate.Format(dateLayout),
		ToDate:        b.ToDate.Format(dateLayout),
		Days:          b.Days,
		Price:         b.Price,
		Status:        string(b.Status),
	}
}

// HandleCreateListing accepts a multipart form with the listing fields and
// an optional "image" file part.
func (h *Handler) HandleCreateListing(w http.ResponseWriter, r *http.Request) {
	input, image, err := h.parseListingForm(r)
	if err != nil {
		h.writeError(w, "CreateListing", err)
		return
	}

	listing, err := h.catalog.CreateListing(r.Context(), input, image)
	if err != nil {
		h.logger.Error("Failed to create listing", zap.Error(err))
		h.writeError(w, "CreateListing", err)
		return
	}

	if h.metrics != nil {
		h.metrics.ListingsCreatedTotal.Inc()
		if image != nil {
			h.metrics.ImageUploadsTotal.Inc()
		}
	}
	h.writeJSON(w, http.StatusCreated, h.toListingResponse(listing))
}

// HandleUpdateListing accepts the same multipart form as creation.
func (h *Handler) HandleUpdateListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	input, image, err := h.parseListingForm(r)
	if err != nil {
		h.writeError(w, "UpdateListing", err)
		return
	}

	listing, err := h.catalog.UpdateListing(r.Context(), id, input, image)
	if err != nil {
		h.logger.Error("Failed to update listing", zap.String("id", id), zap.Error(err))
		h.writeError(w, "UpdateListing", err)
		return
	}

	if h.metrics != nil {
		h.metrics.ListingUpdatesTotal.Inc()
		if image != nil {
			h.metrics.ImageUploadsTotal.Inc()
		}
	}
	h.writeJSON(w, http.StatusOK, h.toListingResponse(listing))
}

func (h *Handler) HandleDeleteListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.catalog.DeleteListing(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete listing", zap.String("id", id), zap.Error(err))
		h.writeError(w, "DeleteListing", err)
		return
	}

	if h.metrics != nil {
		h.metrics.ListingDeletesTotal.Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	listing, err := h.catalog.GetListing(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetListing", err)
		return
	}
	h.writeJSON(w, http.StatusOK, h.toListingResponse(listing))
}

// HandleSearchListings filters by the optional brand, type, transmission and
// color query parameters.
func (h *Handler) HandleSearchListings(w http.ResponseWriter, r *http.Request) {
	criteria := domain.SearchCriteria{
		Brand:        r.URL.Query().Get("brand"),
		Type:         r.URL.Query().Get("type"),
		Transmission: r.URL.Query().Get("transmission"),
		Color:        r.URL.Query().Get("color"),
	}

	listings, err := h.catalog.SearchListings(r.Context(), criteria)
	if err != nil {
		h.writeError(w, "SearchListings", err)
		return
	}

	resp := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, h.toListingResponse(l))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type createBookingRequest struct {
	ListingID     string `json:"listingId"`
	CustomerEmail string `json:"customerEmail"`
	FromDate      string `json:"fromDate"`
	ToDate        string `json:"toDate"`
}

func (h *Handler) HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "CreateBooking", wrapInvalid("invalid request body"))
		return
	}

	fromDate, err := time.Parse(dateLayout, req.FromDate)
	if err != nil {
		h.writeError(w, "CreateBooking", wrapInvalid("fromDate must be formatted as "+dateLayout))
		return
	}
	toDate, err := time.Parse(dateLayout, req.ToDate)
	if err != nil {
		h.writeError(w, "CreateBooking", wrapInvalid("toDate must be formatted as "+dateLayout))
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), usecase.BookingInput{
		ListingID:     req.ListingID,
		CustomerEmail: req.CustomerEmail,
		FromDate:      fromDate,
		ToDate:        toDate,
	})
	if err != nil {
		h.logger.Error("Failed to create booking", zap.Error(err))
		h.writeError(w, "CreateBooking", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

func (h *Handler) HandleListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookings.ListBookings(r.Context())
	if err != nil {
		h.writeError(w, "ListBookings", err)
		return
	}

	resp := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, toBookingResponse(b))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type changeStatusRequest struct {
	Decision string `json:"decision"`
}

func (h *Handler) HandleChangeBookingStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "ChangeBookingStatus", wrapInvalid("invalid request body"))
		return
	}

	booking, err := h.bookings.ChangeStatus(r.Context(), id, req.Decision)
	if err != nil {
		h.logger.Error("Failed to change booking status", zap.String("id", id), zap.Error(err))
		h.writeError(w, "ChangeBookingStatus", err)
		return
	}

	if h.metrics != nil {
		h.metrics.BookingDecisionsTotal.WithLabelValues(string(booking.Status)).Inc()
	}
	h.writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *Handler) parseListingForm(r *http.Request) (usecase.ListingInput, *usecase.ImageUpload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return usecase.ListingInput{}, nil, wrapInvalid("request must be multipart/form-data")
	}

	input := usecase.ListingInput{
		Name:         r.FormValue("name"),
		Brand:        r.FormValue("brand"),
		Color:        r.FormValue("color"),
		Type:         r.FormValue("type"),
		Description:  r.FormValue("description"),
		Transmission: r.FormValue("transmission"),
	}

	if v := r.FormValue("price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return usecase.ListingInput{}, nil, wrapInvalid("price must be an integer")
		}
		input.Price = price
	}
	if v := r.FormValue("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return usecase.ListingInput{}, nil, wrapInvalid("year must be an integer")
		}
		input.Year = year
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return input, nil, nil
		}
		return usecase.ListingInput{}, nil, wrapInvalid("invalid image part")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return usecase.ListingInput{}, nil, wrapInvalid("failed to read image part")
	}

	return input, &usecase.ImageUpload{
		Content:     content,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps the domain error taxonomy to HTTP statuses so the failing
// field or id reaches the client instead of an opaque failure.
func (h *Handler) writeError(w http.ResponseWriter, handlerName string, err error) {
	status := http.StatusInternalServerError
	errorType := "internal"

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
		errorType = "validation"
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, domain.ErrBookingNotFound):
		status = http.StatusNotFound
		errorType = "not_found"
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
		errorType = "conflict"
	case errors.Is(err, domain.ErrStorage):
		errorType = "storage"
	case errors.Is(err, domain.ErrRepository):
		errorType = "repository"
	}

	if h.metrics != nil {
		h.metrics.APIErrorsTotal.WithLabelValues(handlerName, errorType).Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func wrapInvalid(msg string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, msg)
}
