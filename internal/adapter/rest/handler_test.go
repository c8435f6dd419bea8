package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rentalhub/rental-service/internal/domain"
	"github.com/rentalhub/rental-service/internal/platform/logger"
	"github.com/rentalhub/rental-service/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCatalog records the last call and returns canned results.
type stubCatalog struct {
	listing     *domain.Listing
	listings    []*domain.Listing
	err         error
	gotInput    usecase.ListingInput
	gotImage    *usecase.ImageUpload
	gotID       string
	gotCriteria domain.SearchCriteria
}

func (s *stubCatalog) CreateListing(ctx context.Context, input usecase.ListingInput, image *usecase.ImageUpload) (*domain.Listing, error) {
	s.gotInput, s.gotImage = input, image
	return s.listing, s.err
}
func (s *stubCatalog) UpdateListing(ctx context.Context, id string, input usecase.ListingInput, image *usecase.ImageUpload) (*domain.Listing, error) {
	s.gotID, s.gotInput, s.gotImage = id, input, image
	return s.listing, s.err
}
func (s *stubCatalog) DeleteListing(ctx context.Context, id string) error {
	s.gotID = id
	return s.err
}
func (s *stubCatalog) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	s.gotID = id
	return s.listing, s.err
}
func (s *stubCatalog) SearchListings(ctx context.Context, criteria domain.SearchCriteria) ([]*domain.Listing, error) {
	s.gotCriteria = criteria
	return s.listings, s.err
}
func (s *stubCatalog) ImageURL(imageID string) string {
	if imageID == "" {
		return ""
	}
	return "/images/" + imageID
}

type stubBookings struct {
	booking     *domain.Booking
	bookings    []*domain.Booking
	err         error
	gotInput    usecase.BookingInput
	gotID       string
	gotDecision string
}

func (s *stubBookings) CreateBooking(ctx context.Context, input usecase.BookingInput) (*domain.Booking, error) {
	s.gotInput = input
	return s.booking, s.err
}
func (s *stubBookings) ListBookings(ctx context.Context) ([]*domain.Booking, error) {
	return s.bookings, s.err
}
func (s *stubBookings) ChangeStatus(ctx context.Context, bookingID, decision string) (*domain.Booking, error) {
	s.gotID, s.gotDecision = bookingID, decision
	return s.booking, s.err
}

func newTestRouter(t *testing.T, catalog *stubCatalog, bookings *stubBookings) http.Handler {
	t.Helper()
	h := NewHandler(catalog, bookings, nil, logger.NewLogger())
	return NewRouter(h, t.TempDir(), "/images", logger.NewLogger())
}

func multipartListing(t *testing.T, fields map[string]string, imageName string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if imageName != "" {
		part, err := mw.CreateFormFile("image", imageName)
		require.NoError(t, err)
		_, err = part.Write([]byte("image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func sampleListing() *domain.Listing {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Listing{
		ID:           "listing-1",
		Name:         "Corolla",
		Brand:        "Toyota",
		Color:        "Red",
		Price:        100,
		Year:         2022,
		Type:         "Sedan",
		Transmission: "Automatic",
		ImageID:      "img-1.jpg",
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestHandleCreateListing(t *testing.T) {
	t.Run("MultipartWithImage", func(t *testing.T) {
		catalog := &stubCatalog{listing: sampleListing()}
		router := newTestRouter(t, catalog, &stubBookings{})

		body, contentType := multipartListing(t, map[string]string{
			"name":  "Corolla",
			"brand": "Toyota",
			"price": "100",
			"year":  "2022",
		}, "car.jpg")
		req := httptest.NewRequest(http.MethodPost, "/api/listings", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Corolla", catalog.gotInput.Name)
		assert.Equal(t, int64(100), catalog.gotInput.Price)
		assert.Equal(t, 2022, catalog.gotInput.Year)
		require.NotNil(t, catalog.gotImage)
		assert.Equal(t, "car.jpg", catalog.gotImage.Filename)
		assert.Equal(t, []byte("image bytes"), catalog.gotImage.Content)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "listing-1", resp["id"])
		assert.Equal(t, "/images/img-1.jpg", resp["imageUrl"])
	})

	t.Run("MissingImagePartIsAllowed", func(t *testing.T) {
		catalog := &stubCatalog{listing: sampleListing()}
		router := newTestRouter(t, catalog, &stubBookings{})

		body, contentType := multipartListing(t, map[string]string{"name": "Corolla", "brand": "Toyota", "price": "100"}, "")
		req := httptest.NewRequest(http.MethodPost, "/api/listings", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Nil(t, catalog.gotImage)
	})

	t.Run("NonIntegerPriceIsBadRequest", func(t *testing.T) {
		catalog := &stubCatalog{listing: sampleListing()}
		router := newTestRouter(t, catalog, &stubBookings{})

		body, contentType := multipartListing(t, map[string]string{"name": "Corolla", "price": "cheap"}, "")
		req := httptest.NewRequest(http.MethodPost, "/api/listings", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"InvalidInput", fmt.Errorf("%w: name is required", domain.ErrInvalidInput), http.StatusBadRequest},
		{"ListingNotFound", fmt.Errorf("%w: id %q", domain.ErrListingNotFound, "x"), http.StatusNotFound},
		{"Conflict", fmt.Errorf("%w: listing x", domain.ErrConflict), http.StatusConflict},
		{"Storage", fmt.Errorf("%w: disk full", domain.ErrStorage), http.StatusInternalServerError},
		{"Repository", fmt.Errorf("%w: boom", domain.ErrRepository), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			catalog := &stubCatalog{err: tc.err}
			router := newTestRouter(t, catalog, &stubBookings{})

			req := httptest.NewRequest(http.MethodGet, "/api/listings/listing-1", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.want, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.err.Error(), resp["error"])
		})
	}
}

func TestHandleSearchListings(t *testing.T) {
	catalog := &stubCatalog{listings: []*domain.Listing{sampleListing()}}
	router := newTestRouter(t, catalog, &stubBookings{})

	req := httptest.NewRequest(http.MethodGet, "/api/listings/search?brand=oyo&transmission=auto", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "oyo", catalog.gotCriteria.Brand)
	assert.Equal(t, "auto", catalog.gotCriteria.Transmission)
	assert.Empty(t, catalog.gotCriteria.Color)

	var resp []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "Toyota", resp[0]["brand"])
}

func TestHandleDeleteListing(t *testing.T) {
	catalog := &stubCatalog{}
	router := newTestRouter(t, catalog, &stubBookings{})

	req := httptest.NewRequest(http.MethodDelete, "/api/listings/listing-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "listing-1", catalog.gotID)
}

func TestHandleCreateBooking(t *testing.T) {
	t.Run("ParsesDatesAndReturnsCreated", func(t *testing.T) {
		bookings := &stubBookings{booking: &domain.Booking{
			ID:        "booking-1",
			ListingID: "listing-1",
			FromDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
			ToDate:    time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
			Days:      3,
			Price:     300,
			Status:    domain.BookingStatusPending,
		}}
		router := newTestRouter(t, &stubCatalog{}, bookings)

		payload := `{"listingId":"listing-1","customerEmail":"c@example.com","fromDate":"2026-03-01","toDate":"2026-03-04"}`
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "listing-1", bookings.gotInput.ListingID)
		assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), bookings.gotInput.FromDate)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "PENDING", resp["status"])
		assert.Equal(t, float64(300), resp["price"])
	})

	t.Run("MalformedDateIsBadRequest", func(t *testing.T) {
		router := newTestRouter(t, &stubCatalog{}, &stubBookings{})

		payload := `{"listingId":"listing-1","fromDate":"03/01/2026","toDate":"2026-03-04"}`
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleChangeBookingStatus(t *testing.T) {
	bookings := &stubBookings{booking: &domain.Booking{
		ID:     "booking-1",
		Status: domain.BookingStatusApproved,
	}}
	router := newTestRouter(t, &stubCatalog{}, bookings)

	req := httptest.NewRequest(http.MethodPatch, "/api/bookings/booking-1/status", strings.NewReader(`{"decision":"Approve"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "booking-1", bookings.gotID)
	assert.Equal(t, "Approve", bookings.gotDecision)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "APPROVED", resp["status"])
}
