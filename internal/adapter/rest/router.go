package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rentalhub/rental-service/internal/platform/logger"
)

// NewRouter wires the API routes and the static image route. The static
// route serves uploadDir under publicPrefix, which must agree with the
// asset store's URL mapping.
func NewRouter(h *Handler, uploadDir, publicPrefix string, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestLogger(log, h.metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/api/listings", h.HandleCreateListing)
	r.Get("/api/listings/search", h.HandleSearchListings)
	r.Get("/api/listings/{id}", h.HandleGetListing)
	r.Put("/api/listings/{id}", h.HandleUpdateListing)
	r.Delete("/api/listings/{id}", h.HandleDeleteListing)

	r.Post("/api/bookings", h.HandleCreateBooking)
	r.Get("/api/bookings", h.HandleListBookings)
	r.Patch("/api/bookings/{id}/status", h.HandleChangeBookingStatus)

	fileServer := http.StripPrefix(publicPrefix+"/", http.FileServer(http.Dir(uploadDir)))
	r.Get(publicPrefix+"/*", fileServer.ServeHTTP)

	return r
}
