package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rentalhub/rental-service/internal/platform/logger"
	"go.uber.org/zap"
)

// Manager holds the service's custom Prometheus metrics.
type Manager struct {
	Registry              *prometheus.Registry
	ListingsCreatedTotal  prometheus.Counter
	ListingUpdatesTotal   prometheus.Counter
	ListingDeletesTotal   prometheus.Counter
	ImageUploadsTotal     prometheus.Counter
	BookingDecisionsTotal *prometheus.CounterVec
	APIErrorsTotal        *prometheus.CounterVec
	RequestLatency        *prometheus.HistogramVec
}

// NewManager initializes and registers the custom metrics on a dedicated
// registry.
func NewManager(serviceName string) *Manager {
	registry := prometheus.NewRegistry()

	listingsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_created_total",
		Help:      "Total number of listings created.",
	})
	listingUpdatesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listing_updates_total",
		Help:      "Total number of listings updated.",
	})
	listingDeletesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listing_deletes_total",
		Help:      "Total number of listings deleted.",
	})
	imageUploadsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "image_uploads_total",
		Help:      "Total number of listing images stored.",
	})
	bookingDecisionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "booking_decisions_total",
		Help:      "Total number of booking status decisions by resulting status.",
	}, []string{"status"})
	apiErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by handler and error type.",
	}, []string{"handler", "error_type"})
	requestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of API requests by handler.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"handler"})

	registry.MustRegister(
		listingsCreatedTotal,
		listingUpdatesTotal,
		listingDeletesTotal,
		imageUploadsTotal,
		bookingDecisionsTotal,
		apiErrorsTotal,
		requestLatency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &Manager{
		Registry:              registry,
		ListingsCreatedTotal:  listingsCreatedTotal,
		ListingUpdatesTotal:   listingUpdatesTotal,
		ListingDeletesTotal:   listingDeletesTotal,
		ImageUploadsTotal:     imageUploadsTotal,
		BookingDecisionsTotal: bookingDecisionsTotal,
		APIErrorsTotal:        apiErrorsTotal,
		RequestLatency:        requestLatency,
	}
}

// StartMetricsServer exposes the registry on its own HTTP port. Does nothing
// when the port is not configured.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
