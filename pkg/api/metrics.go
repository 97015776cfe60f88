package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Steganography operation metrics
	stegoOperationsTotal   *prometheus.CounterVec
	stegoOperationDuration *prometheus.HistogramVec
	payloadBits            prometheus.Histogram
	capacityUtilization    prometheus.Histogram
	truncatedDecodesTotal  prometheus.Counter

	// Stored image metrics
	storedImages prometheus.Gauge
	prunedImages prometheus.Counter

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec

	// Health check metrics
	healthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates all Prometheus metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostshell_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ghostshell_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ghostshell_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		stegoOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostshell_stego_operations_total",
				Help: "Total number of encode, decode and capacity operations",
			},
			[]string{"operation", "status"},
		),

		stegoOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ghostshell_stego_operation_duration_seconds",
				Help:    "Steganography operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		payloadBits: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ghostshell_payload_bits",
				Help:    "Framed payload size in bits for successful encodes",
				Buckets: prometheus.ExponentialBuckets(8, 4, 10),
			},
		),

		capacityUtilization: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ghostshell_capacity_utilization_ratio",
				Help:    "Fraction of carrier capacity used by successful encodes",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),

		truncatedDecodesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ghostshell_truncated_decodes_total",
				Help: "Decodes that found no terminator",
			},
		),

		storedImages: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ghostshell_stored_images",
				Help: "Number of encoded images held for download",
			},
		),

		prunedImages: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ghostshell_pruned_images_total",
				Help: "Stored images removed by retention",
			},
		),

		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostshell_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),

		healthChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ghostshell_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}

	return m
}

func statusLabel(success bool) string {
	if success {
		return statusSuccess
	}
	return statusError
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	statusCodeStr := strconv.Itoa(statusCode)

	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusCodeStr).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordOperation records an encode, decode or capacity operation
func (m *Metrics) RecordOperation(operation string, success bool, duration time.Duration) {
	m.stegoOperationsTotal.WithLabelValues(operation, statusLabel(success)).Inc()
	m.stegoOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordEmbed records the size of a successful embed relative to its carrier
func (m *Metrics) RecordEmbed(bitsUsed, capacity int) {
	m.payloadBits.Observe(float64(bitsUsed))
	if capacity > 0 {
		m.capacityUtilization.Observe(float64(bitsUsed) / float64(capacity))
	}
}

// RecordTruncatedDecode records a decode without terminator
func (m *Metrics) RecordTruncatedDecode() {
	m.truncatedDecodesTotal.Inc()
}

// UpdateStoredImages sets the stored image gauge
func (m *Metrics) UpdateStoredImages(n int) {
	m.storedImages.Set(float64(n))
}

// RecordPruned records images removed by retention
func (m *Metrics) RecordPruned(n int) {
	m.prunedImages.Add(float64(n))
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	m.authRequestsTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	m.healthChecksTotal.WithLabelValues(statusLabel(success)).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		// Capture the status code written by the handler
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// InstrumentAuthMiddleware instruments the authentication middleware
func (m *Metrics) InstrumentAuthMiddleware(next func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasAPIKey := r.Header.Get("X-API-Key") != ""

			rw, ok := w.(*responseWriter)
			if !ok {
				rw = &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			}

			next(h).ServeHTTP(rw, r)

			if hasAPIKey {
				m.RecordAuthRequest(rw.statusCode != http.StatusUnauthorized)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
