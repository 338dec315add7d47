// Package metrics holds the Prometheus collectors for issuance and HTTP traffic.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	CertificatesIssued     *prometheus.CounterVec
	MintCollisions         prometheus.Counter
	ArtifactRenderFailures *prometheus.CounterVec
	ScoreDuration          prometheus.Histogram
	HTTPRequests           *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CertificatesIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aga_certificates_issued_total",
			Help: "Total certificates issued by grade",
		}, []string{"grade"}),

		MintCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "aga_certificate_mint_collisions_total",
			Help: "Certificate codes rejected as duplicates and re-minted",
		}),

		ArtifactRenderFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aga_artifact_render_failures_total",
			Help: "Artifact renders that failed, by artifact kind",
		}, []string{"artifact"}), // qr_code, label, certificate

		ScoreDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aga_score_duration_seconds",
			Help:    "Duration of image scoring including decode",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// IncrementIssued records an issued certificate
func (m *Metrics) IncrementIssued(grade string) {
	if m != nil {
		m.CertificatesIssued.WithLabelValues(grade).Inc()
	}
}

// IncrementMintCollision records a duplicate certificate code
func (m *Metrics) IncrementMintCollision() {
	if m != nil {
		m.MintCollisions.Inc()
	}
}

// IncrementRenderFailure records a failed artifact render
func (m *Metrics) IncrementRenderFailure(artifact string) {
	if m != nil {
		m.ArtifactRenderFailures.WithLabelValues(artifact).Inc()
	}
}

// ObserveScoreDuration records how long scoring took
func (m *Metrics) ObserveScoreDuration(d time.Duration) {
	if m != nil {
		m.ScoreDuration.Observe(d.Seconds())
	}
}

// ObserveRequest records one HTTP request
func (m *Metrics) ObserveRequest(route, method, status string, d time.Duration) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(route, method, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
	}
}
