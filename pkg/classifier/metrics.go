package classifier

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics — Prometheus метрики клиента классификации.
//
// Собственный registry, чтобы тесты могли создавать клиентов без
// конфликтов регистрации.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	compressTotal   *prometheus.CounterVec
	uploadBytes     prometheus.Histogram
}

// NewMetrics создаёт и регистрирует метрики.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gomi",
			Subsystem: "classifier",
			Name:      "requests_total",
			Help:      "Total classifier requests by operation and outcome kind.",
		},
		[]string{"operation", "outcome"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gomi",
			Subsystem: "classifier",
			Name:      "request_duration_seconds",
			Help:      "Classifier request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"operation"},
	)
	compressTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gomi",
			Subsystem: "imaging",
			Name:      "compress_total",
			Help:      "Compression attempts by result.",
		},
		[]string{"result"},
	)
	uploadBytes := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "gomi",
			Subsystem: "classifier",
			Name:      "upload_bytes",
			Help:      "Size of uploaded images in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64*1024, 2, 8),
		},
	)

	registry.MustRegister(requestsTotal, requestDuration, compressTotal, uploadBytes)

	return &Metrics{
		registry:        registry,
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
		compressTotal:   compressTotal,
		uploadBytes:     uploadBytes,
	}
}

// Handler возвращает HTTP handler для /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry возвращает registry (для тестов и дополнительных коллекторов).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest учитывает завершённый запрос. outcome — "ok" или ErrorKind.String().
func (m *Metrics) RecordRequest(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.requestsTotal.WithLabelValues(operation, outcome).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCompression учитывает попытку сжатия.
func (m *Metrics) RecordCompression(applied bool) {
	if m == nil {
		return
	}
	result := "fallback"
	if applied {
		result = "applied"
	}
	m.compressTotal.WithLabelValues(result).Inc()
}

// RecordUpload учитывает размер отправленного файла.
func (m *Metrics) RecordUpload(size int64) {
	if m == nil {
		return
	}
	m.uploadBytes.Observe(float64(size))
}
