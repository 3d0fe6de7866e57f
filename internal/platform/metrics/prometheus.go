package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsManager holds the service's Prometheus collectors on a private registry.
type MetricsManager struct {
	Registry             *prometheus.Registry
	PropertiesCreated    prometheus.Counter
	PropertiesUpdated    prometheus.Counter
	PropertiesDeleted    prometheus.Counter
	MediaUploadsTotal    *prometheus.CounterVec
	MediaDeletesTotal    *prometheus.CounterVec
	FavoriteChangesTotal *prometheus.CounterVec
	HTTPErrorsTotal      *prometheus.CounterVec
	HTTPLatency          *prometheus.HistogramVec
}

func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	m := &MetricsManager{
		Registry: registry,
		PropertiesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "properties_created_total",
			Help:      "Total number of listings created.",
		}),
		PropertiesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "properties_updated_total",
			Help:      "Total number of listing updates, image attach and detach included.",
		}),
		PropertiesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "properties_deleted_total",
			Help:      "Total number of listings deleted.",
		}),
		MediaUploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_uploads_total",
			Help:      "Image uploads to the media store by result.",
		}, []string{"result"}),
		MediaDeletesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_deletes_total",
			Help:      "Image deletions from the media store by result.",
		}, []string{"result"}),
		FavoriteChangesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_changes_total",
			Help:      "Favorite additions and removals.",
		}, []string{"action"}),
		HTTPErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP responses with status >= 400 by route.",
		}, []string{"route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.PropertiesCreated,
		m.PropertiesUpdated,
		m.PropertiesDeleted,
		m.MediaUploadsTotal,
		m.MediaDeletesTotal,
		m.FavoriteChangesTotal,
		m.HTTPErrorsTotal,
		m.HTTPLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *MetricsManager) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *MetricsManager) ObserveUpload(err error) {
	m.MediaUploadsTotal.WithLabelValues(result(err)).Inc()
}

func (m *MetricsManager) ObserveMediaDelete(err error) {
	m.MediaDeletesTotal.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
