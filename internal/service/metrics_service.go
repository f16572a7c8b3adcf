package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the document synchronization pipeline.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	syncRuns         *prometheus.CounterVec
	syncDuration     prometheus.Histogram
	syncDocuments    prometheus.Counter
	downloadFailures prometheus.Counter
	persistFailures  prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	syncRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "document_sync_runs_total",
		Help: "Total synchronization runs by outcome",
	}, []string{"outcome"})

	syncDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "document_sync_duration_seconds",
		Help:    "Duration of synchronization runs",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
	})

	syncDocuments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "document_sync_documents_total",
		Help: "Total documents persisted by synchronization runs",
	})

	downloadFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "document_sync_download_failures_total",
		Help: "Files skipped because the remote download failed",
	})

	persistFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "document_sync_persist_failures_total",
		Help: "Files downloaded but skipped because the database write failed",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, syncRuns, syncDuration, syncDocuments, downloadFailures, persistFailures, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:         registry,
		handler:          handler,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		syncRuns:         syncRuns,
		syncDuration:     syncDuration,
		syncDocuments:    syncDocuments,
		downloadFailures: downloadFailures,
		persistFailures:  persistFailures,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveSyncRun records the outcome and duration of one synchronization run.
func (m *MetricsService) ObserveSyncRun(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(outcome).Inc()
	m.syncDuration.Observe(duration.Seconds())
}

// AddSyncedDocuments counts documents a run persisted.
func (m *MetricsService) AddSyncedDocuments(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.syncDocuments.Add(float64(n))
}

// RecordDownloadFailure counts a file skipped at the transfer stage.
func (m *MetricsService) RecordDownloadFailure() {
	if m == nil {
		return
	}
	m.downloadFailures.Inc()
}

// RecordPersistFailure counts a file skipped at the database stage.
func (m *MetricsService) RecordPersistFailure() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}
