// Package metrics provides Prometheus metrics for the paydate
// prediction service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction path labels.
const (
	PathDemand = "demand" // deterministic demand-date projection
	PathModel  = "model"  // learned regressor fallback
)

// Manager manages all Prometheus metrics for the paydate service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Business metrics - prediction volume and quality
	predictionsTotal    *prometheus.CounterVec
	predictionErrors    *prometheus.CounterVec
	predictionLatency   prometheus.Histogram
	confidenceScore     prometheus.Histogram
	batchSkippedTotal   prometheus.Counter
	batchSize           prometheus.Histogram
	schemaColumnsFilled prometheus.Counter

	// Training metrics
	trainingRuns     prometheus.Counter
	trainingDuration prometheus.Histogram
	trainMAE         prometheus.Gauge
	testMAE          prometheus.Gauge
	trainRMSE        prometheus.Gauge
	testRMSE         prometheus.Gauge
	modelLoaded      prometheus.Gauge
	featureCount     prometheus.Gauge

	// Data source metrics
	historyLoads     prometheus.Counter
	historyCacheHits prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "paydate",
		subsystem:        "predictor",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.predictionsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_total",
		Help:      "Predictions served, labeled by path (demand projection vs learned fallback)",
	}, []string{"path"})

	m.predictionErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_errors_total",
		Help:      "Prediction failures, labeled by reason",
	}, []string{"reason"})

	m.predictionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_latency_milliseconds",
		Help:      "Histogram of single-customer prediction latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.confidenceScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "confidence_score",
		Help:      "Distribution of heuristic confidence scores",
		Buckets:   []float64{0.5, 0.55, 0.6, 0.65, 0.7, 0.75, 0.8, 0.85, 0.9, 0.95},
	})

	m.batchSkippedTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_customers_skipped_total",
		Help:      "Customers skipped during batch prediction due to per-item failures",
	})

	m.batchSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_size",
		Help:      "Histogram of requested batch sizes",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	m.schemaColumnsFilled = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "schema_columns_zero_filled_total",
		Help:      "Feature columns zero-filled while aligning to the training schema (schema drift signal)",
	})

	m.trainingRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_runs_total",
		Help:      "Completed training runs",
	})

	m.trainingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_duration_milliseconds",
		Help:      "Histogram of training run duration in milliseconds",
		Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 30000, 60000},
	})

	m.trainMAE = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "train_mae_days",
		Help:      "Mean absolute error on the training split, in days",
	})

	m.testMAE = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "test_mae_days",
		Help:      "Mean absolute error on the held-out split, in days",
	})

	m.trainRMSE = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "train_rmse_days",
		Help:      "Root mean squared error on the training split, in days",
	})

	m.testRMSE = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "test_rmse_days",
		Help:      "Root mean squared error on the held-out split, in days",
	})

	m.modelLoaded = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_loaded",
		Help:      "1 when a trained model is resident, 0 otherwise",
	})

	m.featureCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_feature_count",
		Help:      "Number of feature columns in the loaded model's schema",
	})

	m.historyLoads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_loads_total",
		Help:      "Payment-history file loads",
	})

	m.historyCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "history_cache_hits_total",
		Help:      "Payment-history loads served from the keyed parse cache",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration by endpoint, method and status code",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// RecordPrediction increments the prediction counter for the given path
// and observes its confidence score.
func RecordPrediction(path string, confidence float64) {
	globalManager.predictionsTotal.WithLabelValues(path).Inc()
	globalManager.confidenceScore.Observe(confidence)
}

// RecordPredictionError increments the failure counter for a reason.
func RecordPredictionError(reason string) {
	globalManager.predictionErrors.WithLabelValues(reason).Inc()
}

// RecordPredictionLatency records single-prediction latency in milliseconds.
func RecordPredictionLatency(latencyMs float64) {
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordBatchSkipped counts a customer skipped during batch prediction.
func RecordBatchSkipped() {
	globalManager.batchSkippedTotal.Inc()
}

// RecordBatchSize observes a requested batch size.
func RecordBatchSize(size int) {
	globalManager.batchSize.Observe(float64(size))
}

// RecordSchemaColumnsFilled counts zero-filled schema columns.
func RecordSchemaColumnsFilled(n int) {
	globalManager.schemaColumnsFilled.Add(float64(n))
}

// RecordTrainingRun records a completed training run and its duration.
func RecordTrainingRun(durationMs float64) {
	globalManager.trainingRuns.Inc()
	globalManager.trainingDuration.Observe(durationMs)
}

// UpdateTrainingMetrics publishes the latest evaluation metrics.
func UpdateTrainingMetrics(trainMAE, testMAE, trainRMSE, testRMSE float64) {
	globalManager.trainMAE.Set(trainMAE)
	globalManager.testMAE.Set(testMAE)
	globalManager.trainRMSE.Set(trainRMSE)
	globalManager.testRMSE.Set(testRMSE)
}

// UpdateModelLoaded flips the model-resident gauge.
func UpdateModelLoaded(loaded bool) {
	if loaded {
		globalManager.modelLoaded.Set(1)
		return
	}
	globalManager.modelLoaded.Set(0)
}

// UpdateFeatureCount publishes the loaded schema width.
func UpdateFeatureCount(n int) {
	globalManager.featureCount.Set(float64(n))
}

// RecordHistoryLoad counts a payment-history file load.
func RecordHistoryLoad() {
	globalManager.historyLoads.Inc()
}

// RecordHistoryCacheHit counts a load served from the parse cache.
func RecordHistoryCacheHit() {
	globalManager.historyCacheHits.Inc()
}

// RecordHTTPRequest records basic HTTP request metrics.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
