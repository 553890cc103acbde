// Package metrics provides Prometheus metrics collection for the prediction
// service and its front-end. It defines the inference counters, latency
// histogram and front-end error counters that are exposed via /metrics.
package metrics

import (
	"strconv"

	"cancer-predictor/internal/common"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors used by both binaries.
type Metrics struct {
	// Inference metrics
	MLPredictions     prometheus.Counter     // Successful predictions
	MLFailures        prometheus.Counter     // Internal inference failures
	MLInvalidRequests prometheus.Counter     // Requests rejected at validation
	MLLatency         prometheus.Histogram   // Predict latency in seconds
	MLPredictedClass  *prometheus.CounterVec // Predictions per class name
	MLModelLoaded     prometheus.Gauge       // Unix time the artifacts were loaded

	// Front-end metrics
	FrontendAPIErrors *prometheus.CounterVec // Failed API calls by kind
}

// New creates and registers all metrics on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		MLPredictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_predictions_total",
			Help: "Total number of successful predictions",
		}),
		MLFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_failures_total",
			Help: "Total number of internal inference failures",
		}),
		MLInvalidRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_invalid_requests_total",
			Help: "Total number of prediction requests rejected as invalid input",
		}),
		MLLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_latency_seconds",
			Help:    "Prediction latency in seconds (scale and forward pass)",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		MLPredictedClass: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ml_predicted_class_total",
			Help: "Total number of predictions per predicted class",
		}, []string{"class"}),
		MLModelLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ml_model_loaded_timestamp_seconds",
			Help: "Unix time at which the model and scaler were loaded",
		}),
		FrontendAPIErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "frontend_api_errors_total",
			Help: "Total number of failed prediction API calls made by the front-end",
		}, []string{"kind"}),
	}
}

func (m *Metrics) MLPredictionsInc() {
	m.MLPredictions.Inc()
}

func (m *Metrics) MLFailuresInc() {
	m.MLFailures.Inc()
}

func (m *Metrics) MLInvalidRequestsInc() {
	m.MLInvalidRequests.Inc()
}

func (m *Metrics) MLLatencyObserve(seconds float64) {
	m.MLLatency.Observe(seconds)
}

// MLPredictedClassInc counts a prediction under its class name. Labels
// outside the known classes are recorded by number.
func (m *Metrics) MLPredictedClassInc(label int) {
	name := common.ClassName(label)
	if name == "" {
		name = strconv.Itoa(label)
	}
	m.MLPredictedClass.WithLabelValues(name).Inc()
}

func (m *Metrics) MLModelLoadedSet(unixSeconds float64) {
	m.MLModelLoaded.Set(unixSeconds)
}

// FrontendAPIErrorInc counts a failed API call; kind is "transport" or "response".
func (m *Metrics) FrontendAPIErrorInc(kind string) {
	m.FrontendAPIErrors.WithLabelValues(kind).Inc()
}
