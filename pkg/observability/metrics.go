package observability

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	pkgerrors "raven/pkg/errors"
)

// CloudWatchAPI is the subset of the CloudWatch client used for pushing metrics
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics handles application metrics. Prometheus series are always kept;
// CloudWatch push happens only when a client is configured. A nil *Metrics
// is a valid no-op recorder.
type Metrics struct {
	namespace string
	client    CloudWatchAPI
	logger    *zap.Logger

	registry     *prometheus.Registry
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics creates a new metrics instance with its own Prometheus registry
func NewMetrics(namespace string, client CloudWatchAPI, logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	promNamespace := strings.ToLower(strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(namespace))

	m := &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
		registry:  prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: promNamespace,
				Name:      "node_operations_total",
				Help:      "Total number of node service operations",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: promNamespace,
				Name:      "node_operation_duration_seconds",
				Help:      "Node service operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: promNamespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: promNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(m.operations, m.duration, m.httpRequests, m.httpDuration)
	return m
}

// Outcome classifies an operation result for metric labels
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	if nodeErr := pkgerrors.GetNodeValidationError(err); nodeErr != nil {
		return strings.ToLower(string(nodeErr.Kind))
	}
	return "error"
}

// RecordOperation records one node service call
func (m *Metrics) RecordOperation(ctx context.Context, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	outcome := Outcome(err)
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(duration.Seconds())

	if m.client == nil {
		return // Skip if no client configured
	}

	now := time.Now()
	dimensions := []types.Dimension{
		{Name: aws.String("Operation"), Value: aws.String(operation)},
		{Name: aws.String("Outcome"), Value: aws.String(outcome)},
	}
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("NodeOperationLatency"),
				Dimensions: dimensions,
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       types.StandardUnitMilliseconds,
				Timestamp:  aws.Time(now),
			},
			{
				MetricName: aws.String("NodeOperationCount"),
				Dimensions: dimensions,
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
				Timestamp:  aws.Time(now),
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		// Log error but don't fail the operation
		m.logger.Warn("Failed to send metrics", zap.Error(err), zap.String("operation", operation))
	}
}

// RecordHTTPRequest records one served HTTP request
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Registry exposes the Prometheus registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
