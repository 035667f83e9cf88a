package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter     metric.Int64Counter
	RequestDuration    metric.Float64Histogram
	ChecksRequested    metric.Int64Counter
	ChecksProcessed    metric.Int64Counter
	ProcessingDuration metric.Float64Histogram
	QuotaRejections    metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("plagiarism-check-platform")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	checksRequested, err := meter.Int64Counter(
		"checks.requested.total",
		metric.WithDescription("Total similarity checks requested"),
	)
	if err != nil {
		return nil, err
	}

	checksProcessed, err := meter.Int64Counter(
		"checks.processed.total",
		metric.WithDescription("Total check jobs processed by the worker"),
	)
	if err != nil {
		return nil, err
	}

	processingDuration, err := meter.Float64Histogram(
		"checks.processing.duration",
		metric.WithDescription("Check scoring duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	quotaRejections, err := meter.Int64Counter(
		"checks.quota.rejections",
		metric.WithDescription("Check requests rejected by the daily quota"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:     requestCounter,
		RequestDuration:    requestDuration,
		ChecksRequested:    checksRequested,
		ChecksProcessed:    checksProcessed,
		ProcessingDuration: processingDuration,
		QuotaRejections:    quotaRejections,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordCheckRequested counts an accepted check request.
func (m *Metrics) RecordCheckRequested(role string) {
	m.ChecksRequested.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("user.role", role)))
}

// RecordCheckProcessed counts a finished worker job with its terminal
// status and scoring duration.
func (m *Metrics) RecordCheckProcessed(status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("check.status", status),
	}

	m.ChecksProcessed.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.ProcessingDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordQuotaRejection counts a check request rejected by the daily
// quota.
func (m *Metrics) RecordQuotaRejection() {
	m.QuotaRejections.Add(context.Background(), 1)
}
