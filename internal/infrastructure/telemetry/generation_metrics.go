package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics constructor receives no meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// Attribute keys shared by spans and metrics
var (
	AttrDocType   = attribute.Key("doc_type")
	AttrDocNo     = attribute.Key("doc_no")
	AttrStatus    = attribute.Key("status")
	AttrErrorCode = attribute.Key("error_code")
	AttrCacheHit  = attribute.Key("cache_hit")
)

// CaptureDurationBuckets suit a headless browser render (seconds)
var CaptureDurationBuckets = []float64{0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 30, 60}

// PDFSizeBuckets span a blank page up to a dense 3x JPEG (bytes)
var PDFSizeBuckets = []float64{50e3, 100e3, 250e3, 500e3, 1e6, 2e6, 4e6, 8e6}

// GenerationMetrics records artifact generation outcomes
type GenerationMetrics struct {
	generations     metric.Int64Counter
	captureDuration metric.Float64Histogram
	pdfBytes        metric.Float64Histogram
}

// NewGenerationMetrics registers the generation instruments on meter
func NewGenerationMetrics(meter metric.Meter) (*GenerationMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	generations, err := meter.Int64Counter("voucher_generations_total",
		metric.WithDescription("Artifact generations by document type and outcome"),
		metric.WithUnit("{generation}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation counter: %w", err)
	}

	captureDuration, err := meter.Float64Histogram("voucher_capture_duration_seconds",
		metric.WithDescription("Time spent rasterizing one page"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(CaptureDurationBuckets...))
	if err != nil {
		return nil, fmt.Errorf("failed to create capture histogram: %w", err)
	}

	pdfBytes, err := meter.Float64Histogram("voucher_pdf_bytes",
		metric.WithDescription("Size of generated PDFs"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(PDFSizeBuckets...))
	if err != nil {
		return nil, fmt.Errorf("failed to create pdf size histogram: %w", err)
	}

	return &GenerationMetrics{
		generations:     generations,
		captureDuration: captureDuration,
		pdfBytes:        pdfBytes,
	}, nil
}

// RecordGeneration counts one generation. errorCode is empty on success.
func (m *GenerationMetrics) RecordGeneration(ctx context.Context, docType, errorCode string, cacheHit bool) {
	if m == nil {
		return
	}
	status := "success"
	attrs := []attribute.KeyValue{AttrDocType.String(docType), AttrCacheHit.Bool(cacheHit)}
	if errorCode != "" {
		status = "failure"
		attrs = append(attrs, AttrErrorCode.String(errorCode))
	}
	m.generations.Add(ctx, 1, metric.WithAttributes(append(attrs, AttrStatus.String(status))...))
}

// RecordCapture records how long a capture took
func (m *GenerationMetrics) RecordCapture(ctx context.Context, docType string, d time.Duration) {
	if m == nil {
		return
	}
	m.captureDuration.Record(ctx, d.Seconds(), metric.WithAttributes(AttrDocType.String(docType)))
}

// RecordPDFSize records the size of an assembled PDF
func (m *GenerationMetrics) RecordPDFSize(ctx context.Context, docType string, size int) {
	if m == nil {
		return
	}
	m.pdfBytes.Record(ctx, float64(size), metric.WithAttributes(AttrDocType.String(docType)))
}
