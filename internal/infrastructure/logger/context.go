package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	draftIDKey   contextKey = "draft_id"
	docTypeKey   contextKey = "doc_type"
)

// WithRequestID stores the request id in ctx
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithDraftID stores the editing session id in ctx
func WithDraftID(ctx context.Context, draftID string) context.Context {
	return context.WithValue(ctx, draftIDKey, draftID)
}

// WithDocType stores the document variant in ctx
func WithDocType(ctx context.Context, docType string) context.Context {
	return context.WithValue(ctx, docTypeKey, docType)
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetDraftID retrieves the editing session id from context
func GetDraftID(ctx context.Context) string {
	id, _ := ctx.Value(draftIDKey).(string)
	return id
}

// GetDocType retrieves the document variant from context
func GetDocType(ctx context.Context) string {
	t, _ := ctx.Value(docTypeKey).(string)
	return t
}

// Enrich adds the correlation fields in ctx to l: trace and span ids,
// request id, draft id and doc type, each only when present.
//
//	logger.Enrich(ctx, s.logger).Info("artifact generated", zap.Int("pdf_bytes", n))
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}

	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetDraftID(ctx); id != "" {
		fields = append(fields, zap.String("draft_id", id))
	}
	if t := GetDocType(ctx); t != "" {
		fields = append(fields, zap.String("doc_type", t))
	}

	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
