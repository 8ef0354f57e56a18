package context

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceContext contains request tracing information.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, tc *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, tc)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext builds a TraceContext for an incoming request.
// An active OpenTelemetry span wins over generated ids so log lines and
// spans correlate.
func NewTraceContext(ctx context.Context, requestID, traceID string) *TraceContext {
	tc := &TraceContext{RequestID: requestID, TraceID: traceID}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		tc.TraceID = sc.TraceID().String()
		tc.SpanID = sc.SpanID().String()
	}
	if tc.RequestID == "" {
		tc.RequestID = uuid.New().String()
	}
	if tc.TraceID == "" {
		tc.TraceID = uuid.New().String()
	}
	if tc.SpanID == "" {
		tc.SpanID = uuid.New().String()[:16]
	}
	return tc
}
