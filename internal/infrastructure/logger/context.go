package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// The HTTP middleware stores the request logger and the caller's ids on the
// request context. Handlers log through FromContext; the GORM logger copies
// the ids onto every statement it logs.

type ctxKey int

const (
	loggerKey ctxKey = iota
	requestIDKey
	userIDKey
	branchIDKey
)

// fieldNames maps each id key to the log field it is written as
var fieldNames = map[ctxKey]string{
	requestIDKey: "request_id",
	userIDKey:    "user_id",
	branchIDKey:  "branch_id",
}

// FromContext returns the request logger, or the process logger installed
// with zap.ReplaceGlobals when ctx has none.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.L()
}

// WithRequestID records the request id on ctx and on the returned logger
func WithRequestID(ctx context.Context, log *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	return withID(ctx, log, requestIDKey, requestID)
}

// WithUserID records the authenticated user on ctx and on the returned logger
func WithUserID(ctx context.Context, log *zap.Logger, userID string) (context.Context, *zap.Logger) {
	return withID(ctx, log, userIDKey, userID)
}

// WithBranchID records the caller's branch on ctx and on the returned logger
func WithBranchID(ctx context.Context, log *zap.Logger, branchID string) (context.Context, *zap.Logger) {
	return withID(ctx, log, branchIDKey, branchID)
}

func withID(ctx context.Context, log *zap.Logger, key ctxKey, value string) (context.Context, *zap.Logger) {
	log = log.With(zap.String(fieldNames[key], value))
	ctx = context.WithValue(ctx, key, value)
	return context.WithValue(ctx, loggerKey, log), log
}

// GetRequestID, GetUserID and GetBranchID return the ids the middleware put
// on ctx, or "".
func GetRequestID(ctx context.Context) string { return idFrom(ctx, requestIDKey) }

func GetUserID(ctx context.Context) string { return idFrom(ctx, userIDKey) }

func GetBranchID(ctx context.Context) string { return idFrom(ctx, branchIDKey) }

func idFrom(ctx context.Context, key ctxKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// requestFields returns the ids found on ctx plus the trace id of a valid span
func requestFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	for _, key := range []ctxKey{requestIDKey, userIDKey, branchIDKey} {
		if v := idFrom(ctx, key); v != "" {
			fields = append(fields, zap.String(fieldNames[key], v))
		}
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
	}
	return fields
}
