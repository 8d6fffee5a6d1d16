package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testTraceID = trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36}

func withSampledSpan(ctx context.Context) context.Context {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    testTraceID,
		SpanID:     trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(ctx, sc)
}

func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return zap.New(core), recorded
}

func TestFromContext_FallsBackToProcessLogger(t *testing.T) {
	global, recorded := observed()
	restore := zap.ReplaceGlobals(global)
	defer restore()

	FromContext(context.Background()).Error("export failed")

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "export failed", recorded.All()[0].Message)
}

func TestFromContext_WrongTypeIsIgnored(t *testing.T) {
	ctx := context.WithValue(context.Background(), loggerKey, "not a logger")
	assert.NotPanics(t, func() { FromContext(ctx).Info("ignored") })
}

func TestWithIDs(t *testing.T) {
	base, recorded := observed()
	ctx := context.Background()

	ctx, log := WithRequestID(ctx, base, "req-42")
	ctx, log = WithUserID(ctx, log, "5c1c3a0e-user")
	ctx, log = WithBranchID(ctx, log, "2")

	assert.Equal(t, "req-42", GetRequestID(ctx))
	assert.Equal(t, "5c1c3a0e-user", GetUserID(ctx))
	assert.Equal(t, "2", GetBranchID(ctx))
	assert.Same(t, log, FromContext(ctx))

	FromContext(ctx).Info("debt created")
	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "5c1c3a0e-user", fields["user_id"])
	assert.Equal(t, "2", fields["branch_id"])
}

func TestGetIDs_Missing(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetUserID(ctx))
	assert.Empty(t, GetBranchID(ctx))
}

func TestRequestFields(t *testing.T) {
	assert.Empty(t, requestFields(context.Background()))

	ctx, log := WithRequestID(context.Background(), zap.NewNop(), "req-1")
	ctx, _ = WithBranchID(ctx, log, "1")
	ctx = withSampledSpan(ctx)

	got := map[string]string{}
	for _, f := range requestFields(ctx) {
		got[f.Key] = f.String
	}
	assert.Equal(t, map[string]string{
		"request_id": "req-1",
		"branch_id":  "1",
		"trace_id":   testTraceID.String(),
	}, got)
}

func TestRequestFields_NoopSpanHasNoTrace(t *testing.T) {
	ctx, span := noop.NewTracerProvider().Tracer("ledger").Start(context.Background(), "settle")
	defer span.End()

	for _, f := range requestFields(ctx) {
		assert.NotEqual(t, "trace_id", f.Key)
	}
}
