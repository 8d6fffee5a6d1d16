package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig configures query spans.
type DBTracingConfig struct {
	Enabled bool
	// LogFullSQL keeps bound values in span statements; never in production
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBName          string
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm and a callback pair that flags slow or
// failed statements on the active span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		annotateQuerySpan(tx, cfg.SlowQueryThresh)
	}
	if err := registerAround(db, "ledger_trace", before, after); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateQuerySpan(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.RecordError(tx.Error)
		span.SetStatus(codes.Error, tx.Error.Error())
	}
	if start, ok := ctx.Value(queryStartKey{}).(time.Time); ok {
		if elapsed := time.Since(start); elapsed > threshold {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
		}
	}
}

// registerAround hooks before and after every gorm callback chain.
func registerAround(db *gorm.DB, prefix string, before, after func(*gorm.DB)) error {
	cb := db.Callback()
	steps := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, s := range steps {
		if err := s.before(prefix+":before_"+s.op, before); err != nil {
			return err
		}
		if err := s.after(prefix+":after_"+s.op, after); err != nil {
			return err
		}
	}
	return nil
}

// DBMetrics records query counts, latency and connection pool state.
type DBMetrics struct {
	queries      *Counter
	duration     *Histogram
	slowQueries  *Counter
	poolConns    *Gauge
	slowThresh   time.Duration
	poolInterval time.Duration
	sqlDB        *sql.DB
	logger       *zap.Logger
	stopCh       chan struct{}
	stopOnce     sync.Once
}

// NewDBMetrics creates the database instruments.
func NewDBMetrics(meter metric.Meter, slowThresh, poolInterval time.Duration, logger *zap.Logger) (*DBMetrics, error) {
	if slowThresh <= 0 {
		slowThresh = 200 * time.Millisecond
	}
	if poolInterval <= 0 {
		poolInterval = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &DBMetrics{slowThresh: slowThresh, poolInterval: poolInterval, logger: logger, stopCh: make(chan struct{})}
	var err error
	if m.queries, err = NewCounter(meter, "db_query_total", "Database statements by operation", "{query}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, "db_query_duration_seconds", "Statement latency", "s", DBDurationBuckets...); err != nil {
		return nil, err
	}
	if m.slowQueries, err = NewCounter(meter, "db_slow_query_total", "Statements slower than the threshold", "{query}"); err != nil {
		return nil, err
	}
	if m.poolConns, err = NewGauge(meter, "db_pool_connections", "Pool connections by state", "{connection}"); err != nil {
		return nil, err
	}
	return m, nil
}

// Register hooks the metrics into db and starts pool sampling.
func (m *DBMetrics) Register(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	m.sqlDB = sqlDB

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	if err := registerAround(db, "ledger_metrics", before, m.observe); err != nil {
		return err
	}
	go m.samplePool(ctx)
	m.logger.Info("Database metrics enabled", zap.Duration("pool_interval", m.poolInterval))
	return nil
}

func (m *DBMetrics) observe(tx *gorm.DB) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	attrs := []attribute.KeyValue{
		AttrDBOperation.String(operationOf(tx)),
		AttrDBTable.String(tx.Statement.Table),
	}
	m.queries.Inc(ctx, attrs...)
	m.duration.RecordDuration(ctx, elapsed, attrs...)
	if elapsed > m.slowThresh {
		m.slowQueries.Inc(ctx, attrs...)
	}
}

func operationOf(tx *gorm.DB) string {
	fields := strings.Fields(tx.Statement.SQL.String())
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}

func (m *DBMetrics) samplePool(ctx context.Context) {
	ticker := time.NewTicker(m.poolInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := m.sqlDB.Stats()
			m.poolConns.Record(ctx, int64(stats.InUse), AttrDBState.String("in_use"))
			m.poolConns.Record(ctx, int64(stats.Idle), AttrDBState.String("idle"))
			m.poolConns.Record(ctx, int64(stats.MaxOpenConnections), AttrDBState.String("max"))
		}
	}
}

// Stop ends pool sampling.
func (m *DBMetrics) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}
