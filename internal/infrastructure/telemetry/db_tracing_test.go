package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/distro/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedBill struct {
	ID        uint   `gorm:"primaryKey"`
	InvoiceNo string `gorm:"size:100"`
	CreatedAt time.Time
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedBill{}))
	return db
}

func setupRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, sr
}

func TestNewDBTracingConfig(t *testing.T) {
	tests := []struct {
		name    string
		tel     config.TelemetryConfig
		db      config.DatabaseConfig
		enabled bool
		thresh  time.Duration
	}{
		{"telemetry off", config.TelemetryConfig{Enabled: false, DBTraceEnabled: true}, config.DatabaseConfig{}, false, DefaultSlowQueryThreshold},
		{"db tracing off", config.TelemetryConfig{Enabled: true}, config.DatabaseConfig{}, false, DefaultSlowQueryThreshold},
		{"both on with slow threshold", config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}, config.DatabaseConfig{SlowThreshold: time.Second}, true, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDBTracingConfig(tt.tel, tt.db)
			assert.Equal(t, tt.enabled, cfg.Enabled)
			assert.Equal(t, tt.thresh, cfg.SlowQueryThresh)
			assert.Equal(t, "postgresql", cfg.DBSystem)
			assert.False(t, cfg.LogFullSQL)
		})
	}
}

func TestNewDBTracingPlugin_Defaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, nil)
	assert.Equal(t, DefaultSlowQueryThreshold, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBSystem)
}

func TestDBTracingPlugin_RegisterOtelGorm_Disabled(t *testing.T) {
	db := setupTestDB(t)
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: false}, zap.NewNop())

	require.NoError(t, p.RegisterOtelGorm(db))
	assert.Nil(t, db.Callback().Query().Get("otel_timing:after_query"))
}

func TestDBTracingPlugin_RegisterOtelGorm_RecordsQuerySpans(t *testing.T) {
	db := setupTestDB(t)
	tp, sr := setupRecorder(t)
	core, logs := observer.New(zap.InfoLevel)

	p := NewDBTracingPlugin(DBTracingConfig{
		Enabled:        true,
		DBSystem:       "sqlite",
		TracerProvider: tp,
	}, zap.New(core))
	require.NoError(t, p.RegisterOtelGorm(db))
	assert.Equal(t, 1, logs.FilterMessage("Database tracing enabled").Len())

	ctx, parent := tp.Tracer("test").Start(context.Background(), "free_issue.receive")
	tx := db.WithContext(ctx)
	require.NoError(t, tx.Create(&tracedBill{InvoiceNo: "INV-1"}).Error)

	var found tracedBill
	require.NoError(t, tx.First(&found, "invoice_no = ?", "INV-1").Error)
	parent.End()

	spans := sr.Ended()
	require.GreaterOrEqual(t, len(spans), 3)
	for _, s := range spans[:len(spans)-1] {
		assert.Equal(t, parent.SpanContext().TraceID(), s.SpanContext().TraceID())
	}
}

func TestDBTracingPlugin_RegisterOtelGorm_Twice(t *testing.T) {
	db := setupTestDB(t)
	tp, _ := setupRecorder(t)
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, TracerProvider: tp}, zap.NewNop())

	require.NoError(t, p.RegisterOtelGorm(db))
	assert.Error(t, p.RegisterOtelGorm(db))
}

func TestAnnotateSpan(t *testing.T) {
	db := setupTestDB(t)
	tp, sr := setupRecorder(t)
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "sql")
	ctx = WithQueryStartTime(ctx)
	time.Sleep(2 * time.Millisecond)

	tx := db.WithContext(ctx)
	tx.Statement.Table = "order_items"
	tx.Statement.RowsAffected = 3
	tx.Error = errors.New("deadlock detected")
	p.annotateSpan(tx)
	span.End()

	recorded := sr.Ended()[0]
	attrs := attrMap(recorded.Attributes())
	assert.Equal(t, "order_items", attrs["db.sql.table"].AsString())
	assert.Equal(t, int64(3), attrs["db.rows_affected"].AsInt64())
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.Equal(t, codes.Error, recorded.Status().Code)

	var names []string
	for _, e := range recorded.Events() {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "slow_query_warning")
}

func TestAnnotateSpan_IgnoresRecordNotFoundAndFastQueries(t *testing.T) {
	db := setupTestDB(t)
	tp, sr := setupRecorder(t)
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Hour}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "sql")
	tx := db.WithContext(WithQueryStartTime(ctx))
	tx.Error = gorm.ErrRecordNotFound
	p.annotateSpan(tx)
	span.End()

	recorded := sr.Ended()[0]
	assert.NotEqual(t, codes.Error, recorded.Status().Code)
	_, slow := attrMap(recorded.Attributes())["db.slow_query"]
	assert.False(t, slow)
	assert.Empty(t, recorded.Events())
}
