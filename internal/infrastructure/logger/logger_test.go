package logger

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{"default config", DefaultConfig(), false},
		{"production config", ProductionConfig(), false},
		{"nil config", nil, false},
		{"debug console", &Config{Level: "debug", Format: "console", Output: "stderr"}, false},
		{"unknown level", &Config{Level: "verbose"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_FileOutputAndExtraCore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	core, recorded := observer.New(zapcore.InfoLevel)

	l, err := New(&Config{Level: "info", Format: "json", Output: path, Service: "freight"}, core)
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"service":"freight"`))
	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "hello", recorded.All()[0].Message)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"":        zapcore.InfoLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestContextLogger_EnrichesActorAndTrace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithActor(ctx, "user-1", "org-1", "")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx = trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled,
	}))

	L(ctx).With(zap.String("lr_number", "MUM-26-001")).Info("booking created")

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "org-1", fields["org_id"])
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, "MUM-26-001", fields["lr_number"])
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.NotContains(t, fields, "branch_id")
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, Fields(context.Background()))
	L(context.Background()).Info("dropped")
}

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, WithSlowThreshold(10*time.Millisecond))
	ctx := WithActor(context.Background(), "", "org-9", "")
	sqlFn := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), sqlFn, nil)
	gl.Trace(ctx, time.Now().Add(-time.Second), sqlFn, nil)
	gl.Trace(ctx, time.Now(), sqlFn, errors.New("boom"))
	gl.Trace(ctx, time.Now(), sqlFn, gormlogger.ErrRecordNotFound)

	entries := recorded.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "SQL Query", entries[0].Message)
	assert.Equal(t, "Slow SQL", entries[1].Message)
	assert.Equal(t, "SQL Error", entries[2].Message)
	assert.Equal(t, "org-9", entries[0].ContextMap()["org_id"])

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), sqlFn, errors.New("ignored"))
	assert.Equal(t, 3, recorded.Len())
}

func TestGormLogger_ParamsFilter(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Warn)
	_, params := gl.ParamsFilter(context.Background(), "SELECT ?", 1)
	assert.Nil(t, params)

	gl = NewGormLogger(zap.NewNop(), gormlogger.Warn, WithFullSQL(true))
	_, params = gl.ParamsFilter(context.Background(), "SELECT ?", 1)
	assert.Equal(t, []any{1}, params)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("whatever"))
}
