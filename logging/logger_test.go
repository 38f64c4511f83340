package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFieldConstructors 测试字段构造函数
func TestFieldConstructors(t *testing.T) {
	tests := []struct {
		name    string
		field   Field
		wantKey string
	}{
		{name: "String字段", field: String("name", "test"), wantKey: "name"},
		{name: "Int字段", field: Int("count", 123), wantKey: "count"},
		{name: "Int64字段", field: Int64("id", int64(456)), wantKey: "id"},
		{name: "Bool字段", field: Bool("active", true), wantKey: "active"},
		{name: "Any字段", field: Any("data", map[string]int{"a": 1}), wantKey: "data"},
		{name: "Error字段", field: Error(errors.New("test error")), wantKey: "error"},
		{name: "Duration字段", field: Duration("took", time.Second), wantKey: "took"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, tt.field.Key)
			assert.NotNil(t, tt.field.Value)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel("warning"))
	assert.Equal(t, ErrorLevel, ParseLevel(" error "))
	assert.Equal(t, InfoLevel, ParseLevel("info"))
	assert.Equal(t, InfoLevel, ParseLevel("unknown"))
}

// TestSlogLogger_Text 测试文本输出
func TestSlogLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(Options{Level: DebugLevel, Output: &buf})
	ctx := context.Background()

	logger.Debug(ctx, "debug message", String("key", "value"))
	logger.Error(ctx, "error message", Error(errors.New("boom")))

	output := buf.String()
	assert.Contains(t, output, "level=DEBUG")
	assert.Contains(t, output, `msg="debug message"`)
	assert.Contains(t, output, "key=value")
	assert.Contains(t, output, "level=ERROR")
	assert.Contains(t, output, "error=boom")
}

// TestSlogLogger_JSON 测试 JSON 输出
func TestSlogLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(Options{Level: InfoLevel, Format: "json", Output: &buf})

	logger.Info(context.Background(), "search", Int("total", 3), Duration("took", 2*time.Millisecond))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "search", record["msg"])
	assert.Equal(t, float64(3), record["total"])
	assert.Equal(t, "2ms", record["took"])
}

// TestSlogLogger_LevelFilter 测试级别过滤
func TestSlogLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(Options{Level: WarnLevel, Output: &buf})
	ctx := context.Background()

	logger.Debug(ctx, "hidden")
	logger.Info(ctx, "hidden")
	assert.Empty(t, buf.String())

	logger.Warn(ctx, "shown")
	assert.Contains(t, buf.String(), "shown")
}

// TestSlogLogger_WithFields 测试 WithFields 不改变原 Logger
func TestSlogLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogLogger(Options{Output: &buf})
	scoped := logger.WithFields(String("module", "users"), String("op", "search"))

	ctx := context.Background()
	scoped.Info(ctx, "scoped", String("ip", "192.168.1.1"))
	logger.Info(ctx, "plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "module=users")
	assert.Contains(t, lines[0], "op=search")
	assert.Contains(t, lines[0], "ip=192.168.1.1")
	assert.NotContains(t, lines[1], "module=users")
}

// TestNoopLogger 测试NoopLogger
func TestNoopLogger(t *testing.T) {
	logger := NewNoopLogger()
	ctx := context.Background()

	logger.Debug(ctx, "test")
	logger.Info(ctx, "test")
	logger.Warn(ctx, "test")
	logger.Error(ctx, "test")

	assert.Same(t, logger, logger.WithFields(String("key", "value")))
}

// TestGlobalLogger 测试全局Logger
func TestGlobalLogger(t *testing.T) {
	originalLogger := GetLogger()
	defer SetLogger(originalLogger)

	var buf bytes.Buffer
	SetLogger(NewSlogLogger(Options{Output: &buf}))
	SetLogger(nil)

	ComponentLogger("repository.memory").Info(context.Background(), "hello")
	assert.Contains(t, buf.String(), "component=repository.memory")
}

func TestLoggerInterface(t *testing.T) {
	var _ Logger = (*SlogLogger)(nil)
	var _ Logger = (*NoopLogger)(nil)
}

// BenchmarkSlogLogger_Info 基准测试：Info日志
func BenchmarkSlogLogger_Info(b *testing.B) {
	logger := NewSlogLogger(Options{Output: &bytes.Buffer{}})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info(ctx, "benchmark message", String("key", "value"))
	}
}
