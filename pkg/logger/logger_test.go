package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), "entry=%s", buf.String())
	return entry
}

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Format: FormatJSON, Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithResource(ctx, "beer_order", 7)

	log.Error(ctx, "boom", errors.New("boom"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, "beer_order", entry["resource"])
	assert.EqualValues(t, 7, entry["resource_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Contains(t, entry, "stack")
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Format: FormatJSON, Output: buf, WarnStack: true})
	log.WarnErr(context.Background(), "cache unavailable", errors.New("dial tcp"))

	entry := decodeLine(t, buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "dial tcp", entry["error"])
	assert.Contains(t, entry, "stack")

	buf.Reset()
	quiet := New(Options{ServiceName: "test", Format: FormatJSON, Output: buf})
	quiet.Warn(context.Background(), "warny")
	assert.NotContains(t, decodeLine(t, buf), "stack")
}

func TestLoggerLevelFiltersDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.InfoLevel, Format: FormatJSON, Output: buf})
	log.Debug(context.Background(), "hidden")
	assert.Zero(t, buf.Len())
}

func TestParseLevelDefaults(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("invalid"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
}
