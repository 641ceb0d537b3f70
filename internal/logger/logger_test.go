package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", "json").WithRequestID("req-1").WithFields(map[string]any{"flight_id": 7})
	l.Info("booked")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "booked", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, float64(7), line["flight_id"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn", "json")
	l.Info("hidden")
	assert.Zero(t, buf.Len())
	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestContextRoundTrip(t *testing.T) {
	fallback := Nop()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))

	l := Nop()
	ctx := IntoContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx, fallback))
}
