package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestZerologLogger_ComponentAndFields(t *testing.T) {
	t.Setenv("APP_ENV", "")
	require.NoError(t, SetLevel("debug"))
	t.Cleanup(func() { _ = SetLevel("info") })

	var buf bytes.Buffer
	l := NewZerologLoggerTo(&buf, "planner")
	l.Debugw("run", map[string]any{"iterations": 3})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "planner", line["component"])
	assert.Equal(t, "run", line["message"])
	assert.Equal(t, 3.0, line["iterations"])
}

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { _ = SetLevel("info") })
	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.Error(t, SetLevel("loud"))
	require.NoError(t, SetLevel(""))
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
