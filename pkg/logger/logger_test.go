package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_JSON(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "json", "debug")
	t.Cleanup(func() { Configure(nil, "console", "info") })

	Log.Debug().Int("days", 100).Msg("simulation finished")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "simulation finished", entry["message"])
	assert.Equal(t, float64(100), entry["days"])
}

func TestSetLevel_InvalidFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, "json", "verbose")
	t.Cleanup(func() { Configure(nil, "console", "info") })

	assert.Equal(t, zerolog.InfoLevel, Log.GetLevel())
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
