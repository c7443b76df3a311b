package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)
	log.Debug().Str("path", "/tmp/x").Msg("skipping")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "/tmp/x", entry["path"])
	assert.Equal(t, "skipping", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New("loud", &buf)
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filedex.log")
	log, closer, err := OpenFile("info", path)
	require.NoError(t, err)
	log.Info().Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)

	_, _, err = OpenFile("info", filepath.Join(t.TempDir(), "missing", "x.log"))
	assert.Error(t, err)
}
