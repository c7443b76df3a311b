package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"filedex/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate moves the test into an empty working directory and home so no
// stray filedex.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseDirectory, cfg.BaseDirectory)
	assert.Equal(t, DefaultIndexPath, cfg.IndexPath)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, store.CodecZstd, cfg.StoreCodec())
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultIgnoreFile, cfg.IgnoreFile)
	assert.Equal(t, AppName+".log", cfg.LogPath())
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("BASE_DIRECTORY", "/srv/data")
	t.Setenv("FILEDEX_INDEX_PATH", "/var/lib/filedex/idx.fdx")
	t.Setenv("FILEDEX_WORKERS", "3")
	t.Setenv("FILEDEX_CODEC", "gzip")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "/srv/data", cfg.BaseDirectory)
	assert.Equal(t, "/var/lib/filedex/idx.fdx", cfg.IndexPath)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, store.CodecGzip, cfg.StoreCodec())
	assert.Equal(t, "/var/lib/filedex/filedex.log", cfg.LogPath())
}

func TestLoadPrefixedBaseDirectoryWins(t *testing.T) {
	isolate(t)
	t.Setenv("BASE_DIRECTORY", "/plain")
	t.Setenv("FILEDEX_BASE_DIRECTORY", "/prefixed")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "/prefixed", cfg.BaseDirectory)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "filedex.yaml"),
		[]byte("base_directory: /from/file\ncodec: none\nworkers: 0\n"), 0o644))

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "/from/file", cfg.BaseDirectory)
	assert.Equal(t, store.CodecNone, cfg.StoreCodec())
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestLoadExplicitConfigFileMustExist(t *testing.T) {
	dir := isolate(t)
	_, err := Load(New(), filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownCodec(t *testing.T) {
	isolate(t)
	t.Setenv("FILEDEX_CODEC", "lz77")

	_, err := Load(New(), "")
	assert.Error(t, err)
}
