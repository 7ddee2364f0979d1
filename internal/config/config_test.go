package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "explicit path that does not exist must fail")

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Memory.MaxContextTurns)
	assert.Equal(t, 8000, cfg.Memory.MaxContextTokens)
	assert.True(t, cfg.Memory.EnableDiffCompression)
	assert.True(t, cfg.Memory.EnableSummarization)
	assert.Equal(t, 30, cfg.Memory.SessionMaxAgeDays)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
memory:
  max_context_turns: 12
  max_context_tokens: 16000
  enable_summarization: false
  session_storage_path: /tmp/kora-test-sessions
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Memory.MaxContextTurns)
	assert.Equal(t, 16000, cfg.Memory.MaxContextTokens)
	assert.False(t, cfg.Memory.EnableSummarization)
	assert.True(t, cfg.Memory.EnableDiffCompression, "unset fields keep defaults")
	assert.Equal(t, "/tmp/kora-test-sessions", cfg.Memory.SessionStoragePath)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("KORA_MEMORY_MAX_CONTEXT_TURNS", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Memory.MaxContextTurns)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("memory:\n  max_context_turns: -1\n"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "max_context_turns")
}
