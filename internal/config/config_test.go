package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/ragerr"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "provider:\n  name: groq\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 500, cfg.RAG.ChunkSize)
	assert.Equal(t, 50, cfg.RAG.ChunkOverlap)
	assert.Equal(t, 3, cfg.RAG.TopK)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Provider.Model)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 256, cfg.Session.MaxSessions)
}

func TestLoadResolvesAPIKeyFromEnv(t *testing.T) {
	t.Setenv("TEST_RAGCHAT_KEY", "sk-secret")
	path := writeConfig(t, "provider:\n  name: openai\n  api_key_env: TEST_RAGCHAT_KEY\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-secret", cfg.Provider.APIKey)
}

func TestLoadRejectsBadChunking(t *testing.T) {
	path := writeConfig(t, "rag:\n  chunk_size: 100\n  chunk_overlap: 100\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ragerr.ErrInvalidConfig)

	path = writeConfig(t, "rag:\n  chunk_size: -5\n")
	_, err = Load(path)
	assert.ErrorIs(t, err, ragerr.ErrInvalidConfig)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaultConfigValidates(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.validate())
	assert.Equal(t, "groq", cfg.Provider.Name)
}
