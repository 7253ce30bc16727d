package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 0.85, cfg.Fraud.SimilarityThreshold)
	assert.Equal(t, 3.0, cfg.Fraud.ZScoreThreshold)
	assert.Equal(t, 1000, cfg.Fraud.HistoryCapacity)
	assert.True(t, cfg.Fraud.EnableFuzzyMatch)
	assert.True(t, cfg.Encryption.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FRAUD_SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("FRAUD_HISTORY_CAPACITY", "50")
	t.Setenv("ENCRYPTION_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Fraud.SimilarityThreshold)
	assert.Equal(t, 50, cfg.Fraud.HistoryCapacity)
	assert.False(t, cfg.Encryption.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("environment: staging\nfraud:\n  zscore_threshold: 2.5\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, 2.5, cfg.Fraud.ZScoreThreshold)
	// Untouched sections keep their defaults.
	assert.Equal(t, 0.85, cfg.Fraud.SimilarityThreshold)
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: staging\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("AUDIT_SIGNING_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", "/nonexistent/config.yaml")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())

	bad := *cfg
	bad.Fraud.SimilarityThreshold = 1.5
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Fraud.ZScoreThreshold = -1
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Fraud.HistoryCapacity = 0
	assert.Error(t, bad.Validate())
}

func TestValidate_ProductionRequiresSigningSecret(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Environment = "production"
	cfg.Audit.SigningSecret = ""
	assert.Error(t, cfg.Validate())

	cfg.Audit.SigningSecret = "secret"
	assert.NoError(t, cfg.Validate())
}
