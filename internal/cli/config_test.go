package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ghgfreight/internal/config"
)

func TestConfigInit(t *testing.T) {
	_, lookup := cliEnv(t, nil)

	out, _, err := execute(t, lookup, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized successfully")

	path, err := config.DefaultConfigPath()
	require.NoError(t, err)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.New(), cfg)

	_, _, err = execute(t, lookup, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, lookup, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigInit_ExplicitPath(t *testing.T) {
	_, lookup := cliEnv(t, nil)
	path := filepath.Join(t.TempDir(), "nested", "ghgfreight.yaml")

	_, _, err := execute(t, lookup, "config", "init", "--config", path)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	dir, lookup := cliEnv(t, nil)

	out, _, err := execute(t, lookup, "config", "validate", "--data-dir", dir, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Version: 2024.1.0")
	assert.Contains(t, out, "Suppliers: 3")

	_, _, err = execute(t, lookup, "config", "validate", "--data-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference dataset validation failed")
}

func TestConfigValidate_ReportsEveryError(t *testing.T) {
	dir, lookup := cliEnv(t, map[string]string{
		"GHGFREIGHT_CONCURRENCY":   "0",
		"GHGFREIGHT_LOG_FORMAT":    "xml",
		"GHGFREIGHT_OUTPUT_FORMAT": "yaml",
	})

	_, stderr, err := execute(t, lookup, "config", "validate", "--data-dir", dir)
	require.Error(t, err)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, stderr, "calculation.concurrency")
	assert.Contains(t, stderr, "logging.format")
	assert.Contains(t, stderr, "output.default_format")
}

func TestConfigShow(t *testing.T) {
	_, lookup := cliEnv(t, map[string]string{"GHGFREIGHT_SERVER_ADDRESS": "0.0.0.0:8080"})

	out, _, err := execute(t, lookup, "config", "show", "--data-dir", "/srv/reference")
	require.NoError(t, err)
	assert.Contains(t, out, "data_dir: /srv/reference")
	assert.Contains(t, out, "address: 0.0.0.0:8080")
}

func TestConfigOverlay(t *testing.T) {
	_, lookup := cliEnv(t, nil)
	overlay := writeFile(t, "overlay.yaml", "output:\n  default_format: json\n  precision: 3\n")

	out, _, err := execute(t, lookup, "config", "show", "--config-overlay", overlay)
	require.NoError(t, err)
	assert.Contains(t, out, "default_format: json")
	assert.Contains(t, out, "precision: 3")
}
