package config_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/ghgfreight/internal/config"
	"github.com/rshade/ghgfreight/internal/logging"
	"github.com/rshade/ghgfreight/internal/reference"
)

func TestNew_Defaults(t *testing.T) {
	cfg := config.New()

	assert.Equal(t, config.DefaultDataDir, cfg.Reference.DataDir)
	assert.Equal(t, reference.DefaultFreightFile, cfg.Reference.Files.Freight)
	assert.Equal(t, 4, cfg.Calculation.Concurrency)
	assert.Equal(t, 100, cfg.Calculation.BatchSize)
	assert.InDelta(t, 0.5, cfg.Calculation.FallbackManufacturingFactor, 1e-12)
	assert.Equal(t, "table", cfg.Output.DefaultFormat)
	assert.Equal(t, "127.0.0.1:5002", cfg.Server.Address)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := writeOverlay(t, `
reference:
  data_dir: /data
calculation:
  concurrency: 2
logging:
  level: debug
server:
  read_timeout: 5s
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data", cfg.Reference.DataDir)
	assert.Equal(t, reference.DefaultUnitConversionFile, cfg.Reference.Files.UnitConversion, "defaults survive partial sections")
	assert.Equal(t, 2, cfg.Calculation.Concurrency)
	assert.Equal(t, 100, cfg.Calculation.BatchSize)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, config.DefaultWriteTimeout, cfg.Server.WriteTimeout)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = config.Load(writeOverlay(t, "calculation: [1, 2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := config.LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.New(), cfg)
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := config.New()
	cfg.Server.CORSOrigins = []string{"http://localhost:5173"}
	cfg.Calculation.Pollutants = []string{"CO2"}
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, cfg.Save(path))
	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantMsg string
	}{
		{"empty data dir", func(c *config.Config) { c.Reference.DataDir = " " }, "data_dir"},
		{"zero concurrency", func(c *config.Config) { c.Calculation.Concurrency = 0 }, "concurrency"},
		{"batch size too large", func(c *config.Config) { c.Calculation.BatchSize = 5000 }, "batch_size"},
		{"negative fallback", func(c *config.Config) { c.Calculation.FallbackManufacturingFactor = -1 }, "fallback"},
		{"unknown pollutant", func(c *config.Config) { c.Calculation.Pollutants = []string{"N2O"} }, "pollutants"},
		{"bad format", func(c *config.Config) { c.Output.DefaultFormat = "xml" }, "default_format"},
		{"bad precision", func(c *config.Config) { c.Output.Precision = 40 }, "precision"},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "text" }, "logging.format"},
		{"no address", func(c *config.Config) { c.Server.Address = "" }, "server.address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, config.ErrInvalidConfig))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := config.New()
	cfg.Calculation.Concurrency = 0
	cfg.Output.DefaultFormat = "csv"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency")
	assert.Contains(t, err.Error(), "default_format")
}

func TestPollutantList(t *testing.T) {
	cfg := config.New()
	cfg.Calculation.Pollutants = []string{"ch4", "CO2", "CH4"}

	got, err := cfg.PollutantList()
	require.NoError(t, err)
	assert.Equal(t, []reference.Pollutant{reference.CH4, reference.CO2}, got)

	cfg.Calculation.Pollutants = nil
	got, err = cfg.PollutantList()
	require.NoError(t, err)
	assert.Equal(t, reference.Pollutants, got)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		config.EnvDataDir:        "/env/data",
		config.EnvConcurrency:    "16",
		config.EnvBatchSize:      "25",
		config.EnvFallbackFactor: "0.9",
		config.EnvLogLevel:       "warn",
		config.EnvCORSOrigins:    "http://a.test, ,http://b.test",
		config.EnvWriteTimeout:   "2m",
		config.EnvOutputFormat:   " json ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := config.New()
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, "/env/data", cfg.Reference.DataDir)
	assert.Equal(t, 16, cfg.Calculation.Concurrency)
	assert.Equal(t, 25, cfg.Calculation.BatchSize)
	assert.InDelta(t, 0.9, cfg.Calculation.FallbackManufacturingFactor, 1e-12)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 2*time.Minute, cfg.Server.WriteTimeout)
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
}

func TestApplyEnv_InvalidNumber(t *testing.T) {
	cfg := config.New()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == config.EnvConcurrency {
			return "many", true
		}
		return "", false
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvConcurrency)
	assert.Equal(t, config.DefaultConcurrency, cfg.Calculation.Concurrency)
}

func TestResolve(t *testing.T) {
	base := writeOverlay(t, "output:\n  precision: 3\n")
	overlay := writeOverlay(t, "logging:\n  level: error\n  format: json\n")

	cfg, err := config.Resolve(base, overlay, func(k string) (string, bool) {
		if k == config.EnvDataDir {
			return "/from/env", true
		}
		return "", false
	})
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Output.Precision)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "/from/env", cfg.Reference.DataDir)
}

func TestGetConfigDir_Env(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvHome, dir)

	got, err := config.GetConfigDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	path, err := config.DefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, config.ConfigFileName), path)
	require.NoError(t, config.EnsureConfigDir())
}

func TestLoggingConfig_ToLoggingConfig(t *testing.T) {
	lc := config.LoggingConfig{Level: "debug", Format: "json"}
	got := lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputStderr, got.Output)
	assert.Equal(t, "debug", got.Level)

	logFile := filepath.Join(t.TempDir(), "logs", "ghgfreight.log")
	lc.File = logFile
	got = lc.ToLoggingConfig()
	assert.Equal(t, logging.OutputFile, got.Output)
	assert.Equal(t, logFile, got.File)
	require.NoError(t, lc.EnsureLogDir())
	assert.DirExists(t, filepath.Dir(logFile))
}
