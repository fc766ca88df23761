package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by ApplyEnv.
const (
	EnvHome            = "GHGFREIGHT_HOME"
	EnvDataDir         = "GHGFREIGHT_DATA_DIR"
	EnvConcurrency     = "GHGFREIGHT_CONCURRENCY"
	EnvBatchSize       = "GHGFREIGHT_BATCH_SIZE"
	EnvFallbackFactor  = "GHGFREIGHT_FALLBACK_FACTOR"
	EnvOutputFormat    = "GHGFREIGHT_OUTPUT_FORMAT"
	EnvLogLevel        = "GHGFREIGHT_LOG_LEVEL"
	EnvLogFormat       = "GHGFREIGHT_LOG_FORMAT"
	EnvLogFile         = "GHGFREIGHT_LOG_FILE"
	EnvServerAddress   = "GHGFREIGHT_SERVER_ADDRESS"
	EnvCORSOrigins     = "GHGFREIGHT_CORS_ORIGINS"
	EnvWriteTimeout    = "GHGFREIGHT_WRITE_TIMEOUT"
	corsOriginSplitter = ","
)

// LookupFunc returns an environment value and whether it was set.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from environment variables. lookup defaults
// to os.LookupEnv. Unparseable numeric values are reported as errors and
// leave the setting unchanged.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	str(EnvDataDir, &c.Reference.DataDir)
	str(EnvOutputFormat, &c.Output.DefaultFormat)
	str(EnvLogLevel, &c.Logging.Level)
	str(EnvLogFormat, &c.Logging.Format)
	str(EnvLogFile, &c.Logging.File)
	str(EnvServerAddress, &c.Server.Address)

	if v, ok := lookup(EnvCORSOrigins); ok && strings.TrimSpace(v) != "" {
		var origins []string
		for _, o := range strings.Split(v, corsOriginSplitter) {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSOrigins = origins
	}

	if v, ok := lookup(EnvConcurrency); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvConcurrency, err)
		}
		c.Calculation.Concurrency = n
	}
	if v, ok := lookup(EnvBatchSize); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBatchSize, err)
		}
		c.Calculation.BatchSize = n
	}
	if v, ok := lookup(EnvFallbackFactor); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvFallbackFactor, err)
		}
		c.Calculation.FallbackManufacturingFactor = f
	}
	if v, ok := lookup(EnvWriteTimeout); ok {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWriteTimeout, err)
		}
		c.Server.WriteTimeout = d
	}
	return nil
}
