package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rshade/ghgfreight/internal/logging"
)

// ToLoggingConfig maps the logging section onto logging.Config. A configured
// file switches output from stderr to that file.
func (lc *LoggingConfig) ToLoggingConfig() logging.Config {
	cfg := logging.Config{Level: lc.Level, Format: lc.Format, Output: logging.OutputStderr}
	if lc.File != "" {
		cfg.Output, cfg.File = outputTypeFile, lc.File
	}
	return cfg
}

// EnsureLogDir creates the parent directory of the configured log file. It
// does nothing when no log file is configured.
func (lc *LoggingConfig) EnsureLogDir() error {
	if lc.File == "" {
		return nil
	}
	logDir := filepath.Dir(lc.File)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}
