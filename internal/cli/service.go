package cli

import (
	"context"
	"fmt"

	"github.com/rshade/ghgfreight/internal/config"
	"github.com/rshade/ghgfreight/internal/engine/batch"
	"github.com/rshade/ghgfreight/internal/observability"
	"github.com/rshade/ghgfreight/internal/reference"
	"github.com/rshade/ghgfreight/internal/service"
)

// serviceOptions converts the calculation section into service options.
func serviceOptions(cfg *config.Config) (service.Options, error) {
	pollutants, err := cfg.PollutantList()
	if err != nil {
		return service.Options{}, err
	}
	fallback := cfg.Calculation.FallbackManufacturingFactor
	return service.Options{
		Concurrency:    cfg.Calculation.Concurrency,
		BatchSize:      cfg.Calculation.BatchSize,
		Pollutants:     pollutants,
		FallbackFactor: &fallback,
		Progress:       logProgress,
	}, nil
}

// logProgress reports batch progress at debug level.
func logProgress(s batch.ProgressSnapshot) {
	logger.Debug().
		Int("processed_items", s.ProcessedItems).
		Int("total_items", s.TotalItems).
		Int("processed_batches", s.ProcessedBatches).
		Float64("percent_complete", s.PercentComplete).
		Dur("elapsed", s.Elapsed).
		Msg("batch progress")
}

// loadService loads the reference dataset named by cfg and builds a Service
// over it. A non-nil metrics receives calculation and dataset observations.
func loadService(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (*service.Service, error) {
	ds, err := reference.LoadDataset(ctx, cfg.LoadOptions())
	if err != nil {
		return nil, fmt.Errorf("loading reference dataset from %s: %w", cfg.Reference.DataDir, err)
	}

	opts, err := serviceOptions(cfg)
	if err != nil {
		return nil, err
	}
	if metrics != nil {
		opts.Observer = metrics
		opts.Manufacturing = metrics
		metrics.ObserveDataset(ds)
	}
	return service.New(ds, opts)
}

// dataVersion returns the dataset manifest version, or "".
func dataVersion(ds *reference.Dataset) string {
	if ds == nil || ds.Manifest == nil {
		return ""
	}
	return ds.Manifest.Version
}
