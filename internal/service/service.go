// Package service orchestrates a full emissions computation: activity rows
// are mapped to records, run through the calculator, joined with the
// manufacturing result, and aggregated into a summary. The CLI and the HTTP
// API share it.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rshade/ghgfreight/internal/engine"
	"github.com/rshade/ghgfreight/internal/engine/batch"
	"github.com/rshade/ghgfreight/internal/ingest"
	"github.com/rshade/ghgfreight/internal/logging"
	"github.com/rshade/ghgfreight/internal/reference"
)

// ErrNoDataset is returned by New when no reference dataset is supplied.
var ErrNoDataset = errors.New("reference dataset is required")

// ManufacturingObserver receives manufacturing results.
type ManufacturingObserver interface {
	ObserveManufacturing(result engine.ManufacturingResult)
}

// Options configures a Service. Zero values select the engine defaults.
type Options struct {
	Concurrency    int
	BatchSize      int
	Pollutants     []reference.Pollutant
	FallbackFactor *float64
	Observer       engine.Observer
	Manufacturing  ManufacturingObserver
	Progress       batch.ProgressCallback
}

// Service computes emissions against one immutable reference dataset. It is
// safe for concurrent use.
type Service struct {
	dataset       *reference.Dataset
	resolver      *engine.Resolver
	calculator    *engine.Calculator
	manufacturing *engine.ManufacturingCalculator
	mfgObserver   ManufacturingObserver
}

// New constructs a Service over ds.
func New(ds *reference.Dataset, opts Options) (*Service, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}

	batchSize := opts.BatchSize
	if batchSize == 0 {
		batchSize = batch.DefaultBatchSize
	}
	proc, err := batch.NewProcessor(batchSize, opts.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("configuring batch processor: %w", err)
	}
	if opts.Progress != nil {
		proc = proc.WithProgressCallback(opts.Progress)
	}

	calcOpts := []engine.CalculatorOption{engine.WithProcessor(proc)}
	if len(opts.Pollutants) > 0 {
		calcOpts = append(calcOpts, engine.WithPollutants(opts.Pollutants...))
	}
	if opts.Observer != nil {
		calcOpts = append(calcOpts, engine.WithObserver(opts.Observer))
	}

	fallback := -1.0
	if opts.FallbackFactor != nil {
		fallback = *opts.FallbackFactor
	}

	resolver := engine.NewResolverFromDataset(ds)
	return &Service{
		dataset:       ds,
		resolver:      resolver,
		calculator:    engine.NewCalculator(resolver, calcOpts...),
		manufacturing: engine.NewManufacturingCalculator(ds.Products, fallback),
		mfgObserver:   opts.Manufacturing,
	}, nil
}

// Dataset returns the reference dataset the service computes against.
func (s *Service) Dataset() *reference.Dataset { return s.dataset }

// Resolver returns the factor resolver.
func (s *Service) Resolver() *engine.Resolver { return s.resolver }

// Pollutants returns the pollutants computed per record.
func (s *Service) Pollutants() []reference.Pollutant { return s.calculator.Pollutants() }

// Outcome is the result of one computation.
type Outcome struct {
	Records       []*engine.ActivityRecord
	Results       []engine.EmissionResult
	RowErrors     []ingest.RowError
	Manufacturing *engine.ManufacturingResult
	Summary       *engine.Summary
}

// Compute runs the full pipeline for req. Row-level problems are reported in
// the outcome and never fail the call; a request without supplier data
// simply has no manufacturing result.
func (s *Service) Compute(ctx context.Context, req *ingest.ComputeRequest) (*Outcome, error) {
	if req == nil {
		return nil, ingest.ErrEmptyDocument
	}
	log := logging.FromContext(ctx)

	records, rowErrs := req.Records(ctx)
	results := s.calculator.ComputeEmissions(ctx, records)

	var mfg *engine.ManufacturingResult
	in, mfgErrs, err := req.ManufacturingInput()
	rowErrs = append(rowErrs, mfgErrs...)
	switch {
	case err == nil:
		r := s.Manufacture(ctx, in)
		mfg = &r
	case errors.Is(err, ingest.ErrNoSupplierData):
		log.Debug().
			Str("component", "service").
			Str("operation", "compute").
			Msg("no supplier data; skipping manufacturing emissions")
	default:
		return nil, err
	}

	summary := engine.Summarize(records, results, mfg)

	log.Info().
		Str("component", "service").
		Str("operation", "compute").
		Int("record_count", len(records)).
		Int("row_error_count", len(rowErrs)).
		Float64("total_emissions", summary.TotalEmissions).
		Msg("computation complete")

	return &Outcome{
		Records:       records,
		Results:       results,
		RowErrors:     rowErrs,
		Manufacturing: mfg,
		Summary:       summary,
	}, nil
}

// Manufacture computes the manufacturing emissions for one input.
func (s *Service) Manufacture(ctx context.Context, in engine.ManufacturingInput) engine.ManufacturingResult {
	r := s.manufacturing.Calculate(ctx, in)
	if s.mfgObserver != nil {
		s.mfgObserver.ObserveManufacturing(r)
	}
	return r
}

// ResolveFactor resolves one factor without computing an emission. A
// non-empty fuel selects the fuel-keyed table; otherwise vehicle is looked up
// in the freight table.
func (s *Service) ResolveFactor(
	ctx context.Context,
	pollutant reference.Pollutant,
	vehicle, fuel, region, unit string,
) engine.Resolution {
	if fuel != "" {
		return s.resolver.ResolveFuel(ctx, pollutant, fuel, unit, region)
	}
	return s.resolver.ResolveVehicle(ctx, pollutant, vehicle, region, unit)
}
