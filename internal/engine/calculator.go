package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rshade/ghgfreight/internal/engine/batch"
	"github.com/rshade/ghgfreight/internal/logging"
	"github.com/rshade/ghgfreight/internal/reference"
)

// CalculationPath names the formula applied to a record.
type CalculationPath string

const (
	// PathFuel computes mass = fuel amount x factor.
	PathFuel CalculationPath = "Fuel"
	// PathDistance computes mass = distance x freight tonnes x factor.
	PathDistance CalculationPath = "Distance"
)

// EmissionResult is the outcome for one record and one pollutant. Emissions
// are in metric tonnes.
type EmissionResult struct {
	RecordID          string              `json:"record_id"`
	RowIndex          int                 `json:"row_index"`
	Pollutant         reference.Pollutant `json:"pollutant"`
	Path              CalculationPath     `json:"path"`
	EmissionFactor    float64             `json:"emission_factor"`
	Emissions         float64             `json:"emissions"`
	Status            Status              `json:"status"`
	Message           string              `json:"message,omitempty"`
	Unresolved        []UnitPair          `json:"unresolved_units,omitempty"`
	SourceDescription string              `json:"source_description,omitempty"`
	Region            string              `json:"region"`
	ModeOfTransport   string              `json:"mode_of_transport"`
	Scope             string              `json:"scope"`
	ActivityType      string              `json:"activity_type,omitempty"`
	VehicleType       string              `json:"vehicle_type,omitempty"`
	Distance          *float64            `json:"distance_travelled,omitempty"`
	FreightTonnes     *float64            `json:"total_weight_of_freight,omitempty"`
	MeasurementUnit   string              `json:"units_of_measurement,omitempty"`
	FuelType          string              `json:"fuel_used,omitempty"`
	FuelAmount        *float64            `json:"fuel_amount,omitempty"`
	FuelUnit          string              `json:"unit_of_fuel_amount,omitempty"`
}

// Err returns the sentinel error for the result's status, or nil on success.
func (r EmissionResult) Err() error {
	if r.Status == StatusSuccess {
		return nil
	}
	if r.Message == "" {
		return r.Status.Err()
	}
	return fmt.Errorf("%w: %s", r.Status.Err(), r.Message)
}

// Observer receives calculation telemetry. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveResult(result EmissionResult)
	ObserveBatch(records int, elapsed time.Duration)
}

// Calculator computes per-record emissions for a set of pollutants.
type Calculator struct {
	resolver   *Resolver
	pollutants []reference.Pollutant
	processor  *batch.Processor
	observer   Observer
}

// CalculatorOption configures a Calculator.
type CalculatorOption func(*Calculator)

// WithPollutants restricts or reorders the pollutants computed per record.
func WithPollutants(p ...reference.Pollutant) CalculatorOption {
	return func(c *Calculator) {
		if len(p) > 0 {
			c.pollutants = append([]reference.Pollutant(nil), p...)
		}
	}
}

// WithProcessor sets the batch processor used by ComputeEmissions.
func WithProcessor(p *batch.Processor) CalculatorOption {
	return func(c *Calculator) {
		if p != nil {
			c.processor = p
		}
	}
}

// WithObserver attaches a telemetry observer.
func WithObserver(o Observer) CalculatorOption {
	return func(c *Calculator) { c.observer = o }
}

// NewCalculator creates a Calculator that computes CO2 then CH4 sequentially
// unless options say otherwise.
func NewCalculator(resolver *Resolver, opts ...CalculatorOption) *Calculator {
	c := &Calculator{
		resolver:   resolver,
		pollutants: append([]reference.Pollutant(nil), reference.Pollutants...),
		processor:  batch.NewProcessorWithDefaults(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pollutants returns the pollutants computed per record, in output order.
func (c *Calculator) Pollutants() []reference.Pollutant {
	return append([]reference.Pollutant(nil), c.pollutants...)
}

// ComputeEmissions returns one result per record per pollutant, ordered by
// record then pollutant. No record-level problem aborts the batch; if ctx is
// cancelled, records that were not reached are reported with StatusError.
func (c *Calculator) ComputeEmissions(ctx context.Context, records []*ActivityRecord) []EmissionResult {
	log := logging.FromContext(ctx)
	start := time.Now()

	log.Debug().
		Str("component", "engine").
		Str("operation", "compute_emissions").
		Int("record_count", len(records)).
		Int("batch_size", c.processor.BatchSize()).
		Int("concurrency", c.processor.Concurrency()).
		Msg("computing emissions")

	perRecord, err := batch.Map(ctx, c.processor, records,
		func(ctx context.Context, i int, rec *ActivityRecord) []EmissionResult {
			out := make([]EmissionResult, 0, len(c.pollutants))
			for _, p := range c.pollutants {
				if rec == nil {
					r := errorResult(nil, i, p, ErrNilRecord.Error())
					c.observe(r)
					out = append(out, r)
					continue
				}
				out = append(out, c.Calculate(ctx, rec, p))
			}
			return out
		})
	if err != nil {
		log.Warn().
			Str("component", "engine").
			Str("operation", "compute_emissions").
			Err(err).
			Msg("emission computation interrupted")
	}

	results := make([]EmissionResult, 0, len(records)*len(c.pollutants))
	for i, rs := range perRecord {
		if rs == nil {
			for _, p := range c.pollutants {
				r := errorResult(records[i], i, p, fmt.Sprintf("not calculated: %v", err))
				c.observe(r)
				results = append(results, r)
			}
			continue
		}
		results = append(results, rs...)
	}

	elapsed := time.Since(start)
	if c.observer != nil {
		c.observer.ObserveBatch(len(records), elapsed)
	}
	log.Debug().
		Str("component", "engine").
		Str("operation", "compute_emissions").
		Int("result_count", len(results)).
		Dur("duration", elapsed).
		Msg("emissions computed")

	return results
}

// Calculate computes a single record and pollutant. A panic during the
// calculation is recovered and reported as StatusError.
func (c *Calculator) Calculate(ctx context.Context, rec *ActivityRecord, p reference.Pollutant) (result EmissionResult) {
	defer func() {
		if rcv := recover(); rcv != nil {
			index := -1
			if rec != nil {
				index = rec.Index
			}
			result = errorResult(rec, index, p, fmt.Sprintf("%v", rcv))
			logging.FromContext(ctx).Warn().
				Str("component", "engine").
				Str("operation", "calculate").
				Str("record_id", result.RecordID).
				Str("pollutant", string(p)).
				Interface("panic", rcv).
				Msg("recovered from calculation failure")
		}
		c.observe(result)
	}()

	if rec == nil {
		return errorResult(nil, -1, p, ErrNilRecord.Error())
	}
	return c.calculate(ctx, rec, p)
}

func (c *Calculator) calculate(ctx context.Context, rec *ActivityRecord, p reference.Pollutant) EmissionResult {
	result := baseResult(rec, p)
	log := logging.FromContext(ctx).With().
		Str("component", "engine").
		Str("operation", "calculate").
		Str("record_id", rec.ID).
		Str("pollutant", string(p)).
		Logger()

	switch result.Path {
	case PathFuel:
		res := c.resolver.ResolveFuel(ctx, p, rec.FuelType, rec.FuelUnit, rec.Region)
		applyResolution(&result, res)
		if res.Status == StatusSuccess {
			result.Emissions = *rec.FuelAmount * res.Factor
		}
	default:
		if rec.VehicleType == "" || rec.Region == "" {
			result.Status = StatusNoData
			result.Message = "insufficient data: no fuel inputs and no vehicle type or region"
			break
		}
		if rec.Distance == nil || rec.FreightTonnes == nil {
			result.Status = StatusNoData
			result.Message = "distance travelled and freight weight are both required"
			break
		}
		res := c.resolver.ResolveVehicle(ctx, p, rec.VehicleType, rec.Region, rec.MeasurementUnit)
		applyResolution(&result, res)
		if res.Status != StatusSuccess {
			break
		}
		result.Emissions = *rec.Distance * *rec.FreightTonnes * res.Factor
	}

	log.Debug().
		Str("path", string(result.Path)).
		Str("status", string(result.Status)).
		Float64("emission_factor", result.EmissionFactor).
		Float64("emissions", result.Emissions).
		Msg("record calculated")

	return result
}

func (c *Calculator) observe(r EmissionResult) {
	if c.observer != nil {
		c.observer.ObserveResult(r)
	}
}

func applyResolution(result *EmissionResult, res Resolution) {
	result.EmissionFactor = res.Factor
	result.Status = res.Status
	result.Message = res.Message
	result.Unresolved = res.Unresolved
}

func baseResult(rec *ActivityRecord, p reference.Pollutant) EmissionResult {
	return EmissionResult{
		RecordID:          rec.ID,
		RowIndex:          rec.Index,
		Pollutant:         p,
		Path:              rec.Path(),
		SourceDescription: rec.SourceDescription,
		Region:            rec.Region,
		ModeOfTransport:   rec.ModeOfTransport,
		Scope:             rec.Scope,
		ActivityType:      rec.EffectiveActivityType(),
		VehicleType:       rec.VehicleType,
		Distance:          rec.Distance,
		FreightTonnes:     rec.FreightTonnes,
		MeasurementUnit:   rec.MeasurementUnit,
		FuelType:          rec.FuelType,
		FuelAmount:        rec.FuelAmount,
		FuelUnit:          rec.FuelUnit,
	}
}

func errorResult(rec *ActivityRecord, index int, p reference.Pollutant, msg string) EmissionResult {
	if rec == nil {
		return EmissionResult{RowIndex: index, Pollutant: p, Path: PathDistance, Status: StatusError, Message: msg}
	}
	r := baseResult(rec, p)
	r.Status = StatusError
	r.Message = msg
	r.Emissions = 0
	r.EmissionFactor = 0
	return r
}
