package api

import (
	"strings"

	"github.com/rshade/ghgfreight/internal/engine"
	"github.com/rshade/ghgfreight/internal/greenops"
	"github.com/rshade/ghgfreight/internal/ingest"
	"github.com/rshade/ghgfreight/internal/reference"
	"github.com/rshade/ghgfreight/internal/service"
)

// ComputeResponse is the body returned by POST /api/compute_ghg_emissions.
// Masses are metric tonnes.
type ComputeResponse struct {
	Status                 string                      `json:"status"`
	SupplierData           *ingest.SupplierData        `json:"supplier_data,omitempty"`
	ProcessedRows          int                         `json:"processed_rows"`
	RowErrors              []ingest.RowError           `json:"row_errors"`
	ManufacturingEmissions float64                     `json:"manufacturing_emissions"`
	ManufacturingDetails   *engine.ManufacturingResult `json:"manufacturing_details,omitempty"`
	TransportEmissions     TransportEmissions          `json:"transport_emissions"`
	TotalEmissions         float64                     `json:"total_emissions"`
	StatusCounts           map[engine.Status]int       `json:"status_counts"`
	Equivalencies          *greenops.EquivalencyOutput `json:"equivalencies,omitempty"`
}

// TransportEmissions groups the per-pollutant transport totals, the nested
// summary, and the raw per-record results.
type TransportEmissions struct {
	CO2             float64                            `json:"co2"`
	CH4             float64                            `json:"ch4"`
	Summary         engine.TransportSummary            `json:"summary_by_transport_scope_activity"`
	DetailedResults map[string][]engine.EmissionResult `json:"detailed_results"`
}

// NewComputeResponse shapes a service outcome for the wire.
func NewComputeResponse(req *ingest.ComputeRequest, out *service.Outcome) ComputeResponse {
	s := out.Summary
	resp := ComputeResponse{
		Status:        "success",
		SupplierData:  req.SupplierData,
		ProcessedRows: s.ProcessedRows,
		RowErrors:     out.RowErrors,
		TransportEmissions: TransportEmissions{
			CO2:             s.Totals[reference.CO2],
			CH4:             s.Totals[reference.CH4],
			Summary:         s.Modes,
			DetailedResults: make(map[string][]engine.EmissionResult),
		},
		TotalEmissions: s.TotalEmissions,
		StatusCounts:   s.StatusCounts,
		Equivalencies:  s.Equivalencies,
	}
	if resp.RowErrors == nil {
		resp.RowErrors = []ingest.RowError{}
	}
	if out.Manufacturing != nil {
		resp.ManufacturingEmissions = out.Manufacturing.Emissions
		resp.ManufacturingDetails = out.Manufacturing
	}
	for p := range s.Totals {
		resp.TransportEmissions.DetailedResults[strings.ToLower(string(p))] = []engine.EmissionResult{}
	}
	for _, r := range out.Results {
		k := strings.ToLower(string(r.Pollutant))
		resp.TransportEmissions.DetailedResults[k] = append(resp.TransportEmissions.DetailedResults[k], r)
	}
	return resp
}
