// Package ingest turns supplier activity documents into engine records.
//
// Two input shapes are accepted: the JSON compute request used by the HTTP
// API ({"supplier_data": {...}, "activity_rows": [...]}) and CSV activity
// files whose headers use the same field names. Individual malformed cells
// are reported as RowErrors and never abort the whole document.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rshade/ghgfreight/internal/logging"
)

// ComputeRequest is the JSON document accepted by the compute endpoint.
type ComputeRequest struct {
	SupplierData *SupplierData `json:"supplier_data,omitempty"`
	ActivityRows []ActivityRow `json:"activity_rows"`
}

// SupplierData describes the containers shipped by a supplier.
type SupplierData struct {
	SupplierAndContainer   Value `json:"Supplier_and_Container"`
	Supplier               Value `json:"Supplier,omitempty"`
	Product                Value `json:"Product,omitempty"`
	Location               Value `json:"Location,omitempty"`
	ContainerWeight        Value `json:"Container_Weight"`
	NumberOfContainers     Value `json:"Number_Of_Containers"`
	SupplierEmissionFactor Value `json:"Supplier_Emission_Factor"`
}

// ActivityRow is one supplier activity row with its original field names.
type ActivityRow struct {
	SourceDescription   Value `json:"Source_Description"`
	Region              Value `json:"Region"`
	ModeOfTransport     Value `json:"Mode_of_Transport"`
	Scope               Value `json:"Scope"`
	TypeOfActivityData  Value `json:"Type_Of_Activity_Data"`
	VehicleType         Value `json:"Vehicle_Type"`
	DistanceTravelled   Value `json:"Distance_Travelled"`
	TotalWeightInTonnes Value `json:"Total_Weight_Of_Freight_InTonne"`
	NumOfPassenger      Value `json:"Num_Of_Passenger"`
	UnitsOfMeasurement  Value `json:"Units_of_Measurement"`
	FuelUsed            Value `json:"Fuel_Used"`
	FuelAmount          Value `json:"Fuel_Amount"`
	UnitOfFuelAmount    Value `json:"Unit_Of_Fuel_Amount"`
}

// ParseRequest decodes a compute request. A bare JSON array is accepted as
// a request holding only activity rows.
func ParseRequest(ctx context.Context, data []byte) (*ComputeRequest, error) {
	log := logging.FromContext(ctx)
	log.Debug().
		Str("component", "ingest").
		Str("operation", "parse_request").
		Int("data_size_bytes", len(data)).
		Msg("parsing compute request")

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyDocument
	}

	var req ComputeRequest
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &req.ActivityRows); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
	} else if err := json.Unmarshal(trimmed, &req); err != nil {
		log.Debug().
			Str("component", "ingest").
			Str("operation", "parse_request").
			Err(err).
			Msg("failed to parse request JSON")
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	log.Debug().
		Str("component", "ingest").
		Int("row_count", len(req.ActivityRows)).
		Bool("has_supplier_data", req.SupplierData != nil).
		Msg("request parsed successfully")

	return &req, nil
}

// LoadRequest reads a compute request from path. Files ending in .csv are
// parsed as activity CSV; everything else as JSON.
func LoadRequest(ctx context.Context, path string) (*ComputeRequest, error) {
	log := logging.FromContext(ctx)
	log.Debug().
		Str("component", "ingest").
		Str("operation", "load_request").
		Str("path", path).
		Msg("loading activity document")

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening activity file: %w", err)
		}
		defer f.Close()
		rows, err := ParseActivityCSV(f)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return &ComputeRequest{ActivityRows: rows}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading activity file: %w", err)
	}
	req, err := ParseRequest(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return req, nil
}
