// Package api exposes the emission engine and its reference tables over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rshade/ghgfreight/internal/ingest"
	"github.com/rshade/ghgfreight/internal/logging"
	"github.com/rshade/ghgfreight/internal/reference"
	"github.com/rshade/ghgfreight/internal/service"
)

// MaxRequestBytes caps the compute request body.
const MaxRequestBytes = 8 << 20

// vehicleDataSource names the table /api/vehicle_and_size reads from.
const vehicleDataSource = "Reference_EF_Freight_CO2"

// Instrumenter wraps a handler with per-route telemetry.
type Instrumenter interface {
	InstrumentHandler(route string, next http.Handler) http.Handler
	Handler() http.Handler
}

// Handler handles HTTP interactions.
type Handler struct {
	service *service.Service
	metrics Instrumenter
}

// NewHandler constructs Handler. metrics may be nil.
func NewHandler(svc *service.Service, metrics Instrumenter) *Handler {
	return &Handler{service: svc, metrics: metrics}
}

// RegisterRoutes sets up routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	routes := []struct {
		pattern string
		method  string
		fn      http.HandlerFunc
	}{
		{"/", http.MethodGet, h.home},
		{"/healthz", http.MethodGet, healthz},
		{"/api/lookup/{name}", http.MethodGet, h.lookup},
		{"/api/lookup/{name}/value", http.MethodGet, h.lookupByValue},
		{"/api/unit_conversion", http.MethodGet, h.unitConversion},
		{"/api/ef_fuel_use", http.MethodGet, h.fuelFactors(reference.CO2, "fuel")},
		{"/api/ef_fuel_use_co2", http.MethodGet, h.fuelFactors(reference.CO2, "fuel")},
		{"/api/ef_fuel_use_ch4_n2o", http.MethodGet, h.fuelFactors(reference.CH4, "transport_and_fuel")},
		{"/api/ef_freight", http.MethodGet, h.freightFactors("vehicle_size")},
		{"/api/ef_freight_co2", http.MethodGet, h.freightFactors("vehicle_size")},
		{"/api/ef_freight_ch4_no2", http.MethodGet, h.freightFactors("vehicle_type")},
		{"/api/factor", http.MethodGet, h.resolveFactor},
		{"/api/source_product_matrix", http.MethodGet, h.sourceProductMatrix},
		{"/api/vehicle_and_size", http.MethodGet, h.vehicleAndSize},
		{"/api/fuel_types", http.MethodGet, h.fuelTypes},
		{"/api/suppliers", http.MethodGet, h.suppliers},
		{"/api/compute_ghg_emissions", http.MethodPost, h.compute},
	}

	for _, rt := range routes {
		var handler http.Handler = allow(rt.method, rt.fn)
		if h.metrics != nil {
			handler = h.metrics.InstrumentHandler(rt.pattern, handler)
		}
		pattern := rt.pattern
		if pattern == "/" {
			pattern = "/{$}"
		}
		mux.Handle(pattern, handler)
	}
	if h.metrics != nil {
		mux.Handle("/metrics", h.metrics.Handler())
	}
}

func allow(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		next(w, r)
	}
}

// healthz returns an OK response for readiness probes.
func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) home(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]any{"message": "ghgfreight emissions API is running."}
	if m := h.service.Dataset().Manifest; m != nil {
		payload["dataset_version"] = m.Version
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	values, err := h.service.Dataset().Lookups.Values(name)
	if err != nil {
		writeLookupError(w, name, err)
		return
	}
	if values == nil {
		values = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"lookup": name, "values": values})
}

func (h *Handler) lookupByValue(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	value := r.URL.Query().Get("value")
	if value == "" {
		// Unknown lookups report 404 before a missing value reports 400.
		if _, err := h.service.Dataset().Lookups.Values(name); err != nil {
			writeLookupError(w, name, err)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "missing value parameter")
		return
	}
	rows, err := h.service.Dataset().Lookups.Matching(name, value)
	if err != nil {
		writeLookupError(w, name, err)
		return
	}
	if rows == nil {
		rows = []map[string]string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"lookup": name, "value": value, "results": rows})
}

func writeLookupError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, reference.ErrUnknownLookup) {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("unknown lookup: %s", name))
		return
	}
	writeError(w, http.StatusInternalServerError, "server_error", err.Error())
}

func (h *Handler) unitConversion(w http.ResponseWriter, r *http.Request) {
	from, to, ok := requireParams(w, r, "from_unit", "to_unit")
	if !ok {
		return
	}
	v, found := h.service.Dataset().Units.Convert(from, to)
	if !found {
		writeError(w, http.StatusNotFound, "not_found",
			fmt.Sprintf("no conversion value found for from_unit: %s, to_unit: %s", from, to))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"from_unit": from, "to_unit": to, "value": v})
}

func (h *Handler) fuelFactors(p reference.Pollutant, keyParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, region, ok := requireParams(w, r, keyParam, "region")
		if !ok {
			return
		}
		writeRows(w, h.service.Dataset().FuelTable(p).Lookup(key, region), keyParam, key, region)
	}
}

func (h *Handler) freightFactors(keyParam string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, region, ok := requireParams(w, r, keyParam, "region")
		if !ok {
			return
		}
		writeRows(w, h.service.Dataset().Vehicles.Lookup(key, region), keyParam, key, region)
	}
}

func writeRows(w http.ResponseWriter, rows []reference.Row, keyParam, key, region string) {
	if len(rows) == 0 {
		writeError(w, http.StatusNotFound, "not_found",
			fmt.Sprintf("no data found for %s: %s, region: %s", keyParam, key, region))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": rows})
}

func (h *Handler) resolveFactor(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	region := q.Get("region")
	vehicle, fuel := q.Get("vehicle"), q.Get("fuel")
	if region == "" || (vehicle == "" && fuel == "") {
		writeError(w, http.StatusBadRequest, "invalid_request", "region and one of vehicle or fuel are required")
		return
	}
	pollutant := reference.CO2
	if raw := q.Get("pollutant"); raw != "" {
		p, err := reference.ParsePollutant(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		pollutant = p
	}
	res := h.service.ResolveFactor(r.Context(), pollutant, vehicle, fuel, region, q.Get("unit"))
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) sourceProductMatrix(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	supplier, product, location := q.Get("supplier"), q.Get("product"), q.Get("location")
	if supplier == "" || product == "" || location == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing supplier, product, or location parameter")
		return
	}
	rows := h.service.Dataset().Products.Filter(reference.ProductKey(supplier, product, location))
	if rows == nil {
		rows = []reference.ProductRow{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": rows})
}

func (h *Handler) vehicleAndSize(w http.ResponseWriter, r *http.Request) {
	region, mode, ok := requireParams(w, r, "region", "mode_of_transport")
	if !ok {
		return
	}
	vehicles := h.service.Dataset().Vehicles.Keys(region, mode)
	if vehicles == nil {
		vehicles = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"region":                region,
		"mode_of_transport":     mode,
		"type_of_activity_data": r.URL.Query().Get("type_of_activity_data"),
		"vehicle_and_size":      vehicles,
		"data_source":           vehicleDataSource,
		"total_matches":         len(vehicles),
	})
}

func (h *Handler) fuelTypes(w http.ResponseWriter, _ *http.Request) {
	fuels := h.service.Dataset().FuelCO2.Keys("", "")
	if fuels == nil {
		fuels = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"fuel_types": fuels})
}

func (h *Handler) suppliers(w http.ResponseWriter, _ *http.Request) {
	suppliers := h.service.Dataset().Suppliers
	if suppliers == nil {
		suppliers = reference.Suppliers{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"suppliers": suppliers})
}

func (h *Handler) compute(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to read body")
		return
	}

	req, err := ingest.ParseRequest(r.Context(), body)
	if err != nil {
		if errors.Is(err, ingest.ErrEmptyDocument) {
			writeError(w, http.StatusBadRequest, "invalid_request", "missing JSON body")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	out, err := h.service.Compute(r.Context(), req)
	if err != nil {
		log.Error().Err(err).
			Str("component", "api").
			Str("operation", "compute").
			Msg("computation failed")
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, NewComputeResponse(req, out))
}

func requireParams(w http.ResponseWriter, r *http.Request, a, b string) (string, string, bool) {
	q := r.URL.Query()
	va, vb := strings.TrimSpace(q.Get(a)), strings.TrimSpace(q.Get(b))
	if va == "" || vb == "" {
		writeError(w, http.StatusBadRequest, "invalid_request",
			fmt.Sprintf("both %s and %s query parameters are required", a, b))
		return "", "", false
	}
	return va, vb, true
}

// ErrorBody is the JSON envelope of every error response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a machine-readable code and a human message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: detail}})
}

// writeJSON encodes payload before writing the header so an encoding failure
// can still be reported as a 500 error envelope.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		log := logging.Global()
		log.Error().
			Str("component", "api").
			Str("operation", "write_json").
			Err(err).
			Msg("encoding response failed")
		if status != http.StatusInternalServerError {
			writeError(w, http.StatusInternalServerError, "internal", "response could not be encoded")
			return
		}
		http.Error(w, "response could not be encoded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}
