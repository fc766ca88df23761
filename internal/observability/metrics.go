// Package observability exposes Prometheus metrics for the emission engine
// and the HTTP API.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rshade/ghgfreight/internal/engine"
	"github.com/rshade/ghgfreight/internal/reference"
)

const namespace = "ghgfreight"

// Metrics holds the collectors registered on one registry. A Metrics value
// satisfies engine.Observer and is safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	results       *prometheus.CounterVec
	emissions     *prometheus.CounterVec
	records       prometheus.Counter
	batchDuration prometheus.Histogram
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	datasetRows   *prometheus.GaugeVec
	manufacturing *prometheus.CounterVec
}

var _ engine.Observer = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them on reg. A nil reg
// gets a fresh registry with the Go and process collectors attached.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m := &Metrics{
		registry: reg,
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "results_total",
			Help:      "Emission results produced, by pollutant and status.",
		}, []string{"pollutant", "status"}),
		emissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "emissions_tonnes_total",
			Help:      "Metric tonnes of pollutant computed from successful results.",
		}, []string{"pollutant"}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "records_total",
			Help:      "Activity records submitted to the calculator.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "batch_duration_seconds",
			Help:      "Time spent computing one batch of activity records.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by route, method, and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		datasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reference",
			Name:      "rows",
			Help:      "Rows loaded per reference table.",
		}, []string{"table"}),
		manufacturing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "manufacturing",
			Name:      "calculations_total",
			Help:      "Manufacturing calculations, by factor source.",
		}, []string{"source"}),
	}

	reg.MustRegister(
		m.results,
		m.emissions,
		m.records,
		m.batchDuration,
		m.httpRequests,
		m.httpDuration,
		m.datasetRows,
		m.manufacturing,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveResult counts one emission result.
func (m *Metrics) ObserveResult(r engine.EmissionResult) {
	m.results.WithLabelValues(string(r.Pollutant), r.Status.String()).Inc()
	if r.Status == engine.StatusSuccess && r.Emissions > 0 {
		m.emissions.WithLabelValues(string(r.Pollutant)).Add(r.Emissions)
	}
}

// ObserveBatch records the size and duration of one ComputeEmissions call.
func (m *Metrics) ObserveBatch(records int, elapsed time.Duration) {
	m.records.Add(float64(records))
	m.batchDuration.Observe(elapsed.Seconds())
}

// ObserveManufacturing counts a manufacturing calculation by factor source.
func (m *Metrics) ObserveManufacturing(r engine.ManufacturingResult) {
	m.manufacturing.WithLabelValues(string(r.Source)).Inc()
}

// SetTableRows publishes the row count of a loaded reference table.
func (m *Metrics) SetTableRows(table string, rows int) {
	m.datasetRows.WithLabelValues(table).Set(float64(rows))
}

// ObserveDataset publishes the row counts of every table in ds.
func (m *Metrics) ObserveDataset(ds *reference.Dataset) {
	if ds == nil {
		return
	}
	m.SetTableRows("unit_conversion", ds.Units.Len())
	m.SetTableRows("fuel_co2", ds.FuelCO2.Len())
	m.SetTableRows("fuel_ch4", ds.FuelCH4.Len())
	m.SetTableRows("freight", ds.Vehicles.Len())
	m.SetTableRows("product_matrix", ds.Products.Len())
	m.SetTableRows("suppliers", len(ds.Suppliers))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// InstrumentHandler wraps next so each request is counted and timed under
// route.
func (m *Metrics) InstrumentHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
