package reference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rshade/ghgfreight/internal/logging"
	"github.com/rshade/ghgfreight/internal/units"
)

// Default file names inside the data directory.
const (
	DefaultUnitConversionFile = "Reference - Unit Conversion.csv"
	DefaultFuelCO2File        = "Reference - EF Fuel Use CO2.csv"
	DefaultFuelCH4File        = "Reference - EF Fuel Use CH4 N2O.csv"
	DefaultFreightFile        = "Reference_EF_Freight_CO2.csv"
	DefaultProductMatrixFile  = "Source_Product_Matrix.csv"
	DefaultLookupsFile        = "Reference - Lookups.csv"
	DefaultSuppliersFile      = "Supplier_List.csv"
)

// Files names each dataset file relative to the data directory.
type Files struct {
	UnitConversion string `yaml:"unit_conversion,omitempty"`
	FuelCO2        string `yaml:"fuel_co2,omitempty"`
	FuelCH4        string `yaml:"fuel_ch4,omitempty"`
	Freight        string `yaml:"freight,omitempty"`
	ProductMatrix  string `yaml:"product_matrix,omitempty"`
	Lookups        string `yaml:"lookups,omitempty"`
	Suppliers      string `yaml:"suppliers,omitempty"`
}

// DefaultFiles returns the shipped file names.
func DefaultFiles() Files {
	return Files{
		UnitConversion: DefaultUnitConversionFile,
		FuelCO2:        DefaultFuelCO2File,
		FuelCH4:        DefaultFuelCH4File,
		Freight:        DefaultFreightFile,
		ProductMatrix:  DefaultProductMatrixFile,
		Lookups:        DefaultLookupsFile,
		Suppliers:      DefaultSuppliersFile,
	}
}

func (f Files) withDefaults() Files {
	d := DefaultFiles()
	pick := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}
	return Files{
		UnitConversion: pick(f.UnitConversion, d.UnitConversion),
		FuelCO2:        pick(f.FuelCO2, d.FuelCO2),
		FuelCH4:        pick(f.FuelCH4, d.FuelCH4),
		Freight:        pick(f.Freight, d.Freight),
		ProductMatrix:  pick(f.ProductMatrix, d.ProductMatrix),
		Lookups:        pick(f.Lookups, d.Lookups),
		Suppliers:      pick(f.Suppliers, d.Suppliers),
	}
}

// LoadOptions controls LoadDataset.
type LoadOptions struct {
	DataDir           string
	Files             Files
	VersionConstraint string
}

// Dataset bundles every reference table the engine consumes.
type Dataset struct {
	Units     *units.Table
	FuelCO2   *Table
	FuelCH4   *Table
	Vehicles  *Table
	Products  *ProductTable
	Lookups   *Lookups
	Suppliers Suppliers
	Manifest  *Manifest
}

// FuelTable returns the fuel-keyed table publishing factors for p.
func (d *Dataset) FuelTable(p Pollutant) *Table {
	if p == CH4 {
		return d.FuelCH4
	}
	return d.FuelCO2
}

// LoadDataset reads every table from opts.DataDir. The conversion matrix and
// the three factor tables are required; the product matrix, lookups catalog,
// and supplier list are optional and load as empty when their file is absent.
func LoadDataset(ctx context.Context, opts LoadOptions) (*Dataset, error) {
	log := logging.FromContext(ctx)
	start := time.Now()
	files := opts.Files.withDefaults()

	log.Debug().
		Str("component", "reference").
		Str("operation", "load_dataset").
		Str("data_dir", opts.DataDir).
		Msg("loading reference dataset")

	manifest, err := LoadManifest(filepath.Join(opts.DataDir, ManifestFile))
	if err != nil {
		return nil, err
	}
	if opts.VersionConstraint != "" {
		if err := manifest.CheckVersion(opts.VersionConstraint); err != nil {
			return nil, err
		}
	}

	ds := &Dataset{Manifest: manifest}

	if err := loadFile(opts.DataDir, files.UnitConversion, true, func(r io.Reader) error {
		t, parseErr := units.ParseMatrix(r)
		ds.Units = t
		return parseErr
	}); err != nil {
		return nil, err
	}

	tables := []struct {
		file string
		spec TableSpec
		dst  **Table
	}{
		{files.FuelCO2, FuelCO2Spec(), &ds.FuelCO2},
		{files.FuelCH4, FuelCH4Spec(), &ds.FuelCH4},
		{files.Freight, VehicleSpec(), &ds.Vehicles},
	}
	for _, tbl := range tables {
		if err := loadFile(opts.DataDir, tbl.file, true, func(r io.Reader) error {
			t, parseErr := ParseTable(r, tbl.spec)
			*tbl.dst = t
			return parseErr
		}); err != nil {
			return nil, err
		}
	}

	ds.Products = NewProductTable(nil)
	if err := loadFile(opts.DataDir, files.ProductMatrix, false, func(r io.Reader) error {
		t, parseErr := ParseProductTable(r)
		if parseErr == nil {
			ds.Products = t
		}
		return parseErr
	}); err != nil {
		return nil, err
	}

	ds.Lookups = &Lookups{}
	if err := loadFile(opts.DataDir, files.Lookups, false, func(r io.Reader) error {
		l, parseErr := ParseLookups(r)
		if parseErr == nil {
			ds.Lookups = l
		}
		return parseErr
	}); err != nil {
		return nil, err
	}

	ds.Suppliers = Suppliers{}
	if err := loadFile(opts.DataDir, files.Suppliers, false, func(r io.Reader) error {
		s, parseErr := ParseSuppliers(r)
		if parseErr == nil {
			ds.Suppliers = s
		}
		return parseErr
	}); err != nil {
		return nil, err
	}

	log.Info().
		Str("component", "reference").
		Int("conversions", ds.Units.Len()).
		Int("fuel_co2_rows", ds.FuelCO2.Len()).
		Int("fuel_ch4_rows", ds.FuelCH4.Len()).
		Int("vehicle_rows", ds.Vehicles.Len()).
		Int("product_rows", ds.Products.Len()).
		Dur("duration", time.Since(start)).
		Msg("reference dataset loaded")

	return ds, nil
}

// loadFile opens dir/name and hands it to parse. Optional files that do not
// exist are skipped.
func loadFile(dir, name string, required bool, parse func(io.Reader) error) error {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if err := parse(f); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
