package greenops

// Divisors from the EPA greenhouse gas equivalencies calculator, in kg CO2e
// per unit of activity. An equivalency is kg / divisor.
// https://www.epa.gov/energy/greenhouse-gas-equivalencies-calculator
const (
	EPAMilesDrivenFactor      = 0.192   // average passenger vehicle, per mile
	EPAGasolineGallonFactor   = 8.887   // per gallon burned
	EPATreeSeedlingFactor     = 60.0    // per urban seedling grown 10 years
	EPASmartphoneChargeFactor = 0.00822 // per full charge
)

// Kilograms per unit for the mass labels accepted by NormalizeToKg.
const (
	kgPerGram      = 0.001
	kgPerPound     = 0.453592
	kgPerShortTon  = 907.18474
	kgPerMetricTon = 1000.0
)

const (
	// MinEquivalencyThresholdKg is the smallest total for which equivalencies
	// are reported.
	MinEquivalencyThresholdKg = 1.0

	// LargeNumberThreshold switches FormatLarge to "~X.X million".
	LargeNumberThreshold = 1e6

	// BillionThreshold switches FormatLarge to "~X.X billion".
	BillionThreshold = 1e9
)
