package config

// KPIConfig holds the conversion factors used for savings attribution.
// These are fleet-wide averages agreed with the participating companies,
// not per-vehicle measurements.
type KPIConfig struct {
	// Loading/unloading time added at every stop, in minutes
	ServiceTimeMin int `mapstructure:"service_time_min" validate:"min=0"`

	// Liters of diesel per km driven
	FuelPerKm float64 `mapstructure:"fuel_per_km" validate:"min=0"`

	// Kilograms of CO2 per liter of diesel burned
	CO2PerLiter float64 `mapstructure:"co2_per_liter" validate:"min=0"`

	// Fuel price used to express savings in money
	FuelPricePerLiter float64 `mapstructure:"fuel_price_per_liter" validate:"min=0"`
}
