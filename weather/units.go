package weather

// Scalar unit conversions for downstream display code.

const metersPerMile = 1609.344

// CelsiusToFahrenheit converts a temperature in Celsius to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 { return c*9/5 + 32 }

// FahrenheitToCelsius converts a temperature in Fahrenheit to Celsius.
func FahrenheitToCelsius(f float64) float64 { return (f - 32) * 5 / 9 }

// MetersToMiles converts a distance in meters to miles.
func MetersToMiles(m float64) float64 { return m / metersPerMile }

// MilesToMeters converts a distance in miles to meters.
func MilesToMeters(mi float64) float64 { return mi * metersPerMile }

// KphToMph converts a speed in kilometers per hour to miles per hour.
func KphToMph(kph float64) float64 { return kph * 0.621371 }

// MphToKph converts a speed in miles per hour to kilometers per hour.
func MphToKph(mph float64) float64 { return mph * 1.60934 }
