// Package weather models National Weather Service (NWS) forecast, observation,
// and alert data, and parses the service's GeoJSON documents into typed values.
//
// # Data Source
//
// Documents come from the NWS public API at https://api.weather.gov, served as
// application/geo+json. The interesting payload always lives under a top-level
// "properties" object; the GeoJSON geometry envelope is ignored here.
//
// # NWS Data Conventions
//
// Quantitative values:
//
//	Observation measurements arrive as objects: {"value": 21.5, "unitCode": "wmoUnit:degC"}.
//	"value" may be null when a sensor did not report. Unit codes are
//	colon-delimited ("wmoUnit:degC", "wmoUnit:km_h-1"); only the segment after
//	the last colon is meaningful and is what the parsers keep.
//
// Optionality:
//
//	The service is inconsistent about which fields are present. Every
//	observation measurement group is independently optional: a missing raw key
//	means the parsed field is absent (nil), never zero. Wind is a special case,
//	constructed only when both windSpeed and windDirection are present.
//
// Wind direction asymmetry:
//
//	Forecast periods carry a compass label ("NW"); station observations carry a
//	numeric bearing in degrees. Both are valid and both are preserved, via the
//	[WindDirection] tagged union.
//
// Forecast wind speed:
//
//	Forecast periods describe wind speed as free text ("10 mph", "5 to 10 mph").
//	The parser extracts the first run of digits and reports it in mph.
//
// Timestamps:
//
//	ISO-8601 with either a "Z" or numeric offset. Alert sent/effective/expires
//	are required and fail the parse when missing or malformed; an observation
//	with no timestamp is stamped with the current time (see [ParseObservation]).
package weather
