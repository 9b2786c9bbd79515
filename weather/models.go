package weather

import (
	"fmt"
	"strings"
	"time"
)

// Coordinates is a WGS-84 latitude/longitude pair in decimal degrees.
// Range checks happen at the client boundary, not here.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Temperature is a measured or forecast temperature with its source unit.
// Forecast periods use "F"/"C"; observations carry WMO codes like "degC".
type Temperature struct {
	Value float64
	Unit  string
}

// Celsius returns the temperature in Celsius. Conversion is applied only when
// the stored unit is Fahrenheit; any other unit passes the value through.
func (t Temperature) Celsius() float64 {
	if strings.EqualFold(t.Unit, "f") {
		return (t.Value - 32) * 5 / 9
	}
	return t.Value
}

// Fahrenheit returns the temperature in Fahrenheit. Conversion is applied only
// when the stored unit is Celsius; any other unit passes the value through.
func (t Temperature) Fahrenheit() float64 {
	if strings.EqualFold(t.Unit, "c") {
		return t.Value*9/5 + 32
	}
	return t.Value
}

// WindDirection holds either a compass label or a numeric bearing in degrees,
// depending on the source document: forecast periods report compass strings,
// station observations report degrees.
type WindDirection struct {
	compass string
	degrees float64
	kind    directionKind
}

type directionKind uint8

const (
	directionNone directionKind = iota
	directionCompass
	directionDegrees
)

// CompassDirection builds a direction from a compass label such as "NW".
func CompassDirection(label string) WindDirection {
	return WindDirection{compass: label, kind: directionCompass}
}

// DegreesDirection builds a direction from a bearing in degrees.
func DegreesDirection(deg float64) WindDirection {
	return WindDirection{degrees: deg, kind: directionDegrees}
}

// Compass reports the compass label, if this direction came from one.
func (d WindDirection) Compass() (string, bool) {
	return d.compass, d.kind == directionCompass
}

// Degrees reports the numeric bearing, if this direction came from one.
func (d WindDirection) Degrees() (float64, bool) {
	return d.degrees, d.kind == directionDegrees
}

func (d WindDirection) String() string {
	switch d.kind {
	case directionCompass:
		return d.compass
	case directionDegrees:
		return fmt.Sprintf("%g°", d.degrees)
	default:
		return ""
	}
}

// Wind is a wind speed and direction with the speed's unit.
type Wind struct {
	Speed     float64
	Direction WindDirection
	Unit      string
}

// Precipitation is an accumulated precipitation amount. Type is the kind of
// precipitation ("rain", "snow") when known, empty otherwise.
type Precipitation struct {
	Value float64
	Type  string
	Unit  string
}

// Condition is a textual weather condition with an optional icon URL.
type Condition struct {
	Description string
	Icon        string
}

// ForecastPeriod is one named span of a forecast ("Tonight", "Tuesday").
// Icon is empty when the source omits it. PrecipitationProbability is a
// percentage in [0,100], nil when the source omits it.
type ForecastPeriod struct {
	Name                     string
	StartTime                time.Time
	EndTime                  time.Time
	Temperature              Temperature
	Wind                     Wind
	ShortForecast            string
	DetailedForecast         string
	Icon                     string
	PrecipitationProbability *int
}

// Forecast is an ordered sequence of forecast periods. Updated is nil when the
// source document carried no update timestamp.
type Forecast struct {
	Updated *time.Time
	Periods []ForecastPeriod
}

// Today returns the first period, or nil when the forecast is empty.
func (f *Forecast) Today() *ForecastPeriod {
	if len(f.Periods) == 0 {
		return nil
	}
	return &f.Periods[0]
}

// Tonight returns the first period whose name contains "night",
// case-insensitively, or nil when there is none.
func (f *Forecast) Tonight() *ForecastPeriod {
	for i := range f.Periods {
		if strings.Contains(strings.ToLower(f.Periods[i].Name), "night") {
			return &f.Periods[i]
		}
	}
	return nil
}

// Observation is a single station observation. Every measurement field is
// independently optional: nil means the station did not report it, which is
// distinct from a reported zero. BarometricPressure is in pascals and
// Visibility in meters, as served by the API.
type Observation struct {
	Station               string
	Timestamp             time.Time
	Temperature           *Temperature
	Dewpoint              *Temperature
	RelativeHumidity      *float64
	Wind                  *Wind
	BarometricPressure    *float64
	Visibility            *float64
	TextDescription       string
	PrecipitationLastHour *Precipitation
}

// Alert is a weather alert or warning. Severity, certainty, and urgency are
// free-text enumerations copied from the source. AffectedZones holds zone
// codes (the trailing path segment of each zone URL); AffectedCounties holds
// county-level SAME codes.
type Alert struct {
	ID               string
	Event            string
	Headline         string
	Description      string
	Instruction      string
	Severity         string
	Certainty        string
	Urgency          string
	Sent             time.Time
	Effective        time.Time
	Onset            *time.Time
	Expires          time.Time
	Ends             *time.Time
	Status           string
	MessageType      string
	Category         string
	ResponseType     string
	AffectedZones    []string
	AffectedCounties []string
}
