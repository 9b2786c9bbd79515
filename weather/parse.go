package weather

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Default WMO unit codes applied when an observation measurement omits its
// unitCode key. These mirror what the station network actually serves.
const (
	defaultTemperatureUnitCode   = "wmoUnit:degC"
	defaultWindSpeedUnitCode     = "wmoUnit:km_h-1"
	defaultPrecipitationUnitCode = "wmoUnit:mm"
)

// digitRunRe finds the first run of digits in a free-text wind speed such as
// "5 to 10 mph".
var digitRunRe = regexp.MustCompile(`[0-9]+`)

// quantitativeValue is the API's measurement envelope. Value is null when a
// sensor did not report.
type quantitativeValue struct {
	Value    *float64 `json:"value"`
	UnitCode string   `json:"unitCode"`
}

// value returns the measurement value, treating null as zero.
func (q *quantitativeValue) value() float64 {
	if q == nil || q.Value == nil {
		return 0
	}
	return *q.Value
}

// unit returns the trailing segment of the unit code, falling back to def when
// the document omitted the code entirely.
func (q *quantitativeValue) unit(def string) string {
	code := def
	if q != nil && q.UnitCode != "" {
		code = q.UnitCode
	}
	return unitFromCode(code)
}

// unitFromCode keeps only the segment after the last colon of a WMO unit code:
// "wmoUnit:degC" -> "degC". Codes without a colon pass through unchanged.
func unitFromCode(code string) string {
	return code[strings.LastIndex(code, ":")+1:]
}

type forecastDocument struct {
	Properties struct {
		Updated string                   `json:"updated"`
		Periods []forecastPeriodDocument `json:"periods"`
	} `json:"properties"`
}

type forecastPeriodDocument struct {
	Name                       string   `json:"name"`
	StartTime                  string   `json:"startTime"`
	EndTime                    string   `json:"endTime"`
	Temperature                *float64 `json:"temperature"`
	TemperatureUnit            string   `json:"temperatureUnit"`
	WindSpeed                  string   `json:"windSpeed"`
	WindDirection              string   `json:"windDirection"`
	ShortForecast              string   `json:"shortForecast"`
	DetailedForecast           string   `json:"detailedForecast"`
	Icon                       string   `json:"icon"`
	ProbabilityOfPrecipitation *struct {
		Value *int `json:"value"`
	} `json:"probabilityOfPrecipitation"`
}

// ParseForecast converts a raw forecast document into a Forecast.
//
// properties.updated is optional; an absent or empty value yields a nil
// Updated. properties.periods may be absent, yielding an empty forecast.
// Period temperatures default to 0 °F when missing, wind speed is extracted
// from the free-text windSpeed string (missing -> "0 mph" -> 0), and the
// precipitation probability is nil whenever any level of its nested path is
// missing.
func ParseForecast(raw []byte) (*Forecast, error) {
	var doc forecastDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse forecast: %w", err)
	}

	forecast := &Forecast{Periods: make([]ForecastPeriod, 0, len(doc.Properties.Periods))}

	if s := doc.Properties.Updated; s != "" {
		updated, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("parse forecast: updated: %w", err)
		}
		forecast.Updated = &updated
	}

	for i, p := range doc.Properties.Periods {
		period, err := parseForecastPeriod(p)
		if err != nil {
			return nil, fmt.Errorf("parse forecast: period %d: %w", i, err)
		}
		forecast.Periods = append(forecast.Periods, period)
	}

	return forecast, nil
}

func parseForecastPeriod(p forecastPeriodDocument) (ForecastPeriod, error) {
	start, err := time.Parse(time.RFC3339, p.StartTime)
	if err != nil {
		return ForecastPeriod{}, fmt.Errorf("startTime: %w", err)
	}
	end, err := time.Parse(time.RFC3339, p.EndTime)
	if err != nil {
		return ForecastPeriod{}, fmt.Errorf("endTime: %w", err)
	}

	tempUnit := p.TemperatureUnit
	if tempUnit == "" {
		tempUnit = "F"
	}
	var tempValue float64
	if p.Temperature != nil {
		tempValue = *p.Temperature
	}

	period := ForecastPeriod{
		Name:      p.Name,
		StartTime: start,
		EndTime:   end,
		Temperature: Temperature{
			Value: tempValue,
			Unit:  tempUnit,
		},
		Wind: Wind{
			Speed:     windSpeedValue(p.WindSpeed),
			Direction: CompassDirection(p.WindDirection),
			Unit:      "mph",
		},
		ShortForecast:    p.ShortForecast,
		DetailedForecast: p.DetailedForecast,
		Icon:             p.Icon,
	}

	if pop := p.ProbabilityOfPrecipitation; pop != nil && pop.Value != nil {
		v := *pop.Value
		period.PrecipitationProbability = &v
	}

	return period, nil
}

// windSpeedValue extracts the first integer found in a wind-speed description
// string. A string without digits yields 0.
func windSpeedValue(s string) float64 {
	digits := digitRunRe.FindString(s)
	if digits == "" {
		return 0
	}
	speed, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return float64(speed)
}

type observationDocument struct {
	Properties struct {
		Station               string             `json:"station"`
		Timestamp             string             `json:"timestamp"`
		TextDescription       string             `json:"textDescription"`
		Temperature           *quantitativeValue `json:"temperature"`
		Dewpoint              *quantitativeValue `json:"dewpoint"`
		RelativeHumidity      *quantitativeValue `json:"relativeHumidity"`
		WindSpeed             *quantitativeValue `json:"windSpeed"`
		WindDirection         *quantitativeValue `json:"windDirection"`
		BarometricPressure    *quantitativeValue `json:"barometricPressure"`
		Visibility            *quantitativeValue `json:"visibility"`
		PrecipitationLastHour *quantitativeValue `json:"precipitationLastHour"`
	} `json:"properties"`
}

// ParseObservation converts a raw station observation document into an
// Observation.
//
// Each measurement group is present in the result if and only if its raw key
// is present in the document. Wind requires both windSpeed and windDirection.
//
// An absent or empty timestamp is replaced with the current time. That is
// deliberate, inherited behavior: callers must not assume an observation's
// timestamp came from the source document.
func ParseObservation(raw []byte) (*Observation, error) {
	var doc observationDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse observation: %w", err)
	}
	props := doc.Properties

	timestamp := clock.Now()
	if props.Timestamp != "" {
		var err error
		timestamp, err = time.Parse(time.RFC3339, props.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse observation: timestamp: %w", err)
		}
	}

	obs := &Observation{
		Station:         props.Station,
		Timestamp:       timestamp,
		TextDescription: props.TextDescription,
	}

	if props.Temperature != nil {
		obs.Temperature = &Temperature{
			Value: props.Temperature.value(),
			Unit:  props.Temperature.unit(defaultTemperatureUnitCode),
		}
	}
	if props.Dewpoint != nil {
		obs.Dewpoint = &Temperature{
			Value: props.Dewpoint.value(),
			Unit:  props.Dewpoint.unit(defaultTemperatureUnitCode),
		}
	}
	if props.RelativeHumidity != nil && props.RelativeHumidity.Value != nil {
		v := *props.RelativeHumidity.Value
		obs.RelativeHumidity = &v
	}
	if props.WindSpeed != nil && props.WindDirection != nil {
		obs.Wind = &Wind{
			Speed:     props.WindSpeed.value(),
			Direction: DegreesDirection(props.WindDirection.value()),
			Unit:      props.WindSpeed.unit(defaultWindSpeedUnitCode),
		}
	}
	if props.BarometricPressure != nil && props.BarometricPressure.Value != nil {
		v := *props.BarometricPressure.Value
		obs.BarometricPressure = &v
	}
	if props.Visibility != nil && props.Visibility.Value != nil {
		v := *props.Visibility.Value
		obs.Visibility = &v
	}
	if props.PrecipitationLastHour != nil {
		obs.PrecipitationLastHour = &Precipitation{
			Value: props.PrecipitationLastHour.value(),
			Unit:  props.PrecipitationLastHour.unit(defaultPrecipitationUnitCode),
		}
	}

	return obs, nil
}

type alertDocument struct {
	Properties struct {
		ID            string   `json:"id"`
		Event         string   `json:"event"`
		Headline      string   `json:"headline"`
		Description   string   `json:"description"`
		Instruction   string   `json:"instruction"`
		Severity      string   `json:"severity"`
		Certainty     string   `json:"certainty"`
		Urgency       string   `json:"urgency"`
		Sent          string   `json:"sent"`
		Effective     string   `json:"effective"`
		Onset         string   `json:"onset"`
		Expires       string   `json:"expires"`
		Ends          string   `json:"ends"`
		Status        string   `json:"status"`
		MessageType   string   `json:"messageType"`
		Category      string   `json:"category"`
		Response      string   `json:"response"`
		AffectedZones []string `json:"affectedZones"`
		Geocode       struct {
			SAME []string `json:"SAME"`
		} `json:"geocode"`
	} `json:"properties"`
}

// ParseAlert converts a raw alert document into an Alert.
//
// sent, effective, and expires are required; a missing or malformed value
// fails the parse rather than substituting a default, because silently
// defaulting a safety-alert timestamp would mislead callers. onset and ends
// are optional.
func ParseAlert(raw []byte) (*Alert, error) {
	var doc alertDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse alert: %w", err)
	}
	props := doc.Properties

	sent, err := requiredAlertTime("sent", props.Sent)
	if err != nil {
		return nil, err
	}
	effective, err := requiredAlertTime("effective", props.Effective)
	if err != nil {
		return nil, err
	}
	expires, err := requiredAlertTime("expires", props.Expires)
	if err != nil {
		return nil, err
	}

	onset, err := optionalAlertTime("onset", props.Onset)
	if err != nil {
		return nil, err
	}
	ends, err := optionalAlertTime("ends", props.Ends)
	if err != nil {
		return nil, err
	}

	zones := make([]string, 0, len(props.AffectedZones))
	for _, zoneURL := range props.AffectedZones {
		zones = append(zones, zoneURL[strings.LastIndex(zoneURL, "/")+1:])
	}

	counties := make([]string, 0, len(props.Geocode.SAME))
	counties = append(counties, props.Geocode.SAME...)

	return &Alert{
		ID:               props.ID,
		Event:            props.Event,
		Headline:         props.Headline,
		Description:      props.Description,
		Instruction:      props.Instruction,
		Severity:         props.Severity,
		Certainty:        props.Certainty,
		Urgency:          props.Urgency,
		Sent:             sent,
		Effective:        effective,
		Onset:            onset,
		Expires:          expires,
		Ends:             ends,
		Status:           props.Status,
		MessageType:      props.MessageType,
		Category:         props.Category,
		ResponseType:     props.Response,
		AffectedZones:    zones,
		AffectedCounties: counties,
	}, nil
}

func requiredAlertTime(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("parse alert: %s: missing required timestamp", field)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse alert: %s: %w", field, err)
	}
	return t, nil
}

func optionalAlertTime(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("parse alert: %s: %w", field, err)
	}
	return &t, nil
}
