package nws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Date-valued query parameters are UTC with second precision, no fractional
// seconds.
const queryTimeLayout = "2006-01-02T15:04:05Z"

// AlertOptions filters GetAlerts. Zero-valued fields are not sent as query
// parameters; Active adds active=true when set.
type AlertOptions struct {
	Area        string // state/territory code or marine area code
	Region      string
	Zone        string
	Status      string // actual, exercise, system, test, draft
	MessageType string // alert, update, cancel
	Event       string // e.g. "Tornado Warning"
	Active      bool
}

// ProductOptions filters GetProducts. Zero times are omitted; a Limit of zero
// or less falls back to 50.
type ProductOptions struct {
	Location string // issuing WFO
	Start    time.Time
	End      time.Time
	Limit    int
}

// GetPoints returns metadata about a location by coordinates, including the
// grid cell and forecast URLs. Coordinates are validated before any network
// call and rounded to four decimal places in the endpoint path.
func (c *Client) GetPoints(ctx context.Context, latitude, longitude float64) (json.RawMessage, error) {
	if latitude < -90 || latitude > 90 {
		return nil, validationError("latitude must be between -90 and 90, got %g", latitude)
	}
	if longitude < -180 || longitude > 180 {
		return nil, validationError("longitude must be between -180 and 180, got %g", longitude)
	}

	endpoint := fmt.Sprintf("points/%.4f,%.4f", latitude, longitude)
	return c.get(ctx, "points", endpoint, nil)
}

// GetForecast returns the standard forecast for a location. This is a
// two-step lookup: points metadata first, then the forecast URL it names.
func (c *Client) GetForecast(ctx context.Context, latitude, longitude float64) (json.RawMessage, error) {
	return c.forecast(ctx, latitude, longitude, false)
}

// GetHourlyForecast returns the hourly forecast for a location.
func (c *Client) GetHourlyForecast(ctx context.Context, latitude, longitude float64) (json.RawMessage, error) {
	return c.forecast(ctx, latitude, longitude, true)
}

func (c *Client) forecast(ctx context.Context, latitude, longitude float64, hourly bool) (json.RawMessage, error) {
	points, err := c.GetPoints(ctx, latitude, longitude)
	if err != nil {
		return nil, err
	}

	var meta struct {
		Properties struct {
			Forecast       string `json:"forecast"`
			ForecastHourly string `json:"forecastHourly"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(points, &meta); err != nil {
		return nil, &APIError{Kind: ErrorAPI, Message: "decode points response", Cause: err}
	}

	forecastURL := meta.Properties.Forecast
	if hourly {
		forecastURL = meta.Properties.ForecastHourly
	}
	if forecastURL == "" {
		return nil, &APIError{Kind: ErrorNotFound, Message: "forecast URL not found in points response"}
	}

	// The points response carries absolute URLs; strip the base to reuse the
	// shared request path (and its cache keying).
	endpoint := strings.TrimPrefix(forecastURL, c.baseURL)
	return c.get(ctx, "forecast", endpoint, nil)
}

// GetGridForecast returns a forecast directly by forecast office and grid
// cell, skipping the points lookup.
func (c *Client) GetGridForecast(ctx context.Context, wfo string, x, y int, hourly bool) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("gridpoints/%s/%d,%d/forecast", url.PathEscape(wfo), x, y)
	if hourly {
		endpoint += "/hourly"
	}
	return c.get(ctx, "grid_forecast", endpoint, nil)
}

// GetAlerts returns weather alerts matching the given filters.
func (c *Client) GetAlerts(ctx context.Context, opts AlertOptions) (json.RawMessage, error) {
	params := url.Values{}
	if opts.Area != "" {
		params.Set("area", opts.Area)
	}
	if opts.Region != "" {
		params.Set("region", opts.Region)
	}
	if opts.Zone != "" {
		params.Set("zone", opts.Zone)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.MessageType != "" {
		params.Set("message_type", opts.MessageType)
	}
	if opts.Event != "" {
		params.Set("event", opts.Event)
	}
	if opts.Active {
		params.Set("active", "true")
	}

	return c.get(ctx, "alerts", "alerts", params)
}

// GetAlert returns a specific alert by ID.
func (c *Client) GetAlert(ctx context.Context, alertID string) (json.RawMessage, error) {
	return c.get(ctx, "alert", "alerts/"+url.PathEscape(alertID), nil)
}

// GetStations returns observation stations, optionally filtered by state.
func (c *Client) GetStations(ctx context.Context, state string) (json.RawMessage, error) {
	params := url.Values{}
	if state != "" {
		params.Set("state", state)
	}
	return c.get(ctx, "stations", "stations", params)
}

// GetStationObservations returns observations from a station. Zero start/end
// times are omitted from the query.
func (c *Client) GetStationObservations(ctx context.Context, stationID string, start, end time.Time) (json.RawMessage, error) {
	params := url.Values{}
	if !start.IsZero() {
		params.Set("start", start.UTC().Format(queryTimeLayout))
	}
	if !end.IsZero() {
		params.Set("end", end.UTC().Format(queryTimeLayout))
	}

	endpoint := "stations/" + url.PathEscape(stationID) + "/observations"
	return c.get(ctx, "station_observations", endpoint, params)
}

// GetLatestStationObservation returns the most recent observation from a
// station.
func (c *Client) GetLatestStationObservation(ctx context.Context, stationID string) (json.RawMessage, error) {
	endpoint := "stations/" + url.PathEscape(stationID) + "/observations/latest"
	return c.get(ctx, "latest_observation", endpoint, nil)
}

// GetOffice returns information about a Weather Forecast Office.
func (c *Client) GetOffice(ctx context.Context, officeID string) (json.RawMessage, error) {
	return c.get(ctx, "office", "offices/"+url.PathEscape(officeID), nil)
}

// GetOfficeHeadlines returns headlines issued by a Weather Forecast Office.
func (c *Client) GetOfficeHeadlines(ctx context.Context, officeID string) (json.RawMessage, error) {
	return c.get(ctx, "office_headlines", "offices/"+url.PathEscape(officeID)+"/headlines", nil)
}

// GetZones returns zones of the given type, optionally filtered by area.
// zoneType must be one of "forecast", "county", or "fire".
func (c *Client) GetZones(ctx context.Context, zoneType, area string) (json.RawMessage, error) {
	switch zoneType {
	case "forecast", "county", "fire":
	default:
		return nil, validationError("zone type must be one of: forecast, county, fire; got %q", zoneType)
	}

	params := url.Values{}
	if area != "" {
		params.Set("area", area)
	}
	return c.get(ctx, "zones", "zones/"+zoneType, params)
}

// GetZoneForecast returns the forecast for a zone.
func (c *Client) GetZoneForecast(ctx context.Context, zoneID string) (json.RawMessage, error) {
	return c.get(ctx, "zone_forecast", "zones/forecast/"+url.PathEscape(zoneID)+"/forecast", nil)
}

// GetZoneObservations returns observations for a zone.
func (c *Client) GetZoneObservations(ctx context.Context, zoneID string) (json.RawMessage, error) {
	return c.get(ctx, "zone_observations", "zones/forecast/"+url.PathEscape(zoneID)+"/observations", nil)
}

// GetProducts returns text products matching the given filters.
func (c *Client) GetProducts(ctx context.Context, opts ProductOptions) (json.RawMessage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if opts.Location != "" {
		params.Set("location", opts.Location)
	}
	if !opts.Start.IsZero() {
		params.Set("start", opts.Start.UTC().Format(queryTimeLayout))
	}
	if !opts.End.IsZero() {
		params.Set("end", opts.End.UTC().Format(queryTimeLayout))
	}

	return c.get(ctx, "products", "products", params)
}

// GetProduct returns a specific text product by ID.
func (c *Client) GetProduct(ctx context.Context, productID string) (json.RawMessage, error) {
	return c.get(ctx, "product", "products/"+url.PathEscape(productID), nil)
}

// GetGlossary returns the NWS API glossary.
func (c *Client) GetGlossary(ctx context.Context) (json.RawMessage, error) {
	return c.get(ctx, "glossary", "glossary", nil)
}

// GetIcons returns an icon set. An empty set name defaults to "forecast".
func (c *Client) GetIcons(ctx context.Context, set string) (json.RawMessage, error) {
	if set == "" {
		set = "forecast"
	}
	return c.get(ctx, "icons", "icons/"+url.PathEscape(set), nil)
}

// GetIcon returns a specific icon from a set.
func (c *Client) GetIcon(ctx context.Context, set, name string) (json.RawMessage, error) {
	return c.get(ctx, "icon", "icons/"+url.PathEscape(set)+"/"+url.PathEscape(name), nil)
}
