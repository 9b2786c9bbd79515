// Command nwsq queries the National Weather Service API from the command
// line: point forecasts, active alerts, and latest station observations.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wxfetch/go-nws/internal/config"
	"github.com/wxfetch/go-nws/internal/observability"
	"github.com/wxfetch/go-nws/nws"
	"github.com/wxfetch/go-nws/weather"
)

func main() {
	lat := flag.Float64("lat", 0, "latitude for forecast lookup")
	lon := flag.Float64("lon", 0, "longitude for forecast lookup")
	hourly := flag.Bool("hourly", false, "fetch the hourly forecast instead of the twice-daily one")
	alertArea := flag.String("alerts", "", "fetch active alerts for a state code, e.g. TX")
	station := flag.String("station", "", "fetch the latest observation from a station, e.g. KAUS")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	client := nws.NewClient(
		nws.WithBaseURL(cfg.BaseURL),
		nws.WithUserAgent(cfg.FullUserAgent()),
		nws.WithCacheTTL(cfg.CacheTTL),
		nws.WithTimeout(cfg.Timeout),
		nws.WithLogger(logger),
		nws.WithMetrics(metrics),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch {
	case *alertArea != "":
		err = printAlerts(ctx, client, *alertArea)
	case *station != "":
		err = printObservation(ctx, client, *station)
	case *lat != 0 || *lon != 0:
		err = printForecast(ctx, client, *lat, *lon, *hourly)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("request failed", "error", err)
		os.Exit(1)
	}
}

func printForecast(ctx context.Context, client *nws.Client, lat, lon float64, hourly bool) error {
	var (
		raw []byte
		err error
	)
	if hourly {
		raw, err = client.GetHourlyForecast(ctx, lat, lon)
	} else {
		raw, err = client.GetForecast(ctx, lat, lon)
	}
	if err != nil {
		return err
	}

	forecast, err := weather.ParseForecast(raw)
	if err != nil {
		return err
	}

	for _, p := range forecast.Periods {
		fmt.Printf("%-16s %3.0f°%s  %s\n", p.Name, p.Temperature.Value, p.Temperature.Unit, p.ShortForecast)
	}
	return nil
}

func printAlerts(ctx context.Context, client *nws.Client, area string) error {
	raw, err := client.GetAlerts(ctx, nws.AlertOptions{Area: area, Active: true})
	if err != nil {
		return err
	}

	var feed struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(raw, &feed); err != nil {
		return fmt.Errorf("decode alerts response: %w", err)
	}

	if len(feed.Features) == 0 {
		fmt.Printf("no active alerts for %s\n", area)
		return nil
	}
	for _, feature := range feed.Features {
		alert, err := weather.ParseAlert(feature)
		if err != nil {
			return err
		}
		fmt.Printf("%s [%s/%s]\n  %s\n", alert.Event, alert.Severity, alert.Urgency, alert.Headline)
	}
	return nil
}

func printObservation(ctx context.Context, client *nws.Client, stationID string) error {
	raw, err := client.GetLatestStationObservation(ctx, stationID)
	if err != nil {
		return err
	}

	obs, err := weather.ParseObservation(raw)
	if err != nil {
		return err
	}

	fmt.Printf("%s at %s\n", stationID, obs.Timestamp.Format("2006-01-02 15:04 MST"))
	if obs.Temperature != nil {
		fmt.Printf("  temperature: %.1f°%s\n", obs.Temperature.Value, obs.Temperature.Unit)
	}
	if obs.Wind != nil {
		fmt.Printf("  wind: %.0f %s from %s\n", obs.Wind.Speed, obs.Wind.Unit, obs.Wind.Direction)
	}
	if obs.RelativeHumidity != nil {
		fmt.Printf("  humidity: %.0f%%\n", *obs.RelativeHumidity)
	}
	if obs.TextDescription != "" {
		fmt.Printf("  conditions: %s\n", obs.TextDescription)
	}
	return nil
}
