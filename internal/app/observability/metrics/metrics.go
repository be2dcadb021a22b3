package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal       metric.Int64Counter
	HTTPRequestDuration     metric.Float64Histogram
	AuthRequestsTotal       metric.Int64Counter
	SessionHydrationsTotal  metric.Int64Counter
	BootstrapFetchesTotal   metric.Int64Counter
	UpstreamRequestDuration metric.Float64Histogram
	ActiveSessionsGauge     metric.Int64Gauge
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments exactly once,
// using the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("sipas-portal")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.AuthRequestsTotal, err = meter.Int64Counter(
			"auth_requests_total",
			metric.WithDescription("Total number of login/logout/register requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create auth_requests_total: %v", err)
		}

		m.SessionHydrationsTotal, err = meter.Int64Counter(
			"session_hydrations_total",
			metric.WithDescription("Total number of session mirror hydrations"),
			metric.WithUnit("{hydration}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create session_hydrations_total: %v", err)
		}

		m.BootstrapFetchesTotal, err = meter.Int64Counter(
			"bootstrap_profile_fetches_total",
			metric.WithDescription("Total number of bootstrap profile fetches"),
			metric.WithUnit("{fetch}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create bootstrap_profile_fetches_total: %v", err)
		}

		m.UpstreamRequestDuration, err = meter.Float64Histogram(
			"upstream_request_duration_seconds",
			metric.WithDescription("Duration of requests to the SiPAS backend"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_request_duration_seconds: %v", err)
		}

		m.ActiveSessionsGauge, err = meter.Int64Gauge(
			"active_sessions",
			metric.WithDescription("Number of live session stores in the registry"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create active_sessions: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global instruments; InitAppMetrics must run first.
func Get() *AppMetrics {
	return appMetrics
}
