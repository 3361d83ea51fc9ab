package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/marcelsud/webhook-recorder/dispatch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards
// It is also the Recorder used by the HTTP layer.
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *prometheus.Registry
	collector     Collector

	// OTel meters and instruments
	meter            metric.Meter
	historyGauge     metric.Int64ObservableGauge
	received         metric.Int64Counter
	stored           metric.Int64Counter
	dispatched       metric.Int64Counter
	headerRejections metric.Int64Counter
	persistFailures  metric.Int64Counter
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	registry := prometheus.NewRegistry()

	// Create Prometheus exporter
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	// Create meter provider
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	// Create meter with service info
	meter := meterProvider.Meter(
		"webhook-recorder",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		registry:      registry,
		collector:     collector,
		meter:         meter,
	}

	// Register metrics instruments
	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	// History length gauge (per path)
	oe.historyGauge, err = oe.meter.Int64ObservableGauge(
		"webhook.history.length",
		metric.WithDescription("Number of stored messages per webhook path"),
		metric.WithUnit("{messages}"),
		metric.WithInt64Callback(oe.observeHistoryLengths),
	)
	if err != nil {
		return fmt.Errorf("creating history length gauge: %w", err)
	}

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
	}{
		{&oe.received, "webhook.received", "Number of webhook requests accepted per path"},
		{&oe.stored, "webhook.stored", "Number of webhook bodies recorded per path"},
		{&oe.dispatched, "webhook.dispatched", "Number of forwarding attempts per path and outcome"},
		{&oe.headerRejections, "webhook.header.rejections", "Number of requests rejected by the header or signature check"},
		{&oe.persistFailures, "webhook.persist.failures", "Number of failed history saves per path"},
	}
	for _, c := range counters {
		*c.target, err = oe.meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit("{requests}"),
		)
		if err != nil {
			return fmt.Errorf("creating %s counter: %w", c.name, err)
		}
	}

	return nil
}

// observeHistoryLengths is a callback that reports history lengths
func (oe *OTelExporter) observeHistoryLengths(ctx context.Context, observer metric.Int64Observer) error {
	lengths, err := oe.collector.GetHistoryLengths(ctx)
	if err != nil {
		return err
	}

	for path, length := range lengths {
		observer.Observe(length, metric.WithAttributes(
			attribute.String("webhook.path", path),
		))
	}

	return nil
}

func pathAttr(path string) metric.AddOption {
	return metric.WithAttributes(attribute.String("webhook.path", path))
}

func (oe *OTelExporter) Received(ctx context.Context, path string) {
	oe.received.Add(ctx, 1, pathAttr(path))
}

func (oe *OTelExporter) Stored(ctx context.Context, path string) {
	oe.stored.Add(ctx, 1, pathAttr(path))
}

func (oe *OTelExporter) Dispatched(ctx context.Context, path string, outcome dispatch.Outcome) {
	oe.dispatched.Add(ctx, 1, metric.WithAttributes(
		attribute.String("webhook.path", path),
		attribute.String("webhook.outcome", outcome.String()),
	))
}

func (oe *OTelExporter) HeaderRejected(ctx context.Context, path string) {
	oe.headerRejections.Add(ctx, 1, pathAttr(path))
}

func (oe *OTelExporter) PersistFailed(ctx context.Context, path string) {
	oe.persistFailures.Add(ctx, 1, pathAttr(path))
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.HandlerFor(oe.registry, promhttp.HandlerOpts{})
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}

var _ Recorder = (*OTelExporter)(nil)
