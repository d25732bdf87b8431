// Package telemetry installs the OpenTelemetry tracer provider used by the
// LiveDNS client spans.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

const serviceName = "livedns-manager"

// Version is reported as the service version on every span.
var Version = "dev"

// Setup initializes OpenTelemetry based on environment configuration.
// OTEL_EXPORTER: "none" (default), "console", "otlp", or "both"
// OTEL_ENDPOINT: OTLP endpoint (default: "localhost:4317")
//
// Console spans go to consoleOut, which callers set to stderr so that
// command output on stdout stays machine-readable.
func Setup(ctx context.Context, consoleOut io.Writer) (func(context.Context) error, error) {
	exporterType := os.Getenv("OTEL_EXPORTER")
	if exporterType == "" {
		exporterType = "none"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var exporters []sdktrace.SpanExporter
	switch exporterType {
	case "none":
	case "console":
		exp, err := consoleExporter(consoleOut)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, exp)
	case "otlp":
		exp, err := otlpExporter(ctx)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, exp)
	case "both":
		console, err := consoleExporter(consoleOut)
		if err != nil {
			return nil, err
		}
		otlp, err := otlpExporter(ctx)
		if err != nil {
			return nil, err
		}
		exporters = append(exporters, console, otlp)
	default:
		return nil, fmt.Errorf("unknown OTEL_EXPORTER %q (want none, console, otlp or both)", exporterType)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))
	for _, exporter := range exporters {
		tp.RegisterSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter))
	}
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}

func consoleExporter(w io.Writer) (sdktrace.SpanExporter, error) {
	if w == nil {
		w = os.Stderr
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create console exporter: %w", err)
	}
	return exp, nil
}

func otlpExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	endpoint := os.Getenv("OTEL_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4317"
	}
	// TODO: expose TLS settings once the collector in the cluster requires it.
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}
	return exp, nil
}
