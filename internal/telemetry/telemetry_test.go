package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetup_Console(t *testing.T) {
	t.Setenv("OTEL_EXPORTER", "console")
	var buf bytes.Buffer

	shutdown, err := Setup(context.Background(), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, span := otel.Tracer("test").Start(context.Background(), "livedns.Call")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "livedns.Call") {
		t.Errorf("expected span to be exported, got %q", buf.String())
	}
}

func TestSetup_DefaultExportsNothing(t *testing.T) {
	t.Setenv("OTEL_EXPORTER", "")
	var buf bytes.Buffer

	shutdown, err := Setup(context.Background(), &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, span := otel.Tracer("test").Start(context.Background(), "livedns.Call")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestSetup_UnknownExporter(t *testing.T) {
	t.Setenv("OTEL_EXPORTER", "carrier-pigeon")
	if _, err := Setup(context.Background(), nil); err == nil {
		t.Fatal("expected error for unknown exporter, got nil")
	}
}
