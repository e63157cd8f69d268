package otel_test

import (
	"context"
	"testing"
	"time"

	"github.com/louisbranch/questline/internal/platform/otel"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("QUESTLINE_OTEL_ENDPOINT", "")
	t.Setenv("QUESTLINE_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "narrative")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("QUESTLINE_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("QUESTLINE_OTEL_ENABLED", "false")

	shutdown, err := otel.Setup(context.Background(), "narrative")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address; no span is recorded so nothing is exported.
	t.Setenv("QUESTLINE_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("QUESTLINE_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "narrative")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}
