package utils

import (
	"testing"
	"time"
)

func TestGetEnvIntOrDefault(t *testing.T) {
	t.Setenv("WAITLIST_RATE_LIMIT_REQUESTS", "12")
	if got := GetEnvIntOrDefault("WAITLIST_RATE_LIMIT_REQUESTS", 30); got != 12 {
		t.Fatalf("expected 12, got %d", got)
	}

	for _, raw := range []string{"", "abc", "-4", "0"} {
		t.Setenv("WAITLIST_RATE_LIMIT_REQUESTS", raw)
		if got := GetEnvIntOrDefault("WAITLIST_RATE_LIMIT_REQUESTS", 30); got != 30 {
			t.Fatalf("expected default for %q, got %d", raw, got)
		}
	}
}

func TestOTelServiceName_Default(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	if got := OTelServiceName(); got != "launchwait" {
		t.Fatalf("expected launchwait, got %q", got)
	}
}

func TestGetEnvBoolOrDefault(t *testing.T) {
	t.Setenv("METRICS_ENABLED", "false")
	if GetEnvBoolOrDefault("METRICS_ENABLED", true) {
		t.Fatal("expected explicit false to win")
	}

	t.Setenv("METRICS_ENABLED", "sometimes")
	if !GetEnvBoolOrDefault("METRICS_ENABLED", true) {
		t.Fatal("expected default for garbage")
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGIN", " https://a.example , ,https://b.example")
	got := GetEnvList("CORS_ALLOWED_ORIGIN")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected list %q", got)
	}

	t.Setenv("CORS_ALLOWED_ORIGIN", " , ")
	if got := GetEnvList("CORS_ALLOWED_ORIGIN"); got != nil {
		t.Fatalf("expected nil, got %q", got)
	}
}

func TestGetEnvDurationOrDefault(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "45s")
	if got := GetEnvDurationOrDefault("REQUEST_TIMEOUT", time.Second); got != 45*time.Second {
		t.Fatalf("expected 45s, got %s", got)
	}

	for _, raw := range []string{"", "soon", "-1m", "0s"} {
		t.Setenv("REQUEST_TIMEOUT", raw)
		if got := GetEnvDurationOrDefault("REQUEST_TIMEOUT", time.Second); got != time.Second {
			t.Fatalf("expected default for %q, got %s", raw, got)
		}
	}
}
