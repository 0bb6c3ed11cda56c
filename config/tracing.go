package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/akeren/launchwait/internal/log"
	"github.com/akeren/launchwait/pkg/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

const (
	defaultOTLPEndpoint = "http://localhost:4318"
	defaultOTLPPath     = "/v1/traces"
)

type otlpEndpoint struct {
	hostport string
	path     string
	insecure bool
}

func (e otlpEndpoint) options() []otlptracehttp.Option {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(e.hostport),
		otlptracehttp.WithURLPath(e.path),
	}
	if e.insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return opts
}

// SetupTracing installs a global OTLP/HTTP tracer provider when
// OTEL_TRACES_ENABLED is set. The returned func flushes and stops it; both results
// are nil when tracing is off.
func SetupTracing(logger *log.Logger) (func(context.Context) error, error) {
	if !utils.IsTracingEnabled() {
		return nil, nil
	}

	raw := utils.GetEnvTrimmedOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", defaultOTLPEndpoint)
	endpoint, err := parseOTLPEndpoint(raw)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exporter, err := otlptracehttp.New(ctx, endpoint.options()...)
	if err != nil {
		return nil, fmt.Errorf("setup tracing exporter: %w", err)
	}

	serviceName := utils.OTelServiceName()
	attrs := []attribute.KeyValue{attribute.String("service.name", serviceName)}
	if env := GetAppEnv(); env != "" {
		attrs = append(attrs, attribute.String("deployment.environment", env))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("setup tracing resource: %w", err)
	}

	ratio := samplerRatio(utils.GetEnvTrimmed("OTEL_TRACES_SAMPLER_ARG"))
	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(ratio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("OpenTelemetry tracing enabled", "service", serviceName, "endpoint", raw, "sample_ratio", ratio)
	return tp.Shutdown, nil
}

// samplerRatio accepts a fraction in [0,1]; anything else samples everything.
func samplerRatio(raw string) float64 {
	ratio, err := strconv.ParseFloat(raw, 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return 1
	}
	return ratio
}

// parseOTLPEndpoint accepts http(s)://host:port[/path] or a bare host:port,
// which is sent over plain HTTP.
func parseOTLPEndpoint(raw string) (otlpEndpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return otlpEndpoint{}, errors.New("empty OTLP endpoint")
	}

	if !strings.Contains(raw, "://") {
		if strings.ContainsAny(raw, "/?#") {
			return otlpEndpoint{}, fmt.Errorf("invalid OTLP endpoint %q: a path needs an http:// or https:// scheme", raw)
		}
		return otlpEndpoint{hostport: raw, path: defaultOTLPPath, insecure: true}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return otlpEndpoint{}, fmt.Errorf("invalid OTLP endpoint %q: %w", raw, err)
	}
	if u.Host == "" {
		return otlpEndpoint{}, fmt.Errorf("invalid OTLP endpoint %q: missing host", raw)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return otlpEndpoint{}, fmt.Errorf("unsupported OTLP endpoint scheme %q in %q", u.Scheme, raw)
	}

	path := u.EscapedPath()
	if path == "" || path == "/" {
		path = defaultOTLPPath
	}
	return otlpEndpoint{hostport: u.Host, path: path, insecure: scheme == "http"}, nil
}
