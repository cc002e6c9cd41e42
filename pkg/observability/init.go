package observability

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/ajitpratap0/stratify/pkg/errors"
)

// ShutdownFunc flushes and stops a tracer provider
type ShutdownFunc func(ctx context.Context) error

// InitTracing installs a global tracer provider that exports every span as
// one JSON object per line to config.Writer. The returned function must be
// called to flush spans before the writer is closed.
func InitTracing(config TracingConfig) (ShutdownFunc, error) {
	if config.Writer == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "tracing writer is required")
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(config.Writer))
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case config.SamplingRate <= 0:
		sampler = sdktrace.NeverSample()
	case config.SamplingRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(config.SamplingRate)
	}

	// Runs are short, so spans are exported synchronously as they end.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
		sdktrace.WithSyncer(exporter),
	)

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		defer otel.SetTracerProvider(previous)
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown tracer: %w", err)
		}
		return nil
	}, nil
}

// InitFileTracing is InitTracing writing to a file created at path. The
// shutdown function also closes the file.
func InitFileTracing(path string, config TracingConfig) (ShutdownFunc, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create trace file").
			WithDetail("path", path)
	}

	config.Writer = f
	shutdown, err := InitTracing(config)
	if err != nil {
		f.Close()
		return nil, err
	}

	return func(ctx context.Context) error {
		shutdownErr := shutdown(ctx)
		closeErr := f.Close()
		if shutdownErr != nil {
			return shutdownErr
		}
		if closeErr != nil {
			return errors.Wrap(closeErr, errors.ErrorTypeFile, "failed to close trace file").
				WithDetail("path", path)
		}
		return nil
	}, nil
}

// DefaultTracingConfig returns the tracing configuration used by the CLI
func DefaultTracingConfig(version string) TracingConfig {
	return TracingConfig{
		ServiceName:    "stratify",
		ServiceVersion: version,
		SamplingRate:   1.0,
	}
}
