package tracing

import (
	"context"
	"io"
	"os"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/viant/fluxmesh"

// Kind classifies a span: processing cycles are internal, mail collection
// consumes from outboxes and mail delivery produces into inboxes.
type Kind int

const (
	KindInternal Kind = iota
	KindProducer
	KindConsumer
)

func (k Kind) spanKind() trace.SpanKind {
	switch k {
	case KindProducer:
		return trace.SpanKindProducer
	case KindConsumer:
		return trace.SpanKindConsumer
	}
	return trace.SpanKindInternal
}

// Config identifies the traced service; an empty OutputFile writes spans to stdout.
type Config struct {
	Service    string
	Version    string
	OutputFile string
}

var (
	installOnce sync.Once
	installErr  error
)

// Init installs the stdout exporter as the global provider. Only the first
// call takes effect, later calls return its error.
func Init(config Config) error {
	installOnce.Do(func() {
		var writer io.Writer = os.Stdout
		if config.OutputFile != "" {
			f, err := os.Create(config.OutputFile)
			if err != nil {
				installErr = err
				return
			}
			writer = f
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(writer))
		if err != nil {
			installErr = err
			return
		}
		installErr = install(config, exporter)
	})
	return installErr
}

// InitWithExporter installs exporter as the global provider, with Init's once semantics.
func InitWithExporter(config Config, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	installOnce.Do(func() {
		installErr = install(config, exporter)
	})
	return installErr
}

func install(config Config, exporter sdktrace.SpanExporter) error {
	res, err := resource.New(context.Background(), resource.WithAttributes(
		attribute.String("service.name", config.Service),
		attribute.String("service.version", config.Version),
	))
	if err != nil {
		return err
	}
	otel.SetTracerProvider(sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	))
	return nil
}

// Span is a nil-safe handle over an OpenTelemetry span
type Span struct {
	span trace.Span
}

// WithAttributes sets string attributes
func (s *Span) WithAttributes(attrs map[string]string) *Span {
	if s == nil || len(attrs) == 0 {
		return s
	}
	kv := make([]attribute.KeyValue, 0, len(attrs))
	for key, value := range attrs {
		kv = append(kv, attribute.String(key, value))
	}
	s.span.SetAttributes(kv...)
	return s
}

// WithCount sets an integer attribute, typically the number of handled items
func (s *Span) WithCount(key string, value int) *Span {
	if s == nil {
		return s
	}
	s.span.SetAttributes(attribute.Int(key, value))
	return s
}

// StartSpan starts a span named after the operation
func StartSpan(ctx context.Context, name string, kind Kind) (context.Context, *Span) {
	ctx, span := otel.Tracer(instrumentationName).Start(ctx, name, trace.WithSpanKind(kind.spanKind()))
	return ctx, &Span{span: span}
}

// EndSpan records err (or OK) as the span status and ends the span
func EndSpan(s *Span, err error) {
	if s == nil {
		return
	}
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
