package api

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "portfolio-api/api"

	reorderSpanName    = "portfolio.reorder"
	reorderEventName   = "portfolio.reorder.request"
	reorderEventDomain = "portfolio"
)

// reorderRequestMetrics collects per-request timings for the reorder routes
// and emits them as a structured log entry plus an OpenTelemetry span.
type reorderRequestMetrics struct {
	logger *log.Logger
	route  string
	span   trace.Span
	start  time.Time

	authDuration   time.Duration
	decodeDuration time.Duration
	storeDuration  time.Duration
	items          int
	matched        int
	errorStage     string
}

func newReorderRequestMetrics(ctx context.Context, logger *log.Logger, route string) (*reorderRequestMetrics, context.Context) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, reorderSpanName)
	return &reorderRequestMetrics{
		logger: logger,
		route:  route,
		span:   span,
		start:  time.Now(),
	}, ctx
}

func (m *reorderRequestMetrics) ObserveAuth(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.authDuration = duration
}

func (m *reorderRequestMetrics) ObserveDecode(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.decodeDuration = duration
}

func (m *reorderRequestMetrics) ObserveStore(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.storeDuration = duration
}

func (m *reorderRequestMetrics) SetItems(count int) {
	if count < 0 {
		count = 0
	}
	m.items = count
}

func (m *reorderRequestMetrics) SetMatched(count int) {
	if count < 0 {
		count = 0
	}
	m.matched = count
}

func (m *reorderRequestMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

// Log finalizes the request span and writes the observability event. It must
// be called exactly once per request.
func (m *reorderRequestMetrics) Log(status int, err error) {
	if m == nil {
		return
	}

	totalMs := durationToMillis(time.Since(m.start))
	severityText, severityNumber := severityForStatus(status, err)

	attrs := []attribute.KeyValue{
		attribute.String("http.route", m.route),
		attribute.Int("http.status_code", status),
		attribute.Int("portfolio.reorder.items", m.items),
		attribute.Int("portfolio.reorder.matched", m.matched),
		attribute.Float64("portfolio.reorder.total_ms", totalMs),
	}
	if m.authDuration > 0 {
		attrs = append(attrs, attribute.Float64("portfolio.reorder.auth_ms", durationToMillis(m.authDuration)))
	}
	if m.decodeDuration > 0 {
		attrs = append(attrs, attribute.Float64("portfolio.reorder.decode_ms", durationToMillis(m.decodeDuration)))
	}
	if m.storeDuration > 0 {
		attrs = append(attrs, attribute.Float64("portfolio.reorder.store_ms", durationToMillis(m.storeDuration)))
	}
	if m.errorStage != "" {
		attrs = append(attrs, attribute.String("portfolio.reorder.error_stage", m.errorStage))
	}

	if m.span != nil {
		m.span.SetAttributes(attrs...)

		eventAttrs := append([]attribute.KeyValue{
			attribute.String("event.name", reorderEventName),
			attribute.String("event.domain", reorderEventDomain),
			attribute.String("severity_text", severityText),
			attribute.Int("severity_number", severityNumber),
		}, attrs...)
		if err != nil {
			eventAttrs = append(eventAttrs, attribute.String("error.message", err.Error()))
		}
		m.span.AddEvent("observability.event", trace.WithAttributes(eventAttrs...))

		if err != nil || status >= http.StatusInternalServerError {
			desc := "request failed"
			if err != nil {
				desc = err.Error()
			}
			m.span.SetStatus(codes.Error, desc)
		} else {
			m.span.SetStatus(codes.Ok, "")
		}
		m.span.End()
	}

	if m.logger == nil {
		return
	}

	attrMap := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		attrMap[string(kv.Key)] = kv.Value.AsInterface()
	}

	fields := log.Fields{
		"event.name":      reorderEventName,
		"event.domain":    reorderEventDomain,
		"severity_text":   severityText,
		"severity_number": severityNumber,
		"attributes":      attrMap,
	}
	if m.span != nil {
		if sc := m.span.SpanContext(); sc.HasTraceID() {
			fields["trace_id"] = sc.TraceID().String()
		}
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	m.logger.WithFields(fields).Info("observability.event")
}

func severityForStatus(status int, err error) (string, int) {
	switch {
	case err != nil || status >= http.StatusInternalServerError:
		return "ERROR", 17
	case status >= http.StatusBadRequest:
		return "WARN", 13
	default:
		return "INFO", 9
	}
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
