package metrics

import (
	"context"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

type Metrics struct {
	HTTPRequests  metric.Int64Counter
	HTTPDuration  metric.Float64Histogram
	Registrations metric.Int64Counter
	Logins        metric.Int64Counter
	Comments      metric.Int64Counter
	PostChanges   metric.Int64Counter
	MailSends     metric.Int64Counter
}

// Setup builds the instruments on a private prometheus registry and returns
// the handler that exposes it.
func Setup(serviceName string) (*Metrics, http.Handler, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	m := &Metrics{}

	m.HTTPRequests, err = meter.Int64Counter(
		"blog_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.HTTPDuration, err = meter.Float64Histogram(
		"blog_http_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.Registrations, err = meter.Int64Counter(
		"blog_registrations_total",
		metric.WithDescription("Registration attempts by outcome"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.Logins, err = meter.Int64Counter(
		"blog_logins_total",
		metric.WithDescription("Login attempts by outcome"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.Comments, err = meter.Int64Counter(
		"blog_comments_total",
		metric.WithDescription("Comments stored"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.PostChanges, err = meter.Int64Counter(
		"blog_post_changes_total",
		metric.WithDescription("Posts created, edited or deleted"),
	)
	if err != nil {
		return nil, nil, err
	}

	m.MailSends, err = meter.Int64Counter(
		"blog_mail_sends_total",
		metric.WithDescription("Contact relay attempts by outcome"),
	)
	if err != nil {
		return nil, nil, err
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m, handler, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	labels := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)

	m.HTTPRequests.Add(ctx, 1, labels)
	m.HTTPDuration.Record(ctx, duration.Seconds(), labels)
}

func (m *Metrics) RecordRegistration(ctx context.Context, outcome string) {
	m.Registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordLogin(ctx context.Context, outcome string) {
	m.Logins.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordComment(ctx context.Context) {
	m.Comments.Add(ctx, 1)
}

func (m *Metrics) RecordPostChange(ctx context.Context, action string) {
	m.PostChanges.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

func (m *Metrics) RecordMailSend(ctx context.Context, delivered bool) {
	m.MailSends.Add(ctx, 1, metric.WithAttributes(attribute.Bool("delivered", delivered)))
}
