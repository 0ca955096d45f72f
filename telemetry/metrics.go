package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsMiddleware records latency, request counts and payload sizes per
// route.
func MetricsMiddleware(meter metric.Meter) gin.HandlerFunc {
	latency, _ := meter.Int64Histogram("http.server.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("The latency of HTTP requests."),
	)
	requests, _ := meter.Int64Counter("http.server.requests_total",
		metric.WithDescription("The total number of HTTP requests."),
	)
	failures, _ := meter.Int64Counter("http.server.error_requests_total",
		metric.WithDescription("The total number of failed HTTP requests."),
	)
	requestSize, _ := meter.Int64Histogram("http.server.request_size_bytes",
		metric.WithUnit("bytes"),
		metric.WithDescription("The size of HTTP requests in bytes."),
	)
	responseSize, _ := meter.Int64Histogram("http.server.response_size_bytes",
		metric.WithUnit("bytes"),
		metric.WithDescription("The size of HTTP responses in bytes."),
	)

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		attrs := metric.WithAttributes(
			attribute.String("http.route", c.FullPath()),
			attribute.String("http.request.method", c.Request.Method),
			attribute.Int("http.response.status_code", status),
		)

		latency.Record(ctx, time.Since(start).Milliseconds(), attrs)
		requests.Add(ctx, 1, attrs)
		if c.Request.ContentLength > 0 {
			requestSize.Record(ctx, c.Request.ContentLength, attrs)
		}
		if n := c.Writer.Size(); n > 0 {
			responseSize.Record(ctx, int64(n), attrs)
		}
		if status >= 400 {
			failures.Add(ctx, 1, attrs)
		}
	}
}
