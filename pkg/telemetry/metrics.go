package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Counters used across the client. All methods accept a nil receiver.
type Counters struct {
	uploads         metric.Int64Counter
	uploadFailures  metric.Int64Counter
	refreshes       metric.Int64Counter
	refreshFailures metric.Int64Counter
}

func NewCounters() *Counters {
	c := &Counters{}
	c.uploads, _ = InitializeCounter("einstein_uploads_total", "Number of files uploaded to Einstein", "{upload}")
	c.uploadFailures, _ = InitializeCounter("einstein_uploads_failed", "Number of uploads that failed or did not pass", "{upload}")
	c.refreshes, _ = InitializeCounter("einstein_manifest_refreshes", "Number of task manifest fetches", "{refresh}")
	c.refreshFailures, _ = InitializeCounter("einstein_manifest_refresh_failures", "Number of failed task manifest fetches", "{refresh}")
	return c
}

func (c *Counters) Upload(ctx context.Context, attrs ...attribute.KeyValue) {
	if c != nil {
		add(ctx, c.uploads, attrs)
	}
}

func (c *Counters) UploadFailed(ctx context.Context, attrs ...attribute.KeyValue) {
	if c != nil {
		add(ctx, c.uploadFailures, attrs)
	}
}

func (c *Counters) Refresh(ctx context.Context) {
	if c != nil {
		add(ctx, c.refreshes, nil)
	}
}

func (c *Counters) RefreshFailed(ctx context.Context) {
	if c != nil {
		add(ctx, c.refreshFailures, nil)
	}
}

func add(ctx context.Context, counter metric.Int64Counter, attrs []attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}
