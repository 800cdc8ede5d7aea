package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
)

var (
	movieCacheMetricsMu      sync.Mutex
	movieCacheMetricsEnabled bool
	movieCacheLookupCounter  metric.Int64Counter
	movieCacheFailureCounter metric.Int64Counter
	movieCacheFetchHistogram metric.Float64Histogram
)

const (
	movieCacheLookupMetricName  = "movie_cache_lookups_total"
	movieCacheFailureMetricName = "movie_cache_fetch_failures_total"
	movieCacheFetchMetricName   = "movie_cache_fetch_latency_ms"
)

// 查找命中层级。
const (
	tierLocal  = "local"
	tierStore  = "store"
	tierSource = "source"
)

var (
	attrTier      = attribute.Key("tier")
	attrOutcome   = attribute.Key("outcome")
	attrErrorKind = attribute.Key("error_kind")
)

type movieCacheMetrics struct {
	enabled bool
}

func newMovieCacheMetrics() *movieCacheMetrics {
	movieCacheMetricsMu.Lock()
	defer movieCacheMetricsMu.Unlock()
	if !movieCacheMetricsEnabled {
		initMovieCacheMetricsLocked()
	}
	return &movieCacheMetrics{enabled: movieCacheMetricsEnabled}
}

func initMovieCacheMetricsLocked() {
	provider := otel.GetMeterProvider()
	if provider == nil {
		provider = noopmetric.NewMeterProvider()
	}
	meter := provider.Meter("untitled-movie-project-backend.services.movie_cache")

	var err error
	movieCacheLookupCounter, err = meter.Int64Counter(movieCacheLookupMetricName,
		metric.WithDescription("Movie metadata lookups by resolving tier"))
	if err != nil {
		movieCacheMetricsEnabled = false
		return
	}
	movieCacheFailureCounter, err = meter.Int64Counter(movieCacheFailureMetricName,
		metric.WithDescription("Movie metadata source fetches that failed"))
	if err != nil {
		movieCacheMetricsEnabled = false
		return
	}
	movieCacheFetchHistogram, err = meter.Float64Histogram(movieCacheFetchMetricName,
		metric.WithDescription("Latency of fetching and storing metadata from the source"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		movieCacheMetricsEnabled = false
		return
	}
	movieCacheMetricsEnabled = true
}

func (m *movieCacheMetrics) recordLookup(ctx context.Context, tier, outcome string) {
	if m == nil || !m.enabled || movieCacheLookupCounter == nil {
		return
	}
	movieCacheLookupCounter.Add(ctx, 1, metric.WithAttributes(
		attrTier.String(tier),
		attrOutcome.String(outcome),
	))
}

func (m *movieCacheMetrics) recordFetch(ctx context.Context, started time.Time, err error) {
	if m == nil || !m.enabled {
		return
	}
	if movieCacheFetchHistogram != nil {
		movieCacheFetchHistogram.Record(ctx, float64(time.Since(started).Milliseconds()))
	}
	if err == nil || movieCacheFailureCounter == nil {
		return
	}
	movieCacheFailureCounter.Add(ctx, 1, metric.WithAttributes(attrErrorKind.String(errorKind(err))))
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrMovieNotFound):
		return "not_found"
	case errors.Is(err, ErrMetadataFetch):
		return "fetch"
	case errors.Is(err, ErrStore):
		return "store"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}
