package configloader

import (
	"maps"
	"time"
)

const (
	defaultHandlerTimeout   = 5 * time.Second
	defaultQueryTimeout     = 3 * time.Second
	defaultHTTPAddr         = ":8080"
	defaultHTTPNetwork      = "tcp"
	defaultBatchConcurrency = 8
	defaultSearchResults    = 50
)

func fromBootstrap(b *Bootstrap) RuntimeConfig {
	if b == nil {
		return RuntimeConfig{}
	}
	return RuntimeConfig{
		Server:        serverFromBootstrap(b.Server),
		Database:      databaseFromBootstrap(b.Data.Postgres),
		TMDB:          tmdbFromBootstrap(b.TMDB),
		Cache:         CacheConfig(b.Cache),
		Search:        SearchConfig(b.Search),
		Observability: observabilityFromBootstrap(b.Observability),
	}
}

func serverFromBootstrap(s ServerSection) ServerConfig {
	return ServerConfig{
		Network:  s.HTTP.Network,
		Address:  s.HTTP.Addr,
		Timeout:  s.HTTP.Timeout.Duration,
		Handlers: handlerTimeouts(s.Handlers),
	}
}

func handlerTimeouts(h HandlersSection) HandlerTimeoutConfig {
	cfg := HandlerTimeoutConfig{
		Default: defaultHandlerTimeout,
		Command: defaultHandlerTimeout,
		Query:   defaultQueryTimeout,
	}
	if d := h.DefaultTimeout.Duration; d > 0 {
		cfg.Default = d
	}
	if d := h.CommandTimeout.Duration; d > 0 {
		cfg.Command = d
	} else {
		cfg.Command = cfg.Default
	}
	if d := h.QueryTimeout.Duration; d > 0 {
		cfg.Query = d
	} else {
		cfg.Query = firstNonZero(cfg.Query, cfg.Default)
	}
	return cfg
}

func databaseFromBootstrap(pg PostgresSection) DatabaseConfig {
	return DatabaseConfig{
		DSN:               pg.DSN,
		MaxOpenConns:      pg.MaxOpenConns,
		MinOpenConns:      pg.MinOpenConns,
		MaxConnLifetime:   pg.MaxConnLifetime.Duration,
		MaxConnIdleTime:   pg.MaxConnIdleTime.Duration,
		HealthCheckPeriod: pg.HealthCheckPeriod.Duration,
		Schema:            pg.Schema,
		PreparedStmts:     pg.PreparedStatementsEnabled,
		PoolMetrics:       pg.PoolMetricsEnabled,
		Transaction: TransactionConfig{
			DefaultIsolation: pg.Transaction.DefaultIsolation,
			DefaultTimeout:   pg.Transaction.DefaultTimeout.Duration,
			LockTimeout:      pg.Transaction.LockTimeout.Duration,
			MaxRetries:       pg.Transaction.MaxRetries,
			MetricsEnabled:   pg.Transaction.MetricsEnabled,
		},
	}
}

func tmdbFromBootstrap(t TMDBSection) TMDBConfig {
	return TMDBConfig{
		BaseURL:           t.BaseURL,
		APIKey:            t.APIKey,
		Timeout:           t.Timeout.Duration,
		RequestsPerSecond: t.RequestsPerSecond,
		Burst:             t.Burst,
		Breaker: BreakerConfig{
			MaxRequests:         t.Breaker.MaxRequests,
			Interval:            t.Breaker.Interval.Duration,
			Timeout:             t.Breaker.Timeout.Duration,
			ConsecutiveFailures: t.Breaker.ConsecutiveFailures,
		},
	}
}

func observabilityFromBootstrap(obs ObservabilitySection) ObservabilityConfig {
	t, m := obs.Tracing, obs.Metrics
	return ObservabilityConfig{
		GlobalAttributes: mapCopy(obs.GlobalAttributes),
		Tracing: TracingConfig{
			Enabled:            t.Enabled,
			Exporter:           t.Exporter,
			Endpoint:           t.Endpoint,
			Headers:            mapCopy(t.Headers),
			Insecure:           t.Insecure,
			SamplingRatio:      t.SamplingRatio,
			BatchTimeout:       t.BatchTimeout.Duration,
			ExportTimeout:      t.ExportTimeout.Duration,
			MaxQueueSize:       t.MaxQueueSize,
			MaxExportBatchSize: t.MaxExportBatchSize,
			Required:           t.Required,
			Attributes:         mapCopy(t.Attributes),
		},
		Metrics: MetricsConfig{
			Enabled:             m.Enabled,
			Exporter:            m.Exporter,
			Endpoint:            m.Endpoint,
			Headers:             mapCopy(m.Headers),
			Insecure:            m.Insecure,
			Interval:            m.Interval.Duration,
			DisableRuntimeStats: m.DisableRuntimeStats,
			Required:            m.Required,
			ResourceAttributes:  mapCopy(m.ResourceAttributes),
		},
	}
}

func mapCopy(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	return maps.Clone(src)
}

func firstNonZero(durations ...time.Duration) time.Duration {
	for _, d := range durations {
		if d > 0 {
			return d
		}
	}
	return 0
}

func fillDefaults(cfg *RuntimeConfig) {
	if cfg.Server.Network == "" {
		cfg.Server.Network = defaultHTTPNetwork
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultHTTPAddr
	}
	if cfg.Cache.BatchConcurrency <= 0 {
		cfg.Cache.BatchConcurrency = defaultBatchConcurrency
	}
	if cfg.Search.MaxResults <= 0 {
		cfg.Search.MaxResults = defaultSearchResults
	}
}
