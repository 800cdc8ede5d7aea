package configloader

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// Bootstrap 对应 configs/config.yaml 的结构，经 Kratos config Scan 解码后再用 validator 校验。
type Bootstrap struct {
	Server        ServerSection        `json:"server"`
	Data          DataSection          `json:"data"`
	TMDB          TMDBSection          `json:"tmdb"`
	Cache         CacheSection         `json:"cache"`
	Search        SearchSection        `json:"search"`
	Observability ObservabilitySection `json:"observability"`
}

// ServerSection 描述入站 HTTP 服务。
type ServerSection struct {
	HTTP     HTTPSection     `json:"http"`
	Handlers HandlersSection `json:"handlers"`
}

// HTTPSection 为监听地址与整体超时。
type HTTPSection struct {
	Network string   `json:"network" validate:"omitempty,oneof=tcp tcp4 tcp6"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

// HandlersSection 为不同类型 Handler 的超时。
type HandlersSection struct {
	DefaultTimeout Duration `json:"default_timeout"`
	CommandTimeout Duration `json:"command_timeout"`
	QueryTimeout   Duration `json:"query_timeout"`
}

// DataSection 聚合存储配置。
type DataSection struct {
	Postgres PostgresSection `json:"postgres"`
}

// PostgresSection 描述连接池与事务默认值。
type PostgresSection struct {
	DSN                       string             `json:"dsn" validate:"required"`
	MaxOpenConns              int                `json:"max_open_conns" validate:"gte=0"`
	MinOpenConns              int                `json:"min_open_conns" validate:"gte=0"`
	MaxConnLifetime           Duration           `json:"max_conn_lifetime"`
	MaxConnIdleTime           Duration           `json:"max_conn_idle_time"`
	HealthCheckPeriod         Duration           `json:"health_check_period"`
	Schema                    string             `json:"schema"`
	PreparedStatementsEnabled bool               `json:"prepared_statements_enabled"`
	PoolMetricsEnabled        bool               `json:"pool_metrics_enabled"`
	Transaction               TransactionSection `json:"transaction"`
}

// TransactionSection 描述事务默认策略。
type TransactionSection struct {
	DefaultIsolation string   `json:"default_isolation" validate:"omitempty,oneof=read_committed repeatable_read serializable"`
	DefaultTimeout   Duration `json:"default_timeout"`
	LockTimeout      Duration `json:"lock_timeout"`
	MaxRetries       int      `json:"max_retries" validate:"gte=0"`
	MetricsEnabled   bool     `json:"metrics_enabled"`
}

// TMDBSection 描述元数据源客户端。
type TMDBSection struct {
	BaseURL           string         `json:"base_url" validate:"omitempty,url"`
	APIKey            string         `json:"api_key" validate:"required"`
	Timeout           Duration       `json:"timeout"`
	RequestsPerSecond float64        `json:"requests_per_second" validate:"gte=0"`
	Burst             int            `json:"burst" validate:"gte=0"`
	Breaker           BreakerSection `json:"breaker"`
}

// BreakerSection 描述熔断参数。
type BreakerSection struct {
	MaxRequests         uint32   `json:"max_requests"`
	Interval            Duration `json:"interval"`
	Timeout             Duration `json:"timeout"`
	ConsecutiveFailures uint32   `json:"consecutive_failures"`
}

// CacheSection 描述元数据缓存。
type CacheSection struct {
	LocalPath        string `json:"local_path"`
	LocalDisabled    bool   `json:"local_disabled"`
	BatchConcurrency int    `json:"batch_concurrency" validate:"gte=0,lte=64"`
}

// SearchSection 描述档案搜索。
type SearchSection struct {
	MaxResults int `json:"max_results" validate:"gte=0,lte=500"`
}

// ObservabilitySection 描述 tracing 与 metrics。
type ObservabilitySection struct {
	GlobalAttributes map[string]string `json:"global_attributes"`
	Tracing          TracingSection    `json:"tracing"`
	Metrics          MetricsSection    `json:"metrics"`
}

// TracingSection 对应 observability.tracing。
type TracingSection struct {
	Enabled            bool              `json:"enabled"`
	Exporter           string            `json:"exporter" validate:"omitempty,oneof=otlp_grpc otlp_http stdout"`
	Endpoint           string            `json:"endpoint"`
	Headers            map[string]string `json:"headers"`
	Insecure           bool              `json:"insecure"`
	SamplingRatio      float64           `json:"sampling_ratio" validate:"gte=0,lte=1"`
	BatchTimeout       Duration          `json:"batch_timeout"`
	ExportTimeout      Duration          `json:"export_timeout"`
	MaxQueueSize       int               `json:"max_queue_size" validate:"gte=0"`
	MaxExportBatchSize int               `json:"max_export_batch_size" validate:"gte=0"`
	Required           bool              `json:"required"`
	Attributes         map[string]string `json:"attributes"`
}

// MetricsSection 对应 observability.metrics。
type MetricsSection struct {
	Enabled             bool              `json:"enabled"`
	Exporter            string            `json:"exporter" validate:"omitempty,oneof=otlp_grpc otlp_http stdout"`
	Endpoint            string            `json:"endpoint"`
	Headers             map[string]string `json:"headers"`
	Insecure            bool              `json:"insecure"`
	Interval            Duration          `json:"interval"`
	DisableRuntimeStats bool              `json:"disable_runtime_stats"`
	Required            bool              `json:"required"`
	ResourceAttributes  map[string]string `json:"resource_attributes"`
}

// Duration 支持 "5s" 形式的字符串或纳秒整数。
type Duration struct {
	time.Duration
}

// UnmarshalJSON 实现 json.Unmarshaler。
func (d *Duration) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		d.Duration = 0
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			d.Duration = 0
			return nil
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", raw, err)
		}
		d.Duration = parsed
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("parse duration %s: %w", data, err)
	}
	d.Duration = time.Duration(n)
	return nil
}
