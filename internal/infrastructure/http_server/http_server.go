// Package httpserver 负责装配入站 HTTP Server 及其中间件栈。
// 包括：追踪、恢复、元数据传播、限流与日志中间件，以及 otelhttp 指标采集。
package httpserver

import (
	"net/http"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/controllers"
	configloader "github.com/wongmatt93/untitled-movie-project-backend/internal/infrastructure/configloader"

	obsTrace "github.com/bionicotaku/lingo-utils/observability/tracing"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/metadata"
	"github.com/go-kratos/kratos/v2/middleware/ratelimit"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

const (
	serverName       = "movie-profile-http"
	propagatedPrefix = "x-md-"
	healthPath       = "/healthz"
)

// NewHTTPServer 构造配置完整的 Kratos HTTP Server 实例。
//
// 中间件链（按执行顺序）：
// 1. obsTrace.Server() - OpenTelemetry 追踪
// 2. recovery.Recovery() - Panic 恢复
// 3. metadata.Server() - 转发 x-md- 前缀的 header
// 4. ratelimit.Server() - BBR 自适应限流
// 5. logging.Server() - 结构化日志记录（含 trace_id/span_id）
//
// otelhttp 作为 Filter 包裹整个路由，采集请求延迟与状态码指标；健康检查不计入。
func NewHTTPServer(cfg configloader.ServerConfig, movie *controllers.MovieHandler, profile *controllers.ProfileHandler, logger log.Logger) *khttp.Server {
	opts := []khttp.ServerOption{
		khttp.Middleware(
			obsTrace.Server(),
			recovery.Recovery(),
			metadata.Server(metadata.WithPropagatedPrefix(propagatedPrefix)),
			ratelimit.Server(),
			logging.Server(logger),
		),
		khttp.Filter(metricsFilter),
	}
	if cfg.Network != "" {
		opts = append(opts, khttp.Network(cfg.Network))
	}
	if cfg.Address != "" {
		opts = append(opts, khttp.Address(cfg.Address))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, khttp.Timeout(cfg.Timeout))
	}
	srv := khttp.NewServer(opts...)
	srv.HandleFunc(healthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if movie != nil {
		movie.Register(srv)
	}
	if profile != nil {
		profile.Register(srv)
	}
	return srv
}

func metricsFilter(next http.Handler) http.Handler {
	return otelhttp.NewHandler(next, serverName,
		otelhttp.WithMeterProvider(otel.GetMeterProvider()),
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != healthPath
		}),
	)
}
