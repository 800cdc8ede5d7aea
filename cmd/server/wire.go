//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

//go:generate go run github.com/google/wire/cmd/wire

package main

import (
	"context"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/clients"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/clients/tmdb"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/controllers"
	configloader "github.com/wongmatt93/untitled-movie-project-backend/internal/infrastructure/configloader"
	httpserver "github.com/wongmatt93/untitled-movie-project-backend/internal/infrastructure/http_server"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/infrastructure/localcache"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/repositories"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/services"

	"github.com/bionicotaku/lingo-utils/gclog"
	obswire "github.com/bionicotaku/lingo-utils/observability"
	"github.com/bionicotaku/lingo-utils/pgxpoolx"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2"
	"github.com/google/wire"
)

// wireApp 构建整个 Kratos 应用，分阶段装配依赖。
//
// 依赖注入顺序:
//  1. 配置加载: configloader.ProviderSet 解析配置并派生组件配置
//  2. 基础设施: gclog → observability → pgxpoolx → txmanager → localcache
//  3. 外部客户端: clients.ProviderSet（TMDB）
//  4. 业务层: repositories → services → controllers
//  5. 服务器: httpserver.ProviderSet 组装 HTTP Server
//  6. 应用: newApp 创建 Kratos App
func wireApp(context.Context, configloader.Params) (*kratos.App, func(), error) {
	panic(wire.Build(
		configloader.ProviderSet, // 配置加载与解析
		gclog.ProviderSet,        // 结构化日志
		obswire.ProviderSet,      // OpenTelemetry 追踪和指标
		pgxpoolx.ProviderSet,     // PostgreSQL 连接池
		txmanager.ProviderSet,    // 事务管理器
		localcache.ProviderSet,   // Badger 本地元数据缓存
		clients.ProviderSet,      // TMDB 客户端
		repositories.ProviderSet, // 数据访问层
		wire.Bind(new(services.MovieMetadataRepository), new(*repositories.MovieMetadataRepository)),
		wire.Bind(new(services.UserProfilesRepository), new(*repositories.UserProfilesRepository)),
		wire.Bind(new(services.ListEntriesRepository), new(*repositories.ListEntriesRepository)),
		wire.Bind(new(services.RankedBucketStore), new(*repositories.ListEntriesRepository)),
		wire.Bind(new(services.MovieLocalCache), new(*localcache.Store)),
		wire.Bind(new(services.MovieSource), new(*tmdb.Client)),
		wire.Bind(new(services.MovieResolver), new(*services.MovieCacheService)),
		services.ProviderSet, // 业务逻辑层
		wire.Bind(new(services.MovieCacheServiceInterface), new(*services.MovieCacheService)),
		wire.Bind(new(services.ProfileServiceInterface), new(*services.ProfileService)),
		wire.Bind(new(services.ProfileViewServiceInterface), new(*services.ProfileViewService)),
		controllers.ProviderSet, // 控制器层（HTTP handlers）
		httpserver.ProviderSet,  // HTTP Server
		newApp,                  // 组装 Kratos 应用
	))
}
