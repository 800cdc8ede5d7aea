// Package main 提供影片排名 HTTP 服务的启动入口。
// 负责加载配置、初始化依赖（通过 Wire）、启动 HTTP Server 并优雅关闭。
package main

import (
	"context"
	"flag"

	configloader "github.com/wongmatt93/untitled-movie-project-backend/internal/infrastructure/configloader"

	obswire "github.com/bionicotaku/lingo-utils/observability"
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	_ "go.uber.org/automaxprocs" // 自动设置 GOMAXPROCS 为容器 CPU 配额
)

// newApp 负责组装 Kratos 应用：注入观测组件、日志器、服务元信息以及 HTTP Server。
//
// 参数：
//   - obsCmp: 可观测性组件（Tracer/Meter Provider），Wire 自动管理生命周期
//   - logger: 结构化日志器（gclog），包含 trace_id/span_id 关联
//   - hs: 配置完整的 HTTP Server（已注册路由和中间件）
//   - meta: 服务元信息（Name/Version/Environment/InstanceID）
func newApp(
	_ *obswire.Component,
	logger log.Logger,
	hs *khttp.Server,
	meta configloader.ServiceInfo,
) *kratos.App {
	return kratos.New(
		kratos.ID(meta.InstanceID),
		kratos.Name(meta.Name),
		kratos.Version(meta.Version),
		kratos.Metadata(map[string]string{"environment": meta.Environment}),
		kratos.Logger(logger),
		kratos.Server(hs),
	)
}

func main() {
	ctx := context.Background()

	// 1. 解析命令行参数：-conf 指定配置文件路径或目录
	confFlag := flag.String("conf", "", "config path or directory, eg: -conf configs/config.yaml")
	flag.Parse()

	params := configloader.Params{ConfPath: *confFlag}

	// 2. 通过 Wire 装配所有依赖；wireApp 由 wire_gen.go 生成（go generate ./cmd/server）
	app, cleanupApp, err := wireApp(ctx, params)
	if err != nil {
		panic(err)
	}
	defer cleanupApp()

	// 3. 启动应用并阻塞，直到收到停止信号（SIGINT/SIGTERM）
	if err := app.Run(); err != nil {
		panic(err)
	}
}
