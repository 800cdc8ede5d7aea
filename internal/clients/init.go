// Package clients 封装与外部服务的交互客户端。
// 该层负责将外部 REST 调用封装为业务层可用的方法。
package clients

import (
	"github.com/google/wire"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/clients/tmdb"
)

// ProviderSet 暴露 Clients 层的构造函数供 Wire 依赖注入使用。
var ProviderSet = wire.NewSet(
	tmdb.NewClient,
)
