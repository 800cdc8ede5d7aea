package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/metadata"

	"github.com/go-kratos/kratos/v2/transport"
)

// HandlerType 表示 Handler 的语义类别，用于选择超时策略。
type HandlerType int

const (
	// HandlerTypeDefault 表示未显式区分的 Handler。
	HandlerTypeDefault HandlerType = iota
	// HandlerTypeCommand 表示写模型命令 Handler。
	HandlerTypeCommand
	// HandlerTypeQuery 表示读模型查询 Handler。
	HandlerTypeQuery
)

// HandlerTimeouts 聚合不同类型 Handler 的超时策略。
type HandlerTimeouts struct {
	Default time.Duration
	Command time.Duration
	Query   time.Duration
}

const (
	fallbackDefaultTimeout = 5 * time.Second
	fallbackQueryTimeout   = 3 * time.Second
	headerUserInfo         = "X-Apigateway-Api-Userinfo"
	headerRequestID        = "X-Request-Id"
	headerCallerUsername   = "X-Caller-Username"
)

// BaseHandler 提供公共的超时、Metadata 解析能力，供具体 Handler 内嵌复用。
type BaseHandler struct {
	timeouts HandlerTimeouts
}

// NewBaseHandler 构造基础 Handler，并为缺省值填充合理的回退策略。
func NewBaseHandler(timeouts HandlerTimeouts) *BaseHandler {
	if timeouts.Default <= 0 {
		if timeouts.Command > 0 {
			timeouts.Default = timeouts.Command
		} else if timeouts.Query > 0 {
			timeouts.Default = timeouts.Query
		} else {
			timeouts.Default = fallbackDefaultTimeout
		}
	}
	if timeouts.Command <= 0 {
		timeouts.Command = timeouts.Default
	}
	if timeouts.Query <= 0 {
		if timeouts.Default > 0 {
			timeouts.Query = timeouts.Default
		} else {
			timeouts.Query = fallbackQueryTimeout
		}
	}
	return &BaseHandler{timeouts: timeouts}
}

// Timeouts 返回填充回退值后的超时策略。
func (h *BaseHandler) Timeouts() HandlerTimeouts {
	if h == nil {
		return HandlerTimeouts{}
	}
	return h.timeouts
}

// WithTimeout 根据 Handler 类型包装上下文，返回绑定超时的新 Context 与取消函数。
func (h *BaseHandler) WithTimeout(ctx context.Context, kind HandlerType) (context.Context, context.CancelFunc) {
	if h == nil {
		return context.WithTimeout(ctx, fallbackDefaultTimeout)
	}
	var timeout time.Duration
	switch kind {
	case HandlerTypeCommand:
		timeout = h.timeouts.Command
	case HandlerTypeQuery:
		timeout = h.timeouts.Query
	default:
		timeout = h.timeouts.Default
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// ExtractMetadata 解析请求 ID 与网关透传的调用者身份；缺失请求 ID 时生成一个并回写响应头。
func (h *BaseHandler) ExtractMetadata(ctx context.Context) metadata.HandlerMetadata {
	tr, ok := transport.FromServerContext(ctx)
	if !ok {
		return metadata.HandlerMetadata{RequestID: metadata.NewRequestID()}
	}
	header := tr.RequestHeader()
	meta := metadata.HandlerMetadata{
		RequestID:      strings.TrimSpace(header.Get(headerRequestID)),
		CallerUsername: strings.TrimSpace(header.Get(headerCallerUsername)),
		RawUserInfo:    strings.TrimSpace(header.Get(headerUserInfo)),
	}
	if meta.RequestID == "" {
		meta.RequestID = metadata.NewRequestID()
	}
	if reply := tr.ReplyHeader(); reply != nil {
		reply.Set(headerRequestID, meta.RequestID)
	}
	if meta.RawUserInfo != "" {
		info, err := metadata.ParseUserInfo(meta.RawUserInfo)
		if err != nil {
			meta.InvalidUserInfo = true
		} else {
			meta.CallerUID = info.UID
			if meta.CallerUsername == "" {
				meta.CallerUsername = info.Username
			}
		}
	}
	return meta
}

// InjectHandlerMetadata 将解析结果注入到 Context，供后续层访问。
func InjectHandlerMetadata(ctx context.Context, meta metadata.HandlerMetadata) context.Context {
	return metadata.Inject(ctx, meta)
}

// HandlerMetadataFromContext 读取上游注入的 HandlerMetadata。
func HandlerMetadataFromContext(ctx context.Context) (metadata.HandlerMetadata, bool) {
	return metadata.FromContext(ctx)
}
