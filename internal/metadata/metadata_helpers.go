// Package metadata 提供 HandlerMetadata 在 Context 中的存取工具，供控制器与服务层共享。
package metadata

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// HandlerMetadata 描述从请求头或上游网关解析出的上下文信息。
// 身份信息仅用于默认值（例如搜索时排除调用者本人），不做鉴权。
type HandlerMetadata struct {
	RequestID       string
	CallerUID       string
	CallerUsername  string
	RawUserInfo     string
	InvalidUserInfo bool
}

// IsZero 判断 Metadata 是否为空。
func (m HandlerMetadata) IsZero() bool {
	return m.RequestID == "" &&
		m.CallerUID == "" &&
		m.CallerUsername == "" &&
		m.RawUserInfo == "" &&
		!m.InvalidUserInfo
}

// NewRequestID 生成请求 ID。
func NewRequestID() string {
	return uuid.NewString()
}

type ctxKey struct{}

// Inject 将 HandlerMetadata 注入 Context。
func Inject(ctx context.Context, meta HandlerMetadata) context.Context {
	if meta.IsZero() {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, meta)
}

// FromContext 读取上游注入的 HandlerMetadata。
func FromContext(ctx context.Context) (HandlerMetadata, bool) {
	if ctx == nil {
		return HandlerMetadata{}, false
	}
	meta, ok := ctx.Value(ctxKey{}).(HandlerMetadata)
	return meta, ok
}

// UserInfo 为网关透传的身份声明中本服务关心的部分。
type UserInfo struct {
	UID      string
	Username string
}

// ParseUserInfo 解析 X-Apigateway-Api-Userinfo 头（base64 编码的 JSON 声明）。
func ParseUserInfo(raw string) (UserInfo, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UserInfo{}, nil
	}
	payload, err := decodeUserInfo(raw)
	if err != nil {
		return UserInfo{}, err
	}
	var claims map[string]any
	if err := json.Unmarshal(payload, &claims); err != nil {
		return UserInfo{}, err
	}
	info := UserInfo{
		UID:      firstClaim(claims, "uid", "user_id", "sub"),
		Username: firstClaim(claims, "username", "preferred_username"),
	}
	return info, nil
}

func firstClaim(claims map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := claims[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func decodeUserInfo(raw string) ([]byte, error) {
	decoders := []func(string) ([]byte, error){
		func(s string) ([]byte, error) { return base64.RawURLEncoding.DecodeString(s) },
		func(s string) ([]byte, error) { return base64.URLEncoding.DecodeString(s) },
		func(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) },
	}
	var err error
	for _, decode := range decoders {
		var payload []byte
		payload, err = decode(raw)
		if err == nil {
			return payload, nil
		}
	}
	return nil, errors.New("decode userinfo header failed")
}
