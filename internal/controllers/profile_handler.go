package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/controllers/dto"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/services"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// 路由 operation 名称。
const (
	OperationCreateProfile  = "/movies.v1.ProfileService/CreateProfile"
	OperationGetProfile     = "/movies.v1.ProfileService/GetProfile"
	OperationGetRawProfile  = "/movies.v1.ProfileService/GetRawProfile"
	OperationReplaceProfile = "/movies.v1.ProfileService/ReplaceProfile"
	OperationMutateList     = "/movies.v1.ProfileService/MutateList"
	OperationSearchProfiles = "/movies.v1.ProfileService/SearchProfiles"
)

// ProfileHandler 暴露档案读写与搜索。
type ProfileHandler struct {
	*BaseHandler
	profiles services.ProfileServiceInterface
	views    services.ProfileViewServiceInterface
}

// NewProfileHandler 构造 ProfileHandler。
func NewProfileHandler(profiles services.ProfileServiceInterface, views services.ProfileViewServiceInterface, base *BaseHandler) *ProfileHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &ProfileHandler{BaseHandler: base, profiles: profiles, views: views}
}

// Register 挂载档案路由。
func (h *ProfileHandler) Register(srv *khttp.Server) {
	r := srv.Route("/")
	r.GET("/profiles/search", h.searchProfiles)
	r.POST("/profiles", h.createProfile)
	r.GET("/profiles/{key}/{value}", h.getProfile)
	r.GET("/profiles/{key}/{value}/raw", h.getRawProfile)
	r.PUT("/profiles/{uid}", h.replaceProfile)
	r.POST("/profiles/{uid}/lists", h.mutateList)
}

func (h *ProfileHandler) createProfile(ctx khttp.Context) error {
	var req dto.CreateProfileRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(err)
	}
	if err := validate.Struct(&req); err != nil {
		return mapServiceError(err)
	}
	khttp.SetOperation(ctx, OperationCreateProfile)
	return h.serve(ctx, HandlerTypeCommand, http.StatusCreated, &req, func(c context.Context) (any, error) {
		view, err := h.profiles.CreateProfile(c, req.ToCreateInput())
		if err != nil {
			return nil, err
		}
		return dto.ToProfile(view), nil
	})
}

func (h *ProfileHandler) getProfile(ctx khttp.Context) error {
	key := services.ProfileKey(ctx.Vars().Get("key"))
	value := ctx.Vars().Get("value")
	khttp.SetOperation(ctx, OperationGetProfile)
	return h.serve(ctx, HandlerTypeQuery, http.StatusOK, value, func(c context.Context) (any, error) {
		view, err := h.views.GetProfileView(c, key, value)
		if err != nil {
			return nil, err
		}
		return dto.ToProfile(view), nil
	})
}

func (h *ProfileHandler) getRawProfile(ctx khttp.Context) error {
	key := services.ProfileKey(ctx.Vars().Get("key"))
	value := ctx.Vars().Get("value")
	khttp.SetOperation(ctx, OperationGetRawProfile)
	return h.serve(ctx, HandlerTypeQuery, http.StatusOK, value, func(c context.Context) (any, error) {
		profile, err := h.profiles.GetProfile(c, key, value)
		if err != nil {
			return nil, err
		}
		return dto.ToRawProfile(profile), nil
	})
}

func (h *ProfileHandler) replaceProfile(ctx khttp.Context) error {
	uid := ctx.Vars().Get("uid")
	var req dto.ReplaceProfileRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(err)
	}
	if err := validate.Struct(&req); err != nil {
		return mapServiceError(err)
	}
	khttp.SetOperation(ctx, OperationReplaceProfile)
	return h.serve(ctx, HandlerTypeCommand, http.StatusOK, &req, func(c context.Context) (any, error) {
		view, err := h.profiles.ReplaceProfile(c, req.ToReplaceInput(uid))
		if err != nil {
			return nil, err
		}
		return dto.ToProfile(view), nil
	})
}

func (h *ProfileHandler) mutateList(ctx khttp.Context) error {
	uid := ctx.Vars().Get("uid")
	var req dto.MutateListRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(err)
	}
	if err := validate.Struct(&req); err != nil {
		return mapServiceError(err)
	}
	khttp.SetOperation(ctx, OperationMutateList)
	return h.serve(ctx, HandlerTypeCommand, http.StatusOK, &req, func(c context.Context) (any, error) {
		view, err := h.profiles.MutateList(c, req.ToMutateInput(uid))
		if err != nil {
			return nil, err
		}
		return dto.ToProfile(view), nil
	})
}

func (h *ProfileHandler) searchProfiles(ctx khttp.Context) error {
	query := ctx.Query().Get("q")
	exclude, hasExclude := ctx.Query()["exclude"]
	khttp.SetOperation(ctx, OperationSearchProfiles)
	return h.serve(ctx, HandlerTypeQuery, http.StatusOK, query, func(c context.Context) (any, error) {
		excludeUsername := ""
		if hasExclude && len(exclude) > 0 {
			excludeUsername = strings.TrimSpace(exclude[0])
		} else if meta, ok := HandlerMetadataFromContext(c); ok {
			excludeUsername = meta.CallerUsername
		}
		views, err := h.views.SearchProfiles(c, query, excludeUsername)
		if err != nil {
			return nil, err
		}
		return dto.ToProfiles(views), nil
	})
}

// serve 套用服务端中间件链、请求元数据与超时策略，并映射业务错误。
func (h *ProfileHandler) serve(ctx khttp.Context, kind HandlerType, status int, req any, call func(context.Context) (any, error)) error {
	handler := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		meta := h.ExtractMetadata(c)
		timeoutCtx, cancel := h.WithTimeout(InjectHandlerMetadata(c, meta), kind)
		defer cancel()

		out, err := call(timeoutCtx)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return out, nil
	})
	out, err := handler(ctx, req)
	if err != nil {
		return err
	}
	return ctx.Result(status, out)
}
