package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/controllers/dto"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/vo"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/services"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// 路由 operation 名称，供日志与追踪中间件使用。
const (
	OperationGetMovie   = "/movies.v1.MovieService/GetMovie"
	OperationBatchMovie = "/movies.v1.MovieService/BatchGetMovies"
)

// MovieHandler 暴露元数据 get-or-fetch。
type MovieHandler struct {
	*BaseHandler
	movies services.MovieCacheServiceInterface
}

// NewMovieHandler 构造 MovieHandler。
func NewMovieHandler(movies services.MovieCacheServiceInterface, base *BaseHandler) *MovieHandler {
	if base == nil {
		base = NewBaseHandler(HandlerTimeouts{})
	}
	return &MovieHandler{BaseHandler: base, movies: movies}
}

// Register 挂载影片路由。
func (h *MovieHandler) Register(srv *khttp.Server) {
	r := srv.Route("/")
	r.GET("/movies/{id}", h.getMovie)
	r.POST("/movies/batch", h.batchMovies)
}

func (h *MovieHandler) getMovie(ctx khttp.Context) error {
	movieID, err := parseMovieID(ctx.Vars().Get("id"))
	if err != nil {
		return badRequest(err)
	}
	khttp.SetOperation(ctx, OperationGetMovie)
	handler := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		meta := h.ExtractMetadata(c)
		timeoutCtx, cancel := h.WithTimeout(InjectHandlerMetadata(c, meta), HandlerTypeQuery)
		defer cancel()

		movie, err := h.movies.GetOrFetch(timeoutCtx, movieID)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return dto.ToMovie(vo.NewMovieMetadata(movie)), nil
	})
	out, err := handler(ctx, movieID)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, out)
}

func (h *MovieHandler) batchMovies(ctx khttp.Context) error {
	var req dto.BatchMoviesRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(err)
	}
	if err := validate.Struct(&req); err != nil {
		return mapServiceError(err)
	}
	khttp.SetOperation(ctx, OperationBatchMovie)
	handler := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		meta := h.ExtractMetadata(c)
		timeoutCtx, cancel := h.WithTimeout(InjectHandlerMetadata(c, meta), HandlerTypeQuery)
		defer cancel()

		movies, err := h.movies.GetManyOrFetch(timeoutCtx, req.IDs)
		if err != nil {
			return nil, mapServiceError(err)
		}
		return dto.ToMovies(movies), nil
	})
	out, err := handler(ctx, &req)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, out)
}

func parseMovieID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid movie id %q", raw)
	}
	return id, nil
}
