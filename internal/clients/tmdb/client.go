// Package tmdb 封装对 TMDB v3 元数据接口的访问：详情与演职员表两类只读请求。
// 客户端自带速率限制与熔断，不做自动重试；404 视为"目录中不存在"而非故障。
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"

	"github.com/go-kratos/kratos/v2/log"
	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var (
	// ErrMovieNotFound 表示 TMDB 返回 404。
	ErrMovieNotFound = errors.New("tmdb: movie not found")
	// ErrUnavailable 表示熔断打开、限流等待失败或上游返回非预期状态。
	ErrUnavailable = errors.New("tmdb: unavailable")
	// ErrDecode 表示响应体无法解析。
	ErrDecode = errors.New("tmdb: decode response")
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	breakerName    = "tmdb-api"
	maxErrorBody   = 512
)

// Config 描述 TMDB 客户端的连接、限流与熔断参数。零值字段使用默认值。
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Breaker           BreakerConfig
}

// BreakerConfig 对应 gobreaker.Settings 的可调部分。
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.RequestsPerSecond <= 0 {
		c.RequestsPerSecond = 40
	}
	if c.Burst <= 0 {
		c.Burst = 20
	}
	if c.Breaker.MaxRequests == 0 {
		c.Breaker.MaxRequests = 3
	}
	if c.Breaker.Interval <= 0 {
		c.Breaker.Interval = time.Minute
	}
	if c.Breaker.Timeout <= 0 {
		c.Breaker.Timeout = 30 * time.Second
	}
	if c.Breaker.ConsecutiveFailures == 0 {
		c.Breaker.ConsecutiveFailures = 5
	}
	return c
}

// Client 是 TMDB REST 客户端，可被多个 goroutine 并发使用。
type Client struct {
	cfg         Config
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	cb          *gobreaker.CircuitBreaker[[]byte]
	tracer      trace.Tracer
	log         *log.Helper
}

// NewClient 构造 TMDB 客户端。
func NewClient(cfg Config, logger log.Logger) *Client {
	cfg = cfg.withDefaults()
	helper := log.NewHelper(logger)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Breaker.ConsecutiveFailures
		},
		// 404 与调用方取消不计入失败。
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrMovieNotFound) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			helper.Warnf("circuit breaker state change: name=%s from=%s to=%s", name, from, to)
		},
	})

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cb:          cb,
		tracer:      otel.Tracer("untitled-movie-project-backend.clients.tmdb"),
		log:         helper,
	}
}

type movieDetailsResponse struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	ReleaseDate  string     `json:"release_date"`
	Overview     string     `json:"overview"`
	Genres       []po.Genre `json:"genres"`
	PosterPath   *string    `json:"poster_path"`
	BackdropPath *string    `json:"backdrop_path"`
	Runtime      *int32     `json:"runtime"`
}

// GetMovieDetails 调用 GET /movie/{id}。
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64) (*po.MovieDetails, error) {
	var resp movieDetailsResponse
	if err := c.getJSON(ctx, "GetMovieDetails", fmt.Sprintf("/movie/%d", movieID), movieID, &resp); err != nil {
		return nil, err
	}
	details := &po.MovieDetails{
		ID:          resp.ID,
		Title:       resp.Title,
		ReleaseDate: resp.ReleaseDate,
		Overview:    resp.Overview,
		Genres:      resp.Genres,
	}
	if resp.PosterPath != nil {
		details.PosterPath = *resp.PosterPath
	}
	if resp.BackdropPath != nil {
		details.BackdropPath = *resp.BackdropPath
	}
	if resp.Runtime != nil {
		details.Runtime = *resp.Runtime
	}
	return details, nil
}

// GetMovieCredits 调用 GET /movie/{id}/credits。
func (c *Client) GetMovieCredits(ctx context.Context, movieID int64) (*po.Credits, error) {
	var credits po.Credits
	if err := c.getJSON(ctx, "GetMovieCredits", fmt.Sprintf("/movie/%d/credits", movieID), movieID, &credits); err != nil {
		return nil, err
	}
	return &credits, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, movieID int64, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "tmdb."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.Int64("tmdb.movie_id", movieID)),
	)
	defer func() {
		if err != nil && !errors.Is(err, ErrMovieNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit wait: %w", ErrUnavailable, err)
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.do(ctx, path)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.log.WithContext(ctx).Warnf("tmdb request rejected by breaker: op=%s movie=%d err=%v", op, movieID, err)
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s movie=%d: %w", ErrDecode, op, movieID, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	endpoint := c.cfg.BaseURL + path
	if c.cfg.APIKey != "" {
		endpoint += "?" + url.Values{"api_key": []string{c.cfg.APIKey}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrMovieNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status=%s body=%s", ErrUnavailable, strconv.Itoa(resp.StatusCode), strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUnavailable, err)
	}
	return body, nil
}
