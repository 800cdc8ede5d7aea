package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/clients/tmdb"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const defaultBatchConcurrency = 8

// MovieMetadataRepository 抽象元数据的持久化读写。
type MovieMetadataRepository interface {
	Get(ctx context.Context, sess txmanager.Session, movieID int64) (*po.Movie, error)
	ListByIDs(ctx context.Context, sess txmanager.Session, movieIDs []int64) (map[int64]*po.Movie, error)
	InsertIfAbsent(ctx context.Context, sess txmanager.Session, movie *po.Movie) (bool, error)
}

// MovieLocalCache 抽象进程内只读副本，读写失败只影响命中率。
type MovieLocalCache interface {
	GetMovie(ctx context.Context, movieID int64) (*po.Movie, bool, error)
	PutMovieIfAbsent(ctx context.Context, movie *po.Movie) error
}

// MovieSource 抽象外部元数据源，两类请求互相独立。
type MovieSource interface {
	GetMovieDetails(ctx context.Context, movieID int64) (*po.MovieDetails, error)
	GetMovieCredits(ctx context.Context, movieID int64) (*po.Credits, error)
}

// MovieCacheConfig 控制批量解析的并发度。
type MovieCacheConfig struct {
	BatchConcurrency int
}

// MovieCacheService 提供按目录 ID 的 get-or-fetch 语义：已缓存即返回，未命中则抓取、条件写入并回读规范记录。
type MovieCacheService struct {
	repo       MovieMetadataRepository
	local      MovieLocalCache
	source     MovieSource
	flight     singleflight.Group
	batchLimit int
	metrics    *movieCacheMetrics
	log        *log.Helper
}

// NewMovieCacheService 构造 MovieCacheService。local 可为 nil。
func NewMovieCacheService(repo MovieMetadataRepository, local MovieLocalCache, source MovieSource, cfg MovieCacheConfig, logger log.Logger) *MovieCacheService {
	limit := cfg.BatchConcurrency
	if limit <= 0 {
		limit = defaultBatchConcurrency
	}
	return &MovieCacheService{
		repo:       repo,
		local:      local,
		source:     source,
		batchLimit: limit,
		metrics:    newMovieCacheMetrics(),
		log:        log.NewHelper(logger),
	}
}

// GetOrFetch 返回目录 ID 对应的元数据。
// 已存在的记录原样返回，不做新鲜度检查；源站确认不存在时返回 ErrMovieNotFound，其余源站故障为 ErrMetadataFetch。
func (s *MovieCacheService) GetOrFetch(ctx context.Context, movieID int64) (*po.Movie, error) {
	if movieID <= 0 {
		return nil, invalidArgument("movie id must be positive: %d", movieID)
	}

	if movie, ok := s.lookupLocal(ctx, movieID); ok {
		return movie, nil
	}

	movie, err := s.lookupStore(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if movie != nil {
		return movie, nil
	}

	// 同一进程内的并发未命中合并为一次抓取；抓取不随单个调用方取消而中断。
	ch := s.flight.DoChan(strconv.FormatInt(movieID, 10), func() (any, error) {
		return s.fetchAndStore(context.WithoutCancel(ctx), movieID)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get movie %d: %w", movieID, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*po.Movie), nil
	}
}

// GetManyOrFetch 按输入顺序返回元数据，任一 ID 失败则整批失败。
func (s *MovieCacheService) GetManyOrFetch(ctx context.Context, movieIDs []int64) ([]*po.Movie, error) {
	if len(movieIDs) == 0 {
		return []*po.Movie{}, nil
	}
	for _, id := range movieIDs {
		if id <= 0 {
			return nil, invalidArgument("movie id must be positive: %d", id)
		}
	}

	resolved, misses, err := s.preloadMany(ctx, distinctIDs(movieIDs))
	if err != nil {
		return nil, fmt.Errorf("get many movies: %w", err)
	}

	// 只有两级缓存都未命中的 ID 进入 get-or-fetch。
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchLimit)
	for _, id := range misses {
		g.Go(func() error {
			movie, err := s.GetOrFetch(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			resolved[id] = movie
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("get many movies: %w", err)
	}

	out := make([]*po.Movie, 0, len(movieIDs))
	for _, id := range movieIDs {
		out = append(out, resolved[id])
	}
	return out, nil
}

// preloadMany 先查本地副本，再以一次批量查询读取存储，返回已命中的记录与剩余未命中的 ID。
func (s *MovieCacheService) preloadMany(ctx context.Context, ids []int64) (map[int64]*po.Movie, []int64, error) {
	resolved := make(map[int64]*po.Movie, len(ids))
	pending := make([]int64, 0, len(ids))
	for _, id := range ids {
		if movie, ok := s.lookupLocal(ctx, id); ok {
			resolved[id] = movie
			continue
		}
		pending = append(pending, id)
	}
	if len(pending) == 0 {
		return resolved, nil, nil
	}

	stored, err := s.repo.ListByIDs(ctx, nil, pending)
	if err != nil {
		s.metrics.recordLookup(ctx, tierStore, "error")
		return nil, nil, fmt.Errorf("list movies: %w: %w", ErrStore, err)
	}
	misses := make([]int64, 0, len(pending))
	for _, id := range pending {
		movie, ok := stored[id]
		if !ok {
			s.metrics.recordLookup(ctx, tierStore, "miss")
			misses = append(misses, id)
			continue
		}
		s.metrics.recordLookup(ctx, tierStore, "hit")
		s.promote(ctx, movie)
		resolved[id] = movie
	}
	return resolved, misses, nil
}

func (s *MovieCacheService) lookupLocal(ctx context.Context, movieID int64) (*po.Movie, bool) {
	if s.local == nil {
		return nil, false
	}
	movie, ok, err := s.local.GetMovie(ctx, movieID)
	if err != nil || !ok {
		s.metrics.recordLookup(ctx, tierLocal, "miss")
		return nil, false
	}
	s.metrics.recordLookup(ctx, tierLocal, "hit")
	return movie, true
}

// lookupStore 返回 (nil, nil) 表示存储未命中。
func (s *MovieCacheService) lookupStore(ctx context.Context, movieID int64) (*po.Movie, error) {
	movie, err := s.repo.Get(ctx, nil, movieID)
	switch {
	case err == nil:
		s.metrics.recordLookup(ctx, tierStore, "hit")
		s.promote(ctx, movie)
		return movie, nil
	case errors.Is(err, repositories.ErrMovieMetadataNotFound):
		s.metrics.recordLookup(ctx, tierStore, "miss")
		return nil, nil
	default:
		s.metrics.recordLookup(ctx, tierStore, "error")
		return nil, fmt.Errorf("get movie %d: %w: %w", movieID, ErrStore, err)
	}
}

func (s *MovieCacheService) fetchAndStore(ctx context.Context, movieID int64) (movie *po.Movie, err error) {
	// 前一轮合并抓取可能刚刚完成。
	if cached, lookupErr := s.lookupStore(ctx, movieID); lookupErr != nil || cached != nil {
		return cached, lookupErr
	}

	started := time.Now()
	defer func() {
		s.metrics.recordFetch(ctx, started, err)
		outcome := "fetched"
		if err != nil {
			outcome = errorKind(err)
		}
		s.metrics.recordLookup(ctx, tierSource, outcome)
	}()

	var (
		details *po.MovieDetails
		credits *po.Credits
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var fetchErr error
		details, fetchErr = s.source.GetMovieDetails(gctx, movieID)
		return fetchErr
	})
	g.Go(func() error {
		var fetchErr error
		credits, fetchErr = s.source.GetMovieCredits(gctx, movieID)
		return fetchErr
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, tmdb.ErrMovieNotFound) {
			return nil, fmt.Errorf("fetch movie %d: %w", movieID, ErrMovieNotFound)
		}
		s.log.WithContext(ctx).Warnf("fetch movie metadata failed: movie=%d err=%v", movieID, err)
		return nil, fmt.Errorf("fetch movie %d: %w: %w", movieID, ErrMetadataFetch, err)
	}

	inserted, err := s.repo.InsertIfAbsent(ctx, nil, po.AssembleMovie(movieID, details, credits))
	if err != nil {
		return nil, fmt.Errorf("store movie %d: %w: %w", movieID, ErrStore, err)
	}
	if !inserted {
		s.log.WithContext(ctx).Infof("movie metadata inserted concurrently, using stored record: movie=%d", movieID)
	}

	stored, err := s.repo.Get(ctx, nil, movieID)
	if err != nil {
		return nil, fmt.Errorf("reread movie %d: %w: %w", movieID, ErrStore, err)
	}
	s.promote(ctx, stored)
	return stored, nil
}

func (s *MovieCacheService) promote(ctx context.Context, movie *po.Movie) {
	if s.local == nil || movie == nil {
		return
	}
	if err := s.local.PutMovieIfAbsent(ctx, movie); err != nil {
		s.log.WithContext(ctx).Warnf("populate local cache failed: movie=%d err=%v", movie.ID, err)
	}
}

func distinctIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
