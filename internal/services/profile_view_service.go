package services

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/vo"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSearchMaxResults = 50
	resolveConcurrency      = 8
)

// ProfileKey 指定档案查找所用的唯一键。
type ProfileKey string

// 受支持的档案查找键。
const (
	ProfileKeyUID      ProfileKey = "uid"
	ProfileKeyUsername ProfileKey = "username"
)

// UserProfilesRepository 抽象 user_profiles 表访问。
type UserProfilesRepository interface {
	Create(ctx context.Context, sess txmanager.Session, input repositories.CreateUserProfileInput) (*po.UserProfile, error)
	GetByUID(ctx context.Context, sess txmanager.Session, uid string) (*po.UserProfile, error)
	GetByUsername(ctx context.Context, sess txmanager.Session, username string) (*po.UserProfile, error)
	LockForUpdate(ctx context.Context, sess txmanager.Session, uid string) (int64, error)
	Replace(ctx context.Context, sess txmanager.Session, input repositories.ReplaceUserProfileInput) (*po.UserProfile, error)
	BumpVersion(ctx context.Context, sess txmanager.Session, uid string) (int64, error)
	SearchByUsername(ctx context.Context, sess txmanager.Session, query, excludeUsername string, limit int) ([]*po.UserProfile, error)
}

// ListEntriesRepository 抽象 list_entries 表访问，包含排名账本所需的全部能力。
type ListEntriesRepository interface {
	RankedBucketStore
	ListByUser(ctx context.Context, sess txmanager.Session, uid string) ([]*po.ListEntry, error)
	ListEnrichedByUsers(ctx context.Context, sess txmanager.Session, uids []string) (map[string][]*po.EnrichedEntry, error)
	UpdateRating(ctx context.Context, sess txmanager.Session, uid string, bucket po.Bucket, movieID int64, rating *int32) error
	DeleteAll(ctx context.Context, sess txmanager.Session, uid string) error
}

// MovieResolver 按目录 ID 解析元数据（缓存未命中时抓取）。
type MovieResolver interface {
	GetOrFetch(ctx context.Context, movieID int64) (*po.Movie, error)
}

// SearchConfig 控制档案搜索。
type SearchConfig struct {
	MaxResults int
}

// ProfileViewService 构建去规范化的档案视图：一次连接查询取回条目与已缓存元数据，
// 其余引用逐个 ID 走 get-or-fetch 补齐。
type ProfileViewService struct {
	profiles   UserProfilesRepository
	entries    ListEntriesRepository
	movies     MovieResolver
	maxResults int
	log        *log.Helper
}

// NewProfileViewService 构造 ProfileViewService。
func NewProfileViewService(profiles UserProfilesRepository, entries ListEntriesRepository, movies MovieResolver, cfg SearchConfig, logger log.Logger) *ProfileViewService {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultSearchMaxResults
	}
	return &ProfileViewService{
		profiles:   profiles,
		entries:    entries,
		movies:     movies,
		maxResults: maxResults,
		log:        log.NewHelper(logger),
	}
}

// GetProfileView 按 uid 或 username 查找档案并返回补齐元数据的视图。
func (s *ProfileViewService) GetProfileView(ctx context.Context, key ProfileKey, value string) (*vo.ProfileView, error) {
	profile, err := findProfile(ctx, s.profiles, nil, key, value)
	if err != nil {
		return nil, err
	}
	return s.Build(ctx, profile)
}

// Build 为单个档案构建视图。
func (s *ProfileViewService) Build(ctx context.Context, profile *po.UserProfile) (*vo.ProfileView, error) {
	if profile == nil {
		return nil, invalidArgument("profile required")
	}
	grouped, err := s.entries.ListEnrichedByUsers(ctx, nil, []string{profile.UID})
	if err != nil {
		return nil, fmt.Errorf("build view uid=%s: %w: %w", profile.UID, ErrStore, err)
	}
	entries := grouped[profile.UID]
	if err := s.resolveMissing(ctx, entries); err != nil {
		return nil, fmt.Errorf("build view uid=%s: %w", profile.UID, err)
	}
	return s.assemble(ctx, profile, entries), nil
}

// SearchProfiles 按用户名子串（大小写不敏感）检索档案，排除 excludeUsername，结果按存储顺序。
func (s *ProfileViewService) SearchProfiles(ctx context.Context, query, excludeUsername string) ([]*vo.ProfileView, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidArgument("search query required")
	}
	profiles, err := s.profiles.SearchByUsername(ctx, nil, query, strings.TrimSpace(excludeUsername), s.maxResults)
	if err != nil {
		return nil, fmt.Errorf("search profiles query=%q: %w: %w", query, ErrStore, err)
	}
	if len(profiles) == 0 {
		return []*vo.ProfileView{}, nil
	}

	uids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		uids = append(uids, p.UID)
	}
	grouped, err := s.entries.ListEnrichedByUsers(ctx, nil, uids)
	if err != nil {
		return nil, fmt.Errorf("search profiles query=%q: %w: %w", query, ErrStore, err)
	}

	all := make([]*po.EnrichedEntry, 0)
	for _, uid := range uids {
		all = append(all, grouped[uid]...)
	}
	if err := s.resolveMissing(ctx, all); err != nil {
		return nil, fmt.Errorf("search profiles query=%q: %w", query, err)
	}

	views := make([]*vo.ProfileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, s.assemble(ctx, p, grouped[p.UID]))
	}
	return views, nil
}

// resolveMissing 对连接未命中的引用按去重后的 ID 调用 get-or-fetch 并回填。
// 源站确认不存在的 ID 保持为空，其余错误原样上抛。
func (s *ProfileViewService) resolveMissing(ctx context.Context, entries []*po.EnrichedEntry) error {
	missing := make([]int64, 0)
	for _, e := range entries {
		if e.Movie == nil {
			missing = append(missing, e.Entry.MovieID)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		resolved = make(map[int64]*po.Movie)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for _, id := range distinctIDs(missing) {
		g.Go(func() error {
			movie, err := s.movies.GetOrFetch(gctx, id)
			if err != nil {
				if errors.Is(err, ErrMovieNotFound) {
					s.log.WithContext(ctx).Warnf("referenced movie unknown to source: movie=%d", id)
					return nil
				}
				return fmt.Errorf("resolve movie=%d: %w", id, err)
			}
			mu.Lock()
			resolved[id] = movie
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, e := range entries {
		if e.Movie == nil {
			e.Movie = resolved[e.Entry.MovieID]
		}
	}
	return nil
}

func (s *ProfileViewService) assemble(ctx context.Context, profile *po.UserProfile, entries []*po.EnrichedEntry) *vo.ProfileView {
	// 分区内按排名升序、同名次按插入序；watchlist 的排名为空，仅按插入序。
	ordered := slices.Clone(entries)
	slices.SortStableFunc(ordered, func(a, b *po.EnrichedEntry) int {
		return cmp.Or(
			cmp.Compare(a.Entry.RankValue(), b.Entry.RankValue()),
			cmp.Compare(a.Entry.Seq, b.Entry.Seq),
		)
	})

	view := vo.NewProfileView(profile)
	for _, e := range ordered {
		movie := e.Movie
		if movie != nil && movie.ID != e.Entry.MovieID {
			s.log.WithContext(ctx).Errorf("metadata id mismatch dropped: uid=%s entry=%d metadata=%d", profile.UID, e.Entry.MovieID, movie.ID)
			movie = nil
		}
		item := vo.NewListItem(e.Entry, movie)
		if e.Entry.Bucket == po.BucketWatched {
			partition := view.Watched.Partition(e.Entry.Sentiment)
			*partition = append(*partition, item)
			continue
		}
		view.Watchlist = append(view.Watchlist, item)
	}
	return view
}

// findProfile 按查找键读取档案（不含列表条目）。
func findProfile(ctx context.Context, repo UserProfilesRepository, sess txmanager.Session, key ProfileKey, value string) (*po.UserProfile, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, invalidArgument("profile %s required", key)
	}

	var (
		profile *po.UserProfile
		err     error
	)
	switch key {
	case ProfileKeyUID:
		profile, err = repo.GetByUID(ctx, sess, value)
	case ProfileKeyUsername:
		profile, err = repo.GetByUsername(ctx, sess, value)
	default:
		return nil, invalidArgument("unknown profile key %q", key)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrUserProfileNotFound) {
			return nil, fmt.Errorf("find profile %s=%s: %w", key, value, ErrProfileNotFound)
		}
		return nil, fmt.Errorf("find profile %s=%s: %w: %w", key, value, ErrStore, err)
	}
	return profile, nil
}
