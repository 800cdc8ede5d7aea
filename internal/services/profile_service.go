package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/vo"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
)

// defaultRating 为未指定评分的新 watched 条目默认评分。
const defaultRating int32 = 10

// ListOp 表示一次列表变更的类型。
type ListOp string

// 列表变更类型。
const (
	ListOpAddWatched      ListOp = "add_watched"
	ListOpRemoveWatched   ListOp = "remove_watched"
	ListOpMoveWatched     ListOp = "move_watched"
	ListOpRateWatched     ListOp = "rate_watched"
	ListOpAddWatchlist    ListOp = "add_watchlist"
	ListOpRemoveWatchlist ListOp = "remove_watchlist"
)

// ProfileService 负责档案的创建、整体替换与列表变更。
// 每次变更在单个事务内先锁定档案行，作为同一 uid 的串行化点，结束前递增版本号。
type ProfileService struct {
	profiles  UserProfilesRepository
	entries   ListEntriesRepository
	ledger    *RankLedger
	views     *ProfileViewService
	txManager txmanager.Manager
	log       *log.Helper
}

// NewProfileService 构造 ProfileService。
func NewProfileService(
	profiles UserProfilesRepository,
	entries ListEntriesRepository,
	ledger *RankLedger,
	views *ProfileViewService,
	tx txmanager.Manager,
	logger log.Logger,
) *ProfileService {
	return &ProfileService{
		profiles:  profiles,
		entries:   entries,
		ledger:    ledger,
		views:     views,
		txManager: tx,
		log:       log.NewHelper(logger),
	}
}

// WatchedEntryInput 描述一条 watched 初始条目。Rank 为空时追加到分区末尾。
type WatchedEntryInput struct {
	MovieID   int64
	Sentiment po.Sentiment
	Rank      *int32
	Rating    *int32
}

// CreateProfileInput 描述档案创建参数。
type CreateProfileInput struct {
	UID         string
	Email       string
	Username    string
	DisplayName string
	PhotoURL    string
	Watched     []WatchedEntryInput
	Watchlist   []int64
}

// CreateProfile 创建档案，uid 或 username 已存在时返回 ErrConflict。
func (s *ProfileService) CreateProfile(ctx context.Context, input CreateProfileInput) (*vo.ProfileView, error) {
	uid := strings.TrimSpace(input.UID)
	username := strings.TrimSpace(input.Username)
	if uid == "" || username == "" {
		return nil, invalidArgument("uid and username required")
	}

	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		_, err := s.profiles.Create(txCtx, sess, repositories.CreateUserProfileInput{
			UID:         uid,
			Email:       input.Email,
			Username:    username,
			DisplayName: input.DisplayName,
			PhotoURL:    input.PhotoURL,
		})
		if err != nil {
			if errors.Is(err, repositories.ErrUserProfileExists) {
				return fmt.Errorf("create profile uid=%s username=%s: %w", uid, username, ErrConflict)
			}
			return fmt.Errorf("create profile uid=%s: %w: %w", uid, ErrStore, err)
		}
		return s.writeEntries(txCtx, sess, uid, input.Watched, input.Watchlist)
	})
	if err != nil {
		s.log.WithContext(ctx).Warnf("create profile failed: uid=%s err=%v", uid, err)
		return nil, err
	}
	return s.views.GetProfileView(ctx, ProfileKeyUID, uid)
}

// GetProfile 返回原始档案及其列表条目（不补齐元数据）。
func (s *ProfileService) GetProfile(ctx context.Context, key ProfileKey, value string) (*po.UserProfile, error) {
	profile, err := findProfile(ctx, s.profiles, nil, key, value)
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListByUser(ctx, nil, profile.UID)
	if err != nil {
		return nil, fmt.Errorf("get profile uid=%s: %w: %w", profile.UID, ErrStore, err)
	}
	profile.Entries = entries
	return profile, nil
}

// ReplaceProfileInput 描述档案整体覆盖参数。
type ReplaceProfileInput struct {
	UID         string
	Email       string
	Username    string
	DisplayName string
	PhotoURL    string
	Watched     []WatchedEntryInput
	Watchlist   []int64
}

// ReplaceProfile 整体覆盖身份字段与两个列表（后写者胜）。
func (s *ProfileService) ReplaceProfile(ctx context.Context, input ReplaceProfileInput) (*vo.ProfileView, error) {
	uid := strings.TrimSpace(input.UID)
	username := strings.TrimSpace(input.Username)
	if uid == "" || username == "" {
		return nil, invalidArgument("uid and username required")
	}

	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		if err := s.lock(txCtx, sess, uid); err != nil {
			return err
		}
		_, err := s.profiles.Replace(txCtx, sess, repositories.ReplaceUserProfileInput{
			UID:         uid,
			Email:       input.Email,
			Username:    username,
			DisplayName: input.DisplayName,
			PhotoURL:    input.PhotoURL,
		})
		if err != nil {
			switch {
			case errors.Is(err, repositories.ErrUserProfileNotFound):
				return fmt.Errorf("replace profile uid=%s: %w", uid, ErrProfileNotFound)
			case errors.Is(err, repositories.ErrUserProfileExists):
				return fmt.Errorf("replace profile uid=%s username=%s: %w", uid, username, ErrConflict)
			}
			return fmt.Errorf("replace profile uid=%s: %w: %w", uid, ErrStore, err)
		}
		if err := s.entries.DeleteAll(txCtx, sess, uid); err != nil {
			return fmt.Errorf("replace profile uid=%s: %w: %w", uid, ErrStore, err)
		}
		return s.writeEntries(txCtx, sess, uid, input.Watched, input.Watchlist)
	})
	if err != nil {
		s.log.WithContext(ctx).Warnf("replace profile failed: uid=%s err=%v", uid, err)
		return nil, err
	}
	return s.views.GetProfileView(ctx, ProfileKeyUID, uid)
}

// MutateListInput 描述一次列表变更。
type MutateListInput struct {
	UID       string
	Op        ListOp
	MovieID   int64
	Sentiment po.Sentiment
	// Rank 为空时 add_watched 追加到分区末尾；move_watched 必须提供。
	Rank   *int32
	Rating *int32
	Tie    bool
}

// MutateList 在单个事务内对档案的列表执行一次变更并返回刷新后的视图。
func (s *ProfileService) MutateList(ctx context.Context, input MutateListInput) (*vo.ProfileView, error) {
	uid := strings.TrimSpace(input.UID)
	if uid == "" {
		return nil, invalidArgument("uid required")
	}
	if input.MovieID <= 0 {
		return nil, invalidArgument("movie id must be positive: %d", input.MovieID)
	}

	err := s.txManager.WithinTx(ctx, txmanager.TxOptions{}, func(txCtx context.Context, sess txmanager.Session) error {
		if err := s.lock(txCtx, sess, uid); err != nil {
			return err
		}
		if err := s.apply(txCtx, sess, uid, input); err != nil {
			return err
		}
		if _, err := s.profiles.BumpVersion(txCtx, sess, uid); err != nil {
			return fmt.Errorf("mutate list uid=%s: %w: %w", uid, ErrStore, err)
		}
		return nil
	})
	if err != nil {
		s.log.WithContext(ctx).Warnf("mutate list failed: uid=%s op=%s movie=%d err=%v", uid, input.Op, input.MovieID, err)
		return nil, err
	}
	return s.views.GetProfileView(ctx, ProfileKeyUID, uid)
}

func (s *ProfileService) apply(ctx context.Context, sess txmanager.Session, uid string, input MutateListInput) error {
	switch input.Op {
	case ListOpAddWatched:
		rating := input.Rating
		if rating == nil {
			r := defaultRating
			rating = &r
		}
		_, err := s.ledger.Insert(ctx, sess, InsertRankedInput{
			UID:       uid,
			MovieID:   input.MovieID,
			Sentiment: input.Sentiment,
			Rank:      rankOrAppend(input.Rank),
			Rating:    rating,
			Tie:       input.Tie,
		})
		return err

	case ListOpRemoveWatched:
		_, err := s.ledger.Remove(ctx, sess, uid, input.MovieID)
		return err

	case ListOpMoveWatched:
		if input.Rank == nil {
			return invalidArgument("rank required for %s", input.Op)
		}
		_, err := s.ledger.Move(ctx, sess, MoveRankedInput{
			UID:       uid,
			MovieID:   input.MovieID,
			Sentiment: input.Sentiment,
			Rank:      *input.Rank,
			Tie:       input.Tie,
		})
		return err

	case ListOpRateWatched:
		if input.Rating == nil {
			return invalidArgument("rating required for %s", input.Op)
		}
		err := s.entries.UpdateRating(ctx, sess, uid, po.BucketWatched, input.MovieID, input.Rating)
		if errors.Is(err, repositories.ErrListEntryNotFound) {
			return fmt.Errorf("rate movie uid=%s movie=%d: %w", uid, input.MovieID, ErrListEntryNotFound)
		}
		if err != nil {
			return storeError("rate movie", uid, input.MovieID, err)
		}
		return nil

	case ListOpAddWatchlist:
		return s.addWatchlist(ctx, sess, uid, input.MovieID)

	case ListOpRemoveWatchlist:
		if _, err := s.entries.Delete(ctx, sess, uid, po.BucketWatchlist, input.MovieID); err != nil {
			return storeError("remove watchlist", uid, input.MovieID, err)
		}
		return nil

	default:
		return invalidArgument("unknown list op %q", input.Op)
	}
}

// addWatchlist 幂等写入想看清单；已观看的影片不能再加入想看清单。
// 重复写入在仓储层以 ON CONFLICT 吸收，事务保持可用。
func (s *ProfileService) addWatchlist(ctx context.Context, sess txmanager.Session, uid string, movieID int64) error {
	if _, err := s.entries.Find(ctx, sess, uid, po.BucketWatched, movieID); err == nil {
		return fmt.Errorf("add watchlist uid=%s movie=%d already watched: %w", uid, movieID, ErrConflict)
	} else if !errors.Is(err, repositories.ErrListEntryNotFound) {
		return storeError("add watchlist", uid, movieID, err)
	}
	_, err := s.entries.Insert(ctx, sess, &po.ListEntry{
		UID:     uid,
		Bucket:  po.BucketWatchlist,
		MovieID: movieID,
	})
	switch {
	case errors.Is(err, repositories.ErrListEntryExists):
		s.log.WithContext(ctx).Debugf("movie already on watchlist: uid=%s movie=%d", uid, movieID)
	case err != nil:
		return storeError("add watchlist", uid, movieID, err)
	}
	return nil
}

// writeEntries 写入初始（或替换后的）列表；watched 条目经排名账本插入以保持稠密。
func (s *ProfileService) writeEntries(ctx context.Context, sess txmanager.Session, uid string, watched []WatchedEntryInput, watchlist []int64) error {
	for _, w := range watched {
		if _, err := s.ledger.Insert(ctx, sess, InsertRankedInput{
			UID:       uid,
			MovieID:   w.MovieID,
			Sentiment: w.Sentiment,
			Rank:      rankOrAppend(w.Rank),
			Rating:    w.Rating,
		}); err != nil {
			return err
		}
	}
	for _, movieID := range watchlist {
		if movieID <= 0 {
			return invalidArgument("movie id must be positive: %d", movieID)
		}
		if err := s.addWatchlist(ctx, sess, uid, movieID); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProfileService) lock(ctx context.Context, sess txmanager.Session, uid string) error {
	if _, err := s.profiles.LockForUpdate(ctx, sess, uid); err != nil {
		if errors.Is(err, repositories.ErrUserProfileNotFound) {
			return fmt.Errorf("lock profile uid=%s: %w", uid, ErrProfileNotFound)
		}
		return fmt.Errorf("lock profile uid=%s: %w: %w", uid, ErrStore, err)
	}
	return nil
}

func rankOrAppend(rank *int32) int32 {
	if rank == nil {
		return math.MaxInt32
	}
	return *rank
}
