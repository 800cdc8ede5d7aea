package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
)

// RankedBucketStore 抽象 watched 分区的排名读写，全部操作在调用方事务内执行。
type RankedBucketStore interface {
	Find(ctx context.Context, sess txmanager.Session, uid string, bucket po.Bucket, movieID int64) (*po.ListEntry, error)
	MaxRank(ctx context.Context, sess txmanager.Session, uid string, sentiment po.Sentiment) (int32, error)
	CountAtRank(ctx context.Context, sess txmanager.Session, uid string, sentiment po.Sentiment, rank int32, excludeMovieID int64) (int32, error)
	ShiftRanksFrom(ctx context.Context, sess txmanager.Session, uid string, sentiment po.Sentiment, fromRank, delta int32) (int64, error)
	RenumberPartition(ctx context.Context, sess txmanager.Session, uid string, sentiment po.Sentiment) (int64, error)
	Insert(ctx context.Context, sess txmanager.Session, entry *po.ListEntry) (*po.ListEntry, error)
	Delete(ctx context.Context, sess txmanager.Session, uid string, bucket po.Bucket, movieID int64) (bool, error)
}

// RankLedger 维护 watched 各情感分区的稠密排名：插入时为新条目腾位，删除时收拢空位。
// 调用方必须已持有该 uid 的串行化点（档案行锁）。
type RankLedger struct {
	store RankedBucketStore
	log   *log.Helper
}

// NewRankLedger 构造 RankLedger。
func NewRankLedger(store RankedBucketStore, logger log.Logger) *RankLedger {
	return &RankLedger{
		store: store,
		log:   log.NewHelper(logger),
	}
}

// InsertRankedInput 描述一次排名插入。
type InsertRankedInput struct {
	UID       string
	MovieID   int64
	Sentiment po.Sentiment
	Rank      int32
	Rating    *int32
	// Tie 为 true 时不平移，新条目与现有条目共享该名次。
	Tie bool
}

// Insert 在目标分区的 Rank 位置插入条目，并把该影片移出想看清单。
// 影片已在 watched 中返回 ErrConflict；Rank 超过末位时追加到末位。
func (l *RankLedger) Insert(ctx context.Context, sess txmanager.Session, input InsertRankedInput) (*po.ListEntry, error) {
	sentiment, err := l.validate(input.UID, input.MovieID, input.Sentiment, input.Rank)
	if err != nil {
		return nil, err
	}

	if _, err := l.store.Find(ctx, sess, input.UID, po.BucketWatched, input.MovieID); err == nil {
		return nil, fmt.Errorf("rank insert uid=%s movie=%d: %w", input.UID, input.MovieID, ErrConflict)
	} else if !errors.Is(err, repositories.ErrListEntryNotFound) {
		return nil, storeError("rank insert", input.UID, input.MovieID, err)
	}

	maxRank, err := l.store.MaxRank(ctx, sess, input.UID, sentiment)
	if err != nil {
		return nil, storeError("rank insert", input.UID, input.MovieID, err)
	}
	rank := input.Rank
	if rank > maxRank+1 {
		rank = maxRank + 1
	}

	if !input.Tie {
		if _, err := l.store.ShiftRanksFrom(ctx, sess, input.UID, sentiment, rank, 1); err != nil {
			return nil, storeError("rank insert", input.UID, input.MovieID, err)
		}
	}

	entry, err := l.store.Insert(ctx, sess, &po.ListEntry{
		UID:       input.UID,
		Bucket:    po.BucketWatched,
		MovieID:   input.MovieID,
		Sentiment: sentiment,
		Rank:      &rank,
		Rating:    input.Rating,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrListEntryExists) {
			return nil, fmt.Errorf("rank insert uid=%s movie=%d: %w", input.UID, input.MovieID, ErrConflict)
		}
		return nil, storeError("rank insert", input.UID, input.MovieID, err)
	}

	if !input.Tie {
		if _, err := l.store.RenumberPartition(ctx, sess, input.UID, sentiment); err != nil {
			return nil, storeError("rank insert", input.UID, input.MovieID, err)
		}
	}

	promoted, err := l.store.Delete(ctx, sess, input.UID, po.BucketWatchlist, input.MovieID)
	if err != nil {
		return nil, storeError("rank insert", input.UID, input.MovieID, err)
	}
	if promoted {
		l.log.WithContext(ctx).Debugf("movie promoted out of watchlist: uid=%s movie=%d", input.UID, input.MovieID)
	}
	return entry, nil
}

// Remove 删除 watched 中的条目；条目不存在时为空操作。
// 被删条目的名次若无人并列，则其后条目整体前移一位。
func (l *RankLedger) Remove(ctx context.Context, sess txmanager.Session, uid string, movieID int64) (*po.ListEntry, error) {
	if uid == "" || movieID <= 0 {
		return nil, invalidArgument("uid and positive movie id required: uid=%q movie=%d", uid, movieID)
	}

	entry, err := l.store.Find(ctx, sess, uid, po.BucketWatched, movieID)
	if err != nil {
		if errors.Is(err, repositories.ErrListEntryNotFound) {
			return nil, nil
		}
		return nil, storeError("rank remove", uid, movieID, err)
	}

	rank := entry.RankValue()
	tied, err := l.store.CountAtRank(ctx, sess, uid, entry.Sentiment, rank, movieID)
	if err != nil {
		return nil, storeError("rank remove", uid, movieID, err)
	}

	if _, err := l.store.Delete(ctx, sess, uid, po.BucketWatched, movieID); err != nil {
		return nil, storeError("rank remove", uid, movieID, err)
	}
	if tied == 0 {
		if _, err := l.store.ShiftRanksFrom(ctx, sess, uid, entry.Sentiment, rank+1, -1); err != nil {
			return nil, storeError("rank remove", uid, movieID, err)
		}
	}
	if _, err := l.store.RenumberPartition(ctx, sess, uid, entry.Sentiment); err != nil {
		return nil, storeError("rank remove", uid, movieID, err)
	}
	return entry, nil
}

// MoveRankedInput 描述对已有条目的重新排名或换分区。
type MoveRankedInput struct {
	UID       string
	MovieID   int64
	Sentiment po.Sentiment
	Rank      int32
	Tie       bool
}

// Move 等价于同一事务内的 Remove + Insert，评分保持不变。条目不存在返回 ErrListEntryNotFound。
func (l *RankLedger) Move(ctx context.Context, sess txmanager.Session, input MoveRankedInput) (*po.ListEntry, error) {
	if _, err := l.validate(input.UID, input.MovieID, input.Sentiment, input.Rank); err != nil {
		return nil, err
	}
	removed, err := l.Remove(ctx, sess, input.UID, input.MovieID)
	if err != nil {
		return nil, err
	}
	if removed == nil {
		return nil, fmt.Errorf("rank move uid=%s movie=%d: %w", input.UID, input.MovieID, ErrListEntryNotFound)
	}
	return l.Insert(ctx, sess, InsertRankedInput{
		UID:       input.UID,
		MovieID:   input.MovieID,
		Sentiment: input.Sentiment,
		Rank:      input.Rank,
		Rating:    removed.Rating,
		Tie:       input.Tie,
	})
}

func (l *RankLedger) validate(uid string, movieID int64, sentiment po.Sentiment, rank int32) (po.Sentiment, error) {
	if uid == "" {
		return "", invalidArgument("uid required")
	}
	if movieID <= 0 {
		return "", invalidArgument("movie id must be positive: %d", movieID)
	}
	if rank < 1 {
		return "", invalidArgument("rank must be >= 1: %d", rank)
	}
	parsed, ok := po.ParseSentiment(string(sentiment))
	if !ok {
		return "", invalidArgument("unknown sentiment %q", sentiment)
	}
	return parsed, nil
}

func storeError(op, uid string, movieID int64, err error) error {
	return fmt.Errorf("%s uid=%s movie=%d: %w: %w", op, uid, movieID, ErrStore, err)
}
