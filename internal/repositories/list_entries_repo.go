package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/repositories/mappers"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrListEntryNotFound 表示列表中不存在该影片。
	ErrListEntryNotFound = errors.New("list entry not found")
	// ErrListEntryExists 表示同一分区已包含该影片。
	ErrListEntryExists = errors.New("list entry already exists")
)

const entryColumns = `uid, bucket, movie_id, sentiment, rank, rating, seq, added_at`

// entryOrder 与视图分组顺序一致：watched 按排名升序、同名次按插入序；watchlist 按插入序。
const entryOrder = `ORDER BY bucket, sentiment NULLS LAST, rank NULLS LAST, seq`

const listEntriesByUserSQL = `SELECT ` + entryColumns + `
FROM movies.list_entries
WHERE uid = $1
` + entryOrder

const listEnrichedEntriesSQL = `SELECT
    e.uid, e.bucket, e.movie_id, e.sentiment, e.rank, e.rating, e.seq, e.added_at,
    m.movie_id IS NOT NULL AS has_movie,
    COALESCE(m.movie_id, 0),
    COALESCE(m.title, ''),
    COALESCE(m.release_date, ''),
    COALESCE(m.overview, ''),
    m.genres,
    COALESCE(m.poster_path, ''),
    COALESCE(m.backdrop_path, ''),
    COALESCE(m.runtime, 0),
    m.credits,
    m.created_at
FROM movies.list_entries e
LEFT JOIN movies.movie_metadata m ON m.movie_id = e.movie_id
WHERE e.uid = ANY($1::text[])
ORDER BY e.uid, e.bucket, e.sentiment NULLS LAST, e.rank NULLS LAST, e.seq`

const findListEntrySQL = `SELECT ` + entryColumns + `
FROM movies.list_entries
WHERE uid = $1 AND bucket = $2 AND movie_id = $3`

const maxRankSQL = `SELECT COALESCE(max(rank), 0)::int4
FROM movies.list_entries
WHERE uid = $1 AND bucket = 'watched' AND sentiment = $2`

const countAtRankSQL = `SELECT count(*)
FROM movies.list_entries
WHERE uid = $1 AND bucket = 'watched' AND sentiment = $2 AND rank = $3 AND movie_id <> $4`

const shiftRanksSQL = `UPDATE movies.list_entries
SET rank = rank + $4
WHERE uid = $1 AND bucket = 'watched' AND sentiment = $2 AND rank >= $3`

// renumberPartitionSQL 按 (rank, seq) 重新分配 1..N，消除并列。
const renumberPartitionSQL = `UPDATE movies.list_entries e
SET rank = r.new_rank
FROM (
    SELECT movie_id, row_number() OVER (ORDER BY rank, seq)::int4 AS new_rank
    FROM movies.list_entries
    WHERE uid = $1 AND bucket = 'watched' AND sentiment = $2
) r
WHERE e.uid = $1 AND e.bucket = 'watched' AND e.movie_id = r.movie_id AND e.rank <> r.new_rank`

const insertListEntrySQL = `INSERT INTO movies.list_entries (uid, bucket, movie_id, sentiment, rank, rating)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (uid, bucket, movie_id) DO NOTHING
RETURNING ` + entryColumns

const deleteListEntrySQL = `DELETE FROM movies.list_entries
WHERE uid = $1 AND bucket = $2 AND movie_id = $3`

const updateListEntryRatingSQL = `UPDATE movies.list_entries
SET rating = $4
WHERE uid = $1 AND bucket = $2 AND movie_id = $3`

const deleteAllListEntriesSQL = `DELETE FROM movies.list_entries
WHERE uid = $1`

// ListEntriesRepository 访问 movies.list_entries，承载用户列表中的影片引用。
// 排名平移均为单条服务端 UPDATE，调用方负责在事务内持有档案行锁。
type ListEntriesRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewListEntriesRepository 构造仓储实例。
func NewListEntriesRepository(db *pgxpool.Pool, logger log.Logger) *ListEntriesRepository {
	return &ListEntriesRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// ListByUser 返回用户全部列表条目。
func (r *ListEntriesRepository) ListByUser(ctx context.Context, sess txmanager.Session, uid string) ([]*po.ListEntry, error) {
	rows, err := conn(r.db, sess).Query(ctx, listEntriesByUserSQL, uid)
	if err != nil {
		r.log.WithContext(ctx).Errorf("list entries failed: uid=%s err=%v", uid, err)
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	out := make([]*po.ListEntry, 0)
	for rows.Next() {
		var row mappers.ListEntryRow
		if err := rows.Scan(row.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("scan list entry: %w", err)
		}
		out = append(out, mappers.ListEntryFromRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate list entries: %w", err)
	}
	return out, nil
}

// ListEnrichedByUsers 以一次连接查询返回多个用户的条目及已缓存元数据，按 uid 分组。
func (r *ListEntriesRepository) ListEnrichedByUsers(ctx context.Context, sess txmanager.Session, uids []string) (map[string][]*po.EnrichedEntry, error) {
	out := make(map[string][]*po.EnrichedEntry, len(uids))
	if len(uids) == 0 {
		return out, nil
	}
	rows, err := conn(r.db, sess).Query(ctx, listEnrichedEntriesSQL, uids)
	if err != nil {
		r.log.WithContext(ctx).Errorf("list enriched entries failed: users=%d err=%v", len(uids), err)
		return nil, fmt.Errorf("list enriched entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row mappers.EnrichedEntryRow
		if err := rows.Scan(row.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("scan enriched entry: %w", err)
		}
		enriched, err := mappers.EnrichedEntryFromRow(row)
		if err != nil {
			return nil, err
		}
		uid := enriched.Entry.UID
		out[uid] = append(out[uid], enriched)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enriched entries: %w", err)
	}
	return out, nil
}

// Find 返回指定分区中的条目。
func (r *ListEntriesRepository) Find(ctx context.Context, sess txmanager.Session, uid string, bucket po.Bucket, movieID int64) (*po.ListEntry, error) {
	var row mappers.ListEntryRow
	if err := conn(r.db, sess).QueryRow(ctx, findListEntrySQL, uid, string(bucket), movieID).Scan(row.ScanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListEntryNotFound
		}
		r.log.WithContext(ctx).Errorf("find list entry failed: uid=%s bucket=%s movie=%d err=%v", uid, bucket, movieID, err)
		return nil, fmt.Errorf("find list entry: %w", err)
	}
	return mappers.ListEntryFromRow(row), nil
}

// MaxRank 返回情感分区内的最大排名，空分区为 0。
func (r *ListEntriesRepository) MaxRank(ctx context.Context, sess txmanager.Session, uid string, sentiment po.Sentiment) (int32, error) {
	var maxRank int32
	if err := conn(r.db, sess).QueryRow(ctx, maxRankSQL, uid, string(sentiment)).Scan(&maxRank); err != nil {
		return 0, fmt.Errorf("max rank: %w", err)
	}
	return maxRank, nil
}

// CountAtRank 统计分区内与给定排名相同的其他条目数（排除 excludeMovieID）。
func (r *ListEntriesRepository) CountAtRank(ctx context.Context, sess txmanager.Session, uid string, sentiment po.Sentiment, rank int32, excludeMovieID int64) (int32, error) {
	var count int32
	if err := conn(r.db, sess).QueryRow(ctx, countAtRankSQL, uid, string(sentiment), rank, excludeMovieID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count at rank: %w", err)
	}
	return count, nil
}

// ShiftRanksFrom 将分区内 rank >= fromRank 的条目整体平移 delta，返回受影响行数。
func (r *ListEntriesRepository) ShiftRanksFrom(ctx context.Context, sess txmanager.Session, uid string, sentiment po.Sentiment, fromRank, delta int32) (int64, error) {
	tag, err := conn(r.db, sess).Exec(ctx, shiftRanksSQL, uid, string(sentiment), fromRank, delta)
	if err != nil {
		r.log.WithContext(ctx).Errorf("shift ranks failed: uid=%s sentiment=%s from=%d delta=%d err=%v", uid, sentiment, fromRank, delta, err)
		return 0, fmt.Errorf("shift ranks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// RenumberPartition 将分区排名压实为 1..N，返回被改动的行数。
func (r *ListEntriesRepository) RenumberPartition(ctx context.Context, sess txmanager.Session, uid string, sentiment po.Sentiment) (int64, error) {
	tag, err := conn(r.db, sess).Exec(ctx, renumberPartitionSQL, uid, string(sentiment))
	if err != nil {
		r.log.WithContext(ctx).Errorf("renumber partition failed: uid=%s sentiment=%s err=%v", uid, sentiment, err)
		return 0, fmt.Errorf("renumber partition: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Insert 写入条目，同一分区重复时返回 ErrListEntryExists。
// 重复写入由 ON CONFLICT 吸收，不产生语句错误，所在事务可继续执行后续语句。
func (r *ListEntriesRepository) Insert(ctx context.Context, sess txmanager.Session, entry *po.ListEntry) (*po.ListEntry, error) {
	if entry == nil {
		return nil, fmt.Errorf("insert list entry: nil entry")
	}
	var row mappers.ListEntryRow
	err := conn(r.db, sess).QueryRow(ctx, insertListEntrySQL,
		entry.UID,
		string(entry.Bucket),
		entry.MovieID,
		mappers.ToPgSentiment(entry.Bucket, entry.Sentiment),
		mappers.ToPgInt4(entry.Rank),
		mappers.ToPgInt4(entry.Rating),
	).Scan(row.ScanTargets()...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrListEntryExists
		}
		r.log.WithContext(ctx).Errorf("insert list entry failed: uid=%s bucket=%s movie=%d err=%v", entry.UID, entry.Bucket, entry.MovieID, err)
		return nil, fmt.Errorf("insert list entry: %w", err)
	}
	return mappers.ListEntryFromRow(row), nil
}

// Delete 删除条目，返回是否存在并被删除。
func (r *ListEntriesRepository) Delete(ctx context.Context, sess txmanager.Session, uid string, bucket po.Bucket, movieID int64) (bool, error) {
	tag, err := conn(r.db, sess).Exec(ctx, deleteListEntrySQL, uid, string(bucket), movieID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("delete list entry failed: uid=%s bucket=%s movie=%d err=%v", uid, bucket, movieID, err)
		return false, fmt.Errorf("delete list entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateRating 更新条目评分，条目不存在时返回 ErrListEntryNotFound。
func (r *ListEntriesRepository) UpdateRating(ctx context.Context, sess txmanager.Session, uid string, bucket po.Bucket, movieID int64, rating *int32) error {
	tag, err := conn(r.db, sess).Exec(ctx, updateListEntryRatingSQL, uid, string(bucket), movieID, mappers.ToPgInt4(rating))
	if err != nil {
		r.log.WithContext(ctx).Errorf("update rating failed: uid=%s movie=%d err=%v", uid, movieID, err)
		return fmt.Errorf("update rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrListEntryNotFound
	}
	return nil
}

// DeleteAll 清空用户全部条目，用于整体替换档案。
func (r *ListEntriesRepository) DeleteAll(ctx context.Context, sess txmanager.Session, uid string) error {
	if _, err := conn(r.db, sess).Exec(ctx, deleteAllListEntriesSQL, uid); err != nil {
		r.log.WithContext(ctx).Errorf("delete all entries failed: uid=%s err=%v", uid, err)
		return fmt.Errorf("delete all entries: %w", err)
	}
	return nil
}
