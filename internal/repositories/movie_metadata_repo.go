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

// ErrMovieMetadataNotFound 表示元数据尚未缓存。
var ErrMovieMetadataNotFound = errors.New("movie metadata not found")

const movieColumns = `movie_id, title, release_date, overview, genres, poster_path, backdrop_path, runtime, credits, created_at`

const getMovieMetadataSQL = `SELECT ` + movieColumns + `
FROM movies.movie_metadata
WHERE movie_id = $1`

const listMovieMetadataSQL = `SELECT ` + movieColumns + `
FROM movies.movie_metadata
WHERE movie_id = ANY($1::bigint[])`

const insertMovieMetadataSQL = `INSERT INTO movies.movie_metadata (
    movie_id, title, release_date, overview, genres, poster_path, backdrop_path, runtime, credits
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (movie_id) DO NOTHING`

// MovieMetadataRepository 访问 movies.movie_metadata。记录按 movie_id 唯一，写入后不再更新。
type MovieMetadataRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewMovieMetadataRepository 构造仓储实例。
func NewMovieMetadataRepository(db *pgxpool.Pool, logger log.Logger) *MovieMetadataRepository {
	return &MovieMetadataRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// Get 按目录 ID 读取缓存记录。
func (r *MovieMetadataRepository) Get(ctx context.Context, sess txmanager.Session, movieID int64) (*po.Movie, error) {
	var row mappers.MovieRow
	if err := conn(r.db, sess).QueryRow(ctx, getMovieMetadataSQL, movieID).Scan(row.ScanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMovieMetadataNotFound
		}
		r.log.WithContext(ctx).Errorf("get movie metadata failed: movie=%d err=%v", movieID, err)
		return nil, fmt.Errorf("get movie metadata: %w", err)
	}
	return mappers.MovieFromRow(row)
}

// ListByIDs 批量读取已缓存的记录，未命中的 ID 不出现在结果中。
func (r *MovieMetadataRepository) ListByIDs(ctx context.Context, sess txmanager.Session, movieIDs []int64) (map[int64]*po.Movie, error) {
	out := make(map[int64]*po.Movie, len(movieIDs))
	if len(movieIDs) == 0 {
		return out, nil
	}
	rows, err := conn(r.db, sess).Query(ctx, listMovieMetadataSQL, movieIDs)
	if err != nil {
		r.log.WithContext(ctx).Errorf("list movie metadata failed: count=%d err=%v", len(movieIDs), err)
		return nil, fmt.Errorf("list movie metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row mappers.MovieRow
		if err := rows.Scan(row.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("scan movie metadata: %w", err)
		}
		movie, err := mappers.MovieFromRow(row)
		if err != nil {
			return nil, err
		}
		out[movie.ID] = movie
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movie metadata: %w", err)
	}
	return out, nil
}

// InsertIfAbsent 仅在记录不存在时写入，返回本次是否实际插入。
// 并发创建者中只有一个会成功，其余调用方应随后重新读取规范记录。
func (r *MovieMetadataRepository) InsertIfAbsent(ctx context.Context, sess txmanager.Session, movie *po.Movie) (bool, error) {
	if movie == nil {
		return false, fmt.Errorf("insert movie metadata: nil movie")
	}
	genres, credits, err := mappers.MarshalMovieDocuments(movie)
	if err != nil {
		return false, fmt.Errorf("insert movie metadata: movie=%d: %w", movie.ID, err)
	}
	tag, err := conn(r.db, sess).Exec(ctx, insertMovieMetadataSQL,
		movie.ID,
		movie.Title,
		movie.ReleaseDate,
		movie.Overview,
		genres,
		movie.PosterPath,
		movie.BackdropPath,
		movie.Runtime,
		credits,
	)
	if err != nil {
		r.log.WithContext(ctx).Errorf("insert movie metadata failed: movie=%d err=%v", movie.ID, err)
		return false, fmt.Errorf("insert movie metadata: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
