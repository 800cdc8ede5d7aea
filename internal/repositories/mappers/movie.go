package mappers

import (
	"fmt"
	"time"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5/pgtype"
)

// MovieRow 对应 movies.movie_metadata 的扫描目标，JSONB 列保持原始字节。
type MovieRow struct {
	MovieID      int64
	Title        string
	ReleaseDate  string
	Overview     string
	Genres       []byte
	PosterPath   string
	BackdropPath string
	Runtime      int32
	Credits      []byte
	CreatedAt    pgtype.Timestamptz
}

// ScanTargets 返回与 movieColumns 顺序一致的扫描指针。
func (r *MovieRow) ScanTargets() []any {
	return []any{
		&r.MovieID,
		&r.Title,
		&r.ReleaseDate,
		&r.Overview,
		&r.Genres,
		&r.PosterPath,
		&r.BackdropPath,
		&r.Runtime,
		&r.Credits,
		&r.CreatedAt,
	}
}

// MovieFromRow 将扫描结果转换为领域对象。
func MovieFromRow(row MovieRow) (*po.Movie, error) {
	movie := &po.Movie{
		ID:           row.MovieID,
		Title:        row.Title,
		ReleaseDate:  row.ReleaseDate,
		Overview:     row.Overview,
		PosterPath:   row.PosterPath,
		BackdropPath: row.BackdropPath,
		Runtime:      row.Runtime,
		Genres:       []po.Genre{},
		Credits:      po.Credits{Cast: []po.Person{}, Crew: []po.Person{}},
		CreatedAt:    mustTimestamp(row.CreatedAt),
	}
	if len(row.Genres) > 0 {
		if err := json.Unmarshal(row.Genres, &movie.Genres); err != nil {
			return nil, fmt.Errorf("unmarshal genres: movie=%d: %w", row.MovieID, err)
		}
	}
	if len(row.Credits) > 0 {
		if err := json.Unmarshal(row.Credits, &movie.Credits); err != nil {
			return nil, fmt.Errorf("unmarshal credits: movie=%d: %w", row.MovieID, err)
		}
	}
	return movie, nil
}

// MarshalMovieDocuments 序列化 JSONB 列。
func MarshalMovieDocuments(movie *po.Movie) (genres []byte, credits []byte, err error) {
	g := movie.Genres
	if g == nil {
		g = []po.Genre{}
	}
	genres, err = json.Marshal(g)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal genres: %w", err)
	}
	c := movie.Credits
	if c.Cast == nil {
		c.Cast = []po.Person{}
	}
	if c.Crew == nil {
		c.Crew = []po.Person{}
	}
	credits, err = json.Marshal(c)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal credits: %w", err)
	}
	return genres, credits, nil
}

func mustTimestamp(value pgtype.Timestamptz) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	return value.Time.UTC()
}
