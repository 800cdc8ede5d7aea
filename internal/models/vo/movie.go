package vo

import (
	"time"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
)

// MovieMetadata 表示对外返回的影片元数据。
type MovieMetadata struct {
	ID           int64
	Title        string
	ReleaseDate  string
	Overview     string
	Genres       []po.Genre
	PosterPath   string
	BackdropPath string
	Runtime      int32
	Cast         []po.Person
	Crew         []po.Person
	CachedAt     time.Time
}

// NewMovieMetadata 将 PO 转换为 VO，nil 安全。
func NewMovieMetadata(movie *po.Movie) *MovieMetadata {
	if movie == nil {
		return nil
	}
	return &MovieMetadata{
		ID:           movie.ID,
		Title:        movie.Title,
		ReleaseDate:  movie.ReleaseDate,
		Overview:     movie.Overview,
		Genres:       movie.Genres,
		PosterPath:   movie.PosterPath,
		BackdropPath: movie.BackdropPath,
		Runtime:      movie.Runtime,
		Cast:         movie.Credits.Cast,
		Crew:         movie.Credits.Crew,
		CachedAt:     movie.CreatedAt,
	}
}
