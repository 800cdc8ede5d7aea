package dto

import (
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/vo"
)

// Movie 为影片元数据的 JSON 表示。
type Movie struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	ReleaseDate  string      `json:"release_date"`
	Overview     string      `json:"overview"`
	Genres       []po.Genre  `json:"genres"`
	PosterPath   string      `json:"poster_path"`
	BackdropPath string      `json:"backdrop_path"`
	Runtime      int32       `json:"runtime"`
	Cast         []po.Person `json:"cast"`
	Crew         []po.Person `json:"crew"`
}

// BatchMoviesRequest 为 POST /movies/batch 请求体。
type BatchMoviesRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,max=100,dive,gt=0"`
}

// BatchMoviesResponse 按请求顺序返回元数据。
type BatchMoviesResponse struct {
	Movies []*Movie `json:"movies"`
}

// ToMovie 转换元数据视图。
func ToMovie(movie *vo.MovieMetadata) *Movie {
	if movie == nil {
		return nil
	}
	return &Movie{
		ID:           movie.ID,
		Title:        movie.Title,
		ReleaseDate:  movie.ReleaseDate,
		Overview:     movie.Overview,
		Genres:       movie.Genres,
		PosterPath:   movie.PosterPath,
		BackdropPath: movie.BackdropPath,
		Runtime:      movie.Runtime,
		Cast:         movie.Cast,
		Crew:         movie.Crew,
	}
}

// ToMovies 按顺序批量转换 PO。
func ToMovies(movies []*po.Movie) *BatchMoviesResponse {
	out := make([]*Movie, 0, len(movies))
	for _, m := range movies {
		out = append(out, ToMovie(vo.NewMovieMetadata(m)))
	}
	return &BatchMoviesResponse{Movies: out}
}
