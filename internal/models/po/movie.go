// Package po 定义面向持久化的数据对象（Persistent Objects），由 Repository 层使用。
// PO 对象映射数据库表结构，不直接暴露给上层业务逻辑。
//
// 注意：Movie 为外部目录（TMDB）元数据在本地的规范副本，首次写入后不再更新；
// UserProfile 与 ListEntry 为用户私有文档，随列表操作频繁变更。
package po

import "time"

// Movie 表示 movies.movie_metadata 表中缓存的影片元数据。
type Movie struct {
	ID           int64
	Title        string
	ReleaseDate  string
	Overview     string
	Genres       []Genre
	PosterPath   string
	BackdropPath string
	Runtime      int32
	Credits      Credits
	CreatedAt    time.Time
}

// Genre 表示影片类型。
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Credits 表示演职员表，整体以 JSONB 存储。
type Credits struct {
	Cast []Person `json:"cast"`
	Crew []Person `json:"crew"`
}

// Person 表示演职员条目，字段与 TMDB credits 接口保持一致。
type Person struct {
	Adult              bool    `json:"adult"`
	Gender             int32   `json:"gender"`
	ID                 int64   `json:"id"`
	KnownForDepartment string  `json:"known_for_department"`
	Name               string  `json:"name"`
	OriginalName       string  `json:"original_name"`
	ProfilePath        string  `json:"profile_path,omitempty"`
	CastID             int64   `json:"cast_id,omitempty"`
	Character          string  `json:"character,omitempty"`
	CreditID           string  `json:"credit_id"`
	Order              int32   `json:"order,omitempty"`
	Department         string  `json:"department,omitempty"`
	Job                string  `json:"job,omitempty"`
	Popularity         float64 `json:"popularity,omitempty"`
}

// MovieDetails 为元数据源返回的核心字段（不含演职员表）。
type MovieDetails struct {
	ID           int64
	Title        string
	ReleaseDate  string
	Overview     string
	Genres       []Genre
	PosterPath   string
	BackdropPath string
	Runtime      int32
}

// AssembleMovie 将两次独立抓取的结果拼装为一条待写入的元数据记录。
// id 以调用方请求的目录 ID 为准，避免源站返回值与请求不一致。
func AssembleMovie(id int64, details *MovieDetails, credits *Credits) *Movie {
	movie := &Movie{ID: id}
	if details != nil {
		movie.Title = details.Title
		movie.ReleaseDate = details.ReleaseDate
		movie.Overview = details.Overview
		movie.Genres = append([]Genre(nil), details.Genres...)
		movie.PosterPath = details.PosterPath
		movie.BackdropPath = details.BackdropPath
		movie.Runtime = details.Runtime
	}
	if credits != nil {
		movie.Credits = Credits{
			Cast: append([]Person(nil), credits.Cast...),
			Crew: append([]Person(nil), credits.Crew...),
		}
	}
	if movie.Genres == nil {
		movie.Genres = []Genre{}
	}
	if movie.Credits.Cast == nil {
		movie.Credits.Cast = []Person{}
	}
	if movie.Credits.Crew == nil {
		movie.Credits.Crew = []Person{}
	}
	return movie
}
