// Package vo 定义影片排名服务在控制器与外部交互使用的视图对象。
package vo

import (
	"time"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
)

// ProfileView 表示向上层返回的去规范化档案视图：每条列表引用均已补齐影片元数据。
type ProfileView struct {
	UID         string
	Email       string
	Username    string
	DisplayName string
	PhotoURL    string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Watched     WatchedView
	Watchlist   []*ListItem
}

// WatchedView 按情感分区组织已观看列表，分区内按排名升序。
type WatchedView struct {
	Positive []*ListItem
	Neutral  []*ListItem
	Negative []*ListItem
}

// Partition 返回指定情感分区的切片指针，便于构建时追加。
func (w *WatchedView) Partition(s po.Sentiment) *[]*ListItem {
	switch s {
	case po.SentimentPositive:
		return &w.Positive
	case po.SentimentNegative:
		return &w.Negative
	default:
		return &w.Neutral
	}
}

// Len 返回已观看条目总数。
func (w WatchedView) Len() int {
	return len(w.Positive) + len(w.Neutral) + len(w.Negative)
}

// ListItem 表示补水后的列表条目。Movie 为空表示元数据源确认该 ID 不存在。
type ListItem struct {
	MovieID   int64
	Sentiment string
	Rank      *int32
	Rating    *int32
	AddedAt   time.Time
	Movie     *MovieMetadata
}

// NewProfileView 基于档案 PO 构造不含列表的视图骨架。
func NewProfileView(profile *po.UserProfile) *ProfileView {
	if profile == nil {
		return nil
	}
	return &ProfileView{
		UID:         profile.UID,
		Email:       profile.Email,
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		PhotoURL:    profile.PhotoURL,
		Version:     profile.Version,
		CreatedAt:   profile.CreatedAt,
		UpdatedAt:   profile.UpdatedAt,
		Watched: WatchedView{
			Positive: []*ListItem{},
			Neutral:  []*ListItem{},
			Negative: []*ListItem{},
		},
		Watchlist: []*ListItem{},
	}
}

// NewListItem 合并列表引用与元数据。
func NewListItem(entry *po.ListEntry, movie *po.Movie) *ListItem {
	if entry == nil {
		return nil
	}
	item := &ListItem{
		MovieID: entry.MovieID,
		Rank:    entry.Rank,
		Rating:  entry.Rating,
		AddedAt: entry.AddedAt,
		Movie:   NewMovieMetadata(movie),
	}
	if entry.Bucket == po.BucketWatched {
		item.Sentiment = string(entry.Sentiment)
	}
	return item
}
