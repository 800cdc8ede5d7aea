// Package dto 定义 HTTP/JSON 线上结构，并提供与视图对象之间的转换。
package dto

import (
	"time"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/vo"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/services"
)

// WatchedEntryRequest 描述创建/替换档案时的一条 watched 条目。
type WatchedEntryRequest struct {
	MovieID   int64  `json:"movie_id" validate:"gt=0"`
	Sentiment string `json:"sentiment" validate:"omitempty,oneof=positive neutral negative"`
	Rank      *int32 `json:"rank,omitempty" validate:"omitempty,gte=1"`
	Rating    *int32 `json:"rating,omitempty"`
}

// CreateProfileRequest 为 POST /profiles 请求体。
type CreateProfileRequest struct {
	UID         string                `json:"uid" validate:"required"`
	Email       string                `json:"email"`
	Username    string                `json:"username" validate:"required"`
	DisplayName string                `json:"display_name"`
	PhotoURL    string                `json:"photo_url"`
	Watched     []WatchedEntryRequest `json:"watched" validate:"dive"`
	Watchlist   []int64               `json:"watchlist" validate:"dive,gt=0"`
}

// ReplaceProfileRequest 为 PUT /profiles/{uid} 请求体。
type ReplaceProfileRequest struct {
	Email       string                `json:"email"`
	Username    string                `json:"username" validate:"required"`
	DisplayName string                `json:"display_name"`
	PhotoURL    string                `json:"photo_url"`
	Watched     []WatchedEntryRequest `json:"watched" validate:"dive"`
	Watchlist   []int64               `json:"watchlist" validate:"dive,gt=0"`
}

// MutateListRequest 为 POST /profiles/{uid}/lists 请求体。
type MutateListRequest struct {
	Op        string `json:"op" validate:"required,oneof=add_watched remove_watched move_watched rate_watched add_watchlist remove_watchlist"`
	MovieID   int64  `json:"movie_id" validate:"gt=0"`
	Sentiment string `json:"sentiment" validate:"omitempty,oneof=positive neutral negative"`
	Rank      *int32 `json:"rank,omitempty"`
	Rating    *int32 `json:"rating,omitempty"`
	Tie       bool   `json:"tie"`
}

// ToCreateInput 转换为服务层输入。
func (r *CreateProfileRequest) ToCreateInput() services.CreateProfileInput {
	return services.CreateProfileInput{
		UID:         r.UID,
		Email:       r.Email,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		PhotoURL:    r.PhotoURL,
		Watched:     toWatchedInputs(r.Watched),
		Watchlist:   r.Watchlist,
	}
}

// ToReplaceInput 转换为服务层输入，uid 来自路径。
func (r *ReplaceProfileRequest) ToReplaceInput(uid string) services.ReplaceProfileInput {
	return services.ReplaceProfileInput{
		UID:         uid,
		Email:       r.Email,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		PhotoURL:    r.PhotoURL,
		Watched:     toWatchedInputs(r.Watched),
		Watchlist:   r.Watchlist,
	}
}

// ToMutateInput 转换为服务层输入，uid 来自路径。
func (r *MutateListRequest) ToMutateInput(uid string) services.MutateListInput {
	return services.MutateListInput{
		UID:       uid,
		Op:        services.ListOp(r.Op),
		MovieID:   r.MovieID,
		Sentiment: po.Sentiment(r.Sentiment),
		Rank:      r.Rank,
		Rating:    r.Rating,
		Tie:       r.Tie,
	}
}

func toWatchedInputs(items []WatchedEntryRequest) []services.WatchedEntryInput {
	out := make([]services.WatchedEntryInput, 0, len(items))
	for _, it := range items {
		out = append(out, services.WatchedEntryInput{
			MovieID:   it.MovieID,
			Sentiment: po.Sentiment(it.Sentiment),
			Rank:      it.Rank,
			Rating:    it.Rating,
		})
	}
	return out
}

// Profile 为档案视图的 JSON 表示。
type Profile struct {
	UID         string      `json:"uid"`
	Email       string      `json:"email"`
	Username    string      `json:"username"`
	DisplayName string      `json:"display_name"`
	PhotoURL    string      `json:"photo_url"`
	Version     int64       `json:"version"`
	CreatedAt   string      `json:"created_at,omitempty"`
	UpdatedAt   string      `json:"updated_at,omitempty"`
	Watched     Watched     `json:"watched"`
	Watchlist   []*ListItem `json:"watchlist"`
}

// Watched 按情感分区返回已观看列表。
type Watched struct {
	Positive []*ListItem `json:"positive"`
	Neutral  []*ListItem `json:"neutral"`
	Negative []*ListItem `json:"negative"`
}

// ListItem 为补齐元数据后的列表条目。Movie 为 null 表示目录中不存在该影片。
type ListItem struct {
	MovieID   int64  `json:"movie_id"`
	Sentiment string `json:"sentiment,omitempty"`
	Rank      *int32 `json:"rank,omitempty"`
	Rating    *int32 `json:"rating,omitempty"`
	AddedAt   string `json:"added_at,omitempty"`
	Movie     *Movie `json:"movie"`
}

// RawProfile 为未补齐元数据的档案（find_by 语义）。
type RawProfile struct {
	UID         string      `json:"uid"`
	Email       string      `json:"email"`
	Username    string      `json:"username"`
	DisplayName string      `json:"display_name"`
	PhotoURL    string      `json:"photo_url"`
	Version     int64       `json:"version"`
	Entries     []*ListItem `json:"entries"`
}

// SearchProfilesResponse 为搜索结果。
type SearchProfilesResponse struct {
	Profiles []*Profile `json:"profiles"`
}

// ToProfile 将视图转换为 JSON 结构。
func ToProfile(view *vo.ProfileView) *Profile {
	if view == nil {
		return nil
	}
	return &Profile{
		UID:         view.UID,
		Email:       view.Email,
		Username:    view.Username,
		DisplayName: view.DisplayName,
		PhotoURL:    view.PhotoURL,
		Version:     view.Version,
		CreatedAt:   formatTime(view.CreatedAt),
		UpdatedAt:   formatTime(view.UpdatedAt),
		Watched: Watched{
			Positive: toItems(view.Watched.Positive),
			Neutral:  toItems(view.Watched.Neutral),
			Negative: toItems(view.Watched.Negative),
		},
		Watchlist: toItems(view.Watchlist),
	}
}

// ToProfiles 批量转换。
func ToProfiles(views []*vo.ProfileView) *SearchProfilesResponse {
	out := make([]*Profile, 0, len(views))
	for _, v := range views {
		out = append(out, ToProfile(v))
	}
	return &SearchProfilesResponse{Profiles: out}
}

// ToRawProfile 转换未补齐的档案。
func ToRawProfile(profile *po.UserProfile) *RawProfile {
	if profile == nil {
		return nil
	}
	entries := make([]*ListItem, 0, len(profile.Entries))
	for _, e := range profile.Entries {
		entries = append(entries, toItem(vo.NewListItem(e, nil)))
	}
	return &RawProfile{
		UID:         profile.UID,
		Email:       profile.Email,
		Username:    profile.Username,
		DisplayName: profile.DisplayName,
		PhotoURL:    profile.PhotoURL,
		Version:     profile.Version,
		Entries:     entries,
	}
}

func toItems(items []*vo.ListItem) []*ListItem {
	out := make([]*ListItem, 0, len(items))
	for _, it := range items {
		out = append(out, toItem(it))
	}
	return out
}

func toItem(item *vo.ListItem) *ListItem {
	if item == nil {
		return nil
	}
	return &ListItem{
		MovieID:   item.MovieID,
		Sentiment: item.Sentiment,
		Rank:      item.Rank,
		Rating:    item.Rating,
		AddedAt:   formatTime(item.AddedAt),
		Movie:     ToMovie(item.Movie),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
