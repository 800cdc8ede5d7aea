package services

import (
	"context"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/vo"
)

// ProfileServiceInterface 抽象档案写用例，便于测试替换。
type ProfileServiceInterface interface {
	CreateProfile(ctx context.Context, input CreateProfileInput) (*vo.ProfileView, error)
	GetProfile(ctx context.Context, key ProfileKey, value string) (*po.UserProfile, error)
	ReplaceProfile(ctx context.Context, input ReplaceProfileInput) (*vo.ProfileView, error)
	MutateList(ctx context.Context, input MutateListInput) (*vo.ProfileView, error)
}

// ProfileViewServiceInterface 抽象档案视图读取。
type ProfileViewServiceInterface interface {
	GetProfileView(ctx context.Context, key ProfileKey, value string) (*vo.ProfileView, error)
	SearchProfiles(ctx context.Context, query, excludeUsername string) ([]*vo.ProfileView, error)
}

// MovieCacheServiceInterface 抽象元数据 get-or-fetch。
type MovieCacheServiceInterface interface {
	GetOrFetch(ctx context.Context, movieID int64) (*po.Movie, error)
	GetManyOrFetch(ctx context.Context, movieIDs []int64) ([]*po.Movie, error)
}

var (
	_ ProfileServiceInterface     = (*ProfileService)(nil)
	_ ProfileViewServiceInterface = (*ProfileViewService)(nil)
	_ MovieCacheServiceInterface  = (*MovieCacheService)(nil)
	_ MovieResolver               = (*MovieCacheService)(nil)
)
