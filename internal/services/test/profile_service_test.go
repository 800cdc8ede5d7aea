package services_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/repositories"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/services"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/services/mocks"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

type profileFixture struct {
	svc      *services.ProfileService
	profiles *mocks.MockUserProfilesRepository
	entries  *memoryEntries
}

func newProfileFixture(t *testing.T) *profileFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	logger := log.NewStdLogger(io.Discard)
	profiles := mocks.NewMockUserProfilesRepository(ctrl)
	entries := newMemoryEntries()
	ledger := services.NewRankLedger(entries, logger)
	views := services.NewProfileViewService(profiles, entries, newFakeResolver(), services.SearchConfig{}, logger)
	return &profileFixture{
		svc:      services.NewProfileService(profiles, entries, ledger, views, fakeTxManager{}, logger),
		profiles: profiles,
		entries:  entries,
	}
}

// expectMutation 为一次成功的列表变更设置锁定、版本递增与视图回读。
func (f *profileFixture) expectMutation(uid string, version int64) {
	f.profiles.EXPECT().LockForUpdate(gomock.Any(), gomock.Any(), uid).Return(version-1, nil)
	f.profiles.EXPECT().BumpVersion(gomock.Any(), gomock.Any(), uid).Return(version, nil)
	f.profiles.EXPECT().GetByUID(gomock.Any(), gomock.Any(), uid).Return(&po.UserProfile{UID: uid, Username: uid, Version: version}, nil)
}

func TestProfileService_CreateProfile(t *testing.T) {
	t.Parallel()

	f := newProfileFixture(t)
	f.profiles.EXPECT().
		Create(gomock.Any(), gomock.Any(), repositories.CreateUserProfileInput{UID: "u1", Email: "a@x.io", Username: "ann", DisplayName: "Ann"}).
		Return(&po.UserProfile{UID: "u1", Username: "ann", Version: 1}, nil)
	f.profiles.EXPECT().GetByUID(gomock.Any(), gomock.Any(), "u1").Return(&po.UserProfile{UID: "u1", Username: "ann", Version: 1}, nil)

	view, err := f.svc.CreateProfile(context.Background(), services.CreateProfileInput{
		UID:         "u1",
		Email:       "a@x.io",
		Username:    " ann ",
		DisplayName: "Ann",
		Watched: []services.WatchedEntryInput{
			{MovieID: 10, Sentiment: po.SentimentPositive, Rank: ptrInt32(1)},
			{MovieID: 20, Sentiment: po.SentimentPositive, Rank: ptrInt32(1)},
			{MovieID: 30, Sentiment: po.SentimentPositive},
		},
		Watchlist: []int64{40},
	})
	require.NoError(t, err)
	require.Equal(t, "ann", view.Username)
	require.Equal(t, map[int64]int32{20: 1, 10: 2, 30: 3}, f.entries.ranks("u1", po.SentimentPositive))
	require.Equal(t, []int64{40}, f.entries.watchlist("u1"))
	require.Len(t, view.Watched.Positive, 3)
	require.Len(t, view.Watchlist, 1)
}

func TestProfileService_CreateProfileConflict(t *testing.T) {
	t.Parallel()

	f := newProfileFixture(t)
	f.profiles.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, repositories.ErrUserProfileExists)

	_, err := f.svc.CreateProfile(context.Background(), services.CreateProfileInput{UID: "u1", Username: "ann"})
	require.ErrorIs(t, err, services.ErrConflict)

	_, err = f.svc.CreateProfile(context.Background(), services.CreateProfileInput{UID: "u1"})
	require.ErrorIs(t, err, services.ErrInvalidArgument)
}

func TestProfileService_MutateListAddWatchedPromotesFromWatchlist(t *testing.T) {
	t.Parallel()

	f := newProfileFixture(t)
	seedWatchlist(t, f.entries, "u1", 7)
	f.expectMutation("u1", 2)

	view, err := f.svc.MutateList(context.Background(), services.MutateListInput{
		UID:       "u1",
		Op:        services.ListOpAddWatched,
		MovieID:   7,
		Sentiment: po.SentimentPositive,
		Rank:      ptrInt32(1),
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), view.Version)
	require.Len(t, view.Watched.Positive, 1)
	require.Equal(t, int64(7), view.Watched.Positive[0].MovieID)
	require.Equal(t, int32(10), *view.Watched.Positive[0].Rating)
	require.Empty(t, view.Watchlist)
}

func TestProfileService_MutateListOps(t *testing.T) {
	t.Parallel()

	f := newProfileFixture(t)
	seedWatched(t, f.entries, "u1", po.SentimentNeutral, 10, 20, 30)

	f.expectMutation("u1", 2)
	_, err := f.svc.MutateList(context.Background(), services.MutateListInput{UID: "u1", Op: services.ListOpRemoveWatched, MovieID: 20})
	require.NoError(t, err)
	require.Equal(t, map[int64]int32{10: 1, 30: 2}, f.entries.ranks("u1", po.SentimentNeutral))

	f.expectMutation("u1", 3)
	_, err = f.svc.MutateList(context.Background(), services.MutateListInput{UID: "u1", Op: services.ListOpMoveWatched, MovieID: 30, Sentiment: po.SentimentNeutral, Rank: ptrInt32(1)})
	require.NoError(t, err)
	require.Equal(t, map[int64]int32{30: 1, 10: 2}, f.entries.ranks("u1", po.SentimentNeutral))

	f.expectMutation("u1", 4)
	view, err := f.svc.MutateList(context.Background(), services.MutateListInput{UID: "u1", Op: services.ListOpRateWatched, MovieID: 10, Rating: ptrInt32(3)})
	require.NoError(t, err)
	require.Equal(t, int32(3), *view.Watched.Neutral[1].Rating)

	f.expectMutation("u1", 5)
	_, err = f.svc.MutateList(context.Background(), services.MutateListInput{UID: "u1", Op: services.ListOpAddWatchlist, MovieID: 50})
	require.NoError(t, err)
	f.expectMutation("u1", 6)
	_, err = f.svc.MutateList(context.Background(), services.MutateListInput{UID: "u1", Op: services.ListOpAddWatchlist, MovieID: 50})
	require.NoError(t, err)
	require.Equal(t, []int64{50}, f.entries.watchlist("u1"))

	f.expectMutation("u1", 7)
	_, err = f.svc.MutateList(context.Background(), services.MutateListInput{UID: "u1", Op: services.ListOpRemoveWatchlist, MovieID: 50})
	require.NoError(t, err)
	require.Empty(t, f.entries.watchlist("u1"))
}

func TestProfileService_MutateListRejections(t *testing.T) {
	t.Parallel()

	f := newProfileFixture(t)
	seedWatched(t, f.entries, "u1", po.SentimentPositive, 10)
	f.profiles.EXPECT().LockForUpdate(gomock.Any(), gomock.Any(), "u1").Return(int64(1), nil).AnyTimes()

	cases := []struct {
		name  string
		input services.MutateListInput
		want  error
	}{
		{"watchlist already watched", services.MutateListInput{UID: "u1", Op: services.ListOpAddWatchlist, MovieID: 10}, services.ErrConflict},
		{"duplicate watched", services.MutateListInput{UID: "u1", Op: services.ListOpAddWatched, MovieID: 10, Sentiment: po.SentimentNegative}, services.ErrConflict},
		{"rank zero", services.MutateListInput{UID: "u1", Op: services.ListOpAddWatched, MovieID: 11, Rank: ptrInt32(0)}, services.ErrInvalidArgument},
		{"move without rank", services.MutateListInput{UID: "u1", Op: services.ListOpMoveWatched, MovieID: 10}, services.ErrInvalidArgument},
		{"move missing", services.MutateListInput{UID: "u1", Op: services.ListOpMoveWatched, MovieID: 99, Rank: ptrInt32(1)}, services.ErrListEntryNotFound},
		{"rate missing", services.MutateListInput{UID: "u1", Op: services.ListOpRateWatched, MovieID: 99, Rating: ptrInt32(1)}, services.ErrListEntryNotFound},
		{"unknown op", services.MutateListInput{UID: "u1", Op: "shuffle", MovieID: 10}, services.ErrInvalidArgument},
	}
	for _, tc := range cases {
		_, err := f.svc.MutateList(context.Background(), tc.input)
		require.ErrorIs(t, err, tc.want, tc.name)
	}
	require.Equal(t, map[int64]int32{10: 1}, f.entries.ranks("u1", po.SentimentPositive))

	_, err := f.svc.MutateList(context.Background(), services.MutateListInput{Op: services.ListOpAddWatchlist, MovieID: 1})
	require.ErrorIs(t, err, services.ErrInvalidArgument)
}

func TestProfileService_MutateListUnknownProfile(t *testing.T) {
	t.Parallel()

	f := newProfileFixture(t)
	f.profiles.EXPECT().LockForUpdate(gomock.Any(), gomock.Any(), "ghost").Return(int64(0), repositories.ErrUserProfileNotFound)

	_, err := f.svc.MutateList(context.Background(), services.MutateListInput{UID: "ghost", Op: services.ListOpAddWatchlist, MovieID: 1})
	require.ErrorIs(t, err, services.ErrProfileNotFound)
}

func TestProfileService_ReplaceProfile(t *testing.T) {
	t.Parallel()

	f := newProfileFixture(t)
	seedWatched(t, f.entries, "u1", po.SentimentPositive, 10, 20)
	seedWatchlist(t, f.entries, "u1", 30)

	f.profiles.EXPECT().LockForUpdate(gomock.Any(), gomock.Any(), "u1").Return(int64(4), nil)
	f.profiles.EXPECT().
		Replace(gomock.Any(), gomock.Any(), repositories.ReplaceUserProfileInput{UID: "u1", Username: "ann2"}).
		Return(&po.UserProfile{UID: "u1", Username: "ann2", Version: 5}, nil)
	f.profiles.EXPECT().GetByUID(gomock.Any(), gomock.Any(), "u1").Return(&po.UserProfile{UID: "u1", Username: "ann2", Version: 5}, nil)

	view, err := f.svc.ReplaceProfile(context.Background(), services.ReplaceProfileInput{
		UID:       "u1",
		Username:  "ann2",
		Watched:   []services.WatchedEntryInput{{MovieID: 20, Sentiment: po.SentimentNegative, Rank: ptrInt32(1)}},
		Watchlist: []int64{10},
	})
	require.NoError(t, err)
	require.Equal(t, "ann2", view.Username)
	require.Empty(t, f.entries.ranks("u1", po.SentimentPositive))
	require.Equal(t, map[int64]int32{20: 1}, f.entries.ranks("u1", po.SentimentNegative))
	require.Equal(t, []int64{10}, f.entries.watchlist("u1"))
}

func TestProfileService_ReplaceProfileErrors(t *testing.T) {
	t.Parallel()

	f := newProfileFixture(t)
	f.profiles.EXPECT().LockForUpdate(gomock.Any(), gomock.Any(), "ghost").Return(int64(0), repositories.ErrUserProfileNotFound)
	f.profiles.EXPECT().LockForUpdate(gomock.Any(), gomock.Any(), "u1").Return(int64(1), nil).Times(2)
	f.profiles.EXPECT().Replace(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, repositories.ErrUserProfileExists)
	f.profiles.EXPECT().Replace(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	_, err := f.svc.ReplaceProfile(context.Background(), services.ReplaceProfileInput{UID: "ghost", Username: "g"})
	require.ErrorIs(t, err, services.ErrProfileNotFound)

	_, err = f.svc.ReplaceProfile(context.Background(), services.ReplaceProfileInput{UID: "u1", Username: "taken"})
	require.ErrorIs(t, err, services.ErrConflict)

	_, err = f.svc.ReplaceProfile(context.Background(), services.ReplaceProfileInput{UID: "u1", Username: "ok"})
	require.ErrorIs(t, err, services.ErrStore)
}

func TestProfileService_GetProfile(t *testing.T) {
	t.Parallel()

	f := newProfileFixture(t)
	seedWatched(t, f.entries, "u1", po.SentimentPositive, 10)
	seedWatchlist(t, f.entries, "u1", 20)
	f.profiles.EXPECT().GetByUsername(gomock.Any(), gomock.Any(), "ann").Return(&po.UserProfile{UID: "u1", Username: "ann"}, nil)

	profile, err := f.svc.GetProfile(context.Background(), services.ProfileKeyUsername, "ann")
	require.NoError(t, err)
	require.Len(t, profile.Watched(), 1)
	require.Len(t, profile.Watchlist(), 1)
}

func TestProfileService_CreateProfileDuplicateWatchlist(t *testing.T) {
	t.Parallel()

	f := newProfileFixture(t)
	f.profiles.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(&po.UserProfile{UID: "u1", Username: "ann", Version: 1}, nil)
	f.profiles.EXPECT().GetByUID(gomock.Any(), gomock.Any(), "u1").Return(&po.UserProfile{UID: "u1", Username: "ann", Version: 1}, nil)

	view, err := f.svc.CreateProfile(context.Background(), services.CreateProfileInput{
		UID:       "u1",
		Username:  "ann",
		Watchlist: []int64{7, 7, 8},
	})
	require.NoError(t, err)
	require.Equal(t, []int64{7, 8}, f.entries.watchlist("u1"))
	require.Len(t, view.Watchlist, 2)
}
