package controllers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/controllers"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/metadata"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/vo"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/services"

	khttp "github.com/go-kratos/kratos/v2/transport/http"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type movieServiceStub struct {
	movies map[int64]*po.Movie
	err    error
}

func (s *movieServiceStub) GetOrFetch(_ context.Context, id int64) (*po.Movie, error) {
	if s.err != nil {
		return nil, s.err
	}
	if m, ok := s.movies[id]; ok {
		return m, nil
	}
	return nil, services.ErrMovieNotFound
}

func (s *movieServiceStub) GetManyOrFetch(ctx context.Context, ids []int64) ([]*po.Movie, error) {
	out := make([]*po.Movie, 0, len(ids))
	for _, id := range ids {
		m, err := s.GetOrFetch(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

type profileServiceStub struct {
	mu          sync.Mutex
	view        *vo.ProfileView
	raw         *po.UserProfile
	err         error
	lastMutate  services.MutateListInput
	lastCreate  services.CreateProfileInput
	lastReplace services.ReplaceProfileInput
	deadline    bool
}

func (s *profileServiceStub) result(ctx context.Context) (*vo.ProfileView, error) {
	if s.deadline {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.view, nil
}

func (s *profileServiceStub) CreateProfile(ctx context.Context, in services.CreateProfileInput) (*vo.ProfileView, error) {
	s.mu.Lock()
	s.lastCreate = in
	s.mu.Unlock()
	return s.result(ctx)
}

func (s *profileServiceStub) GetProfile(_ context.Context, _ services.ProfileKey, _ string) (*po.UserProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.raw, nil
}

func (s *profileServiceStub) ReplaceProfile(ctx context.Context, in services.ReplaceProfileInput) (*vo.ProfileView, error) {
	s.mu.Lock()
	s.lastReplace = in
	s.mu.Unlock()
	return s.result(ctx)
}

func (s *profileServiceStub) MutateList(ctx context.Context, in services.MutateListInput) (*vo.ProfileView, error) {
	s.mu.Lock()
	s.lastMutate = in
	s.mu.Unlock()
	return s.result(ctx)
}

type viewServiceStub struct {
	view        *vo.ProfileView
	err         error
	lastKey     services.ProfileKey
	lastQuery   string
	lastExclude string
	callerMeta  metadata.HandlerMetadata
}

func (s *viewServiceStub) GetProfileView(ctx context.Context, key services.ProfileKey, value string) (*vo.ProfileView, error) {
	s.lastKey = key
	s.callerMeta, _ = metadata.FromContext(ctx)
	if s.err != nil {
		return nil, s.err
	}
	return s.view, nil
}

func (s *viewServiceStub) SearchProfiles(_ context.Context, query, exclude string) ([]*vo.ProfileView, error) {
	s.lastQuery = query
	s.lastExclude = exclude
	if s.err != nil {
		return nil, s.err
	}
	if s.view == nil {
		return []*vo.ProfileView{}, nil
	}
	return []*vo.ProfileView{s.view}, nil
}

func newServer(movies *movieServiceStub, profiles *profileServiceStub, views *viewServiceStub, timeouts controllers.HandlerTimeouts) *khttp.Server {
	base := controllers.NewBaseHandler(timeouts)
	srv := khttp.NewServer()
	controllers.NewMovieHandler(movies, base).Register(srv)
	controllers.NewProfileHandler(profiles, views, base).Register(srv)
	return srv
}

func do(t *testing.T, srv *khttp.Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

func sampleView() *vo.ProfileView {
	view := vo.NewProfileView(&po.UserProfile{UID: "u1", Username: "ann", Version: 2})
	rank := int32(1)
	view.Watched.Positive = append(view.Watched.Positive, &vo.ListItem{
		MovieID:   10,
		Sentiment: string(po.SentimentPositive),
		Rank:      &rank,
		Movie:     &vo.MovieMetadata{ID: 10, Title: "Heat"},
	})
	view.Watchlist = append(view.Watchlist, &vo.ListItem{MovieID: 11})
	return view
}
