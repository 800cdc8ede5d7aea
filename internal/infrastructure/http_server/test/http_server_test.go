package httpserver_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/controllers"
	configloader "github.com/wongmatt93/untitled-movie-project-backend/internal/infrastructure/configloader"
	httpserver "github.com/wongmatt93/untitled-movie-project-backend/internal/infrastructure/http_server"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/services"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
)

type movieStub struct {
	panicOn int64
}

func (s movieStub) GetOrFetch(_ context.Context, id int64) (*po.Movie, error) {
	if id == s.panicOn {
		panic("boom")
	}
	if id == 404 {
		return nil, services.ErrMovieNotFound
	}
	return &po.Movie{ID: id, Title: "stub"}, nil
}

func (s movieStub) GetManyOrFetch(ctx context.Context, ids []int64) ([]*po.Movie, error) {
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

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	base := controllers.NewBaseHandler(controllers.HandlerTimeouts{})
	movie := controllers.NewMovieHandler(movieStub{panicOn: 13}, base)
	srv := httpserver.NewHTTPServer(configloader.ServerConfig{Timeout: time.Second}, movie, nil, log.NewStdLogger(io.Discard))
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func TestNewHTTPServer_ServesRoutes(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/movies/5")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.Contains(t, string(body), `"title":"stub"`)
	require.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, err = http.Get(ts.URL + "/movies/404")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNewHTTPServer_HealthCheck(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewHTTPServer_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/movies/13")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// 恢复后服务仍可用。
	resp, err = http.Get(ts.URL + "/movies/5")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
