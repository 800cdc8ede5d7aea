package services_test

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/clients/tmdb"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
)

// memoryEntries 是 list_entries 表的内存实现，语义与 SQL 版本一致。
type memoryEntries struct {
	mu      sync.Mutex
	seq     int64
	rows    []*po.ListEntry
	movies  map[int64]*po.Movie
	failOps map[string]error
}

func newMemoryEntries() *memoryEntries {
	return &memoryEntries{movies: map[int64]*po.Movie{}, failOps: map[string]error{}}
}

func (m *memoryEntries) fail(op string) error {
	return m.failOps[op]
}

func clone(e *po.ListEntry) *po.ListEntry {
	c := *e
	if e.Rank != nil {
		r := *e.Rank
		c.Rank = &r
	}
	if e.Rating != nil {
		r := *e.Rating
		c.Rating = &r
	}
	return &c
}

func (m *memoryEntries) inPartition(e *po.ListEntry, uid string, sentiment po.Sentiment) bool {
	return e.UID == uid && e.Bucket == po.BucketWatched && e.Sentiment == sentiment
}

func (m *memoryEntries) Find(_ context.Context, _ txmanager.Session, uid string, bucket po.Bucket, movieID int64) (*po.ListEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Find"); err != nil {
		return nil, err
	}
	for _, e := range m.rows {
		if e.UID == uid && e.Bucket == bucket && e.MovieID == movieID {
			return clone(e), nil
		}
	}
	return nil, repositories.ErrListEntryNotFound
}

func (m *memoryEntries) MaxRank(_ context.Context, _ txmanager.Session, uid string, sentiment po.Sentiment) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var maxRank int32
	for _, e := range m.rows {
		if m.inPartition(e, uid, sentiment) && e.RankValue() > maxRank {
			maxRank = e.RankValue()
		}
	}
	return maxRank, nil
}

func (m *memoryEntries) CountAtRank(_ context.Context, _ txmanager.Session, uid string, sentiment po.Sentiment, rank int32, excludeMovieID int64) (int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int32
	for _, e := range m.rows {
		if m.inPartition(e, uid, sentiment) && e.RankValue() == rank && e.MovieID != excludeMovieID {
			n++
		}
	}
	return n, nil
}

func (m *memoryEntries) ShiftRanksFrom(_ context.Context, _ txmanager.Session, uid string, sentiment po.Sentiment, fromRank, delta int32) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("ShiftRanksFrom"); err != nil {
		return 0, err
	}
	var n int64
	for _, e := range m.rows {
		if m.inPartition(e, uid, sentiment) && e.RankValue() >= fromRank {
			r := e.RankValue() + delta
			e.Rank = &r
			n++
		}
	}
	return n, nil
}

func (m *memoryEntries) RenumberPartition(_ context.Context, _ txmanager.Session, uid string, sentiment po.Sentiment) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	part := make([]*po.ListEntry, 0)
	for _, e := range m.rows {
		if m.inPartition(e, uid, sentiment) {
			part = append(part, e)
		}
	}
	slices.SortFunc(part, func(a, b *po.ListEntry) int {
		return cmp.Or(cmp.Compare(a.RankValue(), b.RankValue()), cmp.Compare(a.Seq, b.Seq))
	})
	var changed int64
	for i, e := range part {
		want := int32(i + 1)
		if e.RankValue() != want {
			e.Rank = &want
			changed++
		}
	}
	return changed, nil
}

func (m *memoryEntries) Insert(_ context.Context, _ txmanager.Session, entry *po.ListEntry) (*po.ListEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("Insert"); err != nil {
		return nil, err
	}
	for _, e := range m.rows {
		if e.UID == entry.UID && e.Bucket == entry.Bucket && e.MovieID == entry.MovieID {
			return nil, repositories.ErrListEntryExists
		}
	}
	m.seq++
	row := clone(entry)
	row.Seq = m.seq
	row.AddedAt = time.Unix(m.seq, 0).UTC()
	if row.Bucket == po.BucketWatchlist {
		row.Sentiment = ""
		row.Rank = nil
		row.Rating = nil
	}
	m.rows = append(m.rows, row)
	return clone(row), nil
}

func (m *memoryEntries) Delete(_ context.Context, _ txmanager.Session, uid string, bucket po.Bucket, movieID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.rows {
		if e.UID == uid && e.Bucket == bucket && e.MovieID == movieID {
			m.rows = slices.Delete(m.rows, i, i+1)
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryEntries) ListByUser(_ context.Context, _ txmanager.Session, uid string) ([]*po.ListEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*po.ListEntry, 0)
	for _, e := range m.rows {
		if e.UID == uid {
			out = append(out, clone(e))
		}
	}
	return out, nil
}

func (m *memoryEntries) ListEnrichedByUsers(ctx context.Context, sess txmanager.Session, uids []string) (map[string][]*po.EnrichedEntry, error) {
	if err := m.fail("ListEnrichedByUsers"); err != nil {
		return nil, err
	}
	out := make(map[string][]*po.EnrichedEntry, len(uids))
	for _, uid := range uids {
		entries, _ := m.ListByUser(ctx, sess, uid)
		m.mu.Lock()
		for _, e := range entries {
			out[uid] = append(out[uid], &po.EnrichedEntry{Entry: e, Movie: m.movies[e.MovieID]})
		}
		m.mu.Unlock()
	}
	return out, nil
}

func (m *memoryEntries) UpdateRating(_ context.Context, _ txmanager.Session, uid string, bucket po.Bucket, movieID int64, rating *int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.rows {
		if e.UID == uid && e.Bucket == bucket && e.MovieID == movieID {
			e.Rating = rating
			return nil
		}
	}
	return repositories.ErrListEntryNotFound
}

func (m *memoryEntries) DeleteAll(_ context.Context, _ txmanager.Session, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = slices.DeleteFunc(m.rows, func(e *po.ListEntry) bool { return e.UID == uid })
	return nil
}

// ranks 返回某分区内 movieID -> rank。
func (m *memoryEntries) ranks(uid string, sentiment po.Sentiment) map[int64]int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[int64]int32{}
	for _, e := range m.rows {
		if m.inPartition(e, uid, sentiment) {
			out[e.MovieID] = e.RankValue()
		}
	}
	return out
}

func (m *memoryEntries) watchlist(uid string) []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, 0)
	for _, e := range m.rows {
		if e.UID == uid && e.Bucket == po.BucketWatchlist {
			out = append(out, e.MovieID)
		}
	}
	return out
}

// memoryMovies 是 movie_metadata 的内存实现，记录条件写入次数。
type memoryMovies struct {
	mu       sync.Mutex
	rows     map[int64]*po.Movie
	inserts  atomic.Int32
	gets     atomic.Int32
	lists    atomic.Int32
	getErr   error
	writeErr error
}

func newMemoryMovies() *memoryMovies {
	return &memoryMovies{rows: map[int64]*po.Movie{}}
}

func (m *memoryMovies) Get(_ context.Context, _ txmanager.Session, id int64) (*po.Movie, error) {
	m.gets.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	movie, ok := m.rows[id]
	if !ok {
		return nil, repositories.ErrMovieMetadataNotFound
	}
	c := *movie
	return &c, nil
}

func (m *memoryMovies) ListByIDs(_ context.Context, _ txmanager.Session, ids []int64) (map[int64]*po.Movie, error) {
	m.lists.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	out := make(map[int64]*po.Movie, len(ids))
	for _, id := range ids {
		if movie, ok := m.rows[id]; ok {
			c := *movie
			out[id] = &c
		}
	}
	return out, nil
}

func (m *memoryMovies) InsertIfAbsent(_ context.Context, _ txmanager.Session, movie *po.Movie) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return false, m.writeErr
	}
	if _, ok := m.rows[movie.ID]; ok {
		return false, nil
	}
	m.inserts.Add(1)
	c := *movie
	c.CreatedAt = time.Now().UTC()
	m.rows[movie.ID] = &c
	return true, nil
}

func (m *memoryMovies) seed(movies ...*po.Movie) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, movie := range movies {
		c := *movie
		m.rows[movie.ID] = &c
	}
}

func (m *memoryMovies) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// countingSource 模拟元数据源，统计调用次数；delay 用于放大并发窗口。
type countingSource struct {
	details  atomic.Int32
	credits  atomic.Int32
	delay    time.Duration
	missing  map[int64]bool
	failWith error
}

var (
	errSourceDown   = errors.New("source down")
	errMovieMissing = fmt.Errorf("details: %w", tmdb.ErrMovieNotFound)
)

func (s *countingSource) GetMovieDetails(ctx context.Context, id int64) (*po.MovieDetails, error) {
	s.details.Add(1)
	if err := s.wait(ctx, id); err != nil {
		return nil, err
	}
	return &po.MovieDetails{ID: id, Title: titleFor(id), Genres: []po.Genre{{ID: 18, Name: "Drama"}}, Runtime: 120}, nil
}

func (s *countingSource) GetMovieCredits(ctx context.Context, id int64) (*po.Credits, error) {
	s.credits.Add(1)
	if err := s.wait(ctx, id); err != nil {
		return nil, err
	}
	return &po.Credits{Cast: []po.Person{{ID: id * 10, Name: "Lead"}}}, nil
}

func (s *countingSource) wait(ctx context.Context, id int64) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if s.missing[id] {
		return errMovieMissing
	}
	return s.failWith
}

func titleFor(id int64) string {
	return fmt.Sprintf("movie-%d", id)
}

// fakeResolver 按预置结果解析元数据。
type fakeResolver struct {
	mu     sync.Mutex
	movies map[int64]*po.Movie
	errs   map[int64]error
	calls  map[int64]int
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{movies: map[int64]*po.Movie{}, errs: map[int64]error{}, calls: map[int64]int{}}
}

func (r *fakeResolver) GetOrFetch(_ context.Context, id int64) (*po.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[id]++
	if err := r.errs[id]; err != nil {
		return nil, err
	}
	if movie, ok := r.movies[id]; ok {
		return movie, nil
	}
	return &po.Movie{ID: id, Title: titleFor(id)}, nil
}
