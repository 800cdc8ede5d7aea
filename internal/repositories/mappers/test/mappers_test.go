package mappers_test

import (
	"testing"
	"time"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/repositories/mappers"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovieDocumentsRoundTrip(t *testing.T) {
	movie := &po.Movie{
		ID:      603,
		Title:   "The Matrix",
		Genres:  []po.Genre{{ID: 28, Name: "Action"}},
		Credits: po.Credits{Cast: []po.Person{{ID: 6384, Name: "Keanu Reeves", Character: "Neo"}}},
	}
	genres, credits, err := mappers.MarshalMovieDocuments(movie)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":28,"name":"Action"}]`, string(genres))

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	got, err := mappers.MovieFromRow(mappers.MovieRow{
		MovieID:   603,
		Title:     "The Matrix",
		Genres:    genres,
		Credits:   credits,
		CreatedAt: pgtype.Timestamptz{Time: created, Valid: true},
	})
	require.NoError(t, err)
	assert.Equal(t, movie.Genres, got.Genres)
	assert.Equal(t, movie.Credits.Cast, got.Credits.Cast)
	assert.NotNil(t, got.Credits.Crew)
	assert.Empty(t, got.Credits.Crew)
	assert.Equal(t, created, got.CreatedAt)
}

func TestMarshalMovieDocumentsNormalizesNil(t *testing.T) {
	genres, credits, err := mappers.MarshalMovieDocuments(&po.Movie{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(genres))
	assert.JSONEq(t, `{"cast":[],"crew":[]}`, string(credits))
}

func TestMovieFromRowRejectsBadJSON(t *testing.T) {
	_, err := mappers.MovieFromRow(mappers.MovieRow{MovieID: 9, Genres: []byte("{not json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "movie=9")
}

func TestListEntryFromRow(t *testing.T) {
	t.Run("watched", func(t *testing.T) {
		entry := mappers.ListEntryFromRow(mappers.ListEntryRow{
			UID:       "u1",
			Bucket:    string(po.BucketWatched),
			MovieID:   10,
			Sentiment: pgtype.Text{String: "positive", Valid: true},
			Rank:      pgtype.Int4{Int32: 2, Valid: true},
			Rating:    pgtype.Int4{Int32: 9, Valid: true},
			Seq:       7,
		})
		assert.Equal(t, po.SentimentPositive, entry.Sentiment)
		require.NotNil(t, entry.Rank)
		assert.Equal(t, int32(2), *entry.Rank)
		assert.Equal(t, int32(9), *entry.Rating)
		assert.Equal(t, int64(7), entry.Seq)
		assert.True(t, entry.AddedAt.IsZero())
	})

	t.Run("watchlist", func(t *testing.T) {
		entry := mappers.ListEntryFromRow(mappers.ListEntryRow{UID: "u1", Bucket: string(po.BucketWatchlist), MovieID: 11})
		assert.Empty(t, entry.Sentiment)
		assert.Nil(t, entry.Rank)
		assert.Nil(t, entry.Rating)
	})
}

func TestToPgHelpers(t *testing.T) {
	assert.False(t, mappers.ToPgInt4(nil).Valid)
	v := int32(4)
	assert.Equal(t, pgtype.Int4{Int32: 4, Valid: true}, mappers.ToPgInt4(&v))

	assert.False(t, mappers.ToPgSentiment(po.BucketWatchlist, po.SentimentPositive).Valid)
	assert.False(t, mappers.ToPgSentiment(po.BucketWatched, "").Valid)
	assert.Equal(t, "negative", mappers.ToPgSentiment(po.BucketWatched, po.SentimentNegative).String)
}

func TestEnrichedEntryFromRow(t *testing.T) {
	row := mappers.EnrichedEntryRow{
		Entry: mappers.ListEntryRow{UID: "u1", Bucket: string(po.BucketWatchlist), MovieID: 5},
	}
	got, err := mappers.EnrichedEntryFromRow(row)
	require.NoError(t, err)
	assert.Nil(t, got.Movie)

	row.HasMovie = true
	row.Movie = mappers.MovieRow{MovieID: 5, Title: "Ran"}
	got, err = mappers.EnrichedEntryFromRow(row)
	require.NoError(t, err)
	require.NotNil(t, got.Movie)
	assert.Equal(t, "Ran", got.Movie.Title)
	assert.Equal(t, int64(5), got.Entry.MovieID)
}
