package mappers

import (
	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"

	"github.com/jackc/pgx/v5/pgtype"
)

// UserProfileRow 对应 movies.user_profiles 的扫描目标。
type UserProfileRow struct {
	UID         string
	Email       string
	Username    string
	DisplayName string
	PhotoURL    string
	Version     int64
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

// ScanTargets 返回与 profileColumns 顺序一致的扫描指针。
func (r *UserProfileRow) ScanTargets() []any {
	return []any{
		&r.UID,
		&r.Email,
		&r.Username,
		&r.DisplayName,
		&r.PhotoURL,
		&r.Version,
		&r.CreatedAt,
		&r.UpdatedAt,
	}
}

// UserProfileFromRow 将档案行转换为领域对象（不含列表条目）。
func UserProfileFromRow(row UserProfileRow) *po.UserProfile {
	return &po.UserProfile{
		UID:         row.UID,
		Email:       row.Email,
		Username:    row.Username,
		DisplayName: row.DisplayName,
		PhotoURL:    row.PhotoURL,
		Version:     row.Version,
		CreatedAt:   mustTimestamp(row.CreatedAt),
		UpdatedAt:   mustTimestamp(row.UpdatedAt),
	}
}

// ListEntryRow 对应 movies.list_entries 的扫描目标。
type ListEntryRow struct {
	UID       string
	Bucket    string
	MovieID   int64
	Sentiment pgtype.Text
	Rank      pgtype.Int4
	Rating    pgtype.Int4
	Seq       int64
	AddedAt   pgtype.Timestamptz
}

// ScanTargets 返回与 entryColumns 顺序一致的扫描指针。
func (r *ListEntryRow) ScanTargets() []any {
	return []any{
		&r.UID,
		&r.Bucket,
		&r.MovieID,
		&r.Sentiment,
		&r.Rank,
		&r.Rating,
		&r.Seq,
		&r.AddedAt,
	}
}

// ListEntryFromRow 转换列表条目。
func ListEntryFromRow(row ListEntryRow) *po.ListEntry {
	entry := &po.ListEntry{
		UID:     row.UID,
		Bucket:  po.Bucket(row.Bucket),
		MovieID: row.MovieID,
		Rank:    int4Ptr(row.Rank),
		Rating:  int4Ptr(row.Rating),
		Seq:     row.Seq,
		AddedAt: mustTimestamp(row.AddedAt),
	}
	if row.Sentiment.Valid {
		entry.Sentiment = po.Sentiment(row.Sentiment.String)
	}
	return entry
}

// ToPgInt4 将 *int32 转换为 pgtype.Int4。
func ToPgInt4(value *int32) pgtype.Int4 {
	if value == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: *value, Valid: true}
}

// ToPgSentiment 仅为 watched 条目写入情感分区。
func ToPgSentiment(bucket po.Bucket, sentiment po.Sentiment) pgtype.Text {
	if bucket != po.BucketWatched || sentiment == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: string(sentiment), Valid: true}
}

func int4Ptr(value pgtype.Int4) *int32 {
	if !value.Valid {
		return nil
	}
	v := value.Int32
	return &v
}

// EnrichedEntryRow 对应 list_entries LEFT JOIN movie_metadata 的扫描目标。
// HasMovie 为 false 时 Movie 字段为 COALESCE 后的零值。
type EnrichedEntryRow struct {
	Entry    ListEntryRow
	HasMovie bool
	Movie    MovieRow
}

// ScanTargets 返回条目列、命中标记、元数据列的扫描指针。
func (r *EnrichedEntryRow) ScanTargets() []any {
	targets := r.Entry.ScanTargets()
	targets = append(targets, &r.HasMovie)
	return append(targets, r.Movie.ScanTargets()...)
}

// EnrichedEntryFromRow 转换连接结果，未命中的元数据保持为空。
func EnrichedEntryFromRow(row EnrichedEntryRow) (*po.EnrichedEntry, error) {
	out := &po.EnrichedEntry{Entry: ListEntryFromRow(row.Entry)}
	if !row.HasMovie {
		return out, nil
	}
	movie, err := MovieFromRow(row.Movie)
	if err != nil {
		return nil, err
	}
	out.Movie = movie
	return out, nil
}
