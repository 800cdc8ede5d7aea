package po

import (
	"strings"
	"time"
)

// Bucket 表示用户文档下的列表分区。
// 对应 movies.list_entries.bucket 检查约束。
type Bucket string

// 列表分区常量定义
const (
	BucketWatched   Bucket = "watched"   // 已观看且参与排名
	BucketWatchlist Bucket = "watchlist" // 想看清单，无排名
)

// Valid 判断分区是否受支持。
func (b Bucket) Valid() bool {
	return b == BucketWatched || b == BucketWatchlist
}

// Sentiment 表示已观看列表中的情感分区，每个分区独立维护稠密排名。
type Sentiment string

// 情感分区常量定义
const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Sentiments 按展示顺序列出全部情感分区。
var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// ParseSentiment 解析情感标签，空值归入 neutral。
func ParseSentiment(raw string) (Sentiment, bool) {
	switch Sentiment(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return SentimentNeutral, true
	case SentimentPositive:
		return SentimentPositive, true
	case SentimentNeutral:
		return SentimentNeutral, true
	case SentimentNegative:
		return SentimentNegative, true
	default:
		return "", false
	}
}

// UserProfile 表示 movies.user_profiles 表中的用户文档。
type UserProfile struct {
	UID         string
	Email       string
	Username    string
	DisplayName string
	PhotoURL    string
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Entries     []*ListEntry
}

// Watched 返回已观看分区条目，保持存储顺序。
func (p *UserProfile) Watched() []*ListEntry {
	return p.entriesIn(BucketWatched)
}

// Watchlist 返回想看清单条目，保持存储顺序。
func (p *UserProfile) Watchlist() []*ListEntry {
	return p.entriesIn(BucketWatchlist)
}

func (p *UserProfile) entriesIn(bucket Bucket) []*ListEntry {
	if p == nil {
		return nil
	}
	out := make([]*ListEntry, 0, len(p.Entries))
	for _, e := range p.Entries {
		if e != nil && e.Bucket == bucket {
			out = append(out, e)
		}
	}
	return out
}

// ListEntry 表示 movies.list_entries 表的行，即用户列表中的一条影片引用。
// Rank 仅对 watched 分区有意义；MovieID 是对 Movie 的弱引用。
type ListEntry struct {
	UID       string
	Bucket    Bucket
	MovieID   int64
	Sentiment Sentiment
	Rank      *int32
	Rating    *int32
	Seq       int64
	AddedAt   time.Time
}

// RankValue 返回排名值，未设置时为 0。
func (e *ListEntry) RankValue() int32 {
	if e == nil || e.Rank == nil {
		return 0
	}
	return *e.Rank
}

// EnrichedEntry 表示列表条目与元数据连接（LEFT JOIN）后的结果，Movie 为空表示缓存未命中。
type EnrichedEntry struct {
	Entry *ListEntry
	Movie *Movie
}
