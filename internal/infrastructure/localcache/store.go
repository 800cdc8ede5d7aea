// Package localcache 提供进程内的影片元数据只读副本（Badger）。
// 元数据一经写入即不可变，因此本层只做"不存在才写入"，无需失效或淘汰。
package localcache

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-kratos/kratos/v2/log"
	json "github.com/goccy/go-json"
)

const movieKeyPrefix = "movie:"

// Config 控制本地缓存。Path 为空时使用内存模式。
type Config struct {
	Path     string
	Disabled bool
}

// Store 包装 Badger 实例。
type Store struct {
	db  *badger.DB
	log *log.Helper
}

// NewStore 打开 Badger，返回的 cleanup 负责关闭数据库。
// Disabled 时返回 nil Store，其方法均为空操作。
func NewStore(cfg Config, logger log.Logger) (*Store, func(), error) {
	helper := log.NewHelper(logger)
	if cfg.Disabled {
		helper.Info("local movie cache disabled")
		return nil, func() {}, nil
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.Path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open badger: %w", err)
	}
	helper.Infof("local movie cache opened: path=%q in_memory=%t", cfg.Path, cfg.Path == "")

	store := &Store{db: db, log: helper}
	cleanup := func() {
		if err := db.Close(); err != nil {
			helper.Errorf("close badger failed: %v", err)
		}
	}
	return store, cleanup, nil
}

func movieKey(id int64) []byte {
	return []byte(movieKeyPrefix + strconv.FormatInt(id, 10))
}

// GetMovie 返回本地副本，未命中时 ok 为 false。
func (s *Store) GetMovie(ctx context.Context, id int64) (*po.Movie, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	var movie po.Movie
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(movieKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &movie)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		s.log.WithContext(ctx).Warnf("local cache read failed: movie=%d err=%v", id, err)
		return nil, false, fmt.Errorf("local cache get movie %d: %w", id, err)
	}
	return &movie, true, nil
}

// PutMovieIfAbsent 写入副本，已存在时保持原值。
func (s *Store) PutMovieIfAbsent(ctx context.Context, movie *po.Movie) error {
	if s == nil || movie == nil {
		return nil
	}
	data, err := json.Marshal(movie)
	if err != nil {
		return fmt.Errorf("local cache marshal movie %d: %w", movie.ID, err)
	}
	key := movieKey(movie.ID)
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, data)
	})
	// 并发写入同一 ID 时冲突方放弃即可，已提交的记录与本次内容一致。
	if errors.Is(err, badger.ErrConflict) {
		return nil
	}
	if err != nil {
		s.log.WithContext(ctx).Warnf("local cache write failed: movie=%d err=%v", movie.ID, err)
		return fmt.Errorf("local cache put movie %d: %w", movie.ID, err)
	}
	return nil
}
