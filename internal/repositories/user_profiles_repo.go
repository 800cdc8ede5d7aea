package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wongmatt93/untitled-movie-project-backend/internal/models/po"
	"github.com/wongmatt93/untitled-movie-project-backend/internal/repositories/mappers"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUserProfileNotFound 表示档案不存在。
	ErrUserProfileNotFound = errors.New("user profile not found")
	// ErrUserProfileExists 表示 uid 或 username 已被占用。
	ErrUserProfileExists = errors.New("user profile already exists")
)

const profileColumns = `uid, email, username, display_name, photo_url, version, created_at, updated_at`

const insertUserProfileSQL = `INSERT INTO movies.user_profiles (uid, email, username, display_name, photo_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + profileColumns

const getUserProfileByUIDSQL = `SELECT ` + profileColumns + `
FROM movies.user_profiles
WHERE uid = $1`

const getUserProfileByUsernameSQL = `SELECT ` + profileColumns + `
FROM movies.user_profiles
WHERE username = $1`

const lockUserProfileSQL = `SELECT version
FROM movies.user_profiles
WHERE uid = $1
FOR UPDATE`

const replaceUserProfileSQL = `UPDATE movies.user_profiles
SET email = $2,
    username = $3,
    display_name = $4,
    photo_url = $5,
    version = version + 1,
    updated_at = now()
WHERE uid = $1
RETURNING ` + profileColumns

const bumpUserProfileVersionSQL = `UPDATE movies.user_profiles
SET version = version + 1,
    updated_at = now()
WHERE uid = $1
RETURNING version`

const searchUserProfilesSQL = `SELECT ` + profileColumns + `
FROM movies.user_profiles
WHERE username ILIKE '%' || $1::text || '%' ESCAPE '\'
  AND ($2::text = '' OR lower(username) <> lower($2::text))
ORDER BY created_at, uid
LIMIT $3`

// UserProfilesRepository 提供访问 movies.user_profiles 的接口。
type UserProfilesRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewUserProfilesRepository 构造仓储实例。
func NewUserProfilesRepository(db *pgxpool.Pool, logger log.Logger) *UserProfilesRepository {
	return &UserProfilesRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// CreateUserProfileInput 描述档案创建参数。
type CreateUserProfileInput struct {
	UID         string
	Email       string
	Username    string
	DisplayName string
	PhotoURL    string
}

// Create 写入新档案，uid 或 username 冲突时返回 ErrUserProfileExists。
func (r *UserProfilesRepository) Create(ctx context.Context, sess txmanager.Session, input CreateUserProfileInput) (*po.UserProfile, error) {
	var row mappers.UserProfileRow
	err := conn(r.db, sess).QueryRow(ctx, insertUserProfileSQL,
		input.UID,
		input.Email,
		input.Username,
		input.DisplayName,
		input.PhotoURL,
	).Scan(row.ScanTargets()...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserProfileExists
		}
		r.log.WithContext(ctx).Errorf("create user profile failed: uid=%s err=%v", input.UID, err)
		return nil, fmt.Errorf("create user profile: %w", err)
	}
	return mappers.UserProfileFromRow(row), nil
}

// GetByUID 按 uid 读取档案（不含列表条目）。
func (r *UserProfilesRepository) GetByUID(ctx context.Context, sess txmanager.Session, uid string) (*po.UserProfile, error) {
	return r.getOne(ctx, sess, getUserProfileByUIDSQL, "uid", uid)
}

// GetByUsername 按 username 读取档案（不含列表条目）。
func (r *UserProfilesRepository) GetByUsername(ctx context.Context, sess txmanager.Session, username string) (*po.UserProfile, error) {
	return r.getOne(ctx, sess, getUserProfileByUsernameSQL, "username", username)
}

func (r *UserProfilesRepository) getOne(ctx context.Context, sess txmanager.Session, query, key, value string) (*po.UserProfile, error) {
	var row mappers.UserProfileRow
	if err := conn(r.db, sess).QueryRow(ctx, query, value).Scan(row.ScanTargets()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserProfileNotFound
		}
		r.log.WithContext(ctx).Errorf("get user profile failed: %s=%s err=%v", key, value, err)
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	return mappers.UserProfileFromRow(row), nil
}

// LockForUpdate 在当前事务内对档案行加行锁，作为同一 uid 变更的串行化点。
// 必须在事务会话中调用，返回加锁时的版本号。
func (r *UserProfilesRepository) LockForUpdate(ctx context.Context, sess txmanager.Session, uid string) (int64, error) {
	if sess == nil {
		return 0, fmt.Errorf("lock user profile: session required")
	}
	var version int64
	if err := sess.Tx().QueryRow(ctx, lockUserProfileSQL, uid).Scan(&version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserProfileNotFound
		}
		r.log.WithContext(ctx).Errorf("lock user profile failed: uid=%s err=%v", uid, err)
		return 0, fmt.Errorf("lock user profile: %w", err)
	}
	return version, nil
}

// ReplaceUserProfileInput 描述身份字段的整体覆盖。
type ReplaceUserProfileInput struct {
	UID         string
	Email       string
	Username    string
	DisplayName string
	PhotoURL    string
}

// Replace 覆盖身份字段并递增版本号。
func (r *UserProfilesRepository) Replace(ctx context.Context, sess txmanager.Session, input ReplaceUserProfileInput) (*po.UserProfile, error) {
	var row mappers.UserProfileRow
	err := conn(r.db, sess).QueryRow(ctx, replaceUserProfileSQL,
		input.UID,
		input.Email,
		input.Username,
		input.DisplayName,
		input.PhotoURL,
	).Scan(row.ScanTargets()...)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, ErrUserProfileNotFound
		case isUniqueViolation(err):
			return nil, ErrUserProfileExists
		}
		r.log.WithContext(ctx).Errorf("replace user profile failed: uid=%s err=%v", input.UID, err)
		return nil, fmt.Errorf("replace user profile: %w", err)
	}
	return mappers.UserProfileFromRow(row), nil
}

// BumpVersion 递增版本号并刷新 updated_at，返回新版本。
func (r *UserProfilesRepository) BumpVersion(ctx context.Context, sess txmanager.Session, uid string) (int64, error) {
	var version int64
	if err := conn(r.db, sess).QueryRow(ctx, bumpUserProfileVersionSQL, uid).Scan(&version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUserProfileNotFound
		}
		r.log.WithContext(ctx).Errorf("bump user profile version failed: uid=%s err=%v", uid, err)
		return 0, fmt.Errorf("bump user profile version: %w", err)
	}
	return version, nil
}

// SearchByUsername 按用户名做大小写不敏感的子串匹配，排除 excludeUsername（大小写不敏感）。
func (r *UserProfilesRepository) SearchByUsername(ctx context.Context, sess txmanager.Session, query, excludeUsername string, limit int) ([]*po.UserProfile, error) {
	rows, err := conn(r.db, sess).Query(ctx, searchUserProfilesSQL, escapeLike(query), excludeUsername, limit)
	if err != nil {
		r.log.WithContext(ctx).Errorf("search user profiles failed: query=%q err=%v", query, err)
		return nil, fmt.Errorf("search user profiles: %w", err)
	}
	defer rows.Close()

	out := make([]*po.UserProfile, 0)
	for rows.Next() {
		var row mappers.UserProfileRow
		if err := rows.Scan(row.ScanTargets()...); err != nil {
			return nil, fmt.Errorf("scan user profile: %w", err)
		}
		out = append(out, mappers.UserProfileFromRow(row))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user profiles: %w", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike 转义 LIKE 通配符，使查询串按字面匹配。
func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
