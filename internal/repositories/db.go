package repositories

import (
	"context"
	"errors"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation 对应 PostgreSQL 唯一约束冲突错误码。
const pgUniqueViolation = "23505"

// dbtx 抽象 *pgxpool.Pool 与 pgx.Tx 的公共查询能力。
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn 在存在事务会话时复用其 Tx，否则回落到连接池。
func conn(db *pgxpool.Pool, sess txmanager.Session) dbtx {
	if sess != nil {
		if tx := sess.Tx(); tx != nil {
			return tx
		}
	}
	return db
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
