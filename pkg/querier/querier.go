// Package querier выполняет запросы в транзакции из контекста, а без нее - прямо в пуле.
package querier

import (
	"context"

	"github.com/avito-tech/go-transaction-manager/pgxv5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Querier struct {
	db        *pgxpool.Pool
	txFromCtx *pgxv5.CtxGetter
}

func New(db *pgxpool.Pool, txFromCtx *pgxv5.CtxGetter) *Querier {
	return &Querier{db: db, txFromCtx: txFromCtx}
}

func (q *Querier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return q.conn(ctx).Exec(ctx, sql, args...)
}

func (q *Querier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return q.conn(ctx).Query(ctx, sql, args...)
}

func (q *Querier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.conn(ctx).QueryRow(ctx, sql, args...)
}

func (q *Querier) conn(ctx context.Context) pgxv5.Tr {
	return q.txFromCtx.DefaultTrOrDB(ctx, q.db)
}
