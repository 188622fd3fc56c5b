// Package postgres keeps certificates, the consensus outbox and issuer API
// keys in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/storage"
	"github.com/certchain/certchain/pkg/util"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

const uniqueViolation = "23505"

var isoLevels = map[sql.IsolationLevel]pgx.TxIsoLevel{
	sql.LevelReadUncommitted: pgx.ReadUncommitted,
	sql.LevelRepeatableRead:  pgx.RepeatableRead,
	sql.LevelSerializable:    pgx.Serializable,
	sql.LevelLinearizable:    pgx.Serializable,
}

type _Storage struct {
	pool *pgxpool.Pool
}

func NewStorageWithPool(pool *pgxpool.Pool) *_Storage {
	return &_Storage{pool: pool}
}

func NewStorageWithConfig(config util.PostgresDatabaseConfig) (*_Storage, error) {
	pool, err := util.NewPostgresDBPool(config)
	if err != nil {
		return nil, err
	}
	return NewStorageWithPool(pool), nil
}

func (s *_Storage) Close() {
	s.pool.Close()
}

func (s *_Storage) CreateTx(ctx context.Context, options ...storage.CreateTxOption) (storage.Tx, context.Context, error) {
	opts := sql.TxOptions{}
	for _, opt := range options {
		opt(&opts)
	}

	pgOpts := pgx.TxOptions{AccessMode: pgx.ReadWrite, IsoLevel: pgx.ReadCommitted}
	if opts.ReadOnly {
		pgOpts.AccessMode = pgx.ReadOnly
	}
	if level, ok := isoLevels[opts.Isolation]; ok {
		pgOpts.IsoLevel = level
	}

	tx, err := s.pool.BeginTx(ctx, pgOpts)
	if err != nil {
		logrus.Errorf("postgres: begin %s transaction: %v", pgOpts.AccessMode, err)
		return nil, ctx, err
	}
	return pgTx{tx}, ctx, nil
}

// pgTx adapts pgx.Tx to storage.Tx. Unique violations surface as
// model.ErrWrongStatus so callers can tell a duplicate from an outage.
type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) Commit(ctx context.Context) error { return t.tx.Commit(ctx) }
func (t pgTx) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

func (t pgTx) Exec(ctx context.Context, query string, args ...any) (storage.Result, error) {
	tag, err := t.tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	return pgResult(tag), nil
}

func (t pgTx) Query(ctx context.Context, query string, args ...any) (storage.Rows, error) {
	rows, err := t.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err)
	}
	return pgRows{rows}, nil
}

func (t pgTx) QueryRow(ctx context.Context, query string, args ...any) storage.Row {
	return t.tx.QueryRow(ctx, query, args...)
}

type pgResult pgconn.CommandTag

func (r pgResult) RowsAffected() (int64, error) {
	return pgconn.CommandTag(r).RowsAffected(), nil
}

// pgRows drops the pgx-specific methods storage.Rows does not expose.
type pgRows struct {
	pgx.Rows
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s already exists%w", pgErr.ConstraintName, model.ErrWrongStatus)
	}
	logrus.Errorf("postgres: %v", err)
	return err
}
