// Package memory is an in-process storage backend used by the dev server and
// the end-to-end tests. Write transactions are serialised and applied on commit.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/certchain/certchain/pkg/certchain/auth"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/storage"
)

var ErrRawSQL = errors.New("memory storage does not execute SQL")
var ErrReadOnlyTx = errors.New("write on read-only transaction")
var ErrTxClosed = errors.New("transaction already closed")

type _State struct {
	certs   []model.Certificate // ordered by insertion, current version only
	history []model.Certificate
	serials map[string]int64
	outbox  []storage.OutboxMsg
	nextRec int64
	apiKeys []auth.APIKey
}

func (st *_State) clone() *_State {
	c := &_State{
		certs:   append([]model.Certificate(nil), st.certs...),
		history: append([]model.Certificate(nil), st.history...),
		serials: make(map[string]int64, len(st.serials)),
		outbox:  append([]storage.OutboxMsg(nil), st.outbox...),
		nextRec: st.nextRec,
		apiKeys: append([]auth.APIKey(nil), st.apiKeys...),
	}
	for k, v := range st.serials {
		c.serials[k] = v
	}
	return c
}

type _Storage struct {
	mu    sync.RWMutex
	state *_State
}

type _Tx struct {
	s      *_Storage
	state  *_State
	write  bool
	closed bool
}

func NewStorage() *_Storage {
	return &_Storage{state: &_State{serials: map[string]int64{}}}
}

func (s *_Storage) CreateTx(ctx context.Context, options ...storage.CreateTxOption) (storage.Tx, context.Context, error) {
	opt := sql.TxOptions{}
	for _, o := range options {
		o(&opt)
	}

	tx := &_Tx{s: s, write: !opt.ReadOnly}
	if tx.write {
		s.mu.Lock()
		tx.state = s.state.clone()
	} else {
		s.mu.RLock()
		tx.state = s.state
	}
	return tx, ctx, nil
}

func (tx *_Tx) Commit(ctx context.Context) error {
	if tx.closed {
		return ErrTxClosed
	}
	tx.closed = true
	if tx.write {
		tx.s.state = tx.state
		tx.s.mu.Unlock()
	} else {
		tx.s.mu.RUnlock()
	}
	return nil
}

func (tx *_Tx) Rollback(ctx context.Context) error {
	if tx.closed {
		return nil
	}
	tx.closed = true
	if tx.write {
		tx.s.mu.Unlock()
	} else {
		tx.s.mu.RUnlock()
	}
	return nil
}

func (tx *_Tx) Exec(ctx context.Context, sql string, arguments ...any) (storage.Result, error) {
	return nil, ErrRawSQL
}

func (tx *_Tx) Query(ctx context.Context, sql string, args ...any) (storage.Rows, error) {
	return nil, ErrRawSQL
}

func (tx *_Tx) QueryRow(ctx context.Context, sql string, args ...any) storage.Row {
	return errRow{}
}

type errRow struct{}

func (errRow) Scan(dest ...any) error { return ErrRawSQL }

func txState(tx storage.Tx, write bool) (*_State, error) {
	t, ok := tx.(*_Tx)
	if !ok {
		return nil, errors.New("foreign transaction")
	}
	if t.closed {
		return nil, ErrTxClosed
	}
	if write && !t.write {
		return nil, ErrReadOnlyTx
	}
	return t.state, nil
}
