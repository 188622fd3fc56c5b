package storage

import (
	"context"
	"database/sql"

	"github.com/certchain/certchain/pkg/certchain/model"
)

type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
	Exec(ctx context.Context, sql string, arguments ...any) (Result, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

type Rows interface {
	Close()
	Err() error
	Next() bool
	Scan(dest ...any) error
}

type Row interface {
	Scan(dest ...any) error
}

type Result interface {
	// RowsAffected returns the number of rows affected by an
	// update, insert, or delete.
	RowsAffected() (int64, error)
}

type CreateTxOption func(*sql.TxOptions)

type TransactionInterface interface {
	CreateTx(ctx context.Context, options ...CreateTxOption) (Tx, context.Context, error)
}

func TxOptionWithWrite(write bool) CreateTxOption {
	return func(option *sql.TxOptions) {
		option.ReadOnly = !write
	}
}

func TxOptionWithIsolationLevel(level sql.IsolationLevel) CreateTxOption {
	return func(option *sql.TxOptions) {
		option.Isolation = level
	}
}

// ListCertificatesRequest filters certificate records. Empty filters match everything;
// non-empty filters are combined with AND.
type ListCertificatesRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`

	IDs                  []string `json:"ids"`
	TokenIDs             []string `json:"token_ids"`
	ContentHashes        []string `json:"content_hashes"`
	ContentIDs           []string `json:"content_ids"`
	DocumentHashes       []string `json:"document_hashes"`
	Issuers              []string `json:"issuers"`
	RecipientEmailHashes []string `json:"recipient_email_hashes"`
	Statuses             []string `json:"statuses"`
}

type ListCertificatesResponse struct {
	Total int64               `json:"total"`
	Certs []model.Certificate `json:"certs"`
}

type OutboxMsg struct {
	RecID int64
	Key   string
	Kind  int
	Msg   []byte
}

type CertificateStorage interface {
	CreateTx(ctx context.Context, options ...CreateTxOption) (Tx, context.Context, error)

	// AddCertificate stores a new version of the certificate and appends it to the history.
	AddCertificate(ctx context.Context, tx Tx, cert model.Certificate) error
	ListCertificates(ctx context.Context, tx Tx, req ListCertificatesRequest) (ListCertificatesResponse, error)

	// NextSerials reserves n consecutive serial numbers of the token collection and
	// returns the first one.
	NextSerials(ctx context.Context, tx Tx, collection string, n int) (int64, error)

	AddConsensusOutbox(ctx context.Context, tx Tx, ts int64, key string, kind int, payload []byte) error
}

type OutboxStorage interface {
	CreateTx(ctx context.Context, options ...CreateTxOption) (Tx, context.Context, error)
	GetConsensusOutbox(ctx context.Context, tx Tx, batchSize int) ([]OutboxMsg, error)
	DeleteConsensusOutbox(ctx context.Context, tx Tx, recIDs ...int64) error
}
