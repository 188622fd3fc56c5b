package postgres

import (
	"context"

	"github.com/certchain/certchain/pkg/certchain/storage"
)

// Ledger events waiting to be relayed to the consensus topic. Rows are claimed
// with SKIP LOCKED so that several servers can drain the same table.

func (s *_Storage) AddConsensusOutbox(ctx context.Context, tx storage.Tx, ts int64, key string, kind int, payload []byte) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO consensus_outbox (key, kind, payload, created_at) VALUES ($1, $2, $3, $4)`,
		key, kind, payload, ts)
	return err
}

func (s *_Storage) GetConsensusOutbox(ctx context.Context, tx storage.Tx, batchSize int) ([]storage.OutboxMsg, error) {
	rows, err := tx.Query(ctx, `
SELECT rec_id, key, kind, payload
FROM consensus_outbox
ORDER BY rec_id
LIMIT $1
FOR UPDATE SKIP LOCKED`, batchSize)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []storage.OutboxMsg
	for rows.Next() {
		var m storage.OutboxMsg
		if err := rows.Scan(&m.RecID, &m.Key, &m.Kind, &m.Msg); err != nil {
			return nil, err
		}
		pending = append(pending, m)
	}
	return pending, rows.Err()
}

func (s *_Storage) DeleteConsensusOutbox(ctx context.Context, tx storage.Tx, recIDs ...int64) error {
	if len(recIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `DELETE FROM consensus_outbox WHERE rec_id = ANY($1)`, recIDs)
	return err
}
