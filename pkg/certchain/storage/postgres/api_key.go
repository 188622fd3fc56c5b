package postgres

import (
	"context"
	"errors"

	"github.com/certchain/certchain/pkg/certchain/auth"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/storage"
	"github.com/jackc/pgx/v5"
)

func (s *_Storage) StoreAPIKey(ctx context.Context, tx storage.Tx, key auth.APIKey) error {
	query := `
WITH new_data AS (
	INSERT INTO api_key (id, "version", issuer, status, created_at, updated_at, api_key)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (id) DO UPDATE SET
		"version" = excluded."version",
		issuer = excluded.issuer,
		status = excluded.status,
		updated_at = excluded.updated_at,
		api_key = excluded.api_key
	RETURNING id, "version", updated_at, api_key
)
INSERT INTO api_key_history (id, "version", created_at, api_key)
SELECT * FROM new_data`

	_, err := tx.Exec(ctx, query, key.ID, key.Version, key.Issuer, key.Status, key.CreatedAt, key.UpdatedAt, key)
	if err != nil {
		return err
	}

	return nil
}

func (s *_Storage) GetAPIKey(ctx context.Context, tx storage.Tx, id string) (auth.APIKey, error) {
	query := `SELECT api_key FROM api_key WHERE id = $1`
	key := auth.APIKey{}
	if err := tx.QueryRow(ctx, query, id).Scan(&key); errors.Is(err, pgx.ErrNoRows) {
		return auth.APIKey{}, model.ErrDataNotFound
	} else if err != nil {
		return auth.APIKey{}, err
	}

	return key, nil
}

func (s *_Storage) ListAPIKeys(ctx context.Context, tx storage.Tx, req auth.ListAPIKeysRequest) (auth.ListAPIKeysResult, error) {
	query := `
SELECT count(*) OVER (), api_key
FROM api_key
WHERE
	(COALESCE(array_length($3::TEXT[], 1), 0) = 0 OR issuer = ANY($3)) AND
	(COALESCE(array_length($4::TEXT[], 1), 0) = 0 OR status = ANY($4))
ORDER BY rec_id ASC
OFFSET $1 LIMIT $2`

	rows, err := tx.Query(ctx, query, req.Offset, req.Limit, req.Issuers, req.Statuses)
	if err != nil {
		return auth.ListAPIKeysResult{}, err
	}
	defer rows.Close()

	result := auth.ListAPIKeysResult{}
	for rows.Next() {
		key := auth.APIKey{}
		if err := rows.Scan(&result.Total, &key); err != nil {
			return auth.ListAPIKeysResult{}, err
		}
		result.Keys = append(result.Keys, key)
	}
	if err := rows.Err(); err != nil {
		return auth.ListAPIKeysResult{}, err
	}

	return result, nil
}
