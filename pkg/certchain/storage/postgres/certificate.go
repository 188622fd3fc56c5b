package postgres

import (
	"context"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/storage"
)

func (s *_Storage) AddCertificate(ctx context.Context, tx storage.Tx, cert model.Certificate) error {
	query := `
WITH ins AS (
	INSERT INTO certificate (id, version, token_id, issuer, status, content_hash, content_id, document_hash, recipient_email_hash, created_at, updated_at, cert)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (id) DO UPDATE SET
		version = excluded.version,
		status = excluded.status,
		updated_at = excluded.updated_at,
		cert = excluded.cert
	RETURNING id, version, updated_at, cert
)
INSERT INTO certificate_history (id, version, created_at, cert)
SELECT * FROM ins
`
	_, err := tx.Exec(
		ctx,
		query,
		cert.ID,
		cert.Version,
		cert.TokenID,
		cert.Issuer,
		cert.Status,
		cert.ContentHash,
		cert.ContentID,
		cert.DocumentHash,
		cert.RecipientEmailHash,
		cert.IssuedAt,
		max(cert.IssuedAt, cert.RevokedAt),
		cert,
	)
	if err != nil {
		return err
	}
	return nil
}

func (s *_Storage) ListCertificates(ctx context.Context, tx storage.Tx, req storage.ListCertificatesRequest) (storage.ListCertificatesResponse, error) {
	query := `
WITH filtered AS (
	SELECT rec_id, cert FROM certificate
	WHERE
		(COALESCE(ARRAY_LENGTH($3::TEXT[], 1), 0) = 0 OR id = ANY($3)) AND
		(COALESCE(ARRAY_LENGTH($4::TEXT[], 1), 0) = 0 OR token_id = ANY($4)) AND
		(COALESCE(ARRAY_LENGTH($5::TEXT[], 1), 0) = 0 OR content_hash = ANY($5)) AND
		(COALESCE(ARRAY_LENGTH($6::TEXT[], 1), 0) = 0 OR content_id = ANY($6)) AND
		(COALESCE(ARRAY_LENGTH($7::TEXT[], 1), 0) = 0 OR issuer = ANY($7)) AND
		(COALESCE(ARRAY_LENGTH($8::TEXT[], 1), 0) = 0 OR recipient_email_hash = ANY($8)) AND
		(COALESCE(ARRAY_LENGTH($9::TEXT[], 1), 0) = 0 OR status = ANY($9)) AND
		(COALESCE(ARRAY_LENGTH($10::TEXT[], 1), 0) = 0 OR document_hash = ANY($10))
)
, paged AS (
	SELECT cert FROM filtered
	ORDER BY rec_id ASC
	OFFSET $1 LIMIT $2
)
, total AS (
	SELECT COUNT(*) AS total FROM filtered
)
SELECT total, cert FROM paged FULL JOIN total ON FALSE
`
	rows, err := tx.Query(
		ctx,
		query,
		req.Offset,
		req.Limit,
		req.IDs,
		req.TokenIDs,
		req.ContentHashes,
		req.ContentIDs,
		req.Issuers,
		req.RecipientEmailHashes,
		req.Statuses,
		req.DocumentHashes,
	)
	if err != nil {
		return storage.ListCertificatesResponse{}, err
	}
	defer rows.Close()

	result := storage.ListCertificatesResponse{}
	for rows.Next() {
		var total *int64
		var cert *model.Certificate
		if err := rows.Scan(&total, &cert); err != nil {
			return storage.ListCertificatesResponse{}, err
		}
		if total != nil {
			result.Total = *total
		}
		if cert != nil {
			result.Certs = append(result.Certs, *cert)
		}
	}
	if err := rows.Err(); err != nil {
		return storage.ListCertificatesResponse{}, err
	}

	return result, nil
}

func (s *_Storage) NextSerials(ctx context.Context, tx storage.Tx, collection string, n int) (int64, error) {
	query := `
INSERT INTO token_serial (collection, serial) VALUES ($1, $2)
ON CONFLICT (collection) DO UPDATE SET serial = token_serial.serial + excluded.serial
RETURNING serial`

	var last int64
	if err := tx.QueryRow(ctx, query, collection, n).Scan(&last); err != nil {
		return 0, err
	}
	return last - int64(n) + 1, nil
}
