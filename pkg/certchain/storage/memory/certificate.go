package memory

import (
	"context"
	"fmt"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/storage"
	"github.com/samber/lo"
)

func (s *_Storage) AddCertificate(ctx context.Context, tx storage.Tx, cert model.Certificate) error {
	st, err := txState(tx, true)
	if err != nil {
		return err
	}

	idx := -1
	for i, c := range st.certs {
		if c.ID == cert.ID {
			idx = i
			continue
		}
		if c.TokenID == cert.TokenID || c.ContentHash == cert.ContentHash {
			return fmt.Errorf("unique constraint violated by %q", cert.ID)
		}
	}
	if idx >= 0 {
		st.certs[idx] = cert
	} else {
		st.certs = append(st.certs, cert)
	}
	st.history = append(st.history, cert)
	return nil
}

func (s *_Storage) ListCertificates(ctx context.Context, tx storage.Tx, req storage.ListCertificatesRequest) (storage.ListCertificatesResponse, error) {
	st, err := txState(tx, false)
	if err != nil {
		return storage.ListCertificatesResponse{}, err
	}

	match := func(filter []string, v string) bool {
		return len(filter) == 0 || lo.Contains(filter, v)
	}
	filtered := lo.Filter(st.certs, func(c model.Certificate, _ int) bool {
		return match(req.IDs, c.ID) &&
			match(req.TokenIDs, c.TokenID) &&
			match(req.ContentHashes, c.ContentHash) &&
			match(req.ContentIDs, c.ContentID) &&
			match(req.DocumentHashes, c.DocumentHash) &&
			match(req.Issuers, c.Issuer) &&
			match(req.RecipientEmailHashes, c.RecipientEmailHash) &&
			match(req.Statuses, string(c.Status))
	})

	result := storage.ListCertificatesResponse{Total: int64(len(filtered))}
	if req.Offset < len(filtered) {
		end := len(filtered)
		if req.Limit > 0 {
			end = min(end, req.Offset+req.Limit)
		}
		result.Certs = append(result.Certs, filtered[req.Offset:end]...)
	}
	return result, nil
}

func (s *_Storage) NextSerials(ctx context.Context, tx storage.Tx, collection string, n int) (int64, error) {
	st, err := txState(tx, true)
	if err != nil {
		return 0, err
	}
	first := st.serials[collection] + 1
	st.serials[collection] += int64(n)
	return first, nil
}

func (s *_Storage) AddConsensusOutbox(ctx context.Context, tx storage.Tx, ts int64, key string, kind int, payload []byte) error {
	st, err := txState(tx, true)
	if err != nil {
		return err
	}
	st.nextRec++
	st.outbox = append(st.outbox, storage.OutboxMsg{RecID: st.nextRec, Key: key, Kind: kind, Msg: payload})
	return nil
}

func (s *_Storage) GetConsensusOutbox(ctx context.Context, tx storage.Tx, batchSize int) ([]storage.OutboxMsg, error) {
	st, err := txState(tx, false)
	if err != nil {
		return nil, err
	}
	n := min(batchSize, len(st.outbox))
	return append([]storage.OutboxMsg(nil), st.outbox[:n]...), nil
}

func (s *_Storage) DeleteConsensusOutbox(ctx context.Context, tx storage.Tx, recIDs ...int64) error {
	if len(recIDs) == 0 {
		return nil
	}
	st, err := txState(tx, true)
	if err != nil {
		return err
	}
	st.outbox = lo.Reject(st.outbox, func(m storage.OutboxMsg, _ int) bool { return lo.Contains(recIDs, m.RecID) })
	return nil
}
