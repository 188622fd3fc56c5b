package memory

import (
	"context"

	"github.com/certchain/certchain/pkg/certchain/auth"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/storage"
	"github.com/samber/lo"
)

func (s *_Storage) StoreAPIKey(ctx context.Context, tx storage.Tx, key auth.APIKey) error {
	st, err := txState(tx, true)
	if err != nil {
		return err
	}
	if _, i, found := lo.FindIndexOf(st.apiKeys, func(k auth.APIKey) bool { return k.ID == key.ID }); found {
		st.apiKeys[i] = key
		return nil
	}
	st.apiKeys = append(st.apiKeys, key)
	return nil
}

func (s *_Storage) GetAPIKey(ctx context.Context, tx storage.Tx, id string) (auth.APIKey, error) {
	st, err := txState(tx, false)
	if err != nil {
		return auth.APIKey{}, err
	}
	key, found := lo.Find(st.apiKeys, func(k auth.APIKey) bool { return k.ID == id })
	if !found {
		return auth.APIKey{}, model.ErrDataNotFound
	}
	return key, nil
}

func (s *_Storage) ListAPIKeys(ctx context.Context, tx storage.Tx, req auth.ListAPIKeysRequest) (auth.ListAPIKeysResult, error) {
	st, err := txState(tx, false)
	if err != nil {
		return auth.ListAPIKeysResult{}, err
	}
	filtered := lo.Filter(st.apiKeys, func(k auth.APIKey, _ int) bool {
		return (len(req.Issuers) == 0 || lo.Contains(req.Issuers, k.Issuer)) &&
			(len(req.Statuses) == 0 || lo.Contains(req.Statuses, string(k.Status)))
	})
	result := auth.ListAPIKeysResult{Total: int64(len(filtered))}
	if req.Offset < len(filtered) {
		end := min(len(filtered), req.Offset+req.Limit)
		result.Keys = append(result.Keys, filtered[req.Offset:end]...)
	}
	return result, nil
}
