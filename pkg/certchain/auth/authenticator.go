package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/storage"
)

type CreateAPIKeyRequest struct {
	Requester string `json:"requester"`
	Issuer    string `json:"issuer"`
	Account   string `json:"account"`
}

type RevokeAPIKeyRequest struct {
	Requester string `json:"requester"`
	ID        string `json:"id"`
}

type ListAPIKeysRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`

	Issuers  []string `json:"issuers"`
	Statuses []string `json:"statuses"`
}

type ListAPIKeysResult struct {
	Total int64    `json:"total"`
	Keys  []APIKey `json:"keys"`
}

type APIKeyStorage interface {
	CreateTx(ctx context.Context, options ...storage.CreateTxOption) (storage.Tx, context.Context, error)
	StoreAPIKey(ctx context.Context, tx storage.Tx, key APIKey) error
	GetAPIKey(ctx context.Context, tx storage.Tx, id string) (APIKey, error)
	ListAPIKeys(ctx context.Context, tx storage.Tx, req ListAPIKeysRequest) (ListAPIKeysResult, error)
}

type APIKeyAuthenticator interface {
	CreateAPIKey(ctx context.Context, ts int64, req CreateAPIKeyRequest) (APIKey, APIKeyString, error)
	RevokeAPIKey(ctx context.Context, ts int64, req RevokeAPIKeyRequest) error
	ListAPIKeys(ctx context.Context, req ListAPIKeysRequest) (ListAPIKeysResult, error)
	Authenticate(ctx context.Context, key APIKeyString) (APIKey, error)
}

type _APIKeyAuthenticator struct {
	storage APIKeyStorage
}

func NewAPIKeyAuthenticator(storage APIKeyStorage) APIKeyAuthenticator {
	return &_APIKeyAuthenticator{storage: storage}
}

func (a *_APIKeyAuthenticator) CreateAPIKey(ctx context.Context, ts int64, req CreateAPIKeyRequest) (APIKey, APIKeyString, error) {
	if err := ValidateCreateAPIKeyRequest(req); err != nil {
		return APIKey{}, "", err
	}

	keyString, err := NewAPIKeyString()
	if err != nil {
		return APIKey{}, "", err
	}
	id, _ := keyString.ID()
	hashed, err := keyString.Hash()
	if err != nil {
		return APIKey{}, "", err
	}

	key := APIKey{
		ID:         id,
		HashString: hashed,
		Version:    1,
		Issuer:     req.Issuer,
		Account:    req.Account,
		Status:     APIKeyStatusActive,
		CreatedAt:  ts,
		CreatedBy:  req.Requester,
		UpdatedAt:  ts,
		UpdatedBy:  req.Requester,
	}

	tx, ctx, err := a.storage.CreateTx(ctx, storage.TxOptionWithWrite(true), storage.TxOptionWithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return APIKey{}, "", err
	}
	defer tx.Rollback(ctx)

	if err := a.storage.StoreAPIKey(ctx, tx, key); err != nil {
		return APIKey{}, "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return APIKey{}, "", err
	}

	return key, keyString, nil
}

func (a *_APIKeyAuthenticator) RevokeAPIKey(ctx context.Context, ts int64, req RevokeAPIKeyRequest) error {
	if err := ValidateRevokeAPIKeyRequest(req); err != nil {
		return err
	}

	tx, ctx, err := a.storage.CreateTx(ctx, storage.TxOptionWithWrite(true), storage.TxOptionWithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	key, err := a.storage.GetAPIKey(ctx, tx, req.ID)
	if errors.Is(err, model.ErrDataNotFound) {
		return ErrAPIKeyNotFound
	} else if err != nil {
		return err
	}
	if key.Status == APIKeyStatusRevoked {
		return nil
	}

	key.Status = APIKeyStatusRevoked
	key.Version += 1
	key.UpdatedAt = ts
	key.UpdatedBy = req.Requester
	if err := a.storage.StoreAPIKey(ctx, tx, key); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (a *_APIKeyAuthenticator) ListAPIKeys(ctx context.Context, req ListAPIKeysRequest) (ListAPIKeysResult, error) {
	if err := ValidateListAPIKeysRequest(req); err != nil {
		return ListAPIKeysResult{}, err
	}

	tx, ctx, err := a.storage.CreateTx(ctx)
	if err != nil {
		return ListAPIKeysResult{}, err
	}
	defer tx.Rollback(ctx)

	return a.storage.ListAPIKeys(ctx, tx, req)
}

func (a *_APIKeyAuthenticator) Authenticate(ctx context.Context, keyString APIKeyString) (APIKey, error) {
	id, err := keyString.ID()
	if err != nil {
		return APIKey{}, err
	}

	tx, ctx, err := a.storage.CreateTx(ctx)
	if err != nil {
		return APIKey{}, err
	}
	defer tx.Rollback(ctx)

	key, err := a.storage.GetAPIKey(ctx, tx, id)
	if errors.Is(err, model.ErrDataNotFound) {
		return APIKey{}, ErrAPIKeyNotFound
	} else if err != nil {
		return APIKey{}, err
	}
	if !key.Active() {
		return APIKey{}, ErrRevokedAPIKey
	}
	if err := VerifyAPIKeyString(keyString, key.HashString); err != nil {
		return APIKey{}, err
	}

	return key, nil
}
