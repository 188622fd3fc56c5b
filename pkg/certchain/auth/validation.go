package auth

import (
	"errors"
	"fmt"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/wallet"
	"github.com/certchain/certchain/pkg/did"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
}

// issuerOwnsAccount rejects a did:hedera issuer whose DID names a different
// account than the one the key will mint from.
func issuerOwnsAccount(account string) validation.RuleFunc {
	return func(value interface{}) error {
		issuer, err := did.Parse(value.(string))
		if err != nil || issuer.Method() != did.MethodHedera {
			return nil
		}
		_, owner, err := issuer.Account()
		if err != nil {
			return err
		}
		if owner != account {
			return errors.New("must name the account " + account)
		}
		return nil
	}
}

func ValidateCreateAPIKeyRequest(req CreateAPIKeyRequest) error {
	return invalid(validation.ValidateStruct(&req,
		validation.Field(&req.Requester, validation.Required),
		validation.Field(&req.Account, validation.Required, validation.By(wallet.ValidateAccount)),
		validation.Field(&req.Issuer, validation.Required, validation.By(did.ValidateDID), validation.By(issuerOwnsAccount(req.Account))),
	))
}

func ValidateRevokeAPIKeyRequest(req RevokeAPIKeyRequest) error {
	return invalid(validation.ValidateStruct(&req,
		validation.Field(&req.Requester, validation.Required),
		validation.Field(&req.ID, validation.Required),
	))
}

func ValidateListAPIKeysRequest(req ListAPIKeysRequest) error {
	return invalid(validation.ValidateStruct(&req,
		validation.Field(&req.Offset, validation.Min(0)),
		validation.Field(&req.Limit, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&req.Statuses, validation.Each(validation.In(string(APIKeyStatusActive), string(APIKeyStatusRevoked)))),
	))
}
