package ledger

import (
	"fmt"

	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/wallet"
	"github.com/certchain/certchain/pkg/did"
	"github.com/certchain/certchain/pkg/fingerprint"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func validateDigest(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := fingerprint.ParseDigest(s); err != nil {
		return err
	}
	return nil
}

func validateContentID(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := content.NormalizeCID(s); err != nil {
		return fmt.Errorf("must be a valid CID")
	}
	return nil
}

func ValidateMintRequest(req MintRequest) error {
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Issuer, validation.Required, validation.By(did.ValidateDID)),
		validation.Field(&req.IssuerAccount, validation.Required, validation.By(wallet.ValidateAccount)),
		validation.Field(&req.Recipient, validation.Required),
		validation.Field(&req.RecipientEmailHash, validation.By(validateDigest)),
		validation.Field(&req.Course, validation.Required),
		validation.Field(&req.Institution, validation.Required),
		validation.Field(&req.IssuedAt, validation.Min(int64(0))),
		validation.Field(&req.ExpiresAt, validation.Min(int64(0))),
		validation.Field(&req.ContentID, validation.By(validateContentID)),
		validation.Field(&req.ContentHash, validation.Required, validation.By(validateDigest)),
		validation.Field(&req.MetadataHash, validation.Required, validation.By(validateDigest)),
		validation.Field(&req.DocumentHash, validation.By(validateDigest)),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	if req.ExpiresAt > 0 && req.IssuedAt > 0 && req.ExpiresAt <= req.IssuedAt {
		return fmt.Errorf("expires_at must be later than issued_at%w", model.ErrInvalidParameter)
	}
	return nil
}

// ValidateBatchMintRequest checks the array lengths before anything else.
func ValidateBatchMintRequest(req BatchMintRequest) error {
	n := req.Len()
	if len(req.ContentIDs) != n || len(req.ContentHashes) != n || len(req.MetadataHashes) != n ||
		(len(req.RecipientEmailHashes) != 0 && len(req.RecipientEmailHashes) != n) ||
		(len(req.DocumentHashes) != 0 && len(req.DocumentHashes) != n) ||
		(len(req.ExpiresAt) != 0 && len(req.ExpiresAt) != n) {
		return model.ErrBatchSizeMismatch
	}
	if n == 0 {
		return fmt.Errorf("recipients: cannot be blank%w", model.ErrInvalidParameter)
	}
	for i := 0; i < n; i++ {
		if err := ValidateMintRequest(req.Entry(i)); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return nil
}

func validateTokenID(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, _, err := ParseTokenID(s); err != nil {
		return fmt.Errorf("must be in token/serial form")
	}
	return nil
}

func ValidateRevokeRequest(req RevokeRequest) error {
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Requester, validation.Required, validation.By(wallet.ValidateAccount)),
		validation.Field(&req.TokenID, validation.Required, validation.By(validateTokenID)),
		validation.Field(&req.Reason, validation.Length(0, 512)),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}

func ValidateLookupRequest(req LookupRequest) error {
	set := 0
	for _, v := range []string{req.TokenID, req.ContentHash, req.ContentID, req.DocumentHash} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of token_id, content_hash, content_id, document_hash is required%w", model.ErrInvalidParameter)
	}
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.TokenID, validation.By(validateTokenID)),
		validation.Field(&req.ContentHash, validation.By(validateDigest)),
		validation.Field(&req.ContentID, validation.By(validateContentID)),
		validation.Field(&req.DocumentHash, validation.By(validateDigest)),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}
