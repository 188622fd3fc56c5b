package issuance

import (
	"fmt"

	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/ledger"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/wallet"
	"github.com/certchain/certchain/pkg/did"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// MaxDocumentSize bounds the certificate file accepted inline.
const MaxDocumentSize = 10 << 20

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

func ValidateIssueRequest(req IssueRequest) error {
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Issuer, validation.Required, validation.By(did.ValidateDID)),
		validation.Field(&req.IssuerAccount, validation.Required, validation.By(wallet.ValidateAccount)),
		validation.Field(&req.Recipient, validation.Required, validation.Length(1, 256)),
		validation.Field(&req.RecipientEmail, is.EmailFormat),
		validation.Field(&req.Course, validation.Required, validation.Length(1, 256)),
		validation.Field(&req.Institution, validation.Required, validation.Length(1, 256)),
		validation.Field(&req.IssuedAt, validation.Min(int64(0))),
		validation.Field(&req.ExpiresAt, validation.Min(int64(0))),
		validation.Field(&req.Document, validation.Length(0, MaxDocumentSize)),
		validation.Field(&req.DocumentCID, validation.By(validateContentID)),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	if len(req.Document) > 0 && req.DocumentCID != "" {
		return fmt.Errorf("document and document_cid are exclusive%w", model.ErrInvalidParameter)
	}
	if req.ExpiresAt > 0 && req.IssuedAt > 0 && req.ExpiresAt <= req.IssuedAt {
		return fmt.Errorf("expires_at must be later than issued_at%w", model.ErrInvalidParameter)
	}
	return nil
}

// ValidateBatchIssueRequest checks the array lengths before anything else, so
// a mismatched batch never reaches the content store or the ledger.
func ValidateBatchIssueRequest(req BatchIssueRequest) error {
	n := len(req.Recipients)
	if len(req.DocumentCIDs) != n ||
		(len(req.RecipientEmails) != 0 && len(req.RecipientEmails) != n) ||
		(len(req.ExpiresAt) != 0 && len(req.ExpiresAt) != n) {
		return fmt.Errorf("%d recipients, %d document_cids, %d recipient_emails, %d expires_at: %w",
			n, len(req.DocumentCIDs), len(req.RecipientEmails), len(req.ExpiresAt), model.ErrBatchSizeMismatch)
	}

	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Issuer, validation.Required, validation.By(did.ValidateDID)),
		validation.Field(&req.IssuerAccount, validation.Required, validation.By(wallet.ValidateAccount)),
		validation.Field(&req.Course, validation.Required, validation.Length(1, 256)),
		validation.Field(&req.Institution, validation.Required, validation.Length(1, 256)),
		validation.Field(&req.IssuedAt, validation.Min(int64(0))),
		validation.Field(&req.Recipients, validation.Required, validation.Each(validation.Required, validation.Length(1, 256))),
		validation.Field(&req.RecipientEmails, validation.Each(is.EmailFormat)),
		validation.Field(&req.DocumentCIDs, validation.Each(validation.Required, validation.By(validateContentID))),
		validation.Field(&req.ExpiresAt, validation.Each(validation.Min(int64(0)))),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}

func ValidateRevokeRequest(req RevokeRequest) error {
	return ledger.ValidateRevokeRequest(ledger.RevokeRequest{
		Requester: req.Requester,
		TokenID:   req.TokenID,
		Reason:    req.Reason,
	})
}
