package verification

import (
	"fmt"
	"strings"

	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/ledger"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/fingerprint"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// MaxFileSize bounds the file accepted by the file method.
const MaxFileSize = 20 << 20

var methods = []interface{}{
	model.VerifyByTokenID,
	model.VerifyByHash,
	model.VerifyByContentID,
	model.VerifyByFile,
}

func ValidateRequest(req Request) error {
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Method, validation.Required, validation.In(methods...)),
		validation.Field(&req.TokenID, validation.When(req.Method == model.VerifyByTokenID, validation.Required)),
		validation.Field(&req.Hash, validation.When(req.Method == model.VerifyByHash, validation.Required)),
		validation.Field(&req.ContentID, validation.When(req.Method == model.VerifyByContentID, validation.Required)),
		validation.Field(&req.File, validation.When(req.Method == model.VerifyByFile, validation.Required), validation.Length(0, MaxFileSize)),
	); err != nil {
		return fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return nil
}

// resolve turns the identifier selected by the method into a ledger lookup.
func resolve(req Request) (resolved, error) {
	if err := ValidateRequest(req); err != nil {
		return resolved{}, err
	}

	r := resolved{}
	if len(req.File) > 0 {
		r.file = fingerprint.HashBytes(req.File)
	}
	switch req.Method {
	case model.VerifyByTokenID:
		r.identifier = strings.TrimSpace(req.TokenID)
		r.lookup.TokenID = r.identifier
	case model.VerifyByHash:
		d, err := fingerprint.ParseDigest(req.Hash)
		if err != nil {
			return resolved{}, fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
		}
		r.identifier = d.String()
		r.lookup.ContentHash = r.identifier
	case model.VerifyByContentID:
		id, err := content.NormalizeCID(strings.TrimSpace(req.ContentID))
		if err != nil {
			return resolved{}, err
		}
		r.identifier = id
		r.lookup.ContentID = id
	case model.VerifyByFile:
		r.identifier = r.file.String()
		r.lookup.DocumentHash = r.identifier
	}

	if err := ledger.ValidateLookupRequest(r.lookup); err != nil {
		return resolved{}, err
	}
	return r, nil
}
