package model

type VerificationMethod string
type VerificationReason string
type CheckName string
type CheckStatus string

const (
	VerifyByTokenID   VerificationMethod = "token_id"
	VerifyByHash      VerificationMethod = "hash"
	VerifyByContentID VerificationMethod = "content_id"
	VerifyByFile      VerificationMethod = "file"

	ReasonNone               VerificationReason = ""
	ReasonNotFound           VerificationReason = "not found"
	ReasonContentUnavailable VerificationReason = "content unavailable"
	ReasonTampered           VerificationReason = "tampered"
	ReasonRevoked            VerificationReason = "revoked"
	ReasonExpired            VerificationReason = "expired"

	CheckLedgerRecord       CheckName = "ledger_record"
	CheckContentRetrievable CheckName = "content_retrievable"
	CheckHashMatch          CheckName = "hash_match"
	CheckNotRevoked         CheckName = "not_revoked"
	CheckNotExpired         CheckName = "not_expired"

	CheckPassed  CheckStatus = "passed"
	CheckFailed  CheckStatus = "failed"
	CheckSkipped CheckStatus = "skipped"
)

// ReasonPrecedence orders failure reasons; the first failing one becomes the
// overall reason of a result.
var ReasonPrecedence = []VerificationReason{
	ReasonNotFound,
	ReasonRevoked,
	ReasonExpired,
	ReasonTampered,
	ReasonContentUnavailable,
}

type Check struct {
	Name   CheckName          `json:"name"`
	Status CheckStatus        `json:"status"`
	Reason VerificationReason `json:"reason,omitempty"`
	Detail string             `json:"detail,omitempty"`
}

type VerificationResult struct {
	Verified    bool               `json:"verified"`
	Reason      VerificationReason `json:"reason,omitempty"`
	Method      VerificationMethod `json:"method"`
	Identifier  string             `json:"identifier"`
	Certificate *Certificate       `json:"certificate,omitempty"`
	Checks      []Check            `json:"checks"`
	CheckedAt   int64              `json:"checked_at"`
}

func (r VerificationResult) Check(name CheckName) (Check, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return Check{}, false
}
