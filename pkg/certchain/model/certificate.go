package model

type CertStatus string

const (
	CertStatusActive  CertStatus = "active"
	CertStatusRevoked CertStatus = "revoked"
)

// Certificate is the ledger record of an issued credential. A record is created
// on mint and changes only when it is revoked; every change bumps Version.
type Certificate struct {
	ID      string     `json:"id"`       // Unique ID of the record.
	TokenID string     `json:"token_id"` // Ledger token identifier in [token]/[serial] form.
	Serial  int64      `json:"serial"`   // Serial number of the token within the collection.
	Version int64      `json:"version"`  // Version of the record.
	Status  CertStatus `json:"status"`   // Status of the record.

	Issuer             string `json:"issuer"`                         // Issuer identity (DID).
	IssuerAccount      string `json:"issuer_account"`                 // Ledger account that minted the record.
	Recipient          string `json:"recipient"`                      // Recipient display name or account.
	RecipientEmailHash string `json:"recipient_email_hash,omitempty"` // Keccak-256 of the recipient email.
	Course             string `json:"course"`                         // Course or credential name.
	Institution        string `json:"institution"`                    // Institution name.

	IssuedAt  int64 `json:"issued_at"`            // Unix Time (in second) when the certificate was issued.
	ExpiresAt int64 `json:"expires_at,omitempty"` // Unix Time (in second) when the certificate expires. 0 means never.

	ContentHash   string `json:"content_hash"`            // Digest of the metadata document referenced by ContentID.
	MetadataHash  string `json:"metadata_hash"`           // Digest of the declared fields.
	DocumentHash  string `json:"document_hash,omitempty"` // Digest of the certificate file the metadata points at.
	ContentID     string `json:"content_id,omitempty"`    // Content identifier (CID) of the metadata document.
	TransactionID string `json:"transaction_id"`          // Ledger transaction that minted the record.

	RevokedAt     int64  `json:"revoked_at,omitempty"`     // Unix Time (in second) when the certificate was revoked.
	RevokedBy     string `json:"revoked_by,omitempty"`     // Account that revoked the certificate.
	RevokeReason  string `json:"revoke_reason,omitempty"`  // Free text reason.
	RevokeTxnID   string `json:"revoke_txn_id,omitempty"`  // Ledger transaction that revoked the record.
	AttestationID string `json:"attestation_id,omitempty"` // Consensus message carrying the signed issuance attestation.
}

func (c Certificate) IsRevoked() bool {
	return c.Status == CertStatusRevoked
}

func (c Certificate) IsExpired(now int64) bool {
	return c.ExpiresAt > 0 && now >= c.ExpiresAt
}
