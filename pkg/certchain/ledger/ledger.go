// Package ledger records, revokes and looks up certificate records. Every
// change is anchored by a ledger transaction and announced on the consensus
// topic as a signed message.
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/certchain/certchain/pkg/certchain/model"
)

// Reader looks certificate records up. A missing record is a normal result
// (Found is false); errors are transport or storage failures.
type Reader interface {
	Lookup(ctx context.Context, req LookupRequest) (LookupResult, error)
}

type Ledger interface {
	Reader

	Mint(ctx context.Context, ts int64, req MintRequest) (Receipt, error)
	// BatchMint mints every entry in one transaction. Entries are given as
	// parallel arrays that must have the same length.
	BatchMint(ctx context.Context, ts int64, req BatchMintRequest) (BatchReceipt, error)
	// Revoke is allowed to the account that minted the record only.
	Revoke(ctx context.Context, ts int64, req RevokeRequest) (Receipt, error)
}

type MintRequest struct {
	Issuer        string `json:"issuer"`         // DID of the issuer.
	IssuerAccount string `json:"issuer_account"` // Account signing the mint.

	Recipient          string `json:"recipient"`
	RecipientEmailHash string `json:"recipient_email_hash,omitempty"`
	Course             string `json:"course"`
	Institution        string `json:"institution"`
	IssuedAt           int64  `json:"issued_at,omitempty"` // Defaults to the request time.
	ExpiresAt          int64  `json:"expires_at,omitempty"`

	ContentID    string `json:"content_id,omitempty"`
	ContentHash  string `json:"content_hash"`
	MetadataHash string `json:"metadata_hash"`
	DocumentHash string `json:"document_hash,omitempty"` // Digest of the certificate file, if any.
}

type BatchMintRequest struct {
	Issuer        string `json:"issuer"`
	IssuerAccount string `json:"issuer_account"`
	Course        string `json:"course"`
	Institution   string `json:"institution"`
	IssuedAt      int64  `json:"issued_at,omitempty"`

	Recipients           []string `json:"recipients"`
	RecipientEmailHashes []string `json:"recipient_email_hashes,omitempty"` // Empty or one per recipient.
	ContentIDs           []string `json:"content_ids"`
	ContentHashes        []string `json:"content_hashes"`
	MetadataHashes       []string `json:"metadata_hashes"`
	DocumentHashes       []string `json:"document_hashes,omitempty"` // Empty or one per recipient.
	ExpiresAt            []int64  `json:"expires_at,omitempty"`      // Empty or one per recipient.
}

func (r BatchMintRequest) Len() int {
	return len(r.Recipients)
}

// Entry returns the i-th entry as a single mint request.
func (r BatchMintRequest) Entry(i int) MintRequest {
	req := MintRequest{
		Issuer:        r.Issuer,
		IssuerAccount: r.IssuerAccount,
		Recipient:     r.Recipients[i],
		Course:        r.Course,
		Institution:   r.Institution,
		IssuedAt:      r.IssuedAt,
		ContentID:     r.ContentIDs[i],
		ContentHash:   r.ContentHashes[i],
		MetadataHash:  r.MetadataHashes[i],
	}
	if len(r.RecipientEmailHashes) > 0 {
		req.RecipientEmailHash = r.RecipientEmailHashes[i]
	}
	if len(r.DocumentHashes) > 0 {
		req.DocumentHash = r.DocumentHashes[i]
	}
	if len(r.ExpiresAt) > 0 {
		req.ExpiresAt = r.ExpiresAt[i]
	}
	return req
}

type RevokeRequest struct {
	Requester string `json:"requester"` // Account asking for the revocation.
	TokenID   string `json:"token_id"`
	Reason    string `json:"reason,omitempty"`
}

// LookupRequest names exactly one identifier. DocumentHash finds the record
// whose certificate file has that digest.
type LookupRequest struct {
	TokenID      string `json:"token_id,omitempty"`
	ContentHash  string `json:"content_hash,omitempty"`
	ContentID    string `json:"content_id,omitempty"`
	DocumentHash string `json:"document_hash,omitempty"`
}

type LookupResult struct {
	Found       bool               `json:"found"`
	Certificate *model.Certificate `json:"certificate,omitempty"`
}

type Receipt struct {
	TransactionID model.TransactionID `json:"transaction_id"`
	TokenID       string              `json:"token_id"`
	Serial        int64               `json:"serial"`
	Certificate   model.Certificate   `json:"certificate"`
}

type BatchReceipt struct {
	TransactionID model.TransactionID `json:"transaction_id"`
	Receipts      []Receipt           `json:"receipts"`
}

// FormatTokenID renders the token id of a serial in a collection.
func FormatTokenID(collection string, serial int64) string {
	return fmt.Sprintf("%s/%d", collection, serial)
}

// ParseTokenID splits a token id in collection/serial form.
func ParseTokenID(tokenID string) (string, int64, error) {
	collection, serialStr, ok := strings.Cut(strings.TrimSpace(tokenID), "/")
	if !ok || collection == "" {
		return "", 0, fmt.Errorf("invalid token id %q%w", tokenID, model.ErrInvalidParameter)
	}
	serial, err := strconv.ParseInt(serialStr, 10, 64)
	if err != nil || serial <= 0 {
		return "", 0, fmt.Errorf("invalid token serial %q%w", tokenID, model.ErrInvalidParameter)
	}
	return collection, serial, nil
}
