// Package issuance turns issuer input into pinned certificate documents and
// ledger records.
package issuance

import (
	"context"
	"fmt"
	"strings"

	otlp_util "github.com/bluexlab/otlp-util-go"
	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/ledger"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/fingerprint"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Issuer interface {
	Issue(ctx context.Context, ts int64, req IssueRequest) (IssueResult, error)
	// BatchIssue issues one certificate per recipient in a single ledger transaction.
	BatchIssue(ctx context.Context, ts int64, req BatchIssueRequest) (BatchIssueResult, error)
	Revoke(ctx context.Context, ts int64, req RevokeRequest) (ledger.Receipt, error)
	Get(ctx context.Context, tokenID string) (model.Certificate, error)
}

type IssueRequest struct {
	Issuer        string `json:"issuer"`         // Issuer DID. Filled from the API key.
	IssuerAccount string `json:"issuer_account"` // Ledger account. Filled from the API key.
	IssuerName    string `json:"issuer_name"`    // Display name of the issuer, defaults to Institution.

	Recipient      string `json:"recipient"`
	RecipientEmail string `json:"recipient_email"` // Stored only as a Keccak-256 digest.
	Course         string `json:"course"`
	Institution    string `json:"institution"`
	IssuedAt       int64  `json:"issued_at"`  // Unix Time (in second). Defaults to the request time.
	ExpiresAt      int64  `json:"expires_at"` // Unix Time (in second). 0 means never.

	Document     []byte            `json:"document,omitempty"`      // Certificate file to pin alongside the metadata.
	DocumentCID  string            `json:"document_cid,omitempty"`  // Already pinned certificate file. Exclusive with Document.
	DocumentName string            `json:"document_name,omitempty"` // File name used when pinning Document.
	Attributes   map[string]string `json:"attributes,omitempty"`    // Extra properties carried in the metadata.
}

// BatchIssueRequest holds parallel arrays; entry i of every non-empty array
// belongs to Recipients[i].
type BatchIssueRequest struct {
	Issuer        string `json:"issuer"`
	IssuerAccount string `json:"issuer_account"`
	IssuerName    string `json:"issuer_name"`

	Course      string `json:"course"`
	Institution string `json:"institution"`
	IssuedAt    int64  `json:"issued_at"`

	Recipients      []string `json:"recipients"`
	RecipientEmails []string `json:"recipient_emails"`
	DocumentCIDs    []string `json:"document_cids"`
	ExpiresAt       []int64  `json:"expires_at"`
}

type RevokeRequest struct {
	Requester string `json:"requester"` // Ledger account asking for the revocation. Filled from the API key.
	TokenID   string `json:"token_id"`
	Reason    string `json:"reason"`
}

type IssueResult struct {
	TransactionID model.TransactionID `json:"transaction_id"`
	TokenID       string              `json:"token_id"`
	Serial        int64               `json:"serial"`
	ContentID     string              `json:"content_id"`   // CID of the pinned metadata document.
	ContentHash   string              `json:"content_hash"` // Digest of the pinned metadata document.
	DocumentHash  string              `json:"document_hash,omitempty"`
	Certificate   model.Certificate   `json:"certificate"`
	Metadata      NFTMetadata         `json:"metadata"`
}

type BatchIssueResult struct {
	TransactionID model.TransactionID `json:"transaction_id"`
	Results       []IssueResult       `json:"results"`
}

type _Issuer struct {
	ledger  ledger.Ledger
	content content.Store

	issued metric.Int64Counter
}

func NewIssuer(ledger ledger.Ledger, content content.Store) Issuer {
	return &_Issuer{
		ledger:  ledger,
		content: content,
		issued:  otlp_util.NewInt64Counter("certchain.issuance.issued.count", metric.WithDescription("The total number of certificates issued")),
	}
}

// pinned is a metadata document already stored in the content store.
type pinned struct {
	metadata     NFTMetadata
	contentID    string
	contentHash  fingerprint.Digest
	emailHash    fingerprint.Digest
	documentHash fingerprint.Digest // Empty without a certificate file.
}

func (i *_Issuer) Issue(ctx context.Context, ts int64, req IssueRequest) (IssueResult, error) {
	if err := ValidateIssueRequest(req); err != nil {
		return IssueResult{}, err
	}
	if req.IssuedAt == 0 {
		req.IssuedAt = ts
	}

	ctx, span := otlp_util.Start(ctx, "issuance/issuer.Issue",
		trace.WithAttributes(attribute.String("issuer", req.Issuer)),
	)
	defer span.End()

	var doc *document
	switch {
	case len(req.Document) > 0:
		cid, err := i.content.Put(ctx, req.DocumentName, req.Document)
		if err != nil {
			return IssueResult{}, err
		}
		doc = newDocument(cid, req.Document)
	case req.DocumentCID != "":
		var err error
		if doc, err = i.pinnedDocument(ctx, req.DocumentCID); err != nil {
			return IssueResult{}, err
		}
	}

	p, err := i.pin(ctx, req.Issuer, issuerName(req.IssuerName, req.Institution), req.Recipient, req.RecipientEmail,
		req.Course, req.Institution, req.IssuedAt, req.ExpiresAt, doc, req.Attributes)
	if err != nil {
		return IssueResult{}, err
	}

	receipt, err := i.ledger.Mint(ctx, ts, ledger.MintRequest{
		Issuer:             req.Issuer,
		IssuerAccount:      req.IssuerAccount,
		Recipient:          req.Recipient,
		RecipientEmailHash: p.emailHash.String(),
		Course:             req.Course,
		Institution:        req.Institution,
		IssuedAt:           req.IssuedAt,
		ExpiresAt:          req.ExpiresAt,
		ContentID:          p.contentID,
		ContentHash:        p.contentHash.String(),
		MetadataHash:       p.metadata.Properties.MetadataHash,
		DocumentHash:       p.documentHash.String(),
	})
	if err != nil {
		return IssueResult{}, err
	}
	span.SetAttributes(attribute.String("token_id", receipt.TokenID))
	i.issued.Add(ctx, 1, metric.WithAttributes(attribute.String("issuer", req.Issuer)))

	logrus.Infof("issued certificate %s to %q (tx %s)", receipt.TokenID, req.Recipient, receipt.TransactionID)
	return newIssueResult(receipt, p), nil
}

func (i *_Issuer) BatchIssue(ctx context.Context, ts int64, req BatchIssueRequest) (BatchIssueResult, error) {
	if err := ValidateBatchIssueRequest(req); err != nil {
		return BatchIssueResult{}, err
	}
	if req.IssuedAt == 0 {
		req.IssuedAt = ts
	}

	ctx, span := otlp_util.Start(ctx, "issuance/issuer.BatchIssue",
		trace.WithAttributes(
			attribute.String("issuer", req.Issuer),
			attribute.Int("count", len(req.Recipients)),
		),
	)
	defer span.End()

	n := len(req.Recipients)
	mintReq := ledger.BatchMintRequest{
		Issuer:        req.Issuer,
		IssuerAccount: req.IssuerAccount,
		Course:        req.Course,
		Institution:   req.Institution,
		IssuedAt:      req.IssuedAt,
		Recipients:    req.Recipients,
		ExpiresAt:     req.ExpiresAt,
	}
	pins := make([]pinned, n)
	for k := 0; k < n; k++ {
		var email string
		if len(req.RecipientEmails) > 0 {
			email = req.RecipientEmails[k]
		}
		var expiresAt int64
		if len(req.ExpiresAt) > 0 {
			expiresAt = req.ExpiresAt[k]
		}
		doc, err := i.pinnedDocument(ctx, req.DocumentCIDs[k])
		if err != nil {
			return BatchIssueResult{}, fmt.Errorf("entry %d: %w", k, err)
		}

		p, err := i.pin(ctx, req.Issuer, issuerName(req.IssuerName, req.Institution), req.Recipients[k], email,
			req.Course, req.Institution, req.IssuedAt, expiresAt, doc, nil)
		if err != nil {
			return BatchIssueResult{}, fmt.Errorf("entry %d: %w", k, err)
		}
		pins[k] = p
		mintReq.ContentIDs = append(mintReq.ContentIDs, p.contentID)
		mintReq.ContentHashes = append(mintReq.ContentHashes, p.contentHash.String())
		mintReq.MetadataHashes = append(mintReq.MetadataHashes, p.metadata.Properties.MetadataHash)
		mintReq.DocumentHashes = append(mintReq.DocumentHashes, p.documentHash.String())
		if len(req.RecipientEmails) > 0 {
			mintReq.RecipientEmailHashes = append(mintReq.RecipientEmailHashes, p.emailHash.String())
		}
	}

	batch, err := i.ledger.BatchMint(ctx, ts, mintReq)
	if err != nil {
		return BatchIssueResult{}, err
	}
	i.issued.Add(ctx, int64(n), metric.WithAttributes(attribute.String("issuer", req.Issuer)))

	result := BatchIssueResult{TransactionID: batch.TransactionID, Results: make([]IssueResult, n)}
	for k, receipt := range batch.Receipts {
		result.Results[k] = newIssueResult(receipt, pins[k])
	}
	logrus.Infof("issued %d certificates in one batch (tx %s)", n, batch.TransactionID)
	return result, nil
}

func (i *_Issuer) Revoke(ctx context.Context, ts int64, req RevokeRequest) (ledger.Receipt, error) {
	if err := ValidateRevokeRequest(req); err != nil {
		return ledger.Receipt{}, err
	}

	receipt, err := i.ledger.Revoke(ctx, ts, ledger.RevokeRequest{
		Requester: req.Requester,
		TokenID:   strings.TrimSpace(req.TokenID),
		Reason:    strings.TrimSpace(req.Reason),
	})
	if err != nil {
		return ledger.Receipt{}, err
	}
	logrus.Infof("revoked certificate %s (tx %s)", receipt.TokenID, receipt.TransactionID)
	return receipt, nil
}

func (i *_Issuer) Get(ctx context.Context, tokenID string) (model.Certificate, error) {
	result, err := i.ledger.Lookup(ctx, ledger.LookupRequest{TokenID: strings.TrimSpace(tokenID)})
	if err != nil {
		return model.Certificate{}, err
	}
	if !result.Found {
		return model.Certificate{}, fmt.Errorf("certificate %s%w", tokenID, model.ErrCertificateNotFound)
	}
	return *result.Certificate, nil
}

// pin builds the metadata document of one certificate and stores it.
func (i *_Issuer) pin(
	ctx context.Context,
	issuer, creator, recipient, email, course, institution string,
	issuedAt, expiresAt int64,
	doc *document,
	attributes map[string]string,
) (pinned, error) {
	var emailHash fingerprint.Digest
	if strings.TrimSpace(email) != "" {
		emailHash = fingerprint.HashEmail(email)
	}
	fields := declaredFields(issuer, recipient, course, institution, issuedAt, expiresAt)
	meta := buildMetadata(fields, creator, emailHash, issuedAt, expiresAt, doc, attributes)

	raw, err := meta.Marshal()
	if err != nil {
		return pinned{}, err
	}
	cid, err := i.content.Put(ctx, metadataFileName(recipient, course), raw)
	if err != nil {
		return pinned{}, fmt.Errorf("pin metadata: %w", err)
	}

	p := pinned{
		metadata:    meta,
		contentID:   cid,
		contentHash: fingerprint.HashBytes(raw),
		emailHash:   emailHash,
	}
	if doc != nil {
		p.documentHash = doc.checksum
	}
	return p, nil
}

// pinnedDocument fetches a certificate file pinned beforehand so that its
// digest can be recorded.
func (i *_Issuer) pinnedDocument(ctx context.Context, id string) (*document, error) {
	cid, err := content.NormalizeCID(id)
	if err != nil {
		return nil, err
	}
	data, err := i.content.Get(ctx, cid)
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", cid, err)
	}
	return newDocument(cid, data), nil
}

func newIssueResult(receipt ledger.Receipt, p pinned) IssueResult {
	return IssueResult{
		TransactionID: receipt.TransactionID,
		TokenID:       receipt.TokenID,
		Serial:        receipt.Serial,
		ContentID:     p.contentID,
		ContentHash:   p.contentHash.String(),
		DocumentHash:  p.documentHash.String(),
		Certificate:   receipt.Certificate,
		Metadata:      p.metadata,
	}
}

func issuerName(name, institution string) string {
	if strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	return institution
}

func metadataFileName(recipient, course string) string {
	return strings.ToLower(strings.Join(strings.Fields(course+" "+recipient), "-")) + ".json"
}
