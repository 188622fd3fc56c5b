package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	otlp_util "github.com/bluexlab/otlp-util-go"
	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/relay"
	"github.com/certchain/certchain/pkg/certchain/storage"
	"github.com/certchain/certchain/pkg/envelope"
	"github.com/certchain/certchain/pkg/fingerprint"
	"github.com/certchain/certchain/pkg/util"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type _Registry struct {
	storage storage.CertificateStorage
	anchor  Anchor
	signer  *envelope.Signer

	collection string // Token collection the serials belong to.
	topicID    string // Consensus topic the messages are published on.
}

func NewRegistry(storage storage.CertificateStorage, anchor Anchor, signer *envelope.Signer, collection, topicID string) Ledger {
	return &_Registry{
		storage:    storage,
		anchor:     anchor,
		signer:     signer,
		collection: collection,
		topicID:    topicID,
	}
}

func (r *_Registry) Mint(ctx context.Context, ts int64, req MintRequest) (Receipt, error) {
	if err := ValidateMintRequest(req); err != nil {
		return Receipt{}, err
	}

	batch, err := r.mint(ctx, ts, []MintRequest{req})
	if err != nil {
		return Receipt{}, err
	}
	return batch.Receipts[0], nil
}

func (r *_Registry) BatchMint(ctx context.Context, ts int64, req BatchMintRequest) (BatchReceipt, error) {
	if err := ValidateBatchMintRequest(req); err != nil {
		return BatchReceipt{}, err
	}

	reqs := make([]MintRequest, req.Len())
	for i := range reqs {
		reqs[i] = req.Entry(i)
	}
	return r.mint(ctx, ts, reqs)
}

// mint runs in three steps so that no database transaction stays open while
// the anchor waits on the network: serials are reserved, the records are
// anchored, and the anchored records are stored. A reserved serial that is
// never stored is skipped.
func (r *_Registry) mint(ctx context.Context, ts int64, reqs []MintRequest) (BatchReceipt, error) {
	ctx, span := otlp_util.Start(ctx, "ledger/registry.mint",
		trace.WithAttributes(attribute.Int("count", len(reqs))),
	)
	defer span.End()

	certs, err := r.newCertificates(ts, reqs)
	if err != nil {
		return BatchReceipt{}, err
	}
	hashes := lo.Map(certs, func(c model.Certificate, _ int) string { return c.ContentHash })
	if dup := lo.FindDuplicates(hashes); len(dup) > 0 {
		return BatchReceipt{}, fmt.Errorf("%s: %w", dup[0], model.ErrDuplicateContentHash)
	}

	if err := r.reserve(ctx, certs, hashes); err != nil {
		return BatchReceipt{}, err
	}

	txID, err := r.anchor.AnchorMint(ctx, ts, certs)
	if err != nil {
		return BatchReceipt{}, err
	}
	span.SetAttributes(attribute.String("transaction_id", string(txID)))

	msg := ConsensusMessage{
		ID:            util.NewUUID(),
		Type:          MessageCertificateMinted,
		TopicID:       r.topicID,
		TransactionID: string(txID),
		Issuer:        certs[0].Issuer,
		Account:       certs[0].IssuerAccount,
		Timestamp:     ts,
	}
	receipts := make([]Receipt, len(certs))
	for i := range certs {
		certs[i].TransactionID = string(txID)
		certs[i].AttestationID = msg.ID
		msg.Records = append(msg.Records, messageRecord(certs[i]))
		receipts[i] = Receipt{TransactionID: txID, TokenID: certs[i].TokenID, Serial: certs[i].Serial, Certificate: certs[i]}
	}

	if err := r.record(ctx, ts, certs, hashes, msg); err != nil {
		logrus.Errorf("mint %s anchored but not recorded: %v", txID, err)
		return BatchReceipt{}, err
	}

	logrus.Debugf("minted %d certificate(s) in %s", len(certs), txID)
	return BatchReceipt{TransactionID: txID, Receipts: receipts}, nil
}

// reserve rejects content hashes already on the registry and assigns serials.
func (r *_Registry) reserve(ctx context.Context, certs []model.Certificate, hashes []string) error {
	tx, ctx, err := r.storage.CreateTx(ctx, storage.TxOptionWithWrite(true), storage.TxOptionWithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.checkUnrecorded(ctx, tx, hashes); err != nil {
		return err
	}
	first, err := r.storage.NextSerials(ctx, tx, r.collection, len(certs))
	if err != nil {
		return err
	}
	for i := range certs {
		certs[i].Serial = first + int64(i)
		certs[i].TokenID = FormatTokenID(r.collection, certs[i].Serial)
	}
	return tx.Commit(ctx)
}

// record stores anchored records together with their consensus message. The
// hashes are checked again since a concurrent mint may have finished meanwhile.
func (r *_Registry) record(ctx context.Context, ts int64, certs []model.Certificate, hashes []string, msg ConsensusMessage) error {
	tx, ctx, err := r.storage.CreateTx(ctx, storage.TxOptionWithWrite(true), storage.TxOptionWithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.checkUnrecorded(ctx, tx, hashes); err != nil {
		return err
	}
	for _, cert := range certs {
		if err := r.storage.AddCertificate(ctx, tx, cert); err != nil {
			return err
		}
	}
	if err := r.publish(ctx, tx, ts, relay.TagCertificateMinted, msg); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *_Registry) checkUnrecorded(ctx context.Context, tx storage.Tx, hashes []string) error {
	existing, err := r.storage.ListCertificates(ctx, tx, storage.ListCertificatesRequest{Limit: 1, ContentHashes: hashes})
	if err != nil {
		return err
	}
	if existing.Total > 0 {
		return fmt.Errorf("%s: %w", existing.Certs[0].ContentHash, model.ErrDuplicateContentHash)
	}
	return nil
}

// newCertificates builds the records of validated requests with canonical digests.
func (r *_Registry) newCertificates(ts int64, reqs []MintRequest) ([]model.Certificate, error) {
	certs := make([]model.Certificate, len(reqs))
	for i, req := range reqs {
		issuedAt := req.IssuedAt
		if issuedAt == 0 {
			issuedAt = ts
		}
		if req.ExpiresAt > 0 && req.ExpiresAt <= issuedAt {
			return nil, fmt.Errorf("expires_at must be later than issued_at%w", model.ErrInvalidParameter)
		}

		cert := model.Certificate{
			ID:            util.NewUUID(),
			Version:       1,
			Status:        model.CertStatusActive,
			Issuer:        req.Issuer,
			IssuerAccount: strings.TrimSpace(req.IssuerAccount),
			Recipient:     req.Recipient,
			Course:        req.Course,
			Institution:   req.Institution,
			IssuedAt:      issuedAt,
			ExpiresAt:     req.ExpiresAt,
		}
		var err error
		if cert.ContentHash, err = canonicalDigest(req.ContentHash); err != nil {
			return nil, err
		}
		if cert.MetadataHash, err = canonicalDigest(req.MetadataHash); err != nil {
			return nil, err
		}
		if cert.RecipientEmailHash, err = canonicalDigest(req.RecipientEmailHash); err != nil {
			return nil, err
		}
		if cert.DocumentHash, err = canonicalDigest(req.DocumentHash); err != nil {
			return nil, err
		}
		if req.ContentID != "" {
			if cert.ContentID, err = content.NormalizeCID(req.ContentID); err != nil {
				return nil, err
			}
		}
		certs[i] = cert
	}
	return certs, nil
}

// Revoke checks the record, anchors the revocation and stores the new version
// only if the record did not change while the anchor was pending.
func (r *_Registry) Revoke(ctx context.Context, ts int64, req RevokeRequest) (Receipt, error) {
	if err := ValidateRevokeRequest(req); err != nil {
		return Receipt{}, err
	}

	ctx, span := otlp_util.Start(ctx, "ledger/registry.Revoke",
		trace.WithAttributes(attribute.String("token_id", req.TokenID)),
	)
	defer span.End()

	tokenID := strings.TrimSpace(req.TokenID)
	current, err := r.revocable(ctx, tokenID, req.Requester)
	if err != nil {
		return Receipt{}, err
	}

	cert := current
	cert.Status = model.CertStatusRevoked
	cert.Version += 1
	cert.RevokedAt = ts
	cert.RevokedBy = strings.TrimSpace(req.Requester)
	cert.RevokeReason = req.Reason

	txID, err := r.anchor.AnchorRevoke(ctx, ts, cert)
	if err != nil {
		return Receipt{}, err
	}
	cert.RevokeTxnID = string(txID)

	msg := ConsensusMessage{
		ID:            util.NewUUID(),
		Type:          MessageCertificateRevoked,
		TopicID:       r.topicID,
		TransactionID: string(txID),
		Issuer:        cert.Issuer,
		Account:       cert.RevokedBy,
		Timestamp:     ts,
		Records:       []MessageRecord{messageRecord(cert)},
	}
	if err := r.recordRevocation(ctx, ts, current, cert, req.Requester, msg); err != nil {
		logrus.Errorf("revocation of %s anchored in %s but not recorded: %v", tokenID, txID, err)
		return Receipt{}, err
	}

	return Receipt{TransactionID: txID, TokenID: cert.TokenID, Serial: cert.Serial, Certificate: cert}, nil
}

// revocable loads the record of tokenID and checks requester may revoke it.
func (r *_Registry) revocable(ctx context.Context, tokenID, requester string) (model.Certificate, error) {
	tx, ctx, err := r.storage.CreateTx(ctx, storage.TxOptionWithWrite(false))
	if err != nil {
		return model.Certificate{}, err
	}
	defer tx.Rollback(ctx)

	return r.loadRevocable(ctx, tx, tokenID, requester)
}

func (r *_Registry) loadRevocable(ctx context.Context, tx storage.Tx, tokenID, requester string) (model.Certificate, error) {
	result, err := r.storage.ListCertificates(ctx, tx, storage.ListCertificatesRequest{Limit: 1, TokenIDs: []string{tokenID}})
	if err != nil {
		return model.Certificate{}, err
	}
	if len(result.Certs) == 0 {
		return model.Certificate{}, model.ErrCertificateNotFound
	}
	cert := result.Certs[0]
	if !SameAccount(cert.IssuerAccount, requester) {
		return model.Certificate{}, model.ErrNotIssuer
	}
	if cert.IsRevoked() {
		return model.Certificate{}, model.ErrAlreadyRevoked
	}
	return cert, nil
}

func (r *_Registry) recordRevocation(ctx context.Context, ts int64, current, revoked model.Certificate, requester string, msg ConsensusMessage) error {
	tx, ctx, err := r.storage.CreateTx(ctx, storage.TxOptionWithWrite(true), storage.TxOptionWithIsolationLevel(sql.LevelSerializable))
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	latest, err := r.loadRevocable(ctx, tx, current.TokenID, requester)
	if err != nil {
		return err
	}
	if latest.Version != current.Version {
		return fmt.Errorf("certificate %s changed during revocation%w", current.TokenID, model.ErrWrongStatus)
	}
	if err := r.storage.AddCertificate(ctx, tx, revoked); err != nil {
		return err
	}
	if err := r.publish(ctx, tx, ts, relay.TagCertificateRevoked, msg); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *_Registry) Lookup(ctx context.Context, req LookupRequest) (LookupResult, error) {
	listReq, err := lookupFilter(req)
	if err != nil {
		return LookupResult{}, err
	}

	tx, ctx, err := r.storage.CreateTx(ctx, storage.TxOptionWithWrite(false))
	if err != nil {
		return LookupResult{}, err
	}
	defer tx.Rollback(ctx)

	result, err := r.storage.ListCertificates(ctx, tx, listReq)
	if err != nil {
		return LookupResult{}, err
	}
	if len(result.Certs) == 0 {
		return LookupResult{Found: false}, nil
	}
	return LookupResult{Found: true, Certificate: &result.Certs[0]}, nil
}

func (r *_Registry) publish(ctx context.Context, tx storage.Tx, ts int64, tag int, msg ConsensusMessage) error {
	sealed, err := SealMessage(r.signer, msg)
	if err != nil {
		return err
	}
	return r.storage.AddConsensusOutbox(ctx, tx, ts, r.topicID, tag, sealed)
}

// lookupFilter validates req and turns it into a storage filter on canonical values.
func lookupFilter(req LookupRequest) (storage.ListCertificatesRequest, error) {
	if err := ValidateLookupRequest(req); err != nil {
		return storage.ListCertificatesRequest{}, err
	}

	listReq := storage.ListCertificatesRequest{Limit: 1}
	switch {
	case req.TokenID != "":
		listReq.TokenIDs = []string{strings.TrimSpace(req.TokenID)}
	case req.ContentHash != "":
		hash, err := canonicalDigest(req.ContentHash)
		if err != nil {
			return storage.ListCertificatesRequest{}, err
		}
		listReq.ContentHashes = []string{hash}
	case req.DocumentHash != "":
		hash, err := canonicalDigest(req.DocumentHash)
		if err != nil {
			return storage.ListCertificatesRequest{}, err
		}
		listReq.DocumentHashes = []string{hash}
	default:
		id, err := content.NormalizeCID(req.ContentID)
		if err != nil {
			return storage.ListCertificatesRequest{}, err
		}
		listReq.ContentIDs = []string{id}
	}
	return listReq, nil
}

func canonicalDigest(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	d, err := fingerprint.ParseDigest(s)
	if err != nil {
		return "", fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return d.String(), nil
}
