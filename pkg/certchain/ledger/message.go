package ledger

import (
	"crypto"
	"fmt"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/envelope"
	"github.com/goccy/go-json"
)

type MessageType string

const (
	MessageCertificateMinted  MessageType = "certificate_minted"
	MessageCertificateRevoked MessageType = "certificate_revoked"

	// MessageMediaType is the typ header of signed consensus messages.
	MessageMediaType = "certchain-message+jws"
)

// ConsensusMessage announces a registry change on the consensus topic.
type ConsensusMessage struct {
	ID            string          `json:"id"`
	Type          MessageType     `json:"type"`
	TopicID       string          `json:"topic_id"`
	TransactionID string          `json:"transaction_id"`
	Issuer        string          `json:"issuer"`
	Account       string          `json:"account"`
	Timestamp     int64           `json:"timestamp"`
	Records       []MessageRecord `json:"records"`
}

type MessageRecord struct {
	TokenID      string           `json:"token_id"`
	Version      int64            `json:"version"`
	Status       model.CertStatus `json:"status"`
	ContentHash  string           `json:"content_hash"`
	MetadataHash string           `json:"metadata_hash"`
	DocumentHash string           `json:"document_hash,omitempty"`
	ContentID    string           `json:"content_id,omitempty"`
	ExpiresAt    int64            `json:"expires_at,omitempty"`
	RevokeReason string           `json:"revoke_reason,omitempty"`
}

func messageRecord(cert model.Certificate) MessageRecord {
	return MessageRecord{
		TokenID:      cert.TokenID,
		Version:      cert.Version,
		Status:       cert.Status,
		ContentHash:  cert.ContentHash,
		MetadataHash: cert.MetadataHash,
		DocumentHash: cert.DocumentHash,
		ContentID:    cert.ContentID,
		ExpiresAt:    cert.ExpiresAt,
		RevokeReason: cert.RevokeReason,
	}
}

// SealMessage signs msg and returns the JSON encoded JWS.
func SealMessage(signer *envelope.Signer, msg ConsensusMessage) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	signed, err := signer.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("sign consensus message: %w", err)
	}
	return json.Marshal(signed)
}

// OpenMessage verifies a sealed message against the service public key.
func OpenMessage(raw []byte, publicKey crypto.PublicKey) (ConsensusMessage, error) {
	signed := envelope.JWS{}
	if err := json.Unmarshal(raw, &signed); err != nil {
		return ConsensusMessage{}, fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	if err := signed.VerifySignature(publicKey); err != nil {
		return ConsensusMessage{}, fmt.Errorf("signature: %s%w", err.Error(), model.ErrInvalidParameter)
	}
	payload, err := signed.GetPayload()
	if err != nil {
		return ConsensusMessage{}, fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	msg := ConsensusMessage{}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return ConsensusMessage{}, fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
	}
	return msg, nil
}
