package issuance

import (
	"net/http"
	"strconv"
	"time"

	"github.com/certchain/certchain/pkg/fingerprint"
	"github.com/goccy/go-json"
)

const (
	MetadataFormat   = "HIP412@2.0.0"
	MetadataMIMEType = "application/json"
)

// NFTMetadata is the token metadata document pinned for every certificate.
// Its SHA-256 digest is the content hash recorded on the ledger.
type NFTMetadata struct {
	Name        string        `json:"name"`
	Creator     string        `json:"creator"`
	CreatorDID  string        `json:"creatorDID,omitempty"`
	Description string        `json:"description"`
	Image       string        `json:"image,omitempty"`
	Type        string        `json:"type,omitempty"`
	Files       []NFTFile     `json:"files,omitempty"`
	Format      string        `json:"format"`
	Properties  NFTProperties `json:"properties"`
}

type NFTFile struct {
	URI           string `json:"uri"`
	Type          string `json:"type,omitempty"`
	Checksum      string `json:"checksum,omitempty"`
	IsDefaultFile bool   `json:"is_default_file,omitempty"`
}

type NFTProperties struct {
	Recipient          string            `json:"recipient"`
	RecipientEmailHash string            `json:"recipient_email_hash,omitempty"`
	Course             string            `json:"course"`
	Institution        string            `json:"institution"`
	IssuedAt           string            `json:"issued_at"`
	ExpiresAt          string            `json:"expires_at,omitempty"`
	MetadataHash       string            `json:"metadata_hash"`
	Soulbound          bool              `json:"soulbound"`
	Attributes         map[string]string `json:"attributes,omitempty"`
}

// document is a certificate file referenced by the metadata.
type document struct {
	cid      string
	mimeType string
	checksum fingerprint.Digest
}

func ipfsURI(cid string) string {
	return "ipfs://" + cid
}

func formatDate(unix int64) string {
	if unix == 0 {
		return ""
	}
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

// declaredFields are the fields covered by the metadata hash.
func declaredFields(issuer, recipient, course, institution string, issuedAt, expiresAt int64) fingerprint.Metadata {
	return fingerprint.Metadata{
		Recipient:   recipient,
		Course:      course,
		Institution: institution,
		Issuer:      issuer,
		IssuedAt:    strconv.FormatInt(issuedAt, 10),
		ExpiresAt:   strconv.FormatInt(expiresAt, 10),
	}
}

func buildMetadata(fields fingerprint.Metadata, creator string, emailHash fingerprint.Digest, issuedAt, expiresAt int64, doc *document, attributes map[string]string) NFTMetadata {
	meta := NFTMetadata{
		Name:        fields.Course,
		Creator:     creator,
		CreatorDID:  fields.Issuer,
		Description: fields.Course + " awarded to " + fields.Recipient + " by " + creator,
		Format:      MetadataFormat,
		Properties: NFTProperties{
			Recipient:          fields.Recipient,
			RecipientEmailHash: emailHash.String(),
			Course:             fields.Course,
			Institution:        fields.Institution,
			IssuedAt:           formatDate(issuedAt),
			ExpiresAt:          formatDate(expiresAt),
			MetadataHash:       fingerprint.HashMetadata(fields).String(),
			Soulbound:          true,
			Attributes:         attributes,
		},
	}
	if doc != nil {
		meta.Image = ipfsURI(doc.cid)
		meta.Type = doc.mimeType
		meta.Files = []NFTFile{{
			URI:           ipfsURI(doc.cid),
			Type:          doc.mimeType,
			Checksum:      doc.checksum.Hex(),
			IsDefaultFile: true,
		}}
	}
	return meta
}

func newDocument(cid string, data []byte) *document {
	return &document{
		cid:      cid,
		mimeType: http.DetectContentType(data),
		checksum: fingerprint.HashBytes(data),
	}
}

// Marshal returns the exact bytes that are pinned and hashed.
func (m NFTMetadata) Marshal() ([]byte, error) {
	return json.Marshal(m)
}
