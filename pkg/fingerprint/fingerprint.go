// Package fingerprint computes the digests that identify certificate content,
// certificate metadata and recipient emails.
package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/sha3"
)

// Metadata is the set of declared certificate fields covered by the metadata hash.
// The JSON field order of this struct is the canonical order.
type Metadata struct {
	Recipient   string `json:"recipient"`
	Course      string `json:"course"`
	Institution string `json:"institution"`
	Issuer      string `json:"issuer"`
	IssuedAt    string `json:"issued_at"`
	ExpiresAt   string `json:"expires_at"`
}

func HashBytes(data []byte) Digest {
	sum := sha256.Sum256(data)
	return NewDigest(sum[:])
}

// HashFile hashes everything readable from r. A read failure is returned and no
// digest is produced.
func HashFile(r io.Reader) (Digest, error) {
	hasher := sha256.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return NewDigest(hasher.Sum(nil)), nil
}

func HashFilePath(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()
	return HashFile(f)
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func (m Metadata) Normalize() Metadata {
	return Metadata{
		Recipient:   normalize(m.Recipient),
		Course:      normalize(m.Course),
		Institution: normalize(m.Institution),
		Issuer:      normalize(m.Issuer),
		IssuedAt:    normalize(m.IssuedAt),
		ExpiresAt:   normalize(m.ExpiresAt),
	}
}

// CanonicalJSON is the exact byte sequence HashMetadata hashes.
func (m Metadata) CanonicalJSON() []byte {
	raw, err := json.Marshal(m.Normalize())
	if err != nil {
		// Metadata only holds strings.
		panic(err)
	}
	return raw
}

func HashMetadata(m Metadata) Digest {
	return HashBytes(m.CanonicalJSON())
}

// HashMetadataMap hashes free-form metadata. Keys and values are normalized and
// keys are sorted, so insertion order and incidental formatting do not matter.
// Keys that collide after normalization keep the last value in sorted order.
func HashMetadataMap(fields map[string]string) Digest {
	normalized := make(map[string]string, len(fields))
	for k, v := range fields {
		normalized[normalize(k)] = normalize(v)
	}
	keys := make([]string, 0, len(normalized))
	for k := range normalized {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, normalized[k]})
	}
	raw, err := json.Marshal(pairs)
	if err != nil {
		panic(err)
	}
	return HashBytes(raw)
}

// HashEmail is a one-way Keccak-256 digest of the normalized address.
func HashEmail(email string) Digest {
	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(normalize(email)))
	return NewDigest(hasher.Sum(nil))
}
