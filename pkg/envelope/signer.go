package envelope

import (
	"crypto"
	"crypto/sha256"

	"github.com/certchain/certchain/pkg/pkix"
)

// Signer signs payloads with the service key.
type Signer struct {
	key    crypto.Signer
	header JOSEHeader
}

// NewSigner derives the algorithm and the key id from key. The key id is the
// first 16 bytes of the SHA-256 of the PEM public key, base64url encoded.
func NewSigner(key crypto.Signer, typ string) (*Signer, error) {
	alg, err := AlgorithmOf(key.Public())
	if err != nil {
		return nil, err
	}
	pemRaw, err := pkix.MarshalPublicKey(key.Public())
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(pemRaw)
	return &Signer{
		key: key,
		header: JOSEHeader{
			Alg:  alg.String(),
			Kid:  Base64URLEncode(sum[:16]),
			Type: typ,
		},
	}, nil
}

func (s *Signer) KeyID() string {
	return s.header.Kid
}

func (s *Signer) PublicKey() crypto.PublicKey {
	return s.key.Public()
}

func (s *Signer) Sign(payload []byte) (JWS, error) {
	return Sign(payload, s.header, s.key)
}
