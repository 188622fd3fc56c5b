// Package envelope signs and verifies JWS envelopes carried on the consensus topic.
package envelope

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
)

var ErrUnsupportedKey = errors.New("unsupported signing key")

type JOSEHeader struct {
	Alg  string `json:"alg,omitempty"`
	Kid  string `json:"kid,omitempty"`
	Type string `json:"typ,omitempty"`
}

// JWS is the flattened JSON serialization of a single-signature JWS.
type JWS struct {
	Protected string `json:"protected,omitempty"` // Base64 URL encoded
	Payload   string `json:"payload,omitempty"`   // Base64 URL encoded
	Signature string `json:"signature,omitempty"` // Base64 URL encoded
}

func (header JOSEHeader) Base64URLEncode() string {
	jsonRaw, _ := json.Marshal(header)
	return Base64URLEncode(jsonRaw)
}

func Base64URLDecode(in string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(in)
}

func Base64URLEncode(in []byte) string {
	return base64.RawURLEncoding.EncodeToString(in)
}

// Compact returns the compact serialization.
func (s JWS) Compact() string {
	return strings.Join([]string{s.Protected, s.Payload, s.Signature}, ".")
}

func (s JWS) GetPayload() ([]byte, error) {
	return Base64URLDecode(s.Payload)
}

func (s JWS) GetProtectedHeader() (JOSEHeader, error) {
	protected, err := Base64URLDecode(s.Protected)
	if err != nil {
		return JOSEHeader{}, err
	}
	if len(protected) == 0 {
		return JOSEHeader{}, nil
	}

	header := JOSEHeader{}
	if err := json.Unmarshal(protected, &header); err != nil {
		return JOSEHeader{}, err
	}
	return header, nil
}

// VerifySignature checks the signature against publicKey using the algorithm
// named in the protected header.
func (s JWS) VerifySignature(publicKey crypto.PublicKey) error {
	header, err := s.GetProtectedHeader()
	if err != nil {
		return err
	}
	if header.Alg == "" {
		return errors.New("missing alg header")
	}
	_, err = jws.Verify([]byte(s.Compact()), jws.WithKey(jwa.SignatureAlgorithm(header.Alg), publicKey))
	return err
}

func Sign(payload []byte, header JOSEHeader, key crypto.Signer) (JWS, error) {
	signer, err := jws.NewSigner(jwa.SignatureAlgorithm(header.Alg))
	if err != nil {
		return JWS{}, err
	}

	signInput := genSignInput(payload, header)
	signature, err := signer.Sign(signInput, key)
	if err != nil {
		return JWS{}, err
	}

	return JWS{
		Protected: header.Base64URLEncode(),
		Payload:   Base64URLEncode(payload),
		Signature: Base64URLEncode(signature),
	}, nil
}

func genSignInput(payload []byte, header JOSEHeader) []byte {
	headerB64 := header.Base64URLEncode()
	payloadB64 := Base64URLEncode(payload)
	return []byte(fmt.Sprintf("%s.%s", headerB64, payloadB64))
}

// AlgorithmOf picks the signature algorithm matching the key.
func AlgorithmOf(key crypto.PublicKey) (jwa.SignatureAlgorithm, error) {
	switch k := key.(type) {
	case *ecdsa.PublicKey:
		switch k.Curve {
		case elliptic.P256():
			return jwa.ES256, nil
		case elliptic.P384():
			return jwa.ES384, nil
		case elliptic.P521():
			return jwa.ES512, nil
		}
	case *rsa.PublicKey:
		return jwa.RS256, nil
	case ed25519.PublicKey:
		return jwa.EdDSA, nil
	}
	return "", fmt.Errorf("%T: %w", key, ErrUnsupportedKey)
}
