// Package pkix loads and stores the keys the service signs with.
package pkix

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

var ErrInvalidKey = errors.New("invalid key")

// ParsePrivateKey accepts SEC1 EC, PKCS#8 and PKCS#1 PEM blocks.
func ParsePrivateKey(key []byte) (crypto.Signer, error) {
	pemBlock, _ := pem.Decode(key)
	if pemBlock == nil {
		return nil, ErrInvalidKey
	}

	ecPrivateKey, ecErr := x509.ParseECPrivateKey(pemBlock.Bytes)
	if ecErr == nil {
		return ecPrivateKey, nil
	}

	privKey, pkcs8Err := x509.ParsePKCS8PrivateKey(pemBlock.Bytes)
	if pkcs8Err == nil {
		signer, ok := privKey.(crypto.Signer)
		if !ok {
			return nil, fmt.Errorf("%T cannot sign: %w", privKey, ErrInvalidKey)
		}
		return signer, nil
	}

	// Fallback to PKCS1
	rsaKey, pkcs1Err := x509.ParsePKCS1PrivateKey(pemBlock.Bytes)
	if pkcs1Err == nil {
		return rsaKey, nil
	}

	return nil, pkcs8Err
}

func LoadPrivateKey(path string) (crypto.Signer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKey(raw)
}

func ParsePublicKey(key []byte) (crypto.PublicKey, error) {
	pemBlock, _ := pem.Decode(key)
	if pemBlock == nil {
		return nil, ErrInvalidKey
	}
	return x509.ParsePKIXPublicKey(pemBlock.Bytes)
}

func MarshalPublicKey(key crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

func MarshalPrivateKey(key crypto.Signer) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// GenerateKey creates a P-256 key. Used when no signing key is configured.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
}

// KeyType names the key family for logs and key ids.
func KeyType(key crypto.PublicKey) string {
	switch key.(type) {
	case *ecdsa.PublicKey:
		return "EC"
	case *rsa.PublicKey:
		return "RSA"
	case ed25519.PublicKey:
		return "OKP"
	}
	return "unknown"
}
