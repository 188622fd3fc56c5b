// Package auth manages the API keys issuers use to call the private API.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/bcrypt"
)

var ErrAPIKeyError = errors.New("") // Base error of every API key rejection.

var (
	ErrInvalidAPIKeyString = fmt.Errorf("malformed API key%w", ErrAPIKeyError)
	ErrMismatchAPIKey      = fmt.Errorf("API key secret does not match%w", ErrAPIKeyError)
	ErrRevokedAPIKey       = fmt.Errorf("API key has been revoked%w", ErrAPIKeyError)
	ErrAPIKeyNotFound      = fmt.Errorf("unknown API key%w", ErrAPIKeyError)
)

const (
	apiKeyPrefix    = "cck"
	apiKeyIDLen     = 12 // bytes before base58
	apiKeySecretLen = 32
)

type APIKeyStatus string

const (
	APIKeyStatusActive  = APIKeyStatus("active")
	APIKeyStatusRevoked = APIKeyStatus("revoked")
)

// APIKeyString is what an issuer sends as its bearer token:
// cck_<base58 id>_<base58 secret>. Only the id part is stored in clear.
type APIKeyString string

// APIKeyHashedString is the bcrypt digest of a full APIKeyString.
type APIKeyHashedString string

// APIKey binds a secret to the issuer identity it may act for.
type APIKey struct {
	ID         string             `json:"id"`
	HashString APIKeyHashedString `json:"hash_string"`
	Version    int64              `json:"version"`
	Issuer     string             `json:"issuer"`  // Issuer DID.
	Account    string             `json:"account"` // Ledger account the issuer mints from.
	Status     APIKeyStatus       `json:"status"`

	CreatedAt int64  `json:"created_at"`
	CreatedBy string `json:"created_by"`
	UpdatedAt int64  `json:"updated_at"`
	UpdatedBy string `json:"updated_by"`
}

func (k APIKey) Active() bool { return k.Status == APIKeyStatusActive }

func (ks APIKeyString) split() (id, secret string, err error) {
	prefix, rest, ok := strings.Cut(string(ks), "_")
	if !ok || prefix != apiKeyPrefix {
		return "", "", ErrInvalidAPIKeyString
	}
	id, secret, ok = strings.Cut(rest, "_")
	if !ok || id == "" || secret == "" {
		return "", "", ErrInvalidAPIKeyString
	}
	if _, err := base58.Decode(id); err != nil {
		return "", "", ErrInvalidAPIKeyString
	}
	return id, secret, nil
}

// ID returns the lookup part of the key.
func (ks APIKeyString) ID() (string, error) {
	id, _, err := ks.split()
	return id, err
}

func (ks APIKeyString) Hash() (APIKeyHashedString, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(ks), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return APIKeyHashedString(hashed), nil
}

func randomBase58(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base58.Encode(buf), nil
}

func NewAPIKeyString() (APIKeyString, error) {
	id, err := randomBase58(apiKeyIDLen)
	if err != nil {
		return "", err
	}
	secret, err := randomBase58(apiKeySecretLen)
	if err != nil {
		return "", err
	}
	return APIKeyString(apiKeyPrefix + "_" + id + "_" + secret), nil
}

func VerifyAPIKeyString(ks APIKeyString, hashedKs APIKeyHashedString) error {
	switch err := bcrypt.CompareHashAndPassword([]byte(hashedKs), []byte(ks)); {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrMismatchAPIKey
	default:
		return err
	}
}
