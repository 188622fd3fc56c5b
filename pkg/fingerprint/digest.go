package fingerprint

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const DigestPrefix = "0x"

var ErrInvalidDigest = errors.New("invalid digest")

// Digest is a 32 byte hash rendered as 0x-prefixed lowercase hex.
type Digest string

func NewDigest(sum []byte) Digest {
	return Digest(DigestPrefix + hex.EncodeToString(sum))
}

// ParseDigest accepts the digest with or without prefix and in any case.
func ParseDigest(s string) (Digest, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	raw = strings.TrimPrefix(raw, DigestPrefix)
	if len(raw) != 64 {
		return "", fmt.Errorf("%w: expected 64 hex characters, got %d", ErrInvalidDigest, len(raw))
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidDigest, err.Error())
	}
	return Digest(DigestPrefix + raw), nil
}

func (d Digest) String() string {
	return string(d)
}

func (d Digest) Hex() string {
	return strings.TrimPrefix(string(d), DigestPrefix)
}

func (d Digest) IsEmpty() bool {
	return d == ""
}

// Bytes32 returns the digest as a fixed size array, the form smart contracts store.
func (d Digest) Bytes32() ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(d.Hex())
	if err != nil {
		return out, fmt.Errorf("%w: %s", ErrInvalidDigest, err.Error())
	}
	if len(raw) != len(out) {
		return out, ErrInvalidDigest
	}
	copy(out[:], raw)
	return out, nil
}

// Equal compares two digests ignoring prefix and case.
func (d Digest) Equal(other Digest) bool {
	a, errA := ParseDigest(string(d))
	b, errB := ParseDigest(string(other))
	if errA != nil || errB != nil {
		return false
	}
	return a == b
}
