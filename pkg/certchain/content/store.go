// Package content stores certificate documents by content identifier (CID).
package content

import (
	"context"
	"fmt"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

type Store interface {
	// Put pins data and returns its content identifier.
	Put(ctx context.Context, name string, data []byte) (string, error)
	// Get fetches the bytes addressed by id. Failures wrap model.ErrContentUnavailable.
	Get(ctx context.Context, id string) ([]byte, error)
}

var cidPrefix = cid.Prefix{
	Version:  1,
	Codec:    cid.Raw,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// ComputeCID returns the CIDv1 (raw codec, sha2-256) of data.
func ComputeCID(data []byte) (string, error) {
	c, err := cidPrefix.Sum(data)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// NormalizeCID parses any CID encoding and returns its canonical string form.
func NormalizeCID(id string) (string, error) {
	c, err := cid.Decode(id)
	if err != nil {
		return "", fmt.Errorf("invalid content id %q%w", id, model.ErrInvalidParameter)
	}
	return c.String(), nil
}
