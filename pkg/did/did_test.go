package did_test

import (
	"testing"

	"github.com/certchain/certchain/pkg/did"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDIDParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "valid did", input: "did:example:123", expected: "did:example:123"},
		{name: "hedera did", input: "did:hedera:testnet:0.0.1234", expected: "did:hedera:testnet:0.0.1234"},
		{name: "invalid did", input: "did:example", expected: ""},
		{name: "empty input", input: "", expected: ""},
		{name: "invalid method", input: "did:Invalid:123", expected: ""},
		{name: "invalid id", input: "did:example:", expected: ""},
		{name: "query string", input: "did:example:123?param=value", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := did.Parse(tt.input)
			if tt.expected == "" {
				assert.ErrorIs(t, err, did.ErrInvalidDID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d.String())
		})
	}
}

func TestHederaDID(t *testing.T) {
	d, err := did.NewHederaDID("testnet", "0.0.1234")
	require.NoError(t, err)
	assert.Equal(t, "did:hedera:testnet:0.0.1234", d.String())
	assert.Equal(t, did.MethodHedera, d.Method())

	network, account, err := d.Account()
	require.NoError(t, err)
	assert.Equal(t, "testnet", network)
	assert.Equal(t, "0.0.1234", account)

	_, err = did.NewHederaDID("testnet", "0xabc")
	assert.ErrorIs(t, err, did.ErrInvalidDID)

	_, _, err = did.MustParse("did:example:123").Account()
	assert.ErrorIs(t, err, did.ErrInvalidDID)
}

func TestValidateDID(t *testing.T) {
	assert.NoError(t, did.ValidateDID("did:hedera:mainnet:0.0.1"))
	assert.NoError(t, did.ValidateDID(""))
	assert.Error(t, did.ValidateDID("issuer"))
	assert.Error(t, did.ValidateDID(12))
}

func TestDIDJsonMarshalUnmarshal(t *testing.T) {
	type JsonObj struct {
		DID did.DID `json:"did"`
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "valid json", input: `{"did":"did:example:123"}`, expected: `{"did":"did:example:123"}`},
		{name: "invalid json", input: `{"did":123}`, expected: ""},
		{name: "empty json", input: `{}`, expected: `{"did":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var obj JsonObj
			err := json.Unmarshal([]byte(tt.input), &obj)
			if tt.expected == "" {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			b, err := json.Marshal(obj)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(b))
		})
	}
}
