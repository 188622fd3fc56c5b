package wallet_test

import (
	"testing"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountID(t *testing.T) {
	id, err := wallet.ParseAccountID(" 0.0.1234 ")
	require.NoError(t, err)
	assert.Equal(t, wallet.AccountID{Shard: 0, Realm: 0, Num: 1234}, id)
	assert.Equal(t, "0.0.1234", id.String())
	assert.Equal(t, "0x00000000000000000000000000000000000004d2", id.EVMAddress().Hex())

	for _, bad := range []string{"", "0.0", "0.0.x", "1.2.3.4", "-1.0.3"} {
		_, err := wallet.ParseAccountID(bad)
		assert.ErrorIs(t, err, model.ErrInvalidParameter, bad)
	}
}

func TestToEVMAddress(t *testing.T) {
	addr, err := wallet.ToEVMAddress("0.0.2")
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000002", addr.Hex())

	addr, err = wallet.ToEVMAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	require.NoError(t, err)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", addr.Hex())

	_, err = wallet.ToEVMAddress("0x1234")
	assert.ErrorIs(t, err, model.ErrInvalidParameter)
}

func TestValidateAccount(t *testing.T) {
	assert.NoError(t, wallet.ValidateAccount(""))
	assert.NoError(t, wallet.ValidateAccount("0.0.5"))
	assert.NoError(t, wallet.ValidateAccount("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"))
	assert.Error(t, wallet.ValidateAccount("alice"))
}
