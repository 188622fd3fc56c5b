package wallet_test

import (
	"testing"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/wallet"
	mock_wallet "github.com/certchain/certchain/test/mock/certchain/wallet"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func mockWallet(ctrl *gomock.Controller, kind model.WalletKind, account string) *mock_wallet.MockWallet {
	w := mock_wallet.NewMockWallet(ctrl)
	w.EXPECT().Kind().Return(kind).AnyTimes()
	status := wallet.Status{Kind: kind, State: model.WalletStateDisconnected}
	if account != "" {
		status.State = model.WalletStateConnected
		status.Connection = &model.WalletConnection{AccountID: account, Kind: kind}
	}
	w.EXPECT().Status().Return(status).AnyTimes()
	return w
}

func TestResolve(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hashpack := mockWallet(ctrl, model.WalletHashPack, "")
	blade := mockWallet(ctrl, model.WalletBlade, "0.0.20")
	metamask := mockWallet(ctrl, model.WalletMetaMask, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")
	walletconnect := mockWallet(ctrl, model.WalletWalletConnect, "0.0.40")

	wallets := map[model.WalletKind]wallet.Wallet{
		model.WalletHashPack:      hashpack,
		model.WalletBlade:         blade,
		model.WalletMetaMask:      metamask,
		model.WalletWalletConnect: walletconnect,
	}
	account, w := wallet.Resolve(wallets)
	assert.Equal(t, "0.0.20", account)
	assert.Equal(t, wallet.Wallet(blade), w)

	delete(wallets, model.WalletBlade)
	account, w = wallet.Resolve(wallets)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", account)
	assert.Equal(t, wallet.Wallet(metamask), w)

	account, w = wallet.Resolve(map[model.WalletKind]wallet.Wallet{model.WalletHashPack: hashpack})
	assert.Empty(t, account)
	assert.Nil(t, w)

	account, w = wallet.Resolve(nil)
	assert.Empty(t, account)
	assert.Nil(t, w)
}
