package wallet

import "github.com/certchain/certchain/pkg/certchain/model"

// Priority is the order in which connected wallets are preferred.
var Priority = []model.WalletKind{
	model.WalletHashPack,
	model.WalletBlade,
	model.WalletMetaMask,
	model.WalletWalletConnect,
}

// Resolve returns the account and adapter of the first connected wallet in
// Priority order, or ("", nil) when none is connected. It only reads adapter
// states.
func Resolve(wallets map[model.WalletKind]Wallet) (string, Wallet) {
	for _, kind := range Priority {
		w, ok := wallets[kind]
		if !ok || w == nil {
			continue
		}
		if account := w.Status().AccountID(); account != "" {
			return account, w
		}
	}
	return "", nil
}
