package model

type WalletKind string
type WalletState string

const (
	WalletHashPack      WalletKind = "hashpack"
	WalletBlade         WalletKind = "blade"
	WalletMetaMask      WalletKind = "metamask"
	WalletWalletConnect WalletKind = "walletconnect"

	WalletStateDisconnected WalletState = "disconnected"
	WalletStateConnecting   WalletState = "connecting"
	WalletStateConnected    WalletState = "connected"
)

var AllWalletKinds = []WalletKind{WalletHashPack, WalletBlade, WalletMetaMask, WalletWalletConnect}

func (k WalletKind) IsValid() bool {
	for _, kind := range AllWalletKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// IsEVM reports whether the wallet speaks the EVM JSON-RPC dialect.
func (k WalletKind) IsEVM() bool {
	return k == WalletMetaMask
}

type WalletConnection struct {
	AccountID   string     `json:"account_id"`           // Ledger account id (shard.realm.num) or EVM address.
	PublicKey   string     `json:"public_key,omitempty"` // Public key or address reported by the wallet.
	Kind        WalletKind `json:"kind"`                 // Wallet kind.
	Network     string     `json:"network,omitempty"`    // Network the wallet is connected to.
	SessionID   string     `json:"session_id,omitempty"` // Provider or relay session handle.
	ConnectedAt int64      `json:"connected_at"`         // Unix Time (in second) of the connection.
}

// TransactionID identifies a transaction accepted for submission by a wallet.
type TransactionID string
