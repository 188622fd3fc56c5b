package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/wallet"
	"github.com/certchain/certchain/pkg/fingerprint"
	"github.com/samber/lo"
)

// Anchor submits the ledger transaction backing a registry change and
// returns its id on submission.
type Anchor interface {
	AnchorMint(ctx context.Context, ts int64, certs []model.Certificate) (model.TransactionID, error)
	AnchorRevoke(ctx context.Context, ts int64, cert model.Certificate) (model.TransactionID, error)
}

// OperatorAnchor issues transaction ids on behalf of the issuing account
// without a wallet, in the payer@seconds.nanos form.
type OperatorAnchor struct {
	now func() time.Time
}

func NewOperatorAnchor() *OperatorAnchor {
	return &OperatorAnchor{now: time.Now}
}

func (a *OperatorAnchor) transactionID(account string, ts int64) model.TransactionID {
	return model.TransactionID(fmt.Sprintf("%s@%d.%09d", account, ts, a.now().Nanosecond()))
}

func (a *OperatorAnchor) AnchorMint(ctx context.Context, ts int64, certs []model.Certificate) (model.TransactionID, error) {
	return a.transactionID(certs[0].IssuerAccount, ts), nil
}

func (a *OperatorAnchor) AnchorRevoke(ctx context.Context, ts int64, cert model.Certificate) (model.TransactionID, error) {
	return a.transactionID(cert.RevokedBy, ts), nil
}

// ActiveWallet is satisfied by wallet.Registry.
type ActiveWallet interface {
	Active() (string, wallet.Wallet)
}

var registryABI = wallet.MustParseABI(`[
	{"type":"function","name":"mintCertificate","stateMutability":"nonpayable","inputs":[
		{"name":"tokenId","type":"string"},
		{"name":"contentHash","type":"bytes32"},
		{"name":"metadataHash","type":"bytes32"},
		{"name":"contentId","type":"string"},
		{"name":"expiresAt","type":"uint64"}],"outputs":[{"name":"serial","type":"uint256"}]},
	{"type":"function","name":"batchMintCertificates","stateMutability":"nonpayable","inputs":[
		{"name":"tokenIds","type":"string[]"},
		{"name":"contentHashes","type":"bytes32[]"},
		{"name":"metadataHashes","type":"bytes32[]"},
		{"name":"contentIds","type":"string[]"},
		{"name":"expiresAt","type":"uint64[]"}],"outputs":[{"name":"serials","type":"uint256[]"}]},
	{"type":"function","name":"revokeCertificate","stateMutability":"nonpayable","inputs":[
		{"name":"tokenId","type":"string"},
		{"name":"reason","type":"string"}],"outputs":[]}
]`)

// WalletAnchor submits registry contract calls through the active wallet,
// which must hold the issuing account.
type WalletAnchor struct {
	wallets    ActiveWallet
	contractID string
	gas        uint64
}

func NewWalletAnchor(wallets ActiveWallet, contractID string, gas uint64) *WalletAnchor {
	return &WalletAnchor{wallets: wallets, contractID: contractID, gas: gas}
}

func (a *WalletAnchor) signer(account string) (wallet.Wallet, error) {
	active, w := a.wallets.Active()
	if w == nil {
		return nil, fmt.Errorf("no wallet to sign with: %w", model.ErrNotConnected)
	}
	if !SameAccount(active, account) {
		return nil, fmt.Errorf("active wallet account %s is not %s%w", active, account, model.ErrForbidden)
	}
	return w, nil
}

func (a *WalletAnchor) AnchorMint(ctx context.Context, ts int64, certs []model.Certificate) (model.TransactionID, error) {
	w, err := a.signer(certs[0].IssuerAccount)
	if err != nil {
		return "", err
	}

	contentHashes := make([][32]byte, len(certs))
	metadataHashes := make([][32]byte, len(certs))
	for i, cert := range certs {
		if contentHashes[i], err = fingerprint.Digest(cert.ContentHash).Bytes32(); err != nil {
			return "", fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
		}
		if metadataHashes[i], err = fingerprint.Digest(cert.MetadataHash).Bytes32(); err != nil {
			return "", fmt.Errorf("%s%w", err.Error(), model.ErrInvalidParameter)
		}
	}

	var call wallet.ContractCall
	if len(certs) == 1 {
		cert := certs[0]
		call, err = wallet.NewContractCall(a.contractID, registryABI, "mintCertificate", a.gas,
			cert.TokenID, contentHashes[0], metadataHashes[0], cert.ContentID, uint64(cert.ExpiresAt))
	} else {
		call, err = wallet.NewContractCall(a.contractID, registryABI, "batchMintCertificates", a.gas*uint64(len(certs)),
			lo.Map(certs, func(c model.Certificate, _ int) string { return c.TokenID }),
			contentHashes,
			metadataHashes,
			lo.Map(certs, func(c model.Certificate, _ int) string { return c.ContentID }),
			lo.Map(certs, func(c model.Certificate, _ int) uint64 { return uint64(c.ExpiresAt) }),
		)
	}
	if err != nil {
		return "", err
	}
	return w.ExecuteContractCall(ctx, call)
}

func (a *WalletAnchor) AnchorRevoke(ctx context.Context, ts int64, cert model.Certificate) (model.TransactionID, error) {
	w, err := a.signer(cert.RevokedBy)
	if err != nil {
		return "", err
	}
	call, err := wallet.NewContractCall(a.contractID, registryABI, "revokeCertificate", a.gas, cert.TokenID, cert.RevokeReason)
	if err != nil {
		return "", err
	}
	return w.ExecuteContractCall(ctx, call)
}

// SameAccount compares two account references, native or EVM.
func SameAccount(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	addrA, errA := wallet.ToEVMAddress(a)
	addrB, errB := wallet.ToEVMAddress(b)
	return errA == nil && errB == nil && addrA == addrB
}
