package wallet

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

const (
	nativeDecimals = 8  // tinybars per unit
	evmDecimals    = 18 // weibars per unit on the JSON-RPC relay
)

// dialect turns capability calls into provider requests.
type dialect interface {
	connect(ctx context.Context, p Provider, kind model.WalletKind) (model.WalletConnection, error)
	disconnect(ctx context.Context, p Provider) error
	contractCall(ctx context.Context, p Provider, conn model.WalletConnection, call ContractCall) (model.TransactionID, error)
	transferNative(ctx context.Context, p Provider, conn model.WalletConnection, to string, amount decimal.Decimal) (model.TransactionID, error)
	transferFungible(ctx context.Context, p Provider, conn model.WalletConnection, tokenID, to string, units decimal.Decimal) (model.TransactionID, error)
	transferNonFungible(ctx context.Context, p Provider, conn model.WalletConnection, tokenID string, serial int64, to string) (model.TransactionID, error)
	associate(ctx context.Context, p Provider, conn model.WalletConnection, tokenID string) (model.TransactionID, error)
}

func dialectOf(kind model.WalletKind) dialect {
	if kind.IsEVM() {
		return evmDialect{}
	}
	return nativeDialect{}
}

// nativeDialect talks to wallets holding native ledger accounts.
type nativeDialect struct{}

type nativeAccount struct {
	AccountID string `json:"accountId"`
	PublicKey string `json:"publicKey"`
	Network   string `json:"network"`
}

type nativeReceipt struct {
	TransactionID string `json:"transactionId"`
}

func (nativeDialect) connect(ctx context.Context, p Provider, kind model.WalletKind) (model.WalletConnection, error) {
	raw, err := p.Request(ctx, "hedera_connect", nil)
	if err != nil {
		return model.WalletConnection{}, connectError(err)
	}
	account, err := decodeResult[nativeAccount](raw, "hedera_connect")
	if err != nil {
		return model.WalletConnection{}, err
	}
	if _, err := ParseAccountID(account.AccountID); err != nil {
		return model.WalletConnection{}, fmt.Errorf("wallet returned account %q%w", account.AccountID, model.ErrTransport)
	}
	return model.WalletConnection{
		AccountID: account.AccountID,
		PublicKey: account.PublicKey,
		Kind:      kind,
		Network:   account.Network,
	}, nil
}

func (nativeDialect) disconnect(ctx context.Context, p Provider) error {
	_, err := p.Request(ctx, "hedera_disconnect", nil)
	return err
}

func (d nativeDialect) submit(ctx context.Context, p Provider, method string, params any) (model.TransactionID, error) {
	raw, err := p.Request(ctx, method, params)
	if err != nil {
		return "", submitError(method, err)
	}
	receipt, err := decodeResult[nativeReceipt](raw, method)
	if err != nil {
		return "", err
	}
	if receipt.TransactionID == "" {
		return "", fmt.Errorf("%s: empty transaction id%w", method, model.ErrTransport)
	}
	return model.TransactionID(receipt.TransactionID), nil
}

func (d nativeDialect) contractCall(ctx context.Context, p Provider, conn model.WalletConnection, call ContractCall) (model.TransactionID, error) {
	params := map[string]any{
		"accountId":          conn.AccountID,
		"contractId":         call.ContractID,
		"functionParameters": hex.EncodeToString(call.Data),
		"gas":                call.Gas,
	}
	if call.PayableAmount.IsPositive() {
		tinybars, err := toUnits(call.PayableAmount, nativeDecimals)
		if err != nil {
			return "", err
		}
		params["payableAmount"] = tinybars.String()
	}
	return d.submit(ctx, p, "hedera_executeContractCall", params)
}

func (d nativeDialect) transferNative(ctx context.Context, p Provider, conn model.WalletConnection, to string, amount decimal.Decimal) (model.TransactionID, error) {
	if _, err := ParseAccountID(to); err != nil {
		return "", err
	}
	tinybars, err := toUnits(amount, nativeDecimals)
	if err != nil {
		return "", err
	}
	return d.submit(ctx, p, "hedera_transferHbar", map[string]any{
		"from":   conn.AccountID,
		"to":     to,
		"amount": tinybars.String(),
	})
}

func (d nativeDialect) transferFungible(ctx context.Context, p Provider, conn model.WalletConnection, tokenID, to string, units decimal.Decimal) (model.TransactionID, error) {
	if _, err := ParseAccountID(to); err != nil {
		return "", err
	}
	return d.submit(ctx, p, "hedera_transferToken", map[string]any{
		"tokenId": tokenID,
		"from":    conn.AccountID,
		"to":      to,
		"amount":  units.String(),
	})
}

func (d nativeDialect) transferNonFungible(ctx context.Context, p Provider, conn model.WalletConnection, tokenID string, serial int64, to string) (model.TransactionID, error) {
	if _, err := ParseAccountID(to); err != nil {
		return "", err
	}
	return d.submit(ctx, p, "hedera_transferNft", map[string]any{
		"tokenId": tokenID,
		"serial":  serial,
		"from":    conn.AccountID,
		"to":      to,
	})
}

func (d nativeDialect) associate(ctx context.Context, p Provider, conn model.WalletConnection, tokenID string) (model.TransactionID, error) {
	return d.submit(ctx, p, "hedera_associateToken", map[string]any{
		"accountId": conn.AccountID,
		"tokenIds":  []string{tokenID},
	})
}

// evmDialect talks to EVM wallets through the ledger's JSON-RPC relay.
// Tokens are reached through their ERC facades at the long-zero address.
type evmDialect struct{}

var tokenFacadeABI = MustParseABI(`[
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"associate","stateMutability":"nonpayable","inputs":[],"outputs":[{"name":"responseCode","type":"uint256"}]}
]`)

var chainNetworks = map[uint64]string{295: "mainnet", 296: "testnet", 297: "previewnet"}

type evmTx struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Data  string `json:"data,omitempty"`
	Value string `json:"value,omitempty"`
	Gas   string `json:"gas,omitempty"`
}

func (evmDialect) connect(ctx context.Context, p Provider, kind model.WalletKind) (model.WalletConnection, error) {
	raw, err := p.Request(ctx, "eth_requestAccounts", []any{})
	if err != nil {
		return model.WalletConnection{}, connectError(err)
	}
	accounts, err := decodeResult[[]string](raw, "eth_requestAccounts")
	if err != nil {
		return model.WalletConnection{}, err
	}
	if len(accounts) == 0 {
		return model.WalletConnection{}, fmt.Errorf("no account exposed%w", model.ErrConnection)
	}
	address, err := ChecksumAddress(accounts[0])
	if err != nil {
		return model.WalletConnection{}, fmt.Errorf("wallet returned address %q%w", accounts[0], model.ErrTransport)
	}

	conn := model.WalletConnection{AccountID: address, PublicKey: address, Kind: kind}
	if raw, err := p.Request(ctx, "eth_chainId", []any{}); err == nil {
		if chainID, err := decodeResult[hexutil.Uint64](raw, "eth_chainId"); err == nil {
			conn.Network = chainNetworks[uint64(chainID)]
		}
	}
	return conn, nil
}

func (evmDialect) disconnect(ctx context.Context, p Provider) error {
	_, err := p.Request(ctx, "wallet_revokePermissions", []any{map[string]any{"eth_accounts": map[string]any{}}})
	return err
}

func (evmDialect) send(ctx context.Context, p Provider, tx evmTx) (model.TransactionID, error) {
	raw, err := p.Request(ctx, "eth_sendTransaction", []any{tx})
	if err != nil {
		return "", submitError("eth_sendTransaction", err)
	}
	hash, err := decodeResult[string](raw, "eth_sendTransaction")
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(hash, "0x") || len(hash) != 66 {
		return "", fmt.Errorf("eth_sendTransaction: unexpected hash %q%w", hash, model.ErrTransport)
	}
	return model.TransactionID(hash), nil
}

func (d evmDialect) contractCall(ctx context.Context, p Provider, conn model.WalletConnection, call ContractCall) (model.TransactionID, error) {
	to, err := ToEVMAddress(call.ContractID)
	if err != nil {
		return "", err
	}
	tx := evmTx{From: conn.AccountID, To: to.Hex(), Data: hexutil.Encode(call.Data)}
	if call.Gas > 0 {
		tx.Gas = hexutil.EncodeUint64(call.Gas)
	}
	if call.PayableAmount.IsPositive() {
		wei, err := toUnits(call.PayableAmount, evmDecimals)
		if err != nil {
			return "", err
		}
		tx.Value = hexutil.EncodeBig(wei.BigInt())
	}
	return d.send(ctx, p, tx)
}

func (d evmDialect) transferNative(ctx context.Context, p Provider, conn model.WalletConnection, to string, amount decimal.Decimal) (model.TransactionID, error) {
	toAddr, err := ToEVMAddress(to)
	if err != nil {
		return "", err
	}
	wei, err := toUnits(amount, evmDecimals)
	if err != nil {
		return "", err
	}
	return d.send(ctx, p, evmTx{From: conn.AccountID, To: toAddr.Hex(), Value: hexutil.EncodeBig(wei.BigInt())})
}

func (d evmDialect) transferFungible(ctx context.Context, p Provider, conn model.WalletConnection, tokenID, to string, units decimal.Decimal) (model.TransactionID, error) {
	token, toAddr, err := tokenAndRecipient(tokenID, to)
	if err != nil {
		return "", err
	}
	data, err := tokenFacadeABI.Pack("transfer", toAddr, units.BigInt())
	if err != nil {
		return "", err
	}
	return d.send(ctx, p, evmTx{From: conn.AccountID, To: token.Hex(), Data: hexutil.Encode(data)})
}

func (d evmDialect) transferNonFungible(ctx context.Context, p Provider, conn model.WalletConnection, tokenID string, serial int64, to string) (model.TransactionID, error) {
	token, toAddr, err := tokenAndRecipient(tokenID, to)
	if err != nil {
		return "", err
	}
	data, err := tokenFacadeABI.Pack("transferFrom", common.HexToAddress(conn.AccountID), toAddr, big.NewInt(serial))
	if err != nil {
		return "", err
	}
	return d.send(ctx, p, evmTx{From: conn.AccountID, To: token.Hex(), Data: hexutil.Encode(data)})
}

func (d evmDialect) associate(ctx context.Context, p Provider, conn model.WalletConnection, tokenID string) (model.TransactionID, error) {
	token, err := ToEVMAddress(tokenID)
	if err != nil {
		return "", err
	}
	data, err := tokenFacadeABI.Pack("associate")
	if err != nil {
		return "", err
	}
	return d.send(ctx, p, evmTx{From: conn.AccountID, To: token.Hex(), Data: hexutil.Encode(data)})
}

func tokenAndRecipient(tokenID, to string) (common.Address, common.Address, error) {
	token, err := ToEVMAddress(tokenID)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	toAddr, err := ToEVMAddress(to)
	if err != nil {
		return common.Address{}, common.Address{}, err
	}
	return token, toAddr, nil
}
