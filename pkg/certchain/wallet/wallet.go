// Package wallet bridges wallet providers to one capability interface.
//
// Every adapter follows the same state machine:
//
//	Disconnected -> Connecting -> Connected -> Disconnected
//
// with Connecting falling back to Disconnected when the connect attempt fails
// or the wallet is disconnected before the attempt completes.
// Submitting operations return the transaction id as soon as the wallet
// accepts the transaction; settlement is not awaited.
package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/shopspring/decimal"
)

type Wallet interface {
	Kind() model.WalletKind
	Status() Status

	Connect(ctx context.Context) (model.WalletConnection, error)
	// Disconnect is idempotent.
	Disconnect(ctx context.Context) error

	ExecuteContractCall(ctx context.Context, call ContractCall) (model.TransactionID, error)
	TransferNative(ctx context.Context, to string, amount decimal.Decimal) (model.TransactionID, error)
	TransferFungible(ctx context.Context, tokenID string, to string, amount decimal.Decimal, decimals int32) (model.TransactionID, error)
	TransferNonFungible(ctx context.Context, tokenID string, serial int64, to string) (model.TransactionID, error)
	AssociateToken(ctx context.Context, tokenID string) (model.TransactionID, error)
}

type Status struct {
	Kind       model.WalletKind        `json:"kind"`
	State      model.WalletState       `json:"state"`
	Connection *model.WalletConnection `json:"connection,omitempty"`
	PairingURI string                  `json:"pairing_uri,omitempty"`
}

// AccountID returns the connected account or "" when not connected.
func (s Status) AccountID() string {
	if s.State != model.WalletStateConnected || s.Connection == nil {
		return ""
	}
	return s.Connection.AccountID
}

type ContractCall struct {
	ContractID    string          // Native contract id or 0x address.
	Data          []byte          // ABI encoded function selector and arguments.
	Gas           uint64          // Gas limit.
	PayableAmount decimal.Decimal // Native currency sent along, in whole units.
}

// NewContractCall packs method(args...) against contractABI.
func NewContractCall(contractID string, contractABI abi.ABI, method string, gas uint64, args ...any) (ContractCall, error) {
	data, err := contractABI.Pack(method, args...)
	if err != nil {
		return ContractCall{}, fmt.Errorf("pack %s: %s%w", method, err.Error(), model.ErrInvalidParameter)
	}
	return ContractCall{ContractID: contractID, Data: data, Gas: gas}, nil
}

// MustParseABI parses a JSON ABI definition and panics on error.
func MustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// toUnits converts a whole-unit amount to the smallest unit with the given
// number of decimals. Amounts must be positive and representable exactly.
func toUnits(amount decimal.Decimal, decimals int32) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive%w", model.ErrInvalidParameter)
	}
	units := amount.Shift(decimals)
	if !units.Equal(units.Truncate(0)) {
		return decimal.Zero, fmt.Errorf("amount %s has more than %d decimals%w", amount, decimals, model.ErrInvalidParameter)
	}
	return units, nil
}
