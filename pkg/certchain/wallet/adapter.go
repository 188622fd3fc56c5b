package wallet

import (
	"context"
	"fmt"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/shopspring/decimal"
)

// adapter implements the submitting half of Wallet on top of the state
// machine. Concrete wallets supply Connect and Disconnect.
type adapter struct {
	sm      *stateMachine
	dialect dialect
}

func newAdapter(kind model.WalletKind) adapter {
	return adapter{sm: newStateMachine(kind), dialect: dialectOf(kind)}
}

func (a *adapter) Kind() model.WalletKind {
	return a.sm.kind
}

func (a *adapter) Status() Status {
	return a.sm.status()
}

func (a *adapter) ExecuteContractCall(ctx context.Context, call ContractCall) (model.TransactionID, error) {
	provider, conn, err := a.sm.session()
	if err != nil {
		return "", err
	}
	if len(call.Data) == 0 {
		return "", fmt.Errorf("empty call data%w", model.ErrInvalidParameter)
	}
	return a.dialect.contractCall(ctx, provider, conn, call)
}

func (a *adapter) TransferNative(ctx context.Context, to string, amount decimal.Decimal) (model.TransactionID, error) {
	provider, conn, err := a.sm.session()
	if err != nil {
		return "", err
	}
	return a.dialect.transferNative(ctx, provider, conn, to, amount)
}

func (a *adapter) TransferFungible(ctx context.Context, tokenID, to string, amount decimal.Decimal, decimals int32) (model.TransactionID, error) {
	provider, conn, err := a.sm.session()
	if err != nil {
		return "", err
	}
	if decimals < 0 {
		return "", fmt.Errorf("negative token decimals%w", model.ErrInvalidParameter)
	}
	units, err := toUnits(amount, decimals)
	if err != nil {
		return "", err
	}
	return a.dialect.transferFungible(ctx, provider, conn, tokenID, to, units)
}

func (a *adapter) TransferNonFungible(ctx context.Context, tokenID string, serial int64, to string) (model.TransactionID, error) {
	provider, conn, err := a.sm.session()
	if err != nil {
		return "", err
	}
	if serial <= 0 {
		return "", fmt.Errorf("serial must be positive%w", model.ErrInvalidParameter)
	}
	return a.dialect.transferNonFungible(ctx, provider, conn, tokenID, serial, to)
}

func (a *adapter) AssociateToken(ctx context.Context, tokenID string) (model.TransactionID, error) {
	provider, conn, err := a.sm.session()
	if err != nil {
		return "", err
	}
	return a.dialect.associate(ctx, provider, conn, tokenID)
}
