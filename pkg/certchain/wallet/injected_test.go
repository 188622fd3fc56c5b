package wallet_test

import (
	"context"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/wallet"
	mock_wallet "github.com/certchain/certchain/test/mock/certchain/wallet"
	"github.com/goccy/go-json"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type InjectedWalletTestSuite struct {
	suite.Suite

	ctx      context.Context
	ctrl     *gomock.Controller
	locator  *mock_wallet.MockProviderLocator
	provider *mock_wallet.MockProvider
}

func TestInjectedWallet(t *testing.T) {
	suite.Run(t, new(InjectedWalletTestSuite))
}

func (s *InjectedWalletTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.locator = mock_wallet.NewMockProviderLocator(s.ctrl)
	s.provider = mock_wallet.NewMockProvider(s.ctrl)
}

func (s *InjectedWalletTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *InjectedWalletTestSuite) newWallet(kind model.WalletKind) *wallet.InjectedWallet {
	w, err := wallet.NewInjectedWallet(kind, s.locator,
		wallet.InjectedWalletWithPolling(3, time.Millisecond, 5*time.Millisecond),
		wallet.InjectedWalletWithConnectTimeout(time.Second),
	)
	s.Require().NoError(err)
	return w
}

func (s *InjectedWalletTestSuite) connectHashPack() *wallet.InjectedWallet {
	w := s.newWallet(model.WalletHashPack)
	gomock.InOrder(
		s.locator.EXPECT().Locate(gomock.Any(), model.WalletHashPack).Return(s.provider, nil),
		s.provider.EXPECT().Request(gomock.Any(), "hedera_connect", nil).
			Return(json.RawMessage(`{"accountId":"0.0.1234","publicKey":"302a300506","network":"testnet"}`), nil),
	)
	_, err := w.Connect(s.ctx)
	s.Require().NoError(err)
	return w
}

func (s *InjectedWalletTestSuite) TestConnect() {
	w := s.connectHashPack()

	status := w.Status()
	s.Equal(model.WalletStateConnected, status.State)
	s.Equal("0.0.1234", status.AccountID())
	s.Require().NotNil(status.Connection)
	s.Equal("testnet", status.Connection.Network)
	s.Equal(model.WalletHashPack, status.Connection.Kind)
	s.NotEmpty(status.Connection.SessionID)
	s.NotZero(status.Connection.ConnectedAt)

	_, err := w.Connect(s.ctx)
	s.ErrorIs(err, model.ErrWrongStatus)
	s.Equal(model.WalletStateConnected, w.Status().State)
}

func (s *InjectedWalletTestSuite) TestConnectExtensionMissing() {
	w := s.newWallet(model.WalletBlade)
	s.locator.EXPECT().Locate(gomock.Any(), model.WalletBlade).Return(nil, wallet.ErrProviderNotInjected).Times(3)

	_, err := w.Connect(s.ctx)
	s.ErrorIs(err, model.ErrExtensionMissing)
	s.ErrorIs(err, model.ErrConnection)
	s.Equal(model.WalletStateDisconnected, w.Status().State)
}

func (s *InjectedWalletTestSuite) TestConnectProviderInjectedLate() {
	w := s.newWallet(model.WalletHashPack)
	gomock.InOrder(
		s.locator.EXPECT().Locate(gomock.Any(), model.WalletHashPack).Return(nil, wallet.ErrProviderNotInjected).Times(2),
		s.locator.EXPECT().Locate(gomock.Any(), model.WalletHashPack).Return(s.provider, nil),
		s.provider.EXPECT().Request(gomock.Any(), "hedera_connect", nil).
			Return(json.RawMessage(`{"accountId":"0.0.77","publicKey":"","network":"mainnet"}`), nil),
	)

	conn, err := w.Connect(s.ctx)
	s.Require().NoError(err)
	s.Equal("0.0.77", conn.AccountID)
}

func (s *InjectedWalletTestSuite) TestConnectUserRejected() {
	w := s.newWallet(model.WalletHashPack)
	gomock.InOrder(
		s.locator.EXPECT().Locate(gomock.Any(), model.WalletHashPack).Return(s.provider, nil),
		s.provider.EXPECT().Request(gomock.Any(), "hedera_connect", nil).
			Return(nil, &wallet.RPCError{Code: wallet.CodeUserRejected, Message: "User rejected"}),
	)

	_, err := w.Connect(s.ctx)
	s.ErrorIs(err, model.ErrUserRejected)
	s.Equal(model.WalletStateDisconnected, w.Status().State)

	// A failed attempt leaves the adapter ready for another one.
	gomock.InOrder(
		s.locator.EXPECT().Locate(gomock.Any(), model.WalletHashPack).Return(s.provider, nil),
		s.provider.EXPECT().Request(gomock.Any(), "hedera_connect", nil).
			Return(json.RawMessage(`{"accountId":"0.0.1234"}`), nil),
	)
	_, err = w.Connect(s.ctx)
	s.NoError(err)
}

func (s *InjectedWalletTestSuite) TestConnectTimeout() {
	w, err := wallet.NewInjectedWallet(model.WalletMetaMask, s.locator,
		wallet.InjectedWalletWithConnectTimeout(20*time.Millisecond),
	)
	s.Require().NoError(err)

	gomock.InOrder(
		s.locator.EXPECT().Locate(gomock.Any(), model.WalletMetaMask).Return(s.provider, nil),
		s.provider.EXPECT().Request(gomock.Any(), "eth_requestAccounts", gomock.Any()).DoAndReturn(
			func(ctx context.Context, method string, params any) (json.RawMessage, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		),
	)

	_, err = w.Connect(s.ctx)
	s.ErrorIs(err, model.ErrConnectionTimeout)
	s.Equal(model.WalletStateDisconnected, w.Status().State)
}

func (s *InjectedWalletTestSuite) TestConnectWhileConnecting() {
	w := s.newWallet(model.WalletHashPack)
	entered := make(chan struct{})
	release := make(chan struct{})
	gomock.InOrder(
		s.locator.EXPECT().Locate(gomock.Any(), model.WalletHashPack).Return(s.provider, nil),
		s.provider.EXPECT().Request(gomock.Any(), "hedera_connect", nil).DoAndReturn(
			func(ctx context.Context, method string, params any) (json.RawMessage, error) {
				close(entered)
				<-release
				return json.RawMessage(`{"accountId":"0.0.1234"}`), nil
			},
		),
	)

	done := make(chan error, 1)
	go func() {
		_, err := w.Connect(s.ctx)
		done <- err
	}()
	<-entered
	s.Equal(model.WalletStateConnecting, w.Status().State)
	_, err := w.Connect(s.ctx)
	s.ErrorIs(err, model.ErrWrongStatus)

	close(release)
	s.NoError(<-done)
}

// blockedConnect makes the next hedera_connect wait for release, ignoring ctx
// the way an extension popup does.
func (s *InjectedWalletTestSuite) blockedConnect(w *wallet.InjectedWallet, account string) (entered, release chan struct{}, done chan error) {
	entered = make(chan struct{})
	release = make(chan struct{})
	done = make(chan error, 1)
	gomock.InOrder(
		s.locator.EXPECT().Locate(gomock.Any(), model.WalletHashPack).Return(s.provider, nil),
		s.provider.EXPECT().Request(gomock.Any(), "hedera_connect", nil).DoAndReturn(
			func(ctx context.Context, method string, params any) (json.RawMessage, error) {
				close(entered)
				<-release
				return json.RawMessage(`{"accountId":"` + account + `"}`), nil
			},
		),
	)
	go func() {
		_, err := w.Connect(s.ctx)
		done <- err
	}()
	return entered, release, done
}

func (s *InjectedWalletTestSuite) TestDisconnectWhileConnecting() {
	w := s.newWallet(model.WalletHashPack)
	entered, release, done := s.blockedConnect(w, "0.0.1234")
	<-entered

	s.Require().NoError(w.Disconnect(s.ctx))
	s.Equal(model.WalletStateDisconnected, w.Status().State)

	// The approval arriving late is dropped and the extension released.
	s.provider.EXPECT().Request(gomock.Any(), "hedera_disconnect", nil).Return(json.RawMessage(`null`), nil)
	close(release)
	s.ErrorIs(<-done, model.ErrConnectionAborted)
	s.Equal(model.WalletStateDisconnected, w.Status().State)
	s.Nil(w.Status().Connection)

	_, err := w.TransferNative(s.ctx, "0.0.2", decimal.NewFromInt(1))
	s.ErrorIs(err, model.ErrNotConnected)
}

func (s *InjectedWalletTestSuite) TestLateApprovalDoesNotOverrideNewerConnection() {
	w := s.newWallet(model.WalletHashPack)
	entered, release, done := s.blockedConnect(w, "0.0.1111")
	<-entered
	s.Require().NoError(w.Disconnect(s.ctx))

	gomock.InOrder(
		s.locator.EXPECT().Locate(gomock.Any(), model.WalletHashPack).Return(s.provider, nil),
		s.provider.EXPECT().Request(gomock.Any(), "hedera_connect", nil).
			Return(json.RawMessage(`{"accountId":"0.0.2222"}`), nil),
	)
	conn, err := w.Connect(s.ctx)
	s.Require().NoError(err)
	s.Equal("0.0.2222", conn.AccountID)

	close(release)
	s.ErrorIs(<-done, model.ErrConnectionAborted)
	s.Equal(model.WalletStateConnected, w.Status().State)
	s.Equal("0.0.2222", w.Status().AccountID())
}

func (s *InjectedWalletTestSuite) TestOperationsRequireConnection() {
	w := s.newWallet(model.WalletHashPack)

	_, err := w.TransferNative(s.ctx, "0.0.2", decimal.NewFromInt(1))
	s.ErrorIs(err, model.ErrNotConnected)
	_, err = w.AssociateToken(s.ctx, "0.0.9000")
	s.ErrorIs(err, model.ErrNotConnected)
	_, err = w.ExecuteContractCall(s.ctx, wallet.ContractCall{ContractID: "0.0.5005", Data: []byte{1}})
	s.ErrorIs(err, model.ErrNotConnected)
}

func (s *InjectedWalletTestSuite) TestTransferNative() {
	w := s.connectHashPack()

	s.provider.EXPECT().Request(gomock.Any(), "hedera_transferHbar", map[string]any{
		"from":   "0.0.1234",
		"to":     "0.0.2",
		"amount": "150000000",
	}).Return(json.RawMessage(`{"transactionId":"0.0.1234@1717200000.000000001"}`), nil)

	txID, err := w.TransferNative(s.ctx, "0.0.2", decimal.RequireFromString("1.5"))
	s.Require().NoError(err)
	s.Equal(model.TransactionID("0.0.1234@1717200000.000000001"), txID)

	_, err = w.TransferNative(s.ctx, "0.0.2", decimal.RequireFromString("0.000000001"))
	s.ErrorIs(err, model.ErrInvalidParameter)
	_, err = w.TransferNative(s.ctx, "0.0.2", decimal.Zero)
	s.ErrorIs(err, model.ErrInvalidParameter)
	_, err = w.TransferNative(s.ctx, "alice", decimal.NewFromInt(1))
	s.ErrorIs(err, model.ErrInvalidParameter)
}

func (s *InjectedWalletTestSuite) TestTransferFungible() {
	w := s.connectHashPack()

	s.provider.EXPECT().Request(gomock.Any(), "hedera_transferToken", map[string]any{
		"tokenId": "0.0.9000",
		"from":    "0.0.1234",
		"to":      "0.0.2",
		"amount":  "1250",
	}).Return(json.RawMessage(`{"transactionId":"0.0.1234@1717200000.000000002"}`), nil)

	_, err := w.TransferFungible(s.ctx, "0.0.9000", "0.0.2", decimal.RequireFromString("12.5"), 2)
	s.NoError(err)
}

func (s *InjectedWalletTestSuite) TestExecuteContractCall() {
	w := s.connectHashPack()
	contractABI := wallet.MustParseABI(`[{"type":"function","name":"ping","inputs":[],"outputs":[]}]`)
	call, err := wallet.NewContractCall("0.0.5005", contractABI, "ping", 100000)
	s.Require().NoError(err)

	s.provider.EXPECT().Request(gomock.Any(), "hedera_executeContractCall", map[string]any{
		"accountId":          "0.0.1234",
		"contractId":         "0.0.5005",
		"functionParameters": hex.EncodeToString(call.Data),
		"gas":                uint64(100000),
	}).Return(nil, &wallet.RPCError{Code: 4001, Message: "declined"})

	_, err = w.ExecuteContractCall(s.ctx, call)
	s.ErrorIs(err, model.ErrWalletRejected)

	_, err = wallet.NewContractCall("0.0.5005", contractABI, "missing", 100000)
	s.ErrorIs(err, model.ErrInvalidParameter)
}

func (s *InjectedWalletTestSuite) TestMetaMask() {
	w := s.newWallet(model.WalletMetaMask)
	gomock.InOrder(
		s.locator.EXPECT().Locate(gomock.Any(), model.WalletMetaMask).Return(s.provider, nil),
		s.provider.EXPECT().Request(gomock.Any(), "eth_requestAccounts", gomock.Any()).
			Return(json.RawMessage(`["0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"]`), nil),
		s.provider.EXPECT().Request(gomock.Any(), "eth_chainId", gomock.Any()).
			Return(json.RawMessage(`"0x128"`), nil),
	)

	conn, err := w.Connect(s.ctx)
	s.Require().NoError(err)
	s.Equal("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", conn.AccountID)
	s.Equal("testnet", conn.Network)

	s.provider.EXPECT().Request(gomock.Any(), "eth_sendTransaction", gomock.Any()).DoAndReturn(
		func(ctx context.Context, method string, params any) (json.RawMessage, error) {
			raw, err := json.Marshal(params)
			s.Require().NoError(err)
			txs := []map[string]string{}
			s.Require().NoError(json.Unmarshal(raw, &txs))
			s.Require().Len(txs, 1)
			s.Equal("0x0000000000000000000000000000000000000002", txs[0]["to"])
			s.Equal("0x1bc16d674ec80000", txs[0]["value"]) // 2 * 10^18
			return json.RawMessage(`"0x` + strings.Repeat("ab", 32) + `"`), nil
		},
	)
	txID, err := w.TransferNative(s.ctx, "0.0.2", decimal.NewFromInt(2))
	s.Require().NoError(err)
	s.Len(string(txID), 66)

	s.provider.EXPECT().Request(gomock.Any(), "wallet_revokePermissions", gomock.Any()).Return(json.RawMessage(`null`), nil)
	s.NoError(w.Disconnect(s.ctx))
	s.NoError(w.Disconnect(s.ctx))
	s.Equal(model.WalletStateDisconnected, w.Status().State)
}

func (s *InjectedWalletTestSuite) TestUnsupportedKind() {
	_, err := wallet.NewInjectedWallet(model.WalletWalletConnect, s.locator)
	s.ErrorIs(err, model.ErrUnsupportedWallet)
	_, err = wallet.NewInjectedWallet("phantom", s.locator)
	s.ErrorIs(err, model.ErrInvalidParameter)
}
