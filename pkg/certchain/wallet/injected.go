package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/util"
	"github.com/sirupsen/logrus"
)

const (
	DefaultConnectTimeout = 2 * time.Minute
	defaultPollAttempts   = 10
	defaultPollDelay      = 200 * time.Millisecond
	defaultPollMaxDelay   = 5 * time.Second
)

// InjectedWallet is an adapter for wallets that expose their provider
// directly (hashpack, blade, metamask).
type InjectedWallet struct {
	adapter
	locator ProviderLocator

	connectTimeout time.Duration
	pollAttempts   uint
	pollDelay      time.Duration
	pollMaxDelay   time.Duration
}

type InjectedWalletOption func(*InjectedWallet)

func InjectedWalletWithConnectTimeout(timeout time.Duration) InjectedWalletOption {
	return func(w *InjectedWallet) {
		w.connectTimeout = timeout
	}
}

// InjectedWalletWithPolling sets how often and how long the provider is looked up.
func InjectedWalletWithPolling(attempts uint, delay, maxDelay time.Duration) InjectedWalletOption {
	return func(w *InjectedWallet) {
		w.pollAttempts = attempts
		w.pollDelay = delay
		w.pollMaxDelay = maxDelay
	}
}

func NewInjectedWallet(kind model.WalletKind, locator ProviderLocator, opts ...InjectedWalletOption) (*InjectedWallet, error) {
	if !kind.IsValid() || kind == model.WalletWalletConnect {
		return nil, fmt.Errorf("%s: %w", kind, model.ErrUnsupportedWallet)
	}
	w := &InjectedWallet{
		adapter:        newAdapter(kind),
		locator:        locator,
		connectTimeout: DefaultConnectTimeout,
		pollAttempts:   defaultPollAttempts,
		pollDelay:      defaultPollDelay,
		pollMaxDelay:   defaultPollMaxDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *InjectedWallet) Connect(ctx context.Context) (model.WalletConnection, error) {
	ctx, cancel := context.WithTimeout(ctx, w.connectTimeout)
	defer cancel()
	attempt, err := w.sm.begin(cancel)
	if err != nil {
		return model.WalletConnection{}, err
	}

	conn, provider, err := w.connect(ctx)
	if err != nil {
		err = w.sm.fail(attempt, err)
		logrus.Debugf("%s wallet connect failed: %v", w.Kind(), err)
		return model.WalletConnection{}, err
	}
	if err := w.sm.succeed(attempt, conn, provider); err != nil {
		// Disconnected while the wallet was approving. The extension is
		// shared, so leave it alone if a newer attempt already took over.
		if w.sm.status().State == model.WalletStateDisconnected {
			if err := w.dialect.disconnect(context.Background(), provider); err != nil {
				logrus.Debugf("%s wallet disconnect of aborted connection: %v", w.Kind(), err)
			}
		}
		return model.WalletConnection{}, err
	}
	return conn, nil
}

func (w *InjectedWallet) connect(ctx context.Context) (model.WalletConnection, Provider, error) {
	provider, err := retry.DoWithData(
		func() (Provider, error) {
			return w.locator.Locate(ctx, w.Kind())
		},
		retry.Context(ctx),
		retry.Attempts(w.pollAttempts),
		retry.Delay(w.pollDelay),
		retry.MaxDelay(w.pollMaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, ErrProviderNotInjected)
		}),
	)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		return model.WalletConnection{}, nil, connectError(ctx.Err())
	case errors.Is(err, ErrProviderNotInjected):
		return model.WalletConnection{}, nil, fmt.Errorf("%s: %w", w.Kind(), model.ErrExtensionMissing)
	default:
		return model.WalletConnection{}, nil, err
	}

	conn, err := w.dialect.connect(ctx, provider, w.Kind())
	if err != nil {
		if ctx.Err() != nil {
			return model.WalletConnection{}, nil, connectError(ctx.Err())
		}
		return model.WalletConnection{}, nil, err
	}
	conn.SessionID = util.NewUUID()
	conn.ConnectedAt = time.Now().Unix()
	return conn, provider, nil
}

func (w *InjectedWallet) Disconnect(ctx context.Context) error {
	provider := w.sm.reset()
	if provider == nil {
		return nil
	}
	// The local session is gone either way.
	if err := w.dialect.disconnect(ctx, provider); err != nil {
		logrus.Warnf("%s wallet disconnect: %v", w.Kind(), err)
	}
	return nil
}
