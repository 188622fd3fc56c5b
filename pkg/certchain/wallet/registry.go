package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/sirupsen/logrus"
)

const defaultRestoreTimeout = 10 * time.Second

// Registry owns the wallet adapters of the process and the persisted session.
type Registry struct {
	wallets map[model.WalletKind]Wallet
	store   SessionStore

	restoreTimeout time.Duration
	disposeOnce    sync.Once
	mu             sync.Mutex // Orders session saves and clears.
}

type RegistryOption func(*Registry)

func RegistryWithRestoreTimeout(timeout time.Duration) RegistryOption {
	return func(r *Registry) {
		r.restoreTimeout = timeout
	}
}

func NewRegistry(store SessionStore, wallets []Wallet, opts ...RegistryOption) *Registry {
	r := &Registry{
		wallets:        make(map[model.WalletKind]Wallet, len(wallets)),
		store:          store,
		restoreTimeout: defaultRestoreTimeout,
	}
	for _, w := range wallets {
		r.wallets[w.Kind()] = w
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init restores the persisted session. Only injected wallets are restored;
// a relay session needs a fresh pairing. A session that cannot be restored
// is cleared.
func (r *Registry) Init(ctx context.Context) error {
	session, err := r.store.Load()
	if errors.Is(err, model.ErrDataNotFound) {
		return nil
	} else if err != nil {
		return err
	}

	w, ok := r.wallets[session.Kind]
	if !ok || session.Kind == model.WalletWalletConnect {
		return r.store.Clear()
	}

	ctx, cancel := context.WithTimeout(ctx, r.restoreTimeout)
	defer cancel()
	conn, err := w.Connect(ctx)
	if err != nil || conn.AccountID != session.AccountID {
		logrus.Infof("wallet session of %s (%s) not restored: %v", session.Kind, session.AccountID, err)
		if err == nil {
			_ = w.Disconnect(ctx)
		}
		return r.store.Clear()
	}
	logrus.Infof("wallet session of %s (%s) restored", session.Kind, session.AccountID)
	return nil
}

func (r *Registry) Wallet(kind model.WalletKind) (Wallet, error) {
	w, ok := r.wallets[kind]
	if !ok {
		return nil, fmt.Errorf("%s: %w", kind, model.ErrUnsupportedWallet)
	}
	return w, nil
}

// Connect connects the wallet of the kind and persists the session. Nothing
// is persisted when the wallet is disconnected before the connection lands.
func (r *Registry) Connect(ctx context.Context, kind model.WalletKind) (model.WalletConnection, error) {
	w, err := r.Wallet(kind)
	if err != nil {
		return model.WalletConnection{}, err
	}
	conn, err := w.Connect(ctx)
	if err != nil {
		return model.WalletConnection{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if status := w.Status(); status.Connection == nil || status.Connection.SessionID != conn.SessionID {
		return model.WalletConnection{}, fmt.Errorf("%s: %w", kind, model.ErrConnectionAborted)
	}
	session := Session{AccountID: conn.AccountID, Kind: kind, Timestamp: conn.ConnectedAt}
	if err := r.store.Save(session); err != nil {
		logrus.Warnf("failed to persist wallet session: %v", err)
	}
	return conn, nil
}

// Disconnect disconnects the wallet of the kind and forgets its session.
func (r *Registry) Disconnect(ctx context.Context, kind model.WalletKind) error {
	w, err := r.Wallet(kind)
	if err != nil {
		return err
	}
	if err := w.Disconnect(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	session, err := r.store.Load()
	if err == nil && session.Kind == kind {
		return r.store.Clear()
	}
	return nil
}

// Active returns the preferred connected wallet, or ("", nil).
func (r *Registry) Active() (string, Wallet) {
	return Resolve(r.wallets)
}

func (r *Registry) Statuses() []Status {
	statuses := make([]Status, 0, len(r.wallets))
	for _, kind := range Priority {
		if w, ok := r.wallets[kind]; ok {
			statuses = append(statuses, w.Status())
		}
	}
	return statuses
}

// Dispose disconnects every adapter. The persisted session is kept so the
// next Init can restore it. Calling Dispose more than once is a no-op.
func (r *Registry) Dispose(ctx context.Context) {
	r.disposeOnce.Do(func() {
		for kind, w := range r.wallets {
			if err := w.Disconnect(ctx); err != nil {
				logrus.Warnf("dispose %s wallet: %v", kind, err)
			}
		}
	})
}
