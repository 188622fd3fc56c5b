package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/certchain/certchain/pkg/certchain/model"
)

// stateMachine holds the connection state of one adapter.
//
// Every connect attempt gets a new number. Disconnect cancels the attempt in
// flight; its outcome is refused when it finally arrives, even if a newer
// attempt has started meanwhile.
type stateMachine struct {
	mu         sync.Mutex
	kind       model.WalletKind
	state      model.WalletState
	conn       model.WalletConnection
	provider   Provider
	pairingURI string

	attempt uint64
	cancel  context.CancelFunc // Cancels the attempt in flight.
}

func newStateMachine(kind model.WalletKind) *stateMachine {
	return &stateMachine{kind: kind, state: model.WalletStateDisconnected}
}

// begin moves to Connecting and returns the number of the new attempt.
func (m *stateMachine) begin(cancel context.CancelFunc) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != model.WalletStateDisconnected {
		return 0, fmt.Errorf("%s wallet is %s%w", m.kind, m.state, model.ErrWrongStatus)
	}
	m.state = model.WalletStateConnecting
	m.attempt++
	m.cancel = cancel
	return m.attempt, nil
}

func (m *stateMachine) current(attempt uint64) bool {
	return m.attempt == attempt && m.state == model.WalletStateConnecting
}

func (m *stateMachine) setPairingURI(attempt uint64, uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current(attempt) {
		m.pairingURI = uri
	}
}

// succeed moves to Connected unless the attempt was aborted meanwhile.
func (m *stateMachine) succeed(attempt uint64, conn model.WalletConnection, provider Provider) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current(attempt) {
		return fmt.Errorf("%s: %w", m.kind, model.ErrConnectionAborted)
	}
	m.state = model.WalletStateConnected
	m.conn = conn
	m.provider = provider
	m.pairingURI = ""
	m.cancel = nil
	return nil
}

// fail moves back to Disconnected. It returns model.ErrConnectionAborted
// instead of err when the attempt was aborted by a disconnect.
func (m *stateMachine) fail(attempt uint64, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.current(attempt) {
		return fmt.Errorf("%s: %w", m.kind, model.ErrConnectionAborted)
	}
	m.clear()
	return err
}

// reset moves to Disconnected, aborting the attempt in flight, and returns
// the provider that was active, if any.
func (m *stateMachine) reset() Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	provider := m.provider
	m.clear()
	return provider
}

func (m *stateMachine) clear() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.state = model.WalletStateDisconnected
	m.conn = model.WalletConnection{}
	m.provider = nil
	m.pairingURI = ""
}

func (m *stateMachine) session() (Provider, model.WalletConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != model.WalletStateConnected {
		return nil, model.WalletConnection{}, fmt.Errorf("%s: %w", m.kind, model.ErrNotConnected)
	}
	return m.provider, m.conn, nil
}

func (m *stateMachine) status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Status{Kind: m.kind, State: m.state, PairingURI: m.pairingURI}
	if m.state == model.WalletStateConnected {
		conn := m.conn
		s.Connection = &conn
	}
	return s
}
