package wallet

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/relay"
	"github.com/certchain/certchain/pkg/util"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

const defaultProposeInterval = 5 * time.Second

// SessionProposal is published on the pairing topic until a wallet answers.
type SessionProposal struct {
	ID           string `json:"id"`
	SessionTopic string `json:"session_topic"`
	Name         string `json:"name"`
	URL          string `json:"url,omitempty"`
}

// SessionSettlement is the wallet's approval of a proposal.
type SessionSettlement struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	PublicKey string `json:"public_key"`
	Network   string `json:"network"`
}

type SessionRejection struct {
	ID     string `json:"id"`
	Reason string `json:"reason,omitempty"`
}

type SessionRequest struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

type SessionResult struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *RPCError       `json:"error,omitempty"`
}

// RelayWallet pairs with a remote wallet over the relay. The remote wallet
// joins the pairing topic from the URI in Status().PairingURI.
type RelayWallet struct {
	adapter
	client relay.RelayClient

	relayURL        string
	name            string
	connectTimeout  time.Duration
	proposeInterval time.Duration
}

type RelayWalletOption func(*RelayWallet)

func RelayWalletWithConnectTimeout(timeout time.Duration) RelayWalletOption {
	return func(w *RelayWallet) {
		w.connectTimeout = timeout
	}
}

func RelayWalletWithProposeInterval(interval time.Duration) RelayWalletOption {
	return func(w *RelayWallet) {
		w.proposeInterval = interval
	}
}

// RelayWalletWithMetadata sets the relay url and the application name shown to the wallet.
func RelayWalletWithMetadata(relayURL, name string) RelayWalletOption {
	return func(w *RelayWallet) {
		w.relayURL = relayURL
		w.name = name
	}
}

func NewRelayWallet(client relay.RelayClient, opts ...RelayWalletOption) *RelayWallet {
	w := &RelayWallet{
		adapter:         newAdapter(model.WalletWalletConnect),
		client:          client,
		name:            "certchain",
		connectTimeout:  DefaultConnectTimeout,
		proposeInterval: defaultProposeInterval,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func PairingURI(topic, relayURL string) string {
	uri := fmt.Sprintf("wc:%s@2?relay-protocol=certchain", topic)
	if relayURL != "" {
		uri += "&relay-url=" + url.QueryEscape(relayURL)
	}
	return uri
}

func (w *RelayWallet) Connect(ctx context.Context) (model.WalletConnection, error) {
	ctx, cancel := context.WithTimeout(ctx, w.connectTimeout)
	defer cancel()
	attempt, err := w.sm.begin(cancel)
	if err != nil {
		return model.WalletConnection{}, err
	}

	conn, session, err := w.pair(ctx, attempt)
	if err != nil {
		err = w.sm.fail(attempt, err)
		logrus.Debugf("walletconnect pairing failed: %v", err)
		return model.WalletConnection{}, err
	}
	if err := w.sm.succeed(attempt, conn, session); err != nil {
		// Disconnected while the wallet was settling.
		w.closeSession(context.Background(), session)
		return model.WalletConnection{}, err
	}
	return conn, nil
}

func (w *RelayWallet) pair(ctx context.Context, attempt uint64) (model.WalletConnection, *relaySession, error) {
	pairingTopic := util.NewUUID()
	proposal := SessionProposal{
		ID:           util.NewRequestID(),
		SessionTopic: util.NewUUID(),
		Name:         w.name,
		URL:          w.relayURL,
	}
	w.sm.setPairingURI(attempt, PairingURI(pairingTopic, w.relayURL))

	answers := make(chan relay.Message, 4)
	sink := func(ctx context.Context, msg relay.Message) error {
		select {
		case answers <- msg:
		default:
		}
		return nil
	}
	if err := w.client.Subscribe(ctx, pairingTopic, sink); err != nil {
		return model.WalletConnection{}, nil, connectError(err)
	}
	defer func() {
		if err := w.client.Unsubscribe(context.Background(), pairingTopic); err != nil {
			logrus.Debugf("walletconnect: unsubscribe pairing topic: %v", err)
		}
	}()

	// Subscribe to the session topic before the wallet can settle on it.
	session := newRelaySession(w.client, proposal.SessionTopic, w.onRemoteDelete)
	if err := w.client.Subscribe(ctx, session.topic, session.receive); err != nil {
		return model.WalletConnection{}, nil, connectError(err)
	}

	settlement, err := w.awaitSettlement(ctx, pairingTopic, proposal, answers)
	if err != nil {
		_ = w.client.Unsubscribe(context.Background(), session.topic)
		return model.WalletConnection{}, nil, err
	}
	if _, err := ParseAccountID(settlement.AccountID); err != nil {
		_ = w.client.Unsubscribe(context.Background(), session.topic)
		return model.WalletConnection{}, nil, fmt.Errorf("wallet settled with account %q%w", settlement.AccountID, model.ErrTransport)
	}

	return model.WalletConnection{
		AccountID:   settlement.AccountID,
		PublicKey:   settlement.PublicKey,
		Kind:        model.WalletWalletConnect,
		Network:     settlement.Network,
		SessionID:   session.topic,
		ConnectedAt: time.Now().Unix(),
	}, session, nil
}

func (w *RelayWallet) awaitSettlement(ctx context.Context, pairingTopic string, proposal SessionProposal, answers <-chan relay.Message) (SessionSettlement, error) {
	payload, err := json.Marshal(proposal)
	if err != nil {
		return SessionSettlement{}, err
	}

	ticker := time.NewTicker(w.proposeInterval)
	defer ticker.Stop()
	for {
		// A wallet may join the pairing topic at any time, so the proposal is repeated.
		if err := w.client.Publish(ctx, pairingTopic, relay.TagSessionPropose, payload); err != nil && ctx.Err() == nil {
			logrus.Debugf("walletconnect: publish proposal: %v", err)
		}

		select {
		case <-ctx.Done():
			return SessionSettlement{}, connectError(ctx.Err())
		case <-ticker.C:
		case msg := <-answers:
			switch msg.Tag {
			case relay.TagSessionSettle:
				settlement := SessionSettlement{}
				if err := json.Unmarshal(msg.Data, &settlement); err != nil || settlement.ID != proposal.ID {
					continue
				}
				return settlement, nil
			case relay.TagSessionReject:
				rejection := SessionRejection{}
				if err := json.Unmarshal(msg.Data, &rejection); err != nil || rejection.ID != proposal.ID {
					continue
				}
				return SessionSettlement{}, model.ErrUserRejected
			}
		}
	}
}

func (w *RelayWallet) onRemoteDelete(topic string) {
	_, conn, err := w.sm.session()
	if err != nil || conn.SessionID != topic {
		return
	}
	logrus.Infof("walletconnect: session %s deleted by wallet", topic)
	w.sm.reset()
	// The relay read loop is running this callback.
	go func() {
		if err := w.client.Unsubscribe(context.Background(), topic); err != nil {
			logrus.Debugf("walletconnect: unsubscribe session topic: %v", err)
		}
	}()
}

func (w *RelayWallet) Disconnect(ctx context.Context) error {
	provider := w.sm.reset()
	if session, ok := provider.(*relaySession); ok {
		w.closeSession(ctx, session)
	}
	return nil
}

// closeSession tells the wallet the session is over and leaves its topic.
func (w *RelayWallet) closeSession(ctx context.Context, session *relaySession) {
	session.close()
	if err := w.client.Publish(ctx, session.topic, relay.TagSessionDelete, nil); err != nil {
		logrus.Warnf("walletconnect: publish session delete: %v", err)
	}
	if err := w.client.Unsubscribe(ctx, session.topic); err != nil {
		logrus.Warnf("walletconnect: unsubscribe session topic: %v", err)
	}
}

// relaySession is a Provider whose requests travel over a session topic.
type relaySession struct {
	client   relay.RelayClient
	topic    string
	onDelete func(topic string)

	mu      sync.Mutex
	closed  bool
	pending map[string]chan SessionResult
}

var errSessionClosed = fmt.Errorf("session closed%w", model.ErrNotConnected)

func newRelaySession(client relay.RelayClient, topic string, onDelete func(string)) *relaySession {
	return &relaySession{
		client:   client,
		topic:    topic,
		onDelete: onDelete,
		pending:  make(map[string]chan SessionResult),
	}
}

func (s *relaySession) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req := SessionRequest{ID: util.NewRequestID(), Method: method, Params: params}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	resultChan := make(chan SessionResult, 1)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, errSessionClosed
	}
	s.pending[req.ID] = resultChan
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.pending, req.ID)
		s.mu.Unlock()
	}()

	if err := s.client.Publish(ctx, s.topic, relay.TagSessionRequest, payload); err != nil {
		if errors.Is(err, model.ErrTransport) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %v%w", method, err, model.ErrTransport)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result, ok := <-resultChan:
		if !ok {
			return nil, errSessionClosed
		}
		if result.Error != nil {
			return nil, result.Error
		}
		return result.Result, nil
	}
}

// receive is the relay sink of the session topic.
func (s *relaySession) receive(_ context.Context, msg relay.Message) error {
	switch msg.Tag {
	case relay.TagSessionResult:
		result := SessionResult{}
		if err := json.Unmarshal(msg.Data, &result); err != nil {
			return err
		}
		s.mu.Lock()
		resultChan, ok := s.pending[result.ID]
		if ok {
			delete(s.pending, result.ID)
		}
		s.mu.Unlock()
		if ok {
			resultChan <- result
		}
	case relay.TagSessionDelete:
		s.close()
		if s.onDelete != nil {
			s.onDelete(s.topic)
		}
	}
	return nil
}

func (s *relaySession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, resultChan := range s.pending {
		close(resultChan)
		delete(s.pending, id)
	}
}
