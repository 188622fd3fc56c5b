package wallet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/goccy/go-json"
)

// ErrProviderNotInjected reports that a wallet provider is not reachable yet.
// Locators return it while the provider may still appear.
var ErrProviderNotInjected = errors.New("wallet provider not injected")

// CodeUserRejected is the EIP-1193 error code wallets use when the user
// declines a request.
const CodeUserRejected = 4001

// Provider is the request/response bridge of one wallet.
type Provider interface {
	Request(ctx context.Context, method string, params any) (json.RawMessage, error)
}

type ProviderLocator interface {
	// Locate returns the provider of the kind or ErrProviderNotInjected.
	Locate(ctx context.Context, kind model.WalletKind) (Provider, error)
}

// RPCError is an error answered by the wallet itself.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("wallet error %d: %s", e.Code, e.Message)
}

func (e *RPCError) IsUserRejected() bool {
	return e.Code == CodeUserRejected
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// HTTPProvider speaks JSON-RPC 2.0 to a wallet bridge over HTTP.
type HTTPProvider struct {
	url    string
	client *http.Client
	nextID atomic.Int64
}

func NewHTTPProvider(url string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{url: url, client: &http.Client{Timeout: timeout}}
}

func (p *HTTPProvider) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: p.nextID.Add(1), Method: method, Params: params})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %v%w", method, err, model.ErrTransport)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: bridge status %d%w", method, resp.StatusCode, model.ErrTransport)
	}

	rpcResp := rpcResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %v%w", method, err, model.ErrTransport)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

// HTTPLocator finds wallet bridges by kind and checks they answer before use.
type HTTPLocator struct {
	endpoints map[model.WalletKind]string
	timeout   time.Duration
}

func NewHTTPLocator(endpoints map[model.WalletKind]string, timeout time.Duration) *HTTPLocator {
	return &HTTPLocator{endpoints: endpoints, timeout: timeout}
}

func (l *HTTPLocator) Locate(ctx context.Context, kind model.WalletKind) (Provider, error) {
	url, ok := l.endpoints[kind]
	if !ok || url == "" {
		return nil, ErrProviderNotInjected
	}

	provider := NewHTTPProvider(url, l.timeout)
	_, err := provider.Request(ctx, "wallet_ping", nil)
	var rpcErr *RPCError
	switch {
	case err == nil, errors.As(err, &rpcErr):
		// Any JSON-RPC answer proves the bridge is there.
		return provider, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		return nil, fmt.Errorf("%s: %v: %w", kind, err, ErrProviderNotInjected)
	}
}

func decodeResult[T any](raw json.RawMessage, method string) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%s: unexpected result: %v%w", method, err, model.ErrTransport)
	}
	return v, nil
}

// submitError maps wallet answers of a submission to the error taxonomy.
func submitError(method string, err error) error {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return fmt.Errorf("%s: %s: %w", method, rpcErr.Message, model.ErrWalletRejected)
	}
	return err
}

// connectError maps wallet answers of a connect request to the error taxonomy.
func connectError(err error) error {
	var rpcErr *RPCError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return model.ErrConnectionTimeout
	case errors.As(err, &rpcErr) && rpcErr.IsUserRejected():
		return model.ErrUserRejected
	case errors.As(err, &rpcErr):
		return fmt.Errorf("%s%w", rpcErr.Message, model.ErrConnection)
	}
	return err
}
