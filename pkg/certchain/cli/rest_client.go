package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/certchain/certchain/pkg/certchain/api"
	"github.com/certchain/certchain/pkg/certchain/issuance"
	"github.com/certchain/certchain/pkg/certchain/ledger"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/verification"
	"github.com/goccy/go-json"
)

// RestClient calls the REST API of a certchain server. Reads are retried on
// transport failures; writes are sent once.
type RestClient struct {
	baseURL string
	apiKey  string
	client  *http.Client

	attempts uint
}

func NewRestClient(baseURL, apiKey string, timeout time.Duration) *RestClient {
	return &RestClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		attempts: 3,
	}
}

func (c *RestClient) Verify(ctx context.Context, req verification.Request) (api.VerifyResponse, error) {
	result := api.VerifyResponse{}
	err := c.retryRead(ctx, func() error {
		return c.do(ctx, http.MethodPost, "/verify", req, &result)
	})
	if err != nil && result.Error != "" {
		return result, fmt.Errorf("%s: %w", result.Error, err)
	}
	return result, err
}

func (c *RestClient) Get(ctx context.Context, tokenID string) (model.Certificate, error) {
	cert := model.Certificate{}
	err := c.retryRead(ctx, func() error {
		return c.do(ctx, http.MethodGet, "/certificates/"+tokenID, nil, &cert)
	})
	return cert, err
}

func (c *RestClient) Issue(ctx context.Context, req issuance.IssueRequest) (issuance.IssueResult, error) {
	result := issuance.IssueResult{}
	err := c.do(ctx, http.MethodPost, "/certificates", req, &result)
	return result, err
}

func (c *RestClient) Revoke(ctx context.Context, tokenID, reason string) (ledger.Receipt, error) {
	receipt := ledger.Receipt{}
	path := "/certificates/" + tokenID + "?reason=" + url.QueryEscape(reason)
	err := c.do(ctx, http.MethodDelete, path, nil, &receipt)
	return receipt, err
}

func (c *RestClient) retryRead(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return model.ErrToHttpStatus(err) == http.StatusBadGateway
		}),
	)
}

func (c *RestClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %v%w", method, path, err, model.ErrTransport)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %v%w", method, path, err, model.ErrTransport)
	}
	if resp.StatusCode >= 300 {
		// Structured error bodies are decoded so the caller still sees them.
		if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
			_ = json.Unmarshal(raw, out)
		}
		return fmt.Errorf("%s%w", strings.TrimSpace(string(raw)), statusToErr(resp.StatusCode))
	}
	return json.Unmarshal(raw, out)
}

func statusToErr(status int) error {
	switch status {
	case http.StatusBadRequest:
		return model.ErrInvalidParameter
	case http.StatusNotFound:
		return model.ErrDataNotFound
	case http.StatusForbidden, http.StatusUnauthorized:
		return model.ErrForbidden
	case http.StatusConflict:
		return model.ErrWrongStatus
	default:
		return model.ErrTransport
	}
}
