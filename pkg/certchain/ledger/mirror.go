package ledger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/goccy/go-json"
)

// MirrorLedger reads certificate records from the lookup endpoint of another
// certchain node. It never retries; transport failures are returned as-is.
type MirrorLedger struct {
	baseURL string
	client  *http.Client
}

func NewMirrorLedger(baseURL string, timeout time.Duration) *MirrorLedger {
	return &MirrorLedger{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (m *MirrorLedger) Lookup(ctx context.Context, req LookupRequest) (LookupResult, error) {
	if err := ValidateLookupRequest(req); err != nil {
		return LookupResult{}, err
	}

	query := url.Values{}
	for k, v := range map[string]string{
		"token_id":      req.TokenID,
		"content_hash":  req.ContentHash,
		"content_id":    req.ContentID,
		"document_hash": req.DocumentHash,
	} {
		if v != "" {
			query.Set(k, v)
		}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/lookup?"+query.Encode(), nil)
	if err != nil {
		return LookupResult{}, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return LookupResult{}, fmt.Errorf("mirror lookup: %v%w", err, model.ErrTransport)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return LookupResult{}, fmt.Errorf("%s%w", strings.TrimSpace(string(msg)), model.ErrInvalidParameter)
	case resp.StatusCode != http.StatusOK:
		return LookupResult{}, fmt.Errorf("mirror lookup: status %d%w", resp.StatusCode, model.ErrTransport)
	}

	result := LookupResult{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return LookupResult{}, fmt.Errorf("mirror lookup: %v%w", err, model.ErrTransport)
	}
	if result.Found && result.Certificate == nil {
		return LookupResult{}, fmt.Errorf("mirror lookup: found without certificate%w", model.ErrTransport)
	}
	return result, nil
}
