package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type GatewayConfig struct {
	PinURL      string        `yaml:"pin_url"`      // Base URL of the pinning API, e.g. https://api.pinata.cloud
	GatewayURL  string        `yaml:"gateway_url"`  // Base URL of the read gateway, e.g. https://gateway.pinata.cloud
	JWT         string        `yaml:"jwt"`          // Bearer token of the pinning API.
	RateLimit   float64       `yaml:"rate_limit"`   // Requests per second towards the gateway.
	Timeout     time.Duration `yaml:"timeout"`      // Per request timeout.
	MaxDocBytes int64         `yaml:"max_doc_size"` // Upper bound of a fetched document.
}

type GatewayStore struct {
	cfg     GatewayConfig
	client  *http.Client
	limiter *rate.Limiter
}

type pinResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func NewGatewayStore(cfg GatewayConfig) *GatewayStore {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxDocBytes <= 0 {
		cfg.MaxDocBytes = 10 << 20
	}
	cfg.PinURL = strings.TrimSuffix(cfg.PinURL, "/")
	cfg.GatewayURL = strings.TrimSuffix(cfg.GatewayURL, "/")

	return &GatewayStore{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
	}
}

func (s *GatewayStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body := bytes.Buffer{}
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	meta, _ := json.Marshal(map[string]string{"name": name})
	if err := writer.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", err
	}
	if err := writer.WriteField("pinataOptions", `{"cidVersion":1}`); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.PinURL+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if s.cfg.JWT != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.JWT)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("pin %s: %v: %w", name, err, model.ErrTransport)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("pin %s: status %d %s: %w", name, resp.StatusCode, strings.TrimSpace(string(raw)), model.ErrTransport)
	}

	pinned := pinResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&pinned); err != nil {
		return "", fmt.Errorf("decode pin response: %v: %w", err, model.ErrTransport)
	}
	id, err := NormalizeCID(pinned.IpfsHash)
	if err != nil {
		return "", err
	}
	logrus.Debugf("content: pinned %s as %s (%d bytes)", name, id, pinned.PinSize)
	return id, nil
}

func (s *GatewayStore) Get(ctx context.Context, id string) ([]byte, error) {
	normalized, err := NormalizeCID(id)
	if err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%v: %w", err, model.ErrContentUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.GatewayURL+"/ipfs/"+normalized, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %v: %w", normalized, err, model.ErrContentUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d: %w", normalized, resp.StatusCode, model.ErrContentUnavailable)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxDocBytes+1))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %v: %w", normalized, err, model.ErrContentUnavailable)
	}
	if int64(len(data)) > s.cfg.MaxDocBytes {
		return nil, fmt.Errorf("fetch %s: document exceeds %d bytes: %w", normalized, s.cfg.MaxDocBytes, model.ErrContentUnavailable)
	}
	return data, nil
}
