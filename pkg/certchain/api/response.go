package api

import (
	"fmt"
	"strings"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/wallet"
)

// VerifyResponse is the public answer to a verification request. Success is
// false only when the request itself could not be processed; a certificate
// that fails verification yields Success=true with Verified=false.
type VerifyResponse struct {
	Success     bool                     `json:"success"`
	Verified    bool                     `json:"verified"`
	Reason      model.VerificationReason `json:"reason,omitempty"`
	Certificate *model.Certificate       `json:"certificate,omitempty"`
	Blockchain  *BlockchainInfo          `json:"blockchain,omitempty"`
	IPFS        *IPFSInfo                `json:"ipfs,omitempty"`
	Checks      []model.Check            `json:"checks,omitempty"`
	CheckedAt   int64                    `json:"checked_at,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

type BlockchainInfo struct {
	TokenID       string `json:"token_id"`
	Serial        int64  `json:"serial"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

type IPFSInfo struct {
	ContentID   string `json:"content_id"`
	ContentHash string `json:"content_hash"`
	GatewayURL  string `json:"gateway_url,omitempty"`
}

func newVerifyResponse(result model.VerificationResult, gatewayURL string) VerifyResponse {
	resp := VerifyResponse{
		Success:     true,
		Verified:    result.Verified,
		Reason:      result.Reason,
		Certificate: result.Certificate,
		Checks:      result.Checks,
		CheckedAt:   result.CheckedAt,
	}
	if cert := result.Certificate; cert != nil {
		resp.Blockchain = &BlockchainInfo{
			TokenID:       cert.TokenID,
			Serial:        cert.Serial,
			TransactionID: cert.TransactionID,
			Status:        string(cert.Status),
		}
		if cert.ContentID != "" {
			resp.IPFS = &IPFSInfo{
				ContentID:   cert.ContentID,
				ContentHash: cert.ContentHash,
			}
			if gatewayURL != "" {
				resp.IPFS.GatewayURL = fmt.Sprintf("%s/ipfs/%s", strings.TrimRight(gatewayURL, "/"), cert.ContentID)
			}
		}
	}
	return resp
}

type WalletsResponse struct {
	Active  string          `json:"active_account,omitempty"` // Account of the preferred connected wallet.
	Wallets []wallet.Status `json:"wallets"`                  // Wallets in priority order.
}
