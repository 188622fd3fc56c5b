package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func (s *RestServer) walletsResponse() WalletsResponse {
	resp := WalletsResponse{Wallets: s.Wallets.Statuses()}
	resp.Active, _ = s.Wallets.Active()
	return resp
}

func (s *RestServer) listWallets(w http.ResponseWriter, r *http.Request) {
	if s.Wallets == nil {
		http.Error(w, "No wallet configured", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.walletsResponse())
}

func walletKind(r *http.Request) (model.WalletKind, error) {
	kind := model.WalletKind(mux.Vars(r)["kind"])
	if !kind.IsValid() {
		return "", fmt.Errorf("%s: %w", kind, model.ErrUnsupportedWallet)
	}
	return kind, nil
}

// connectWallet blocks until the wallet is connected. With ?async=true it
// answers 202 right away and the caller polls GET /wallet, which carries the
// pairing URI of relay wallets while they are connecting.
func (s *RestServer) connectWallet(w http.ResponseWriter, r *http.Request) {
	if s.Wallets == nil {
		http.Error(w, "No wallet configured", http.StatusNotFound)
		return
	}
	kind, err := walletKind(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to connect wallet: %s", err.Error()), model.ErrToHttpStatus(err))
		return
	}

	if r.URL.Query().Get("async") == "true" {
		go func() {
			ctx, cancel := context.WithTimeout(s.background, s.connectTimeout)
			defer cancel()
			if _, err := s.Wallets.Connect(ctx, kind); errors.Is(err, model.ErrConnectionAborted) {
				logrus.Infof("connect %s wallet: %v", kind, err)
			} else if err != nil {
				logrus.Warnf("connect %s wallet: %v", kind, err)
			}
		}()
		writeJSON(w, http.StatusAccepted, s.walletsResponse())
		return
	}

	conn, err := s.Wallets.Connect(r.Context(), kind)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to connect wallet: %s", err.Error()), model.ErrToHttpStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, conn)
}

func (s *RestServer) disconnectWallet(w http.ResponseWriter, r *http.Request) {
	if s.Wallets == nil {
		http.Error(w, "No wallet configured", http.StatusNotFound)
		return
	}
	kind, err := walletKind(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to disconnect wallet: %s", err.Error()), model.ErrToHttpStatus(err))
		return
	}
	if err := s.Wallets.Disconnect(r.Context(), kind); err != nil {
		http.Error(w, fmt.Sprintf("Failed to disconnect wallet: %s", err.Error()), model.ErrToHttpStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, s.walletsResponse())
}
