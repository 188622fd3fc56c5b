// Package api exposes the certificate services over two HTTP listeners: a
// public one for verification and lookups and a private one, behind issuer
// API keys, for issuance and wallet management.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/issuance"
	"github.com/certchain/certchain/pkg/certchain/ledger"
	"github.com/certchain/certchain/pkg/certchain/middleware"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/publisher"
	"github.com/certchain/certchain/pkg/certchain/verification"
	"github.com/certchain/certchain/pkg/certchain/wallet"
	"github.com/certchain/certchain/pkg/fingerprint"
	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const tokenIDPattern = `{token_id:[0-9]+\.[0-9]+\.[0-9]+/[0-9]+}`

// MaxUploadSize bounds request bodies carrying files.
const MaxUploadSize = 32 << 20

// WalletManager is satisfied by wallet.Registry.
type WalletManager interface {
	Wallet(kind model.WalletKind) (wallet.Wallet, error)
	Active() (string, wallet.Wallet)
	Statuses() []wallet.Status
	Connect(ctx context.Context, kind model.WalletKind) (model.WalletConnection, error)
	Disconnect(ctx context.Context, kind model.WalletKind) error
}

// Controllers are the services the REST server dispatches to. Wallets and
// Publisher are optional.
type Controllers struct {
	Issuer     issuance.Issuer
	Verifier   verification.Verifier
	Ledger     ledger.Reader
	Auth       *middleware.APIKeyAuth
	Wallets    WalletManager
	Publisher  *publisher.Publisher
	GatewayURL string // Base URL documents are served from, used in verify responses.
}

type RestServer struct {
	Controllers

	connectTimeout    time.Duration
	background        context.Context
	cancelBackground  context.CancelFunc
	privateHttpServer *http.Server
	publicHttpServer  *http.Server
}

func NewRestServerWithController(ctrl Controllers, privateAddress, publicAddress string) *RestServer {
	background, cancel := context.WithCancel(context.Background())
	restServer := &RestServer{
		Controllers:      ctrl,
		connectTimeout:   wallet.DefaultConnectTimeout,
		background:       background,
		cancelBackground: cancel,
	}

	registerPublicEndpoints := func(r *mux.Router) {
		r.HandleFunc("/verify", restServer.verify).Methods(http.MethodPost)
		r.HandleFunc("/certificates/"+tokenIDPattern, restServer.getCertificate).Methods(http.MethodGet)
		r.HandleFunc("/lookup", restServer.lookup).Methods(http.MethodGet)
		r.HandleFunc("/hash", restServer.hash).Methods(http.MethodPost)
	}

	privateRouter := mux.NewRouter()
	privateRouter.Use(middleware.RequestID, Log, ctrl.Auth.Authenticate)
	privateRouter.HandleFunc("/certificates", restServer.issueCertificate).Methods(http.MethodPost)
	privateRouter.HandleFunc("/certificates/batch", restServer.batchIssueCertificates).Methods(http.MethodPost)
	privateRouter.HandleFunc("/certificates/"+tokenIDPattern, restServer.revokeCertificate).Methods(http.MethodDelete)
	privateRouter.HandleFunc("/wallet", restServer.listWallets).Methods(http.MethodGet)
	privateRouter.HandleFunc("/wallet/{kind}/connect", restServer.connectWallet).Methods(http.MethodPost)
	privateRouter.HandleFunc("/wallet/{kind}/disconnect", restServer.disconnectWallet).Methods(http.MethodPost)
	registerPublicEndpoints(privateRouter)

	publicRouter := mux.NewRouter()
	publicRouter.Use(middleware.RequestID, Log)
	registerPublicEndpoints(publicRouter)

	if privateAddress != "" {
		restServer.privateHttpServer = &http.Server{
			Addr:    privateAddress,
			Handler: privateRouter,
		}
	}
	if publicAddress != "" {
		restServer.publicHttpServer = &http.Server{
			Addr:    publicAddress,
			Handler: publicRouter,
		}
	}

	return restServer
}

// PrivateHandler and PublicHandler expose the routers, mostly for tests.
func (s *RestServer) PrivateHandler() http.Handler {
	if s.privateHttpServer == nil {
		return nil
	}
	return s.privateHttpServer.Handler
}

func (s *RestServer) PublicHandler() http.Handler {
	if s.publicHttpServer == nil {
		return nil
	}
	return s.publicHttpServer.Handler
}

func (s *RestServer) Run() error {
	if s.privateHttpServer == nil && s.publicHttpServer == nil {
		return errors.New("no server to run")
	}

	if s.Publisher != nil {
		s.Publisher.Start()
	}

	var privateServerErr error
	var publicServerErr error
	wg := sync.WaitGroup{}

	if s.privateHttpServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.privateHttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				privateServerErr = err
			}
		}()
	}
	if s.publicHttpServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.publicHttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				publicServerErr = err
			}
		}()
	}

	wg.Wait()
	if privateServerErr != nil {
		return privateServerErr
	}
	return publicServerErr
}

func (s *RestServer) Close(ctx context.Context) error {
	s.cancelBackground()

	var serverErr error
	mu := sync.Mutex{}
	wg := sync.WaitGroup{}
	for _, srv := range []*http.Server{s.privateHttpServer, s.publicHttpServer} {
		if srv == nil {
			continue
		}
		wg.Add(1)
		go func(srv *http.Server) {
			defer wg.Done()
			srv.SetKeepAlivesEnabled(false)
			if err := srv.Shutdown(ctx); err != nil {
				mu.Lock()
				serverErr = err
				mu.Unlock()
			}
		}(srv)
	}
	wg.Wait()

	if s.Publisher != nil {
		s.Publisher.Stop()
	}
	return serverErr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("failed to write response: %v", err)
	}
}

func tokenIDFromPath(r *http.Request) string {
	return mux.Vars(r)["token_id"]
}

func (s *RestServer) getCertificate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokenID := tokenIDFromPath(r)

	cert, err := s.Issuer.Get(ctx, tokenID)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to get certificate: %s", err.Error()), model.ErrToHttpStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, cert)
}

func (s *RestServer) lookup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()
	req := ledger.LookupRequest{
		TokenID:      query.Get("token_id"),
		ContentHash:  query.Get("content_hash"),
		ContentID:    query.Get("content_id"),
		DocumentHash: query.Get("document_hash"),
	}

	result, err := s.Ledger.Lookup(ctx, req)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to look up certificate: %s", err.Error()), model.ErrToHttpStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type HashResponse struct {
	Hash      string `json:"hash"`
	ContentID string `json:"content_id"`
	Size      int    `json:"size"`
}

// hash digests an uploaded file, sent either as the "file" part of a
// multipart form or as the raw request body.
func (s *RestServer) hash(w http.ResponseWriter, r *http.Request) {
	data, err := readUpload(w, r, "file")
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %s", err.Error()), http.StatusBadRequest)
		return
	}

	id, err := content.ComputeCID(data)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to compute content id: %s", err.Error()), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, HashResponse{
		Hash:      fingerprint.HashBytes(data).String(),
		ContentID: id,
		Size:      len(data),
	})
}

func readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile(field)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

func (s *RestServer) issueCertificate(w http.ResponseWriter, r *http.Request) {
	ts := time.Now().Unix()
	ctx := r.Context()
	issuer, account := middleware.IssuerFromContext(ctx)

	req := issuance.IssueRequest{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxUploadSize)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %s", err.Error()), http.StatusBadRequest)
		return
	}
	req.Issuer = issuer
	req.IssuerAccount = account

	result, err := s.Issuer.Issue(ctx, ts, req)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to issue certificate: %s", err.Error()), model.ErrToHttpStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *RestServer) batchIssueCertificates(w http.ResponseWriter, r *http.Request) {
	ts := time.Now().Unix()
	ctx := r.Context()
	issuer, account := middleware.IssuerFromContext(ctx)

	req := issuance.BatchIssueRequest{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxUploadSize)).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request: %s", err.Error()), http.StatusBadRequest)
		return
	}
	req.Issuer = issuer
	req.IssuerAccount = account

	result, err := s.Issuer.BatchIssue(ctx, ts, req)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to issue certificates: %s", err.Error()), model.ErrToHttpStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (s *RestServer) revokeCertificate(w http.ResponseWriter, r *http.Request) {
	ts := time.Now().Unix()
	ctx := r.Context()
	_, account := middleware.IssuerFromContext(ctx)

	req := issuance.RevokeRequest{}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("Invalid request: %s", err.Error()), http.StatusBadRequest)
			return
		}
	} else {
		req.Reason = r.URL.Query().Get("reason")
	}
	req.Requester = account
	req.TokenID = tokenIDFromPath(r)

	receipt, err := s.Issuer.Revoke(ctx, ts, req)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to revoke certificate: %s", err.Error()), model.ErrToHttpStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
