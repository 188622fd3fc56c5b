package cli

import (
	"context"
	"crypto"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certchain/certchain/pkg/certchain/api"
	"github.com/certchain/certchain/pkg/certchain/auth"
	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/issuance"
	"github.com/certchain/certchain/pkg/certchain/ledger"
	"github.com/certchain/certchain/pkg/certchain/middleware"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/publisher"
	"github.com/certchain/certchain/pkg/certchain/relay"
	"github.com/certchain/certchain/pkg/certchain/storage"
	"github.com/certchain/certchain/pkg/certchain/storage/memory"
	"github.com/certchain/certchain/pkg/certchain/storage/postgres"
	"github.com/certchain/certchain/pkg/certchain/verification"
	"github.com/certchain/certchain/pkg/certchain/wallet"
	"github.com/certchain/certchain/pkg/did"
	"github.com/certchain/certchain/pkg/envelope"
	"github.com/certchain/certchain/pkg/pkix"
	"github.com/sirupsen/logrus"
)

// Storage is everything the server persists.
type Storage interface {
	storage.CertificateStorage
	storage.OutboxStorage
	auth.APIKeyStorage
}

// Services is the assembled object graph of a server process.
type Services struct {
	Storage  Storage
	Content  content.Store
	Wallets  *wallet.Registry
	Ledger   ledger.Ledger
	Reader   ledger.Reader
	Issuer   issuance.Issuer
	Verifier verification.Verifier
	Auth     auth.APIKeyAuthenticator

	closers []func()
}

func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// NewServices builds the services described by cfg. In dev mode nothing
// external is needed: storage and content live in memory, mints are anchored
// by the operator and a throwaway signing key is generated.
func NewServices(cfg Config, dev bool) (*Services, error) {
	svc := &Services{}

	if dev || cfg.Database.IsEmpty() {
		svc.Storage = memory.NewStorage()
	} else {
		pg, err := postgres.NewStorageWithConfig(cfg.Database)
		if err != nil {
			return nil, err
		}
		svc.Storage = pg
		svc.closers = append(svc.closers, pg.Close)
	}

	if dev || cfg.Content.PinURL == "" {
		svc.Content = content.NewMemoryStore()
	} else {
		svc.Content = content.NewGatewayStore(cfg.Content)
	}

	wallets, err := newWalletRegistry(cfg)
	if err != nil {
		svc.Close()
		return nil, err
	}
	svc.Wallets = wallets

	var anchor ledger.Anchor
	if dev || cfg.Ledger.ContractID == "" {
		anchor = ledger.NewOperatorAnchor()
	} else {
		anchor = ledger.NewWalletAnchor(wallets, cfg.Ledger.ContractID, cfg.Ledger.Gas)
	}

	key, err := signingKey(cfg.Ledger.SigningKey, dev)
	if err != nil {
		svc.Close()
		return nil, err
	}
	signer, err := envelope.NewSigner(key, ledger.MessageMediaType)
	if err != nil {
		svc.Close()
		return nil, err
	}

	svc.Ledger = ledger.NewRegistry(svc.Storage, anchor, signer, cfg.Ledger.Collection, cfg.Ledger.TopicID)
	svc.Reader = svc.Ledger
	if cfg.Ledger.MirrorURL != "" {
		svc.Reader = ledger.NewMirrorLedger(cfg.Ledger.MirrorURL, cfg.Ledger.MirrorTimeout)
	}

	svc.Issuer = issuance.NewIssuer(svc.Ledger, svc.Content)
	svc.Verifier = verification.NewVerifier(svc.Reader, svc.Content)
	svc.Auth = auth.NewAPIKeyAuthenticator(svc.Storage)
	return svc, nil
}

func signingKey(path string, dev bool) (crypto.Signer, error) {
	if path != "" {
		return pkix.LoadPrivateKey(path)
	}
	if !dev {
		return nil, errors.New("ledger.signing_key is required outside dev mode")
	}
	logrus.Warn("no signing key configured, generating a throwaway key")
	return pkix.GenerateKey()
}

func newWalletRegistry(cfg Config) (*wallet.Registry, error) {
	var sessions wallet.SessionStore = wallet.NewMemorySessionStore()
	if cfg.Wallet.SessionDir != "" {
		sessions = wallet.NewFileSessionStore(cfg.Wallet.SessionDir)
	}
	connectTimeout := cfg.Wallet.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = wallet.DefaultConnectTimeout
	}

	wallets := []wallet.Wallet{}
	locator := wallet.NewHTTPLocator(cfg.Wallet.Providers, 10*time.Second)
	for kind := range cfg.Wallet.Providers {
		if kind == model.WalletWalletConnect {
			continue
		}
		w, err := wallet.NewInjectedWallet(kind, locator, wallet.InjectedWalletWithConnectTimeout(connectTimeout))
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	if cfg.Wallet.RelayURL != "" {
		client := relay.NewClient(relay.ClientWithServerURL(cfg.Wallet.RelayURL))
		wallets = append(wallets, wallet.NewRelayWallet(client,
			wallet.RelayWalletWithMetadata(cfg.Wallet.RelayURL, cfg.Wallet.AppName),
			wallet.RelayWalletWithConnectTimeout(connectTimeout),
		))
	}
	return wallet.NewRegistry(sessions, wallets), nil
}

// seedDevAPIKey issues an API key for a local issuer so a dev server is
// usable right away.
func seedDevAPIKey(ctx context.Context, authenticator auth.APIKeyAuthenticator, account string) error {
	issuer, err := did.NewHederaDID("testnet", account)
	if err != nil {
		return err
	}
	key, secret, err := authenticator.CreateAPIKey(ctx, time.Now().Unix(), auth.CreateAPIKeyRequest{
		Requester: "dev",
		Issuer:    issuer.String(),
		Account:   account,
	})
	if err != nil {
		return err
	}
	logrus.Infof("dev API key %s for %s: %s", key.ID, issuer, secret)
	return nil
}

func (cmd *ServerCmd) Run(cli *CLI) error {
	ctx := context.Background()

	appConfig, err := loadConfig(cli.Config, cmd.Dev)
	if err != nil {
		return err
	}

	shutdownExporter, err := initExporter(ctx, appConfig.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer shutdownExporter()

	svc, err := NewServices(appConfig, cmd.Dev)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Wallets.Init(ctx); err != nil {
		logrus.Warnf("failed to restore wallet session: %v", err)
	}
	defer svc.Wallets.Dispose(context.Background())

	if cmd.Dev {
		if err := seedDevAPIKey(ctx, svc.Auth, "0.0.1234"); err != nil {
			return err
		}
	}

	var outboxPublisher *publisher.Publisher
	if appConfig.Relay.Server != "" {
		relayClient := relay.NewClient(relay.ClientWithServerURL(appConfig.Relay.Server))
		defer relayClient.Close()
		outboxPublisher = publisher.NewPublisher(
			publisher.WithOutboxStorage(svc.Storage),
			publisher.WithRelayClient(relayClient),
			publisher.WithBatchSize(appConfig.Relay.BatchSize),
			publisher.WithInterval(appConfig.Relay.CheckInterval),
		)
	}

	restServer := api.NewRestServerWithController(api.Controllers{
		Issuer:     svc.Issuer,
		Verifier:   svc.Verifier,
		Ledger:     svc.Reader,
		Auth:       middleware.NewAPIKeyAuth(svc.Auth),
		Wallets:    svc.Wallets,
		Publisher:  outboxPublisher,
		GatewayURL: appConfig.Content.GatewayURL,
	}, appConfig.Server.Address(), appConfig.Public.Address())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("serving private API on %q and public API on %q", appConfig.Server.Address(), appConfig.Public.Address())
		errCh <- restServer.Run()
	}()

	// listen for the stop signal
	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	// Restore default behavior on the signals we are listening to
	stop()
	logrus.Info("shutting down gracefully, press Ctrl+C again to force")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := restServer.Close(ctx); err != nil {
		return err
	}
	return <-errCh
}
