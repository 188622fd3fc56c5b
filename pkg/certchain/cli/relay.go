package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/certchain/certchain/pkg/certchain/relay"
	"github.com/sirupsen/logrus"
)

func (cmd *RelayCmd) Run(cli *CLI) error {
	appConfig, err := loadConfig(cli.Config, true)
	if err != nil {
		return err
	}

	opts := []relay.ServerOption{relay.ServerAddress(appConfig.Relay.Address)}
	if appConfig.Relay.TLSCert != "" || appConfig.Relay.TLSKey != "" {
		opts = append(opts, relay.ServerTLS(appConfig.Relay.TLSCert, appConfig.Relay.TLSKey))
	}
	server := relay.NewServer(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("relay listening on %s", appConfig.Relay.Address)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
