// Package cli wires the certchain services into the commands of the binary.
package cli

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	otlp_util "github.com/bluexlab/otlp-util-go"
	"github.com/certchain/certchain/pkg/config"
	"github.com/sirupsen/logrus"
)

const appName string = "certchain"

type ServerCmd struct {
	Dev bool `help:"Run with in-memory storage, content store and an operator anchor"`
}

type MigrateCmd struct {
	Path string `short:"p" long:"path" help:"Path to the migration files" type:"existingdir" default:"migrations"`
	Down int    `long:"down" help:"Roll back this many migrations instead of migrating up"`
}

type RelayCmd struct{}

type HashCmd struct {
	File string `arg:"" help:"File to fingerprint" type:"existingfile"`
}

type APIKeyCreateCmd struct {
	Issuer    string `required:"" help:"Issuer DID"`
	Account   string `required:"" help:"Ledger account the issuer mints from"`
	Requester string `short:"r" long:"requester" help:"Requester name" default:"cli"`
}

type APIKeyRevokeCmd struct {
	ID        string `arg:"" help:"API key id"`
	Requester string `short:"r" long:"requester" help:"Requester name" default:"cli"`
}

type APIKeyListCmd struct {
	Issuer string `help:"Only keys of this issuer"`
}

type CLI struct {
	Server  ServerCmd  `cmd:"" help:"Run the issuance and verification server"`
	Migrate MigrateCmd `cmd:"" help:"Migrate the database"`
	Relay   RelayCmd   `cmd:"" help:"Run the relay server carrying consensus messages and wallet pairing"`
	Hash    HashCmd    `cmd:"" help:"Print the content hash and content id of a file"`

	APIKey struct {
		Create APIKeyCreateCmd `cmd:"" help:"Create an API key"`
		Revoke APIKeyRevokeCmd `cmd:"" help:"Revoke an API key"`
		List   APIKeyListCmd   `cmd:"" help:"List API keys"`
	} `cmd:"" name:"apikey" help:"Manage issuer API keys"`

	Client ClientCmd `cmd:"" help:"Talk to a running server"`

	Config string `short:"c" long:"config" help:"Path to the configuration file" type:"path" default:"config.yaml"`
}

type App struct{}

func (*App) Run() {
	cli := CLI{}
	ctx := kong.Parse(&cli, kong.Name(appName), kong.UsageOnError())
	if err := ctx.Run(&cli); err != nil {
		logrus.Errorf("failed to run command: %v", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file. A missing file is allowed when optional
// is set, leaving the defaults in place.
func loadConfig(path string, optional bool) (Config, error) {
	var appConfig Config
	if optional {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			appConfig.SetDefaults()
			return appConfig, nil
		}
	}
	if err := config.FromFile(path, &appConfig); err != nil {
		return Config{}, err
	}
	return appConfig, nil
}

func initExporter(ctx context.Context, endpoint string) (func(), error) {
	if endpoint == "" {
		return func() {}, nil
	}
	exporter, err := otlp_util.InitExporter(
		otlp_util.WithContext(ctx),
		otlp_util.WithEndPoint(endpoint),
		otlp_util.WithServiceName(appName),
		otlp_util.WithInSecure(),
		otlp_util.WithErrorHandler(func(err error) {
			logrus.Warnf("OTLP error: %v", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return func() { _ = exporter.Shutdown(ctx) }, nil
}
