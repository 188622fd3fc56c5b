package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/certchain/certchain/pkg/certchain/auth"
	"github.com/certchain/certchain/pkg/certchain/storage/postgres"
)

func apiKeyAuthenticator(cli *CLI) (auth.APIKeyAuthenticator, func(), error) {
	appConfig, err := loadConfig(cli.Config, false)
	if err != nil {
		return nil, nil, err
	}
	if appConfig.Database.IsEmpty() {
		return nil, nil, fmt.Errorf("API keys need a database; configure database in %s", cli.Config)
	}
	pg, err := postgres.NewStorageWithConfig(appConfig.Database)
	if err != nil {
		return nil, nil, err
	}
	return auth.NewAPIKeyAuthenticator(pg), pg.Close, nil
}

func (cmd *APIKeyCreateCmd) Run(cli *CLI) error {
	authenticator, closeFn, err := apiKeyAuthenticator(cli)
	if err != nil {
		return err
	}
	defer closeFn()

	key, secret, err := authenticator.CreateAPIKey(context.Background(), time.Now().Unix(), auth.CreateAPIKeyRequest{
		Requester: cmd.Requester,
		Issuer:    cmd.Issuer,
		Account:   cmd.Account,
	})
	if err != nil {
		return err
	}
	fmt.Printf("id:      %s\nissuer:  %s\naccount: %s\nkey:     %s\n", key.ID, key.Issuer, key.Account, secret)
	return nil
}

func (cmd *APIKeyRevokeCmd) Run(cli *CLI) error {
	authenticator, closeFn, err := apiKeyAuthenticator(cli)
	if err != nil {
		return err
	}
	defer closeFn()

	return authenticator.RevokeAPIKey(context.Background(), time.Now().Unix(), auth.RevokeAPIKeyRequest{
		Requester: cmd.Requester,
		ID:        cmd.ID,
	})
}

func (cmd *APIKeyListCmd) Run(cli *CLI) error {
	authenticator, closeFn, err := apiKeyAuthenticator(cli)
	if err != nil {
		return err
	}
	defer closeFn()

	req := auth.ListAPIKeysRequest{Limit: 100}
	if cmd.Issuer != "" {
		req.Issuers = []string{cmd.Issuer}
	}
	result, err := authenticator.ListAPIKeys(context.Background(), req)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tISSUER\tACCOUNT\tSTATUS\tCREATED")
	for _, key := range result.Keys {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", key.ID, key.Issuer, key.Account, key.Status, time.Unix(key.CreatedAt, 0).UTC().Format(time.RFC3339))
	}
	return w.Flush()
}
