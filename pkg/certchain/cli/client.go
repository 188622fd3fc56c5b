package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/certchain/certchain/pkg/certchain/issuance"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/verification"
	"github.com/certchain/certchain/pkg/util"
)

type ClientVerifyCmd struct {
	TokenID   string `name:"token-id" xor:"id"`
	Hash      string `xor:"id"`
	ContentID string `name:"content-id" xor:"id"`
	File      string `type:"existingfile" help:"Certificate file to look up by digest or compare"`
}

type ClientGetCmd struct {
	TokenID string `arg:""`
}

type ClientIssueCmd struct {
	Recipient   string `required:""`
	Email       string
	Course      string `required:""`
	Institution string `required:""`
	Document    string `type:"existingfile" help:"Certificate document to pin"`
	ExpiresAt   int64  `help:"Unix time the certificate expires"`
}

type ClientRevokeCmd struct {
	TokenID string `arg:""`
	Reason  string
}

type ClientCmd struct {
	Server  string        `short:"s" long:"server" help:"Base URL of the server" default:"http://localhost:8081"`
	APIKey  string        `name:"api-key" help:"Issuer API key" env:"CERTCHAIN_API_KEY"`
	Timeout time.Duration `default:"30s"`

	Verify ClientVerifyCmd `cmd:"" help:"Verify a certificate"`
	Get    ClientGetCmd    `cmd:"" help:"Show a certificate record"`
	Issue  ClientIssueCmd  `cmd:"" help:"Issue a certificate"`
	Revoke ClientRevokeCmd `cmd:"" help:"Revoke a certificate"`
}

func (c *ClientCmd) restClient() *RestClient {
	return NewRestClient(c.Server, c.APIKey, c.Timeout)
}

func printJSON(v any) error {
	_, err := fmt.Println(util.PrettyJSON(v))
	return err
}

func (cmd *ClientVerifyCmd) Run(cli *CLI) error {
	req := verification.Request{
		TokenID:   cmd.TokenID,
		Hash:      cmd.Hash,
		ContentID: cmd.ContentID,
	}
	switch {
	case req.TokenID != "":
		req.Method = model.VerifyByTokenID
	case req.Hash != "":
		req.Method = model.VerifyByHash
	case req.ContentID != "":
		req.Method = model.VerifyByContentID
	case cmd.File != "":
		req.Method = model.VerifyByFile
	default:
		return fmt.Errorf("one of --token-id, --hash, --content-id or --file is required")
	}
	if cmd.File != "" {
		data, err := os.ReadFile(cmd.File)
		if err != nil {
			return err
		}
		req.File = data
	}

	result, err := cli.Client.restClient().Verify(context.Background(), req)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (cmd *ClientGetCmd) Run(cli *CLI) error {
	cert, err := cli.Client.restClient().Get(context.Background(), cmd.TokenID)
	if err != nil {
		return err
	}
	return printJSON(cert)
}

func (cmd *ClientIssueCmd) Run(cli *CLI) error {
	req := issuance.IssueRequest{
		Recipient:      cmd.Recipient,
		RecipientEmail: cmd.Email,
		Course:         cmd.Course,
		Institution:    cmd.Institution,
		ExpiresAt:      cmd.ExpiresAt,
	}
	if cmd.Document != "" {
		data, err := os.ReadFile(cmd.Document)
		if err != nil {
			return err
		}
		req.Document = data
	}

	result, err := cli.Client.restClient().Issue(context.Background(), req)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func (cmd *ClientRevokeCmd) Run(cli *CLI) error {
	receipt, err := cli.Client.restClient().Revoke(context.Background(), cmd.TokenID, cmd.Reason)
	if err != nil {
		return err
	}
	return printJSON(receipt)
}
