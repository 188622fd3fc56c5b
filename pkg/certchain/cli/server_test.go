package cli_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/certchain/certchain/pkg/certchain/api"
	"github.com/certchain/certchain/pkg/certchain/auth"
	"github.com/certchain/certchain/pkg/certchain/cli"
	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/issuance"
	"github.com/certchain/certchain/pkg/certchain/middleware"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/verification"
	"github.com/stretchr/testify/suite"
)

const (
	issuerDID = "did:hedera:testnet:0.0.1234"
	account   = "0.0.1234"
)

// DevServerTestSuite drives a dev mode server end to end through the REST
// client: issue, verify, revoke and tamper.
type DevServerTestSuite struct {
	suite.Suite

	ctx    context.Context
	svc    *cli.Services
	server *httptest.Server
	client *cli.RestClient
	public *cli.RestClient
}

func TestDevServer(t *testing.T) {
	suite.Run(t, new(DevServerTestSuite))
}

func (s *DevServerTestSuite) SetupTest() {
	s.ctx = context.Background()

	cfg := cli.Config{}
	cfg.SetDefaults()
	svc, err := cli.NewServices(cfg, true)
	s.Require().NoError(err)
	s.svc = svc

	_, secret, err := svc.Auth.CreateAPIKey(s.ctx, time.Now().Unix(), auth.CreateAPIKeyRequest{
		Requester: "test",
		Issuer:    issuerDID,
		Account:   account,
	})
	s.Require().NoError(err)

	restServer := api.NewRestServerWithController(api.Controllers{
		Issuer:   svc.Issuer,
		Verifier: svc.Verifier,
		Ledger:   svc.Reader,
		Auth:     middleware.NewAPIKeyAuth(svc.Auth),
		Wallets:  svc.Wallets,
	}, "localhost:0", "")
	s.server = httptest.NewServer(restServer.PrivateHandler())
	s.client = cli.NewRestClient(s.server.URL, string(secret), 5*time.Second)
	s.public = cli.NewRestClient(s.server.URL, "", 5*time.Second)
}

func (s *DevServerTestSuite) TearDownTest() {
	s.server.Close()
	s.svc.Close()
}

func (s *DevServerTestSuite) issue(recipient string) issuance.IssueResult {
	result, err := s.client.Issue(s.ctx, issuance.IssueRequest{
		Recipient:      recipient,
		RecipientEmail: "alice@example.com",
		Course:         "Distributed Systems",
		Institution:    "Gopher University",
		Document:       []byte("%PDF-1.7 certificate of " + recipient),
		DocumentName:   "certificate.pdf",
	})
	s.Require().NoError(err)
	return result
}

func (s *DevServerTestSuite) TestIssueThenVerify() {
	issued := s.issue("Alice")
	s.Equal(issuerDID, issued.Certificate.Issuer)
	s.Equal(account, issued.Certificate.IssuerAccount)

	for _, req := range []verification.Request{
		{Method: model.VerifyByTokenID, TokenID: issued.TokenID},
		{Method: model.VerifyByHash, Hash: issued.ContentHash},
		{Method: model.VerifyByContentID, ContentID: issued.ContentID},
	} {
		result, err := s.public.Verify(s.ctx, req)
		s.Require().NoError(err)
		s.True(result.Success, req.Method)
		s.True(result.Verified, req.Method)
		s.Require().NotNil(result.Blockchain)
		s.Equal(issued.TokenID, result.Blockchain.TokenID)
		s.Require().NotNil(result.IPFS)
		s.Equal(issued.ContentID, result.IPFS.ContentID)
	}

	cert, err := s.public.Get(s.ctx, issued.TokenID)
	s.Require().NoError(err)
	s.Equal(issued.ContentHash, cert.ContentHash)
}

func (s *DevServerTestSuite) TestVerifyIssuedDocument() {
	issued := s.issue("Frank")
	document := []byte("%PDF-1.7 certificate of Frank")
	s.NotEmpty(issued.DocumentHash)
	s.NotEqual(issued.ContentHash, issued.DocumentHash)

	for _, req := range []verification.Request{
		{Method: model.VerifyByFile, File: document},
		{Method: model.VerifyByTokenID, TokenID: issued.TokenID, File: document},
	} {
		result, err := s.public.Verify(s.ctx, req)
		s.Require().NoError(err)
		s.True(result.Verified, "%s: %s", req.Method, result.Reason)
		s.Require().NotNil(result.Certificate)
		s.Equal(issued.TokenID, result.Certificate.TokenID)
		s.Equal(issued.DocumentHash, result.Certificate.DocumentHash)
	}

	edited := []byte("%PDF-1.7 certificate of Frank (edited)")
	result, err := s.public.Verify(s.ctx, verification.Request{Method: model.VerifyByFile, File: edited})
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(model.ReasonNotFound, result.Reason)

	result, err = s.public.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: issued.TokenID, File: edited})
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(model.ReasonTampered, result.Reason)
}

func (s *DevServerTestSuite) TestRevokeThenVerify() {
	issued := s.issue("Bob")

	receipt, err := s.client.Revoke(s.ctx, issued.TokenID, "issued in error")
	s.Require().NoError(err)
	s.Equal(model.CertStatusRevoked, receipt.Certificate.Status)

	result, err := s.public.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: issued.TokenID})
	s.Require().NoError(err)
	s.True(result.Success)
	s.False(result.Verified)
	s.Equal(model.ReasonRevoked, result.Reason)

	_, err = s.client.Revoke(s.ctx, issued.TokenID, "again")
	s.ErrorIs(err, model.ErrWrongStatus)
}

func (s *DevServerTestSuite) TestTamperedContent() {
	issued := s.issue("Carol")

	store, ok := s.svc.Content.(*content.MemoryStore)
	s.Require().True(ok)
	store.Replace(issued.ContentID, []byte(`{"name":"forged"}`))

	result, err := s.public.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: issued.TokenID})
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(model.ReasonTampered, result.Reason)
}

func (s *DevServerTestSuite) TestNeverMintedContent() {
	id, err := content.ComputeCID([]byte("never minted"))
	s.Require().NoError(err)

	result, err := s.public.Verify(s.ctx, verification.Request{Method: model.VerifyByContentID, ContentID: id})
	s.Require().NoError(err)
	s.True(result.Success)
	s.False(result.Verified)
	s.Equal(model.ReasonNotFound, result.Reason)
	s.Nil(result.Certificate)
}

func (s *DevServerTestSuite) TestDuplicateIssue() {
	req := issuance.IssueRequest{
		Recipient:   "Dave",
		Course:      "Distributed Systems",
		Institution: "Gopher University",
		IssuedAt:    1717200000,
	}
	_, err := s.client.Issue(s.ctx, req)
	s.Require().NoError(err)

	_, err = s.client.Issue(s.ctx, req)
	s.ErrorIs(err, model.ErrWrongStatus)
}

func (s *DevServerTestSuite) TestIssueWithoutAPIKey() {
	_, err := s.public.Issue(s.ctx, issuance.IssueRequest{Recipient: "Eve"})
	s.ErrorIs(err, model.ErrForbidden)
}
