package api_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/certchain/certchain/pkg/certchain/api"
	"github.com/certchain/certchain/pkg/certchain/auth"
	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/issuance"
	"github.com/certchain/certchain/pkg/certchain/ledger"
	"github.com/certchain/certchain/pkg/certchain/middleware"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/verification"
	"github.com/certchain/certchain/pkg/certchain/wallet"
	"github.com/certchain/certchain/pkg/fingerprint"
	"github.com/certchain/certchain/pkg/util"
	mock_api "github.com/certchain/certchain/test/mock/certchain/api"
	mock_auth "github.com/certchain/certchain/test/mock/certchain/auth"
	mock_issuance "github.com/certchain/certchain/test/mock/certchain/issuance"
	mock_ledger "github.com/certchain/certchain/test/mock/certchain/ledger"
	mock_verification "github.com/certchain/certchain/test/mock/certchain/verification"
	"github.com/goccy/go-json"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

const (
	apiKey    = "the-api-key"
	issuerDID = "did:hedera:testnet:0.0.1234"
	account   = "0.0.1234"
	tokenID   = "0.0.7007/5"
)

type RestServerTestSuite struct {
	suite.Suite

	ctx  context.Context
	ctrl *gomock.Controller

	issuer   *mock_issuance.MockIssuer
	verifier *mock_verification.MockVerifier
	reader   *mock_ledger.MockReader
	auth     *mock_auth.MockAPIKeyAuthenticator
	wallets  *mock_api.MockWalletManager

	private *httptest.Server
	public  *httptest.Server
}

func TestRestServerTestSuite(t *testing.T) {
	suite.Run(t, new(RestServerTestSuite))
}

func (s *RestServerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.issuer = mock_issuance.NewMockIssuer(s.ctrl)
	s.verifier = mock_verification.NewMockVerifier(s.ctrl)
	s.reader = mock_ledger.NewMockReader(s.ctrl)
	s.auth = mock_auth.NewMockAPIKeyAuthenticator(s.ctrl)
	s.wallets = mock_api.NewMockWalletManager(s.ctrl)

	restServer := api.NewRestServerWithController(api.Controllers{
		Issuer:     s.issuer,
		Verifier:   s.verifier,
		Ledger:     s.reader,
		Auth:       middleware.NewAPIKeyAuth(s.auth),
		Wallets:    s.wallets,
		GatewayURL: "https://gateway.example/",
	}, "localhost:0", "localhost:0")
	s.private = httptest.NewServer(restServer.PrivateHandler())
	s.public = httptest.NewServer(restServer.PublicHandler())
}

func (s *RestServerTestSuite) TearDownTest() {
	s.private.Close()
	s.public.Close()
	s.ctrl.Finish()
}

func (s *RestServerTestSuite) expectAuth() *gomock.Call {
	return s.auth.EXPECT().Authenticate(gomock.Any(), auth.APIKeyString(apiKey)).Return(auth.APIKey{
		ID:      "key-1",
		Issuer:  issuerDID,
		Account: account,
		Status:  auth.APIKeyStatusActive,
	}, nil)
}

func (s *RestServerTestSuite) do(method, url string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		reader = util.StructToJSONReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *RestServerTestSuite) decode(resp *http.Response, v any) {
	defer resp.Body.Close()
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(v))
}

func (s *RestServerTestSuite) TestVerifyValid() {
	cert := model.Certificate{
		TokenID:       tokenID,
		Serial:        5,
		Status:        model.CertStatusActive,
		ContentID:     "bafkreid",
		ContentHash:   "0xabc",
		TransactionID: "0.0.1234@1717200000.000000001",
	}
	req := verification.Request{Method: model.VerifyByTokenID, TokenID: tokenID}
	s.verifier.EXPECT().Verify(gomock.Any(), req).Return(model.VerificationResult{
		Verified:    true,
		Method:      model.VerifyByTokenID,
		Identifier:  tokenID,
		Certificate: &cert,
		Checks:      []model.Check{{Name: model.CheckLedgerRecord, Status: model.CheckPassed}},
	}, nil)

	resp := s.do(http.MethodPost, s.public.URL+"/verify", req)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.NotEmpty(resp.Header.Get(middleware.RequestIDHeader))

	result := api.VerifyResponse{}
	s.decode(resp, &result)
	s.True(result.Success)
	s.True(result.Verified)
	s.Empty(result.Reason)
	s.Require().NotNil(result.Blockchain)
	s.Equal(int64(5), result.Blockchain.Serial)
	s.Equal("active", result.Blockchain.Status)
	s.Require().NotNil(result.IPFS)
	s.Equal("https://gateway.example/ipfs/bafkreid", result.IPFS.GatewayURL)
	s.Len(result.Checks, 1)
}

func (s *RestServerTestSuite) TestVerifyRevokedIsStillSuccessful() {
	s.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(model.VerificationResult{
		Verified: false,
		Reason:   model.ReasonRevoked,
	}, nil)

	resp := s.do(http.MethodPost, s.public.URL+"/verify", verification.Request{Method: model.VerifyByTokenID, TokenID: tokenID})
	s.Equal(http.StatusOK, resp.StatusCode)
	result := api.VerifyResponse{}
	s.decode(resp, &result)
	s.True(result.Success)
	s.False(result.Verified)
	s.Equal(model.ReasonRevoked, result.Reason)
	s.Nil(result.Blockchain)
}

func (s *RestServerTestSuite) TestVerifyInvalidRequest() {
	s.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(model.VerificationResult{}, model.ErrInvalidParameter)

	resp := s.do(http.MethodPost, s.public.URL+"/verify", verification.Request{Method: "fingerprint"})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	result := api.VerifyResponse{}
	s.decode(resp, &result)
	s.False(result.Success)
	s.NotEmpty(result.Error)
}

func (s *RestServerTestSuite) TestVerifyMalformedBody() {
	resp, err := http.Post(s.public.URL+"/verify", "application/json", bytes.NewBufferString("{"))
	s.Require().NoError(err)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	result := api.VerifyResponse{}
	s.decode(resp, &result)
	s.False(result.Success)
}

func (s *RestServerTestSuite) TestVerifyLedgerUnreachable() {
	s.verifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Return(model.VerificationResult{}, model.ErrTransport)

	resp := s.do(http.MethodPost, s.public.URL+"/verify", verification.Request{Method: model.VerifyByTokenID, TokenID: tokenID})
	s.Equal(http.StatusBadGateway, resp.StatusCode)
}

func (s *RestServerTestSuite) TestVerifyMultipartFile() {
	document := []byte("%PDF-1.7 certificate")

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "certificate.pdf")
	s.Require().NoError(err)
	_, err = part.Write(document)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	s.verifier.EXPECT().Verify(gomock.Any(), verification.Request{Method: model.VerifyByFile, File: document}).Return(model.VerificationResult{Verified: true}, nil)

	resp, err := http.Post(s.public.URL+"/verify", mw.FormDataContentType(), body)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)
	result := api.VerifyResponse{}
	s.decode(resp, &result)
	s.True(result.Verified)
}

func (s *RestServerTestSuite) TestGetCertificate() {
	s.issuer.EXPECT().Get(gomock.Any(), tokenID).Return(model.Certificate{TokenID: tokenID, Serial: 5}, nil)

	resp := s.do(http.MethodGet, s.public.URL+"/certificates/"+tokenID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	cert := model.Certificate{}
	s.decode(resp, &cert)
	s.Equal(tokenID, cert.TokenID)
}

func (s *RestServerTestSuite) TestGetCertificateNotFound() {
	s.issuer.EXPECT().Get(gomock.Any(), tokenID).Return(model.Certificate{}, model.ErrCertificateNotFound)

	resp := s.do(http.MethodGet, s.public.URL+"/certificates/"+tokenID, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *RestServerTestSuite) TestLookup() {
	req := ledger.LookupRequest{ContentID: "bafkreid"}
	s.reader.EXPECT().Lookup(gomock.Any(), req).Return(ledger.LookupResult{Found: true, Certificate: &model.Certificate{TokenID: tokenID}}, nil)

	resp := s.do(http.MethodGet, s.public.URL+"/lookup?content_id=bafkreid", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	result := ledger.LookupResult{}
	s.decode(resp, &result)
	s.True(result.Found)
	s.Equal(tokenID, result.Certificate.TokenID)
}

func (s *RestServerTestSuite) TestLookupInvalid() {
	s.reader.EXPECT().Lookup(gomock.Any(), ledger.LookupRequest{}).Return(ledger.LookupResult{}, model.ErrInvalidParameter)

	resp := s.do(http.MethodGet, s.public.URL+"/lookup", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *RestServerTestSuite) TestMirrorReadsLookupEndpoint() {
	hash := fingerprint.HashBytes([]byte("certificate body")).String()
	cert := model.Certificate{TokenID: tokenID, ContentHash: hash}
	s.reader.EXPECT().Lookup(gomock.Any(), ledger.LookupRequest{ContentHash: hash}).Return(ledger.LookupResult{Found: true, Certificate: &cert}, nil)

	mirror := ledger.NewMirrorLedger(s.public.URL, 0)
	result, err := mirror.Lookup(s.ctx, ledger.LookupRequest{ContentHash: hash})
	s.Require().NoError(err)
	s.True(result.Found)
	s.Equal(cert, *result.Certificate)

	document := fingerprint.HashBytes([]byte("%PDF-1.7 certificate")).String()
	s.reader.EXPECT().Lookup(gomock.Any(), ledger.LookupRequest{DocumentHash: document}).Return(ledger.LookupResult{}, nil)
	result, err = mirror.Lookup(s.ctx, ledger.LookupRequest{DocumentHash: document})
	s.Require().NoError(err)
	s.False(result.Found)
}

func (s *RestServerTestSuite) TestHash() {
	document := []byte("certificate body")
	resp, err := http.Post(s.public.URL+"/hash", "application/octet-stream", bytes.NewReader(document))
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	expectedCID, err := content.ComputeCID(document)
	s.Require().NoError(err)
	result := api.HashResponse{}
	s.decode(resp, &result)
	s.Equal(fingerprint.HashBytes(document).String(), result.Hash)
	s.Equal(expectedCID, result.ContentID)
	s.Equal(len(document), result.Size)
}

func (s *RestServerTestSuite) TestPrivateEndpointsNotOnPublicListener() {
	resp := s.do(http.MethodPost, s.public.URL+"/certificates", issuance.IssueRequest{})
	defer resp.Body.Close()
	s.NotEqual(http.StatusCreated, resp.StatusCode)
	s.NotEqual(http.StatusOK, resp.StatusCode)
}

func (s *RestServerTestSuite) TestIssueRequiresAPIKey() {
	resp, err := http.Post(s.private.URL+"/certificates", "application/json", bytes.NewBufferString("{}"))
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *RestServerTestSuite) TestIssue() {
	req := issuance.IssueRequest{
		Issuer:      "did:hedera:testnet:0.0.9999",
		Recipient:   "Alice",
		Course:      "Go 101",
		Institution: "Gopher University",
		Document:    []byte("%PDF-1.7"),
	}
	expected := req
	expected.Issuer = issuerDID
	expected.IssuerAccount = account

	gomock.InOrder(
		s.expectAuth(),
		s.issuer.EXPECT().Issue(gomock.Any(), gomock.Any(), expected).Return(issuance.IssueResult{TokenID: tokenID, Serial: 5}, nil),
	)

	resp := s.do(http.MethodPost, s.private.URL+"/certificates", req)
	s.Equal(http.StatusCreated, resp.StatusCode)
	result := issuance.IssueResult{}
	s.decode(resp, &result)
	s.Equal(tokenID, result.TokenID)
}

func (s *RestServerTestSuite) TestIssueDuplicate() {
	s.expectAuth()
	s.issuer.EXPECT().Issue(gomock.Any(), gomock.Any(), gomock.Any()).Return(issuance.IssueResult{}, model.ErrDuplicateContentHash)

	resp := s.do(http.MethodPost, s.private.URL+"/certificates", issuance.IssueRequest{Recipient: "Alice"})
	defer resp.Body.Close()
	s.Equal(http.StatusConflict, resp.StatusCode)
}

func (s *RestServerTestSuite) TestBatchIssue() {
	req := issuance.BatchIssueRequest{
		Course:       "Go 101",
		Institution:  "Gopher University",
		Recipients:   []string{"Alice", "Bob"},
		DocumentCIDs: []string{"bafkreia", "bafkreib"},
	}
	expected := req
	expected.Issuer = issuerDID
	expected.IssuerAccount = account

	s.expectAuth()
	s.issuer.EXPECT().BatchIssue(gomock.Any(), gomock.Any(), expected).Return(issuance.BatchIssueResult{TransactionID: "0.0.1234@1717200000.000000001"}, nil)

	resp := s.do(http.MethodPost, s.private.URL+"/certificates/batch", req)
	s.Equal(http.StatusCreated, resp.StatusCode)
	result := issuance.BatchIssueResult{}
	s.decode(resp, &result)
	s.Equal(model.TransactionID("0.0.1234@1717200000.000000001"), result.TransactionID)
}

func (s *RestServerTestSuite) TestBatchIssueSizeMismatch() {
	s.expectAuth()
	s.issuer.EXPECT().BatchIssue(gomock.Any(), gomock.Any(), gomock.Any()).Return(issuance.BatchIssueResult{}, model.ErrBatchSizeMismatch)

	resp := s.do(http.MethodPost, s.private.URL+"/certificates/batch", issuance.BatchIssueRequest{Recipients: []string{"Alice"}})
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *RestServerTestSuite) TestRevoke() {
	s.expectAuth()
	s.issuer.EXPECT().Revoke(gomock.Any(), gomock.Any(), issuance.RevokeRequest{
		Requester: account,
		TokenID:   tokenID,
		Reason:    "issued in error",
	}).Return(ledger.Receipt{TokenID: tokenID, Serial: 5}, nil)

	resp := s.do(http.MethodDelete, s.private.URL+"/certificates/"+tokenID, map[string]string{"reason": "issued in error"})
	s.Equal(http.StatusOK, resp.StatusCode)
	receipt := ledger.Receipt{}
	s.decode(resp, &receipt)
	s.Equal(int64(5), receipt.Serial)
}

func (s *RestServerTestSuite) TestRevokeByOtherIssuer() {
	s.expectAuth()
	s.issuer.EXPECT().Revoke(gomock.Any(), gomock.Any(), gomock.Any()).Return(ledger.Receipt{}, model.ErrNotIssuer)

	resp := s.do(http.MethodDelete, s.private.URL+"/certificates/"+tokenID+"?reason=x", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *RestServerTestSuite) TestListWallets() {
	conn := &model.WalletConnection{AccountID: account, Kind: model.WalletHashPack}
	s.expectAuth()
	s.wallets.EXPECT().Statuses().Return([]wallet.Status{
		{Kind: model.WalletHashPack, State: model.WalletStateConnected, Connection: conn},
		{Kind: model.WalletWalletConnect, State: model.WalletStateConnecting, PairingURI: "wc:abc@2"},
	})
	s.wallets.EXPECT().Active().Return(account, nil)

	resp := s.do(http.MethodGet, s.private.URL+"/wallet", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	result := api.WalletsResponse{}
	s.decode(resp, &result)
	s.Equal(account, result.Active)
	s.Require().Len(result.Wallets, 2)
	s.Equal("wc:abc@2", result.Wallets[1].PairingURI)
}

func (s *RestServerTestSuite) TestConnectWallet() {
	s.expectAuth()
	s.wallets.EXPECT().Connect(gomock.Any(), model.WalletMetaMask).Return(model.WalletConnection{AccountID: "0x00000000000000000000000000000000000004d2", Kind: model.WalletMetaMask}, nil)

	resp := s.do(http.MethodPost, s.private.URL+"/wallet/metamask/connect", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	conn := model.WalletConnection{}
	s.decode(resp, &conn)
	s.Equal(model.WalletMetaMask, conn.Kind)
}

func (s *RestServerTestSuite) TestConnectWalletExtensionMissing() {
	s.expectAuth()
	s.wallets.EXPECT().Connect(gomock.Any(), model.WalletBlade).Return(model.WalletConnection{}, model.ErrExtensionMissing)

	resp := s.do(http.MethodPost, s.private.URL+"/wallet/blade/connect", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusBadGateway, resp.StatusCode)
}

func (s *RestServerTestSuite) TestConnectUnknownWallet() {
	s.expectAuth()

	resp := s.do(http.MethodPost, s.private.URL+"/wallet/phantom/connect", nil)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *RestServerTestSuite) TestConnectWalletAsync() {
	connected := make(chan struct{})
	s.expectAuth()
	s.wallets.EXPECT().Statuses().Return([]wallet.Status{{Kind: model.WalletWalletConnect, State: model.WalletStateConnecting}})
	s.wallets.EXPECT().Active().Return("", nil)
	s.wallets.EXPECT().Connect(gomock.Any(), model.WalletWalletConnect).DoAndReturn(func(ctx context.Context, kind model.WalletKind) (model.WalletConnection, error) {
		close(connected)
		return model.WalletConnection{AccountID: account, Kind: kind}, nil
	})

	resp := s.do(http.MethodPost, s.private.URL+"/wallet/walletconnect/connect?async=true", nil)
	s.Equal(http.StatusAccepted, resp.StatusCode)
	result := api.WalletsResponse{}
	s.decode(resp, &result)
	s.Empty(result.Active)
	<-connected
}

func (s *RestServerTestSuite) TestDisconnectWallet() {
	s.expectAuth()
	gomock.InOrder(
		s.wallets.EXPECT().Disconnect(gomock.Any(), model.WalletHashPack).Return(nil),
		s.wallets.EXPECT().Statuses().Return([]wallet.Status{{Kind: model.WalletHashPack, State: model.WalletStateDisconnected}}),
		s.wallets.EXPECT().Active().Return("", nil),
	)

	resp := s.do(http.MethodPost, s.private.URL+"/wallet/hashpack/disconnect", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	result := api.WalletsResponse{}
	s.decode(resp, &result)
	s.Equal(model.WalletStateDisconnected, result.Wallets[0].State)
}
