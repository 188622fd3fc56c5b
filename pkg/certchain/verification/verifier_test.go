package verification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/issuance"
	"github.com/certchain/certchain/pkg/certchain/ledger"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/certchain/verification"
	"github.com/certchain/certchain/pkg/fingerprint"
	mock_content "github.com/certchain/certchain/test/mock/certchain/content"
	mock_ledger "github.com/certchain/certchain/test/mock/certchain/ledger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/suite"
)

type VerifierTestSuite struct {
	suite.Suite

	ctx      context.Context
	ctrl     *gomock.Controller
	reader   *mock_ledger.MockReader
	content  *content.MemoryStore
	now      time.Time
	verifier verification.Verifier

	document []byte // Certificate file.
	doc      []byte // Metadata document pinned at cid.
	cid      string
	cert     model.Certificate
}

func TestVerifier(t *testing.T) {
	suite.Run(t, new(VerifierTestSuite))
}

func (s *VerifierTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.reader = mock_ledger.NewMockReader(s.ctrl)
	s.content = content.NewMemoryStore()
	s.now = time.Unix(1800000000, 0)
	s.verifier = verification.NewVerifier(s.reader, s.content, verification.VerifierWithClock(func() time.Time { return s.now }))

	s.document = []byte("%PDF-1.7 Distributed Systems awarded to Alice Chen")
	documentCID, err := s.content.Put(s.ctx, "alice.pdf", s.document)
	s.Require().NoError(err)
	s.doc, err = issuance.NFTMetadata{
		Name:   "Distributed Systems",
		Format: issuance.MetadataFormat,
		Files: []issuance.NFTFile{{
			URI:           "ipfs://" + documentCID,
			Type:          "application/pdf",
			Checksum:      fingerprint.HashBytes(s.document).Hex(),
			IsDefaultFile: true,
		}},
		Properties: issuance.NFTProperties{Recipient: "Alice Chen", Course: "Distributed Systems"},
	}.Marshal()
	s.Require().NoError(err)
	s.cid, err = s.content.Put(s.ctx, "alice.json", s.doc)
	s.Require().NoError(err)
	s.cert = model.Certificate{
		ID:            "cert-1",
		TokenID:       "0.0.7007/1",
		Serial:        1,
		Version:       1,
		Status:        model.CertStatusActive,
		Issuer:        "did:hedera:testnet:0.0.1234",
		IssuerAccount: "0.0.1234",
		Recipient:     "Alice Chen",
		IssuedAt:      1700000000,
		ExpiresAt:     1900000000,
		ContentHash:   fingerprint.HashBytes(s.doc).String(),
		DocumentHash:  fingerprint.HashBytes(s.document).String(),
		ContentID:     s.cid,
		TransactionID: "0.0.1234@1700000000.000000001",
	}
}

func (s *VerifierTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *VerifierTestSuite) expectLookup(req ledger.LookupRequest, cert *model.Certificate) {
	s.reader.EXPECT().Lookup(gomock.Any(), req).Return(ledger.LookupResult{Found: cert != nil, Certificate: cert}, nil)
}

func (s *VerifierTestSuite) assertChecks(result model.VerificationResult, expected map[model.CheckName]model.CheckStatus) {
	s.Len(result.Checks, 5)
	for name, status := range expected {
		check, ok := result.Check(name)
		s.Require().True(ok, string(name))
		s.Equal(status, check.Status, string(name))
	}
}

func (s *VerifierTestSuite) TestVerifyByTokenID() {
	cert := s.cert
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)

	result, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: " 0.0.7007/1"})
	s.Require().NoError(err)
	s.True(result.Verified)
	s.Equal(model.ReasonNone, result.Reason)
	s.Equal("0.0.7007/1", result.Identifier)
	s.Equal(s.now.Unix(), result.CheckedAt)
	s.Equal(s.cert, *result.Certificate)
	s.assertChecks(result, map[model.CheckName]model.CheckStatus{
		model.CheckLedgerRecord:       model.CheckPassed,
		model.CheckContentRetrievable: model.CheckPassed,
		model.CheckHashMatch:          model.CheckPassed,
		model.CheckNotRevoked:         model.CheckPassed,
		model.CheckNotExpired:         model.CheckPassed,
	})
}

func (s *VerifierTestSuite) TestVerifyByHashAndContentID() {
	cert := s.cert
	s.expectLookup(ledger.LookupRequest{ContentHash: s.cert.ContentHash}, &cert)
	s.expectLookup(ledger.LookupRequest{ContentID: s.cid}, &cert)

	result, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByHash, Hash: fingerprint.Digest(s.cert.ContentHash).Hex()})
	s.Require().NoError(err)
	s.True(result.Verified)

	result, err = s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByContentID, ContentID: s.cid})
	s.Require().NoError(err)
	s.True(result.Verified)
}

func (s *VerifierTestSuite) TestVerifyByFile() {
	cert := s.cert
	s.expectLookup(ledger.LookupRequest{DocumentHash: s.cert.DocumentHash}, &cert)

	result, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByFile, File: s.document})
	s.Require().NoError(err)
	s.True(result.Verified)
	s.Equal(s.cert.DocumentHash, result.Identifier)
	s.assertChecks(result, map[model.CheckName]model.CheckStatus{
		model.CheckLedgerRecord: model.CheckPassed,
		model.CheckHashMatch:    model.CheckPassed,
	})
}

func (s *VerifierTestSuite) TestVerifyByTokenIDWithIssuedDocument() {
	cert := s.cert
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)

	result, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1", File: s.document})
	s.Require().NoError(err)
	s.True(result.Verified)
	s.Equal(model.ReasonNone, result.Reason)
}

func (s *VerifierTestSuite) TestMetadataNotReferencingDocument() {
	// The pinned metadata is intact but lists another file than the one recorded.
	cert := s.cert
	cert.DocumentHash = fingerprint.HashBytes([]byte("%PDF-1.7 another certificate")).String()
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)

	result, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1"})
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(model.ReasonTampered, result.Reason)
	check, _ := result.Check(model.CheckHashMatch)
	s.Contains(check.Detail, "does not reference")
}

func (s *VerifierTestSuite) TestSuppliedMetadataWithoutRecordedDocument() {
	cert := s.cert
	cert.DocumentHash = ""
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)

	result, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1", File: s.doc})
	s.Require().NoError(err)
	s.True(result.Verified)

	result, err = s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1", File: s.document})
	s.Require().NoError(err)
	s.Equal(model.ReasonTampered, result.Reason)
}

func (s *VerifierTestSuite) TestNotFoundSkipsContentFetch() {
	store := mock_content.NewMockStore(s.ctrl)
	verifier := verification.NewVerifier(s.reader, store)
	neverMinted, err := content.ComputeCID([]byte("never minted"))
	s.Require().NoError(err)
	s.expectLookup(ledger.LookupRequest{ContentID: neverMinted}, nil)

	// No Get is expected on the store.
	result, err := verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByContentID, ContentID: neverMinted})
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(model.ReasonNotFound, result.Reason)
	s.Nil(result.Certificate)
	s.assertChecks(result, map[model.CheckName]model.CheckStatus{
		model.CheckLedgerRecord:       model.CheckFailed,
		model.CheckContentRetrievable: model.CheckSkipped,
		model.CheckHashMatch:          model.CheckSkipped,
		model.CheckNotRevoked:         model.CheckSkipped,
		model.CheckNotExpired:         model.CheckSkipped,
	})
}

func (s *VerifierTestSuite) TestTampered() {
	s.content.Replace(s.cid, []byte(`{"name":"Distributed Systems","properties":{"recipient":"Mallory"}}`))
	cert := s.cert
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)

	result, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1"})
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(model.ReasonTampered, result.Reason)
	s.assertChecks(result, map[model.CheckName]model.CheckStatus{
		model.CheckLedgerRecord:       model.CheckPassed,
		model.CheckContentRetrievable: model.CheckPassed,
		model.CheckHashMatch:          model.CheckFailed,
		model.CheckNotRevoked:         model.CheckPassed,
		model.CheckNotExpired:         model.CheckPassed,
	})
}

func (s *VerifierTestSuite) TestSuppliedFileMismatch() {
	cert := s.cert
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)

	result, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1", File: []byte("edited copy")})
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(model.ReasonTampered, result.Reason)
}

func (s *VerifierTestSuite) TestContentUnavailable() {
	store := mock_content.NewMockStore(s.ctrl)
	verifier := verification.NewVerifier(s.reader, store, verification.VerifierWithClock(func() time.Time { return s.now }))
	cert := s.cert
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)
	store.EXPECT().Get(gomock.Any(), s.cid).Return(nil, model.ErrContentUnavailable)

	result, err := verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1"})
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(model.ReasonContentUnavailable, result.Reason)
	s.assertChecks(result, map[model.CheckName]model.CheckStatus{
		model.CheckLedgerRecord:       model.CheckPassed,
		model.CheckContentRetrievable: model.CheckFailed,
		model.CheckHashMatch:          model.CheckSkipped,
		model.CheckNotRevoked:         model.CheckPassed,
		model.CheckNotExpired:         model.CheckPassed,
	})
}

func (s *VerifierTestSuite) TestRevokedRegardlessOfContent() {
	cert := s.cert
	cert.Status = model.CertStatusRevoked
	cert.RevokedAt = 1750000000
	cert.RevokeReason = "issued in error"
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)

	result, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1"})
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(model.ReasonRevoked, result.Reason)
	check, _ := result.Check(model.CheckNotRevoked)
	s.Contains(check.Detail, "issued in error")
	check, _ = result.Check(model.CheckHashMatch)
	s.Equal(model.CheckPassed, check.Status)
}

func (s *VerifierTestSuite) TestExpired() {
	cert := s.cert
	cert.ExpiresAt = s.now.Unix()
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)

	result, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1"})
	s.Require().NoError(err)
	s.False(result.Verified)
	s.Equal(model.ReasonExpired, result.Reason)
}

func (s *VerifierTestSuite) TestReasonPrecedence() {
	// Revoked, expired and tampered at once: revoked wins and every check is still reported.
	s.content.Replace(s.cid, []byte("tampered"))
	cert := s.cert
	cert.Status = model.CertStatusRevoked
	cert.ExpiresAt = s.now.Unix() - 1
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)

	result, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1"})
	s.Require().NoError(err)
	s.Equal(model.ReasonRevoked, result.Reason)
	s.assertChecks(result, map[model.CheckName]model.CheckStatus{
		model.CheckHashMatch:  model.CheckFailed,
		model.CheckNotRevoked: model.CheckFailed,
		model.CheckNotExpired: model.CheckFailed,
	})

	// Expired beats tampered.
	cert.Status = model.CertStatusActive
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)
	result, err = s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1"})
	s.Require().NoError(err)
	s.Equal(model.ReasonExpired, result.Reason)
}

func (s *VerifierTestSuite) TestRecordWithoutContentID() {
	cert := s.cert
	cert.ContentID = ""
	s.expectLookup(ledger.LookupRequest{TokenID: "0.0.7007/1"}, &cert)

	result, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1"})
	s.Require().NoError(err)
	s.True(result.Verified)
	s.assertChecks(result, map[model.CheckName]model.CheckStatus{
		model.CheckContentRetrievable: model.CheckSkipped,
		model.CheckHashMatch:          model.CheckSkipped,
	})
}

func (s *VerifierTestSuite) TestLedgerTransportError() {
	transportErr := errors.New("mirror unreachable")
	s.reader.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(ledger.LookupResult{}, transportErr)

	_, err := s.verifier.Verify(s.ctx, verification.Request{Method: model.VerifyByTokenID, TokenID: "0.0.7007/1"})
	s.ErrorIs(err, transportErr)
}

func (s *VerifierTestSuite) TestMalformedRequest() {
	for _, req := range []verification.Request{
		{},
		{Method: "qr"},
		{Method: model.VerifyByTokenID},
		{Method: model.VerifyByTokenID, TokenID: "7007"},
		{Method: model.VerifyByHash, Hash: "0x1234"},
		{Method: model.VerifyByContentID, ContentID: "not-a-cid"},
		{Method: model.VerifyByFile},
	} {
		_, err := s.verifier.Verify(s.ctx, req)
		s.ErrorIs(err, model.ErrInvalidParameter, "%+v", req)
	}
}
