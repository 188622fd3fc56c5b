// Package verification answers whether a certificate is genuine by combining a
// ledger lookup with a content integrity check.
package verification

import (
	"context"
	"fmt"
	"time"

	otlp_util "github.com/bluexlab/otlp-util-go"
	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/certchain/issuance"
	"github.com/certchain/certchain/pkg/certchain/ledger"
	"github.com/certchain/certchain/pkg/certchain/model"
	"github.com/certchain/certchain/pkg/fingerprint"
	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Request names the certificate to verify. Method selects which identifier is
// used for the lookup. File is the certificate file itself: the file method
// looks the record up by its digest, and with any other method it is compared
// against the recorded document digest.
type Request struct {
	Method    model.VerificationMethod `json:"verificationMethod"`
	TokenID   string                   `json:"tokenId,omitempty"`
	Hash      string                   `json:"hash,omitempty"`
	ContentID string                   `json:"contentId,omitempty"`
	File      []byte                   `json:"file,omitempty"`
}

type Verifier interface {
	// Verify returns an error only for malformed requests and ledger transport
	// failures. A certificate that fails verification is a normal result.
	Verify(ctx context.Context, req Request) (model.VerificationResult, error)
}

type VerifierOption func(*_Verifier)

func VerifierWithClock(now func() time.Time) VerifierOption {
	return func(v *_Verifier) {
		v.now = now
	}
}

type _Verifier struct {
	ledger  ledger.Reader
	content content.Store
	now     func() time.Time

	verifications metric.Int64Counter
}

func NewVerifier(reader ledger.Reader, store content.Store, opts ...VerifierOption) Verifier {
	v := &_Verifier{
		ledger:        reader,
		content:       store,
		now:           time.Now,
		verifications: otlp_util.NewInt64Counter("certchain.verification.count", metric.WithDescription("The total number of certificate verifications")),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// resolved is a validated request.
type resolved struct {
	lookup     ledger.LookupRequest
	identifier string
	file       fingerprint.Digest // Digest of the supplied file, if any.
}

func (v *_Verifier) Verify(ctx context.Context, req Request) (model.VerificationResult, error) {
	r, err := resolve(req)
	if err != nil {
		return model.VerificationResult{}, err
	}

	ctx, span := otlp_util.Start(ctx, "verification/verifier.Verify",
		trace.WithAttributes(
			attribute.String("method", string(req.Method)),
			attribute.String("identifier", r.identifier),
		),
	)
	defer span.End()

	lookup, err := v.ledger.Lookup(ctx, r.lookup)
	if err != nil {
		span.RecordError(err)
		return model.VerificationResult{}, err
	}

	result := model.VerificationResult{
		Method:     req.Method,
		Identifier: r.identifier,
		CheckedAt:  v.now().Unix(),
	}
	if !lookup.Found {
		result.Checks = []model.Check{
			failed(model.CheckLedgerRecord, model.ReasonNotFound, "no ledger record for "+r.identifier),
			skipped(model.CheckContentRetrievable),
			skipped(model.CheckHashMatch),
			skipped(model.CheckNotRevoked),
			skipped(model.CheckNotExpired),
		}
	} else {
		cert := *lookup.Certificate
		result.Certificate = &cert
		result.Checks = append([]model.Check{passed(model.CheckLedgerRecord)}, v.checkCertificate(ctx, cert, r.file)...)
	}
	result.Verified, result.Reason = summarize(result.Checks)

	span.SetAttributes(
		attribute.Bool("verified", result.Verified),
		attribute.String("reason", string(result.Reason)),
	)
	v.verifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", string(req.Method)),
		attribute.Bool("verified", result.Verified),
	))
	if result.Verified {
		logrus.Infof("verification by %s %q: verified", req.Method, r.identifier)
	} else {
		logrus.Infof("verification by %s %q: not verified (%s)", req.Method, r.identifier, result.Reason)
	}
	return result, nil
}

// checkCertificate runs every check after the ledger record one. None of them
// short-circuits the others.
func (v *_Verifier) checkCertificate(ctx context.Context, cert model.Certificate, file fingerprint.Digest) []model.Check {
	checks := make([]model.Check, 0, 4)

	var metadata []byte
	if cert.ContentID == "" {
		checks = append(checks, skipped(model.CheckContentRetrievable))
	} else if data, err := v.content.Get(ctx, cert.ContentID); err != nil {
		logrus.Warnf("verification: fetch %s: %v", cert.ContentID, err)
		checks = append(checks, failed(model.CheckContentRetrievable, model.ReasonContentUnavailable, err.Error()))
	} else {
		metadata = data
		checks = append(checks, passed(model.CheckContentRetrievable))
	}

	if metadata == nil && file.IsEmpty() {
		checks = append(checks, skipped(model.CheckHashMatch))
	} else if detail := mismatch(cert, metadata, file); detail != "" {
		checks = append(checks, failed(model.CheckHashMatch, model.ReasonTampered, detail))
	} else {
		checks = append(checks, passed(model.CheckHashMatch))
	}

	if cert.IsRevoked() {
		detail := fmt.Sprintf("revoked at %d", cert.RevokedAt)
		if cert.RevokeReason != "" {
			detail += ": " + cert.RevokeReason
		}
		checks = append(checks, failed(model.CheckNotRevoked, model.ReasonRevoked, detail))
	} else {
		checks = append(checks, passed(model.CheckNotRevoked))
	}

	if cert.IsExpired(v.now().Unix()) {
		checks = append(checks, failed(model.CheckNotExpired, model.ReasonExpired, fmt.Sprintf("expired at %d", cert.ExpiresAt)))
	} else {
		checks = append(checks, passed(model.CheckNotExpired))
	}
	return checks
}

// mismatch describes the first integrity violation among the fetched
// metadata document and the supplied file, or returns "" if there is none.
func mismatch(cert model.Certificate, metadata []byte, file fingerprint.Digest) string {
	recorded := fingerprint.Digest(cert.ContentHash)
	document := fingerprint.Digest(cert.DocumentHash)

	if metadata != nil {
		if fetched := fingerprint.HashBytes(metadata); !fetched.Equal(recorded) {
			return fmt.Sprintf("content at %s hashes to %s, recorded %s", cert.ContentID, fetched, recorded)
		}
		if !document.IsEmpty() && !referencesDocument(metadata, document) {
			return fmt.Sprintf("metadata at %s does not reference document %s", cert.ContentID, document)
		}
	}

	if !file.IsEmpty() {
		// Without a recorded document the metadata is the only file there is.
		expected := document
		if expected.IsEmpty() {
			expected = recorded
		}
		if !file.Equal(expected) {
			return fmt.Sprintf("supplied file hashes to %s, recorded %s", file, expected)
		}
	}
	return ""
}

// referencesDocument reports whether one of the files listed in the metadata
// carries the document digest as its checksum.
func referencesDocument(metadata []byte, document fingerprint.Digest) bool {
	meta := issuance.NFTMetadata{}
	if err := json.Unmarshal(metadata, &meta); err != nil {
		return false
	}
	return lo.ContainsBy(meta.Files, func(f issuance.NFTFile) bool {
		return fingerprint.Digest(f.Checksum).Equal(document)
	})
}

// summarize reports whether no check failed and, otherwise, the reason of
// highest precedence among the failed checks.
func summarize(checks []model.Check) (bool, model.VerificationReason) {
	failures := lo.FilterMap(checks, func(c model.Check, _ int) (model.VerificationReason, bool) {
		return c.Reason, c.Status == model.CheckFailed
	})
	if len(failures) == 0 {
		return true, model.ReasonNone
	}
	for _, reason := range model.ReasonPrecedence {
		if lo.Contains(failures, reason) {
			return false, reason
		}
	}
	return false, failures[0]
}

func passed(name model.CheckName) model.Check {
	return model.Check{Name: name, Status: model.CheckPassed}
}

func skipped(name model.CheckName) model.Check {
	return model.Check{Name: name, Status: model.CheckSkipped}
}

func failed(name model.CheckName, reason model.VerificationReason, detail string) model.Check {
	return model.Check{Name: name, Status: model.CheckFailed, Reason: reason, Detail: detail}
}
