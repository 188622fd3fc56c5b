package middleware

import "context"

type ctxKey int

const (
	credentialKey ctxKey = iota
	requestIDKey
)

// Credential is the issuer identity a request was authenticated as.
type Credential struct {
	KeyID   string
	Issuer  string // issuer DID
	Account string // ledger account the issuer mints from
}

func withCredential(ctx context.Context, c Credential) context.Context {
	return context.WithValue(ctx, credentialKey, c)
}

// CredentialFromContext returns the credential APIKeyAuth attached, if any.
func CredentialFromContext(ctx context.Context) (Credential, bool) {
	c, ok := ctx.Value(credentialKey).(Credential)
	return c, ok
}

// IssuerFromContext is a shorthand for handlers that only need the issuer and account.
func IssuerFromContext(ctx context.Context) (issuer, account string) {
	c, _ := CredentialFromContext(ctx)
	return c.Issuer, c.Account
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
