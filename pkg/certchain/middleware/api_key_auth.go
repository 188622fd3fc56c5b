package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/certchain/certchain/pkg/certchain/auth"
	"github.com/sirupsen/logrus"
)

// APIKeyAuth guards the private listener. Only requests carrying an active
// issuer key reach the wrapped handler.
type APIKeyAuth struct {
	authenticator auth.APIKeyAuthenticator
}

func NewAPIKeyAuth(authenticator auth.APIKeyAuthenticator) *APIKeyAuth {
	return &APIKeyAuth{authenticator: authenticator}
}

func (a *APIKeyAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keyString, ok := bearerKey(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w, "missing API key")
			return
		}

		key, err := a.authenticator.Authenticate(r.Context(), keyString)
		switch {
		case errors.Is(err, auth.ErrAPIKeyError):
			logrus.Debugf("request %s rejected: %v", RequestIDFromContext(r.Context()), err)
			unauthorized(w, err.Error())
			return
		case err != nil:
			logrus.Errorf("request %s: API key lookup failed: %v", RequestIDFromContext(r.Context()), err)
			http.Error(w, "Internal server error: "+err.Error(), http.StatusInternalServerError)
			return
		}

		ctx := withCredential(r.Context(), Credential{KeyID: key.ID, Issuer: key.Issuer, Account: key.Account})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="certchain"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(msg))
}

func bearerKey(header string) (auth.APIKeyString, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return auth.APIKeyString(token), token != ""
}
