package model

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrInvalidParameter = errors.New("") // Base error for invalid parameter
var ErrWrongStatus = errors.New("")
var ErrDataNotFound = errors.New("") // Base error for data not found
var ErrForbidden = errors.New("")
var ErrTransport = errors.New("") // Base error for network / RPC failures

var ErrCertificateNotFound = fmt.Errorf("%w", ErrDataNotFound)
var ErrDuplicateContentHash = fmt.Errorf("content hash already anchored%w", ErrWrongStatus)
var ErrAlreadyRevoked = fmt.Errorf("certificate already revoked%w", ErrWrongStatus)
var ErrNotIssuer = fmt.Errorf("only the issuing account may revoke%w", ErrForbidden)
var ErrBatchSizeMismatch = fmt.Errorf("batch arrays have different lengths%w", ErrInvalidParameter)

// Wallet connection errors. ErrConnection is the base of every connect failure.
var ErrConnection = errors.New("")
var ErrExtensionMissing = fmt.Errorf("wallet extension not found%w", ErrConnection)
var ErrUserRejected = fmt.Errorf("user rejected the connection%w", ErrConnection)
var ErrConnectionTimeout = fmt.Errorf("wallet connection timed out%w", ErrConnection)
var ErrConnectionAborted = fmt.Errorf("wallet disconnected while connecting%w", ErrConnection)

var ErrNotConnected = fmt.Errorf("wallet not connected%w", ErrWrongStatus)
var ErrWalletRejected = errors.New("wallet rejected the request")
var ErrUnsupportedWallet = fmt.Errorf("unsupported wallet kind%w", ErrInvalidParameter)

var ErrContentUnavailable = fmt.Errorf("content unavailable%w", ErrTransport)

func ErrToHttpStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, ErrDataNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrWrongStatus):
		return http.StatusConflict
	case errors.Is(err, ErrConnection), errors.Is(err, ErrWalletRejected):
		return http.StatusBadGateway
	case errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
