package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/mailrelay/internal/common"
)

var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx reply from the relay.
type APIError struct {
	StatusCode     int    `json:"-"`
	Detail         string `json:"detail"`
	ProviderStatus int    `json:"provider_status,omitempty"`
	ProviderBody   string `json:"provider_body,omitempty"`
}

func (e *APIError) Error() string {
	if e.ProviderStatus != 0 {
		return fmt.Sprintf("relay returned %d: %s (provider %d: %s)", e.StatusCode, e.Detail, e.ProviderStatus, e.ProviderBody)
	}
	return fmt.Sprintf("relay returned %d: %s", e.StatusCode, e.Detail)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return common.ErrInvalidCredential
	case http.StatusPreconditionFailed:
		return common.ErrCredentialMissing
	case http.StatusNotFound:
		return common.ErrRemoteNotFound
	case http.StatusBadGateway:
		return common.ErrProviderRejected
	case http.StatusGatewayTimeout:
		return common.ErrTransport
	case http.StatusBadRequest:
		return common.ErrorAlreadyExists
	case http.StatusUnprocessableEntity:
		return common.ErrorValidation
	default:
		return common.ErrorInternal
	}
}
