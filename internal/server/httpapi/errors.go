package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/mailrelay/internal/common"
	"github.com/dmitrijs2005/mailrelay/internal/mailtm"
)

type errorBody struct {
	Detail         string `json:"detail"`
	ProviderStatus int    `json:"provider_status,omitempty"`
	ProviderBody   string `json:"provider_body,omitempty"`
}

// statusFor maps an error kind to the status the caller sees.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrCredentialMissing):
		return http.StatusPreconditionFailed
	case errors.Is(err, common.ErrRemoteNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrProviderRejected):
		return http.StatusBadGateway
	case errors.Is(err, common.ErrTransport):
		return http.StatusGatewayTimeout
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func detailFor(err error, status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "Could not validate credentials"
	case http.StatusPreconditionFailed:
		return "No mail provider token is set for this user"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusBadRequest:
		if strings.HasPrefix(err.Error(), "email") {
			return "Email already registered"
		}
		return "Username already registered"
	case http.StatusBadGateway:
		return "Mail provider rejected the request"
	case http.StatusGatewayTimeout:
		return "Mail provider did not respond"
	case http.StatusInternalServerError:
		return "Internal server error"
	default:
		return err.Error()
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Detail: detailFor(err, status)}

	var pe *mailtm.ProviderError
	if errors.As(err, &pe) {
		body.ProviderStatus = pe.StatusCode
		body.ProviderBody = pe.Body
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "status", status, "error", err)
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
