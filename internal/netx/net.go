// Package netx holds the small JSON-over-HTTP helpers shared by the provider
// client and the relay's own client library.
package netx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const contentTypeJSON = "application/json"

// NewJSONRequest builds a request whose body is payload encoded as JSON.
// A nil payload sends no body. JSON Accept and Content-Type headers are set
// either way.
func NewJSONRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
	return req, nil
}

// SetBearer attaches token as a bearer credential. An empty token is a no-op.
func SetBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// ReadSnippet reads at most limit bytes of r as trimmed text, for error
// messages.
func ReadSnippet(r io.Reader, limit int64) string {
	b, _ := io.ReadAll(io.LimitReader(r, limit))
	return strings.TrimSpace(string(b))
}

// IsSuccess reports a 2xx status.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
