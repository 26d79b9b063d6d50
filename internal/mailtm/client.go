package mailtm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/mailrelay/internal/netx"
)

// DefaultBaseURL is the public mail.tm API root.
const DefaultBaseURL = "https://api.mail.tm"

// DefaultTimeout bounds one provider call when the caller sets none.
const DefaultTimeout = 30 * time.Second

// Client performs provider calls on behalf of one delegated credential.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient returns a Client for token. A nil hc gets a private client with
// DefaultTimeout.
func NewClient(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    hc,
	}
}

// CreateAddress registers a new provider mailbox.
func (c *Client) CreateAddress(ctx context.Context, address string) (*Address, error) {
	var acc wireAccount
	payload := map[string]string{"address": address}
	if err := c.call(ctx, "create_address", http.MethodPost, "/accounts", nil, payload, &acc); err != nil {
		return nil, err
	}
	return &Address{ID: acc.ID, Address: acc.Address, CreatedAt: acc.CreatedAt}, nil
}

// ListMessages returns the first page of folder. Later pages are never
// fetched.
func (c *Client) ListMessages(ctx context.Context, folder string) ([]Message, error) {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("folder", folder)

	var page wireCollection[wireMessage]
	if err := c.call(ctx, "list_messages", http.MethodGet, "/messages", q, nil, &page); err != nil {
		return nil, err
	}

	out := make([]Message, 0, len(page.Member))
	for _, m := range page.Member {
		out = append(out, m.normalize())
	}
	return out, nil
}

func (c *Client) GetMessage(ctx context.Context, id string) (*Message, error) {
	const op = "get_message"

	var m wireMessage
	if err := c.call(ctx, op, http.MethodGet, "/messages/"+url.PathEscape(id), nil, nil, &m); err != nil {
		// a missing message is the one 404 callers can act on
		var pe *ProviderError
		if errors.As(err, &pe) && pe.StatusCode == http.StatusNotFound {
			return nil, notFound(op)
		}
		return nil, err
	}
	msg := m.normalize()
	return &msg, nil
}

func (c *Client) SendMessage(ctx context.Context, to, subject, body string) (*Message, error) {
	payload := wireSend{
		To:      []wireParty{{Address: to}},
		Subject: subject,
		Text:    body,
	}

	var m wireMessage
	if err := c.call(ctx, "send_message", http.MethodPost, "/messages", nil, payload, &m); err != nil {
		return nil, err
	}
	msg := m.normalize()
	return &msg, nil
}

// DeleteMessage reports true only for a 204 answer. Any other status is a
// plain false; only a transport failure is an error.
func (c *Client) DeleteMessage(ctx context.Context, id string) (bool, error) {
	const op = "delete_message"

	resp, err := c.do(ctx, op, http.MethodDelete, "/messages/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusNoContent, nil
}

func (c *Client) ListDomains(ctx context.Context) ([]Domain, error) {
	q := url.Values{}
	q.Set("page", "1")

	var page wireCollection[wireDomain]
	if err := c.call(ctx, "list_domains", http.MethodGet, "/domains", q, nil, &page); err != nil {
		return nil, err
	}

	out := make([]Domain, 0, len(page.Member))
	for _, d := range page.Member {
		out = append(out, Domain{ID: d.ID, Domain: d.Domain, IsActive: d.IsActive})
	}
	return out, nil
}

// call runs one request and decodes a 2xx body into out.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, payload, out any) error {
	resp, err := c.do(ctx, op, method, path, query, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !netx.IsSuccess(resp.StatusCode) {
		return &ProviderError{Op: op, StatusCode: resp.StatusCode, Body: netx.ReadSnippet(resp.Body, maxErrorBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return transportError(op, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := netx.NewJSONRequest(ctx, method, u, payload)
	if err != nil {
		return nil, transportError(op, err)
	}
	netx.SetBearer(req, c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(op, err)
	}
	return resp, nil
}

// Factory builds Clients that share one *http.Client.
type Factory struct {
	baseURL string
	http    *http.Client
}

// NewFactory returns a Factory for baseURL whose calls time out after
// timeout (DefaultTimeout when zero).
func NewFactory(baseURL string, timeout time.Duration) *Factory {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return NewFactoryWithClient(baseURL, &http.Client{Timeout: timeout})
}

func NewFactoryWithClient(baseURL string, hc *http.Client) *Factory {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Factory{baseURL: baseURL, http: hc}
}

func (f *Factory) NewClient(token string) Gateway {
	return NewClient(f.baseURL, token, f.http)
}
