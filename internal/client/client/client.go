package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/mailrelay/internal/common"
	"github.com/dmitrijs2005/mailrelay/internal/mailtm"
	"github.com/dmitrijs2005/mailrelay/internal/netx"
)

// maxErrorBody caps how much of an error reply is read.
const maxErrorBody = 4 << 10

// User is the account view returned by the relay.
type User struct {
	ID               string    `json:"id"`
	UserName         string    `json:"username"`
	Email            string    `json:"email"`
	HasProviderToken bool      `json:"has_provider_token"`
	CreatedAt        time.Time `json:"created_at"`
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a Client for the relay at baseURL. A zero timeout means no
// client-side limit.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// SetToken replaces the session token sent with authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges credentials for a session token, stores it on c and
// returns it.
func (c *Client) Login(ctx context.Context, userName string, password []byte) (string, error) {
	form := url.Values{}
	form.Set("username", userName)
	form.Set("password", string(password))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var out struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	if !strings.EqualFold(out.TokenType, common.TokenType) || out.AccessToken == "" {
		return "", fmt.Errorf("unexpected token reply: %w", common.ErrorInternal)
	}

	c.SetToken(out.AccessToken)
	return out.AccessToken, nil
}

func (c *Client) Register(ctx context.Context, userName, email string, password []byte) (*User, error) {
	payload := map[string]string{"username": userName, "email": email, "password": string(password)}

	var u User
	if err := c.call(ctx, http.MethodPost, "/users/", payload, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.call(ctx, http.MethodGet, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// SetProviderToken stores the mail provider credential for the logged in
// user. An empty token clears it.
func (c *Client) SetProviderToken(ctx context.Context, token string) error {
	return c.call(ctx, http.MethodPut, "/users/me/provider-token", map[string]string{"token": token}, nil)
}

func (c *Client) CreateAddress(ctx context.Context, address string) (*mailtm.Address, error) {
	var a mailtm.Address
	if err := c.call(ctx, http.MethodPost, "/email/create/", map[string]string{"address": address}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// ListMessages returns the first page of folder.
func (c *Client) ListMessages(ctx context.Context, folder string) ([]mailtm.Message, error) {
	var msgs []mailtm.Message
	if err := c.call(ctx, http.MethodGet, "/emails/"+url.PathEscape(folder), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) GetMessage(ctx context.Context, id string) (*mailtm.Message, error) {
	var m mailtm.Message
	if err := c.call(ctx, http.MethodGet, "/emails/"+url.PathEscape(id), nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *Client) SendMessage(ctx context.Context, to, subject, body string) (*mailtm.Message, error) {
	payload := map[string]string{"to": to, "subject": subject, "body": body}

	var m mailtm.Message
	if err := c.call(ctx, http.MethodPost, "/email/send/", payload, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMessage reports whether the provider confirmed the deletion.
func (c *Client) DeleteMessage(ctx context.Context, id string) (bool, error) {
	var out struct {
		Deleted bool `json:"deleted"`
	}
	if err := c.call(ctx, http.MethodDelete, "/emails/"+url.PathEscape(id), nil, &out); err != nil {
		return false, err
	}
	return out.Deleted, nil
}

func (c *Client) ListDomains(ctx context.Context) ([]mailtm.Domain, error) {
	var ds []mailtm.Domain
	if err := c.call(ctx, http.MethodGet, "/domains", nil, &ds); err != nil {
		return nil, err
	}
	return ds, nil
}

func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	req, err := netx.NewJSONRequest(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	netx.SetBearer(req, c.Token())
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if !netx.IsSuccess(resp.StatusCode) {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		raw := netx.ReadSnippet(resp.Body, maxErrorBody)
		if err := json.Unmarshal([]byte(raw), apiErr); err != nil || apiErr.Detail == "" {
			apiErr.Detail = raw
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	return nil
}
