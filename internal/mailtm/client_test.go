package mailtm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/mailrelay/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubProvider records the last request and answers with handler.
type stubProvider struct {
	*httptest.Server
	lastMethod string
	lastPath   string
	lastRaw    string
	lastQuery  string
	lastAuth   string
	lastCT     string
	lastBody   []byte
	calls      int
}

func newStubProvider(t *testing.T, handler http.HandlerFunc) *stubProvider {
	t.Helper()
	s := &stubProvider{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls++
		s.lastMethod = r.Method
		s.lastPath = r.URL.Path
		s.lastRaw = r.URL.EscapedPath()
		s.lastQuery = r.URL.RawQuery
		s.lastAuth = r.Header.Get("Authorization")
		s.lastCT = r.Header.Get("Content-Type")
		s.lastBody, _ = io.ReadAll(r.Body)
		handler(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestListMessages_HydraEnvelope(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"hydra:member":[{"id":"1","subject":"hi"}],"hydra:totalItems":1}`)
	})

	c := NewClient(p.URL, "tok123", nil)
	msgs, err := c.ListMessages(context.Background(), "inbox")
	require.NoError(t, err)

	require.Len(t, msgs, 1)
	assert.Equal(t, "1", msgs[0].ID)
	assert.Equal(t, "hi", msgs[0].Subject)

	assert.Equal(t, http.MethodGet, p.lastMethod)
	assert.Equal(t, "/messages", p.lastPath)
	assert.Equal(t, "folder=inbox&page=1", p.lastQuery)
	assert.Equal(t, "Bearer tok123", p.lastAuth)
	assert.Equal(t, "application/json", p.lastCT)
}

func TestListMessages_EmptyEnvelope(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	msgs, err := NewClient(p.URL, "t", nil).ListMessages(context.Background(), "inbox")
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}

func TestGetMessage_Normalizes(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"id":"m1",
			"from":{"address":"x@y.com","name":"X"},
			"to":[{"address":"a@b.com"},{"address":"c@d.com"}],
			"subject":"s",
			"intro":"snippet",
			"text":"full body",
			"seen":true,
			"createdAt":"2026-10-19T08:00:00+00:00"
		}`)
	})

	m, err := NewClient(p.URL, "t", nil).GetMessage(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, "/messages/m1", p.lastPath)
	assert.Equal(t, "m1", m.ID)
	assert.Equal(t, "x@y.com", m.From)
	assert.Equal(t, []string{"a@b.com", "c@d.com"}, m.To)
	assert.Equal(t, "full body", m.Body)
	assert.True(t, m.Seen)
	require.NotNil(t, m.CreatedAt)
	assert.True(t, m.CreatedAt.Equal(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)))
}

func TestGetMessage_FallsBackToIntro(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"m1","subject":"s","intro":"snippet"}`)
	})

	m, err := NewClient(p.URL, "t", nil).GetMessage(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "snippet", m.Body)
}

func TestGetMessage_NotFound(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"Not Found"}`)
	})

	_, err := NewClient(p.URL, "t", nil).GetMessage(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrRemoteNotFound)
	assert.NotErrorIs(t, err, common.ErrProviderRejected)
}

func TestGetMessage_EscapesID(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"a/b"}`)
	})

	_, err := NewClient(p.URL, "t", nil).GetMessage(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "/messages/a%2Fb", p.lastRaw)
	assert.Equal(t, 1, p.calls)
}

func TestSendMessage_EchoRoundTrip(t *testing.T) {
	var p *stubProvider
	p = newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		_ = json.Unmarshal(p.lastBody, &in)
		in["id"] = "sent-1"
		b, _ := json.Marshal(in)
		writeJSON(w, http.StatusCreated, string(b))
	})

	m, err := NewClient(p.URL, "t", nil).SendMessage(context.Background(), "a@b.com", "hi", "body")
	require.NoError(t, err)

	assert.Equal(t, []string{"a@b.com"}, m.To)
	assert.Equal(t, "hi", m.Subject)
	assert.Equal(t, "body", m.Body)

	assert.Equal(t, http.MethodPost, p.lastMethod)
	assert.Equal(t, "/messages", p.lastPath)
	assert.JSONEq(t, `{"to":[{"address":"a@b.com"}],"subject":"hi","text":"body"}`, string(p.lastBody))
}

func TestDeleteMessage_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusNoContent, true},
		{http.StatusOK, false},
		{http.StatusNotFound, false},
		{http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			got, err := NewClient(p.URL, "t", nil).DeleteMessage(context.Background(), "m1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, http.MethodDelete, p.lastMethod)
			assert.Equal(t, "/messages/m1", p.lastPath)
		})
	}
}

func TestCreateAddress(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"id":"acc-1","address":"me@mail.tm","createdAt":"2026-10-19T08:00:00+00:00"}`)
	})

	a, err := NewClient(p.URL, "t", nil).CreateAddress(context.Background(), "me@mail.tm")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", a.ID)
	assert.Equal(t, "me@mail.tm", a.Address)
	assert.NotNil(t, a.CreatedAt)

	assert.Equal(t, "/accounts", p.lastPath)
	assert.JSONEq(t, `{"address":"me@mail.tm"}`, string(p.lastBody))
}

func TestCreateAddress_ProviderRejected(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"detail":"address taken"}`)
	})

	_, err := NewClient(p.URL, "t", nil).CreateAddress(context.Background(), "me@mail.tm")
	require.ErrorIs(t, err, common.ErrProviderRejected)

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusUnprocessableEntity, pe.StatusCode)
	assert.Contains(t, pe.Body, "address taken")
	assert.Equal(t, "create_address", pe.Op)
}

func TestCreateAddress_404IsProviderRejected(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"Not Found"}`)
	})

	_, err := NewClient(p.URL, "t", nil).CreateAddress(context.Background(), "me@mail.tm")
	require.ErrorIs(t, err, common.ErrProviderRejected)
	assert.NotErrorIs(t, err, common.ErrRemoteNotFound)

	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusNotFound, pe.StatusCode)
}

func TestListMessages_404IsProviderRejected(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"detail":"Not Found"}`)
	})

	_, err := NewClient(p.URL, "t", nil).ListMessages(context.Background(), "inbox")
	assert.ErrorIs(t, err, common.ErrProviderRejected)
	assert.NotErrorIs(t, err, common.ErrRemoteNotFound)
}

func TestListDomains(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"hydra:member":[{"id":"d1","domain":"mail.tm","isActive":true}]}`)
	})

	ds, err := NewClient(p.URL, "t", nil).ListDomains(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Domain{{ID: "d1", Domain: "mail.tm", IsActive: true}}, ds)
	assert.Equal(t, "/domains", p.lastPath)
	assert.Equal(t, "page=1", p.lastQuery)
}

func TestTransportError_ServerDown(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {})
	url := p.URL
	p.Close()

	c := NewClient(url, "t", nil)

	_, err := c.ListMessages(context.Background(), "inbox")
	assert.ErrorIs(t, err, common.ErrTransport)

	ok, err := c.DeleteMessage(context.Background(), "m1")
	assert.ErrorIs(t, err, common.ErrTransport)
	assert.False(t, ok)
}

func TestTransportError_UndecodableBody(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `<html>oops</html>`)
	})

	_, err := NewClient(p.URL, "t", nil).GetMessage(context.Background(), "m1")
	assert.ErrorIs(t, err, common.ErrTransport)
}

func TestTransportError_Timeout(t *testing.T) {
	release := make(chan struct{})
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	f := NewFactoryWithClient(p.URL, &http.Client{Timeout: 50 * time.Millisecond})
	_, err := f.NewClient("t").GetMessage(context.Background(), "slow")
	assert.ErrorIs(t, err, common.ErrTransport)
}

func TestContextCancel_AbandonsCall(t *testing.T) {
	p := newStubProvider(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(p.URL, "t", nil).SendMessage(ctx, "a@b.com", "hi", "body")
	assert.ErrorIs(t, err, common.ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFactory_Defaults(t *testing.T) {
	f := NewFactory("", 0)
	assert.Equal(t, DefaultBaseURL, f.baseURL)
	assert.Equal(t, DefaultTimeout, f.http.Timeout)

	c, ok := f.NewClient("tok").(*Client)
	require.True(t, ok)
	assert.Equal(t, "tok", c.token)
	assert.Same(t, f.http, c.http)
}
