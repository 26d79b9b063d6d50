package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mailrelay/internal/common"
)

// fakeRelay answers the relay routes the CLI uses and records what it saw.
type fakeRelay struct {
	mu     sync.Mutex
	auth   []string
	bodies map[string]string
}

func newFakeRelay(t *testing.T) (*fakeRelay, string) {
	t.Helper()
	f := &fakeRelay{bodies: map[string]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("password") != "pw1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"jwt-` + r.PostForm.Get("username") + `","token_type":"bearer"}`))
	})
	mux.HandleFunc("POST /users/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"u1","username":"alice","email":"alice@example.com"}`))
	})
	mux.HandleFunc("PUT /users/me/provider-token", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /emails/inbox", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_, _ = w.Write([]byte(`[{"id":"m1","from":"x@example.com","subject":"Welcome","seen":false}]`))
	})
	mux.HandleFunc("GET /emails/spam", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.WriteHeader(http.StatusPreconditionFailed)
		_, _ = w.Write([]byte(`{"detail":"No mail provider token is set for this user"}`))
	})
	mux.HandleFunc("POST /email/send/", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_, _ = w.Write([]byte(`{"id":"s1","to":["bob@example.com"],"subject":"Hi","body":"line one\nline two"}`))
	})
	mux.HandleFunc("DELETE /emails/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		deleted := r.PathValue("id") == "m1"
		_ = json.NewEncoder(w).Encode(map[string]bool{"deleted": deleted})
	})
	mux.HandleFunc("GET /domains", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		_, _ = w.Write([]byte(`[{"id":"d1","domain":"example.com","is_active":true}]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func (f *fakeRelay) record(r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.bodies[r.Method+" "+r.URL.Path] = string(b)
}

func (f *fakeRelay) lastAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.auth) == 0 {
		return ""
	}
	return f.auth[len(f.auth)-1]
}

func (f *fakeRelay) body(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

func stubPassword(t *testing.T, secret string) {
	t.Helper()
	old := getPassword
	t.Cleanup(func() { getPassword = old })
	getPassword = func(io.Writer, string) ([]byte, error) {
		return []byte(secret), nil
	}
}

func run(t *testing.T, env map[string]string, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(strings.NewReader(stdin), &out, func(k string) string { return env[k] })
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLogin_PrintsOnlyToken(t *testing.T) {
	_, url := newFakeRelay(t)
	stubPassword(t, "pw1")

	out, err := run(t, nil, "", "--server", url, "login", "-u", "alice")
	require.NoError(t, err)
	assert.Equal(t, "jwt-alice\n", out)
}

func TestLogin_BadPassword(t *testing.T) {
	_, url := newFakeRelay(t)
	stubPassword(t, "nope")

	_, err := run(t, nil, "", "--server", url, "login", "-u", "alice")
	assert.ErrorIs(t, err, common.ErrInvalidCredential)
}

func TestLogin_PromptsForUsername(t *testing.T) {
	_, url := newFakeRelay(t)
	stubPassword(t, "pw1")

	out, err := run(t, nil, "bob\n", "--server", url, "login")
	require.NoError(t, err)
	assert.Contains(t, out, "jwt-bob")
}

func TestRegister(t *testing.T) {
	f, url := newFakeRelay(t)
	stubPassword(t, "pw1")

	out, err := run(t, nil, "", "--server", url, "register", "-u", "alice", "-e", "alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, `"username": "alice"`)
	assert.JSONEq(t, `{"username":"alice","email":"alice@example.com","password":"pw1"}`, f.body("POST /users/"))
}

func TestList_UsesEnvToken(t *testing.T) {
	f, url := newFakeRelay(t)
	env := map[string]string{"MAILRELAY_TOKEN": "jwt-env", "MAILRELAY_SERVER": url}

	out, err := run(t, env, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "m1")
	assert.Contains(t, out, "Welcome")
	assert.Equal(t, "Bearer jwt-env", f.lastAuth())
}

func TestTokenFlagOverridesEnv(t *testing.T) {
	f, url := newFakeRelay(t)
	env := map[string]string{"MAILRELAY_TOKEN": "jwt-env"}

	_, err := run(t, env, "", "--server", url, "--token", "jwt-flag", "domains")
	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt-flag", f.lastAuth())
}

func TestList_CredentialMissing(t *testing.T) {
	_, url := newFakeRelay(t)

	_, err := run(t, nil, "", "--server", url, "--token", "t", "list", "spam")
	assert.ErrorIs(t, err, common.ErrCredentialMissing)
}

func TestProviderToken(t *testing.T) {
	f, url := newFakeRelay(t)
	stubPassword(t, "tok123")

	out, err := run(t, nil, "", "--server", url, "--token", "t", "provider-token")
	require.NoError(t, err)
	assert.Contains(t, out, "Provider token stored")
	assert.JSONEq(t, `{"token":"tok123"}`, f.body("PUT /users/me/provider-token"))

	_, err = run(t, nil, "", "--server", url, "--token", "t", "provider-token", "--clear")
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":""}`, f.body("PUT /users/me/provider-token"))
}

func TestSend_ReadsBodyInteractively(t *testing.T) {
	f, url := newFakeRelay(t)

	out, err := run(t, nil, "line one\nline two\n\n", "--server", url, "--token", "t", "send", "--to", "bob@example.com", "-s", "Hi")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "s1"`)
	assert.JSONEq(t, `{"to":"bob@example.com","subject":"Hi","body":"line one\nline two"}`, f.body("POST /email/send/"))
}

func TestSend_RequiresRecipient(t *testing.T) {
	_, url := newFakeRelay(t)

	_, err := run(t, nil, "", "--server", url, "send", "--body", "x")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	_, url := newFakeRelay(t)

	out, err := run(t, nil, "", "--server", url, "--token", "t", "delete", "m1")
	require.NoError(t, err)
	assert.Equal(t, "Deleted m1\n", out)

	_, err = run(t, nil, "", "--server", url, "--token", "t", "delete", "m2")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrorInternal))
}

func TestDomains(t *testing.T) {
	_, url := newFakeRelay(t)

	out, err := run(t, nil, "", "--server", url, "--token", "t", "domains")
	require.NoError(t, err)
	assert.Contains(t, out, "example.com")
	assert.Contains(t, out, "true")
}

func TestBadConfigFile(t *testing.T) {
	_, err := run(t, nil, "", "--config", "/no/such/file.json", "domains")
	assert.Error(t, err)
}
