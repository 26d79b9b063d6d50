package httpapi

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/mailrelay/internal/common"
	"github.com/dmitrijs2005/mailrelay/internal/logging"
	"github.com/dmitrijs2005/mailrelay/internal/mailtm"
	"github.com/dmitrijs2005/mailrelay/internal/server/metrics"
	"github.com/dmitrijs2005/mailrelay/internal/server/models"
	"github.com/dmitrijs2005/mailrelay/internal/server/services"
)

// maxBodyBytes caps JSON and form request bodies.
const maxBodyBytes = 1 << 20

type Handler struct {
	users   *services.UserService
	relay   *services.RelayService
	folders map[string]struct{}
	metrics metrics.HTTPRecorder
	logger  logging.Logger
}

// NewHandler builds the local surface. folders lists the names GET
// /emails/{ref} treats as folders; any other ref is a message id.
func NewHandler(us *services.UserService, rs *services.RelayService, folders []string, m metrics.HTTPRecorder, l logging.Logger) *Handler {
	if m == nil {
		m = metrics.Nop{}
	}
	set := make(map[string]struct{}, len(folders))
	for _, f := range folders {
		set[f] = struct{}{}
	}
	return &Handler{
		users:   us,
		relay:   rs,
		folders: set,
		metrics: m,
		logger:  l.With("module", "http_api"),
	}
}

// Routes returns the mux with every route registered and the request
// observer applied.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.healthz)

	mux.HandleFunc("POST /token", h.token)
	mux.HandleFunc("POST /users/{$}", h.register)
	mux.HandleFunc("GET /users/me", h.authenticate(h.me))
	mux.HandleFunc("PUT /users/me/provider-token", h.authenticate(h.setProviderToken))

	mux.HandleFunc("POST /email/create/{$}", h.authenticate(h.createAddress))
	mux.HandleFunc("GET /emails/{ref}", h.authenticate(h.getEmails))
	mux.HandleFunc("POST /email/send/{$}", h.authenticate(h.sendMessage))
	mux.HandleFunc("DELETE /emails/{id}", h.authenticate(h.deleteMessage))
	mux.HandleFunc("GET /domains", h.authenticate(h.listDomains))

	return h.observe(mux)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userView struct {
	ID               string    `json:"id"`
	UserName         string    `json:"username"`
	Email            string    `json:"email"`
	HasProviderToken bool      `json:"has_provider_token"`
	CreatedAt        time.Time `json:"created_at"`
}

func newUserView(u *models.User) userView {
	return userView{
		ID:               u.ID,
		UserName:         u.UserName,
		Email:            u.Email,
		HasProviderToken: u.HasProviderToken(),
		CreatedAt:        u.CreatedAt,
	}
}

type registerRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type providerTokenRequest struct {
	Token string `json:"token"`
}

type createAddressRequest struct {
	Address string `json:"address"`
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// token accepts the OAuth2 password-grant form as well as a JSON body.
func (h *Handler) token(w http.ResponseWriter, r *http.Request) {
	var username, password string

	if isJSON(r) {
		var req registerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
		username, password = req.UserName, req.Password
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			h.writeError(w, r, fmt.Errorf("bad form: %w", common.ErrorValidation))
			return
		}
		username, password = r.PostForm.Get("username"), r.PostForm.Get("password")
	}

	if username == "" || password == "" {
		h.writeError(w, r, fmt.Errorf("username and password are required: %w", common.ErrorValidation))
		return
	}

	token, err := h.users.Authenticate(r.Context(), username, password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: common.TokenType})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newUserView(user))
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Me(r.Context(), userName(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserView(user))
}

func (h *Handler) setProviderToken(w http.ResponseWriter, r *http.Request) {
	var req providerTokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.users.SetProviderToken(r.Context(), userName(r.Context()), req.Token); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) createAddress(w http.ResponseWriter, r *http.Request) {
	var req createAddressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Address == "" {
		h.writeError(w, r, fmt.Errorf("address is required: %w", common.ErrorValidation))
		return
	}

	addr, err := h.relay.CreateAddress(r.Context(), userName(r.Context()), req.Address)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

// getEmails lists a folder when ref names one and fetches a single message
// otherwise.
func (h *Handler) getEmails(w http.ResponseWriter, r *http.Request) {
	ref := r.PathValue("ref")
	identity := userName(r.Context())

	if _, ok := h.folders[ref]; ok {
		msgs, err := h.relay.ListMessages(r.Context(), identity, ref)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if msgs == nil {
			msgs = []mailtm.Message{}
		}
		writeJSON(w, http.StatusOK, msgs)
		return
	}

	msg, err := h.relay.GetMessage(r.Context(), identity, ref)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *Handler) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.To == "" {
		h.writeError(w, r, fmt.Errorf("recipient is required: %w", common.ErrorValidation))
		return
	}

	msg, err := h.relay.SendMessage(r.Context(), userName(r.Context()), req.To, req.Subject, req.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *Handler) deleteMessage(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.relay.DeleteMessage(r.Context(), userName(r.Context()), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

func (h *Handler) listDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := h.relay.ListDomains(r.Context(), userName(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if domains == nil {
		domains = []mailtm.Domain{}
	}
	writeJSON(w, http.StatusOK, domains)
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("malformed request body: %w", common.ErrorValidation)
	}
	return nil
}
