package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/mailrelay/internal/common"
)

type ctxKey string

const (
	userNameKey  ctxKey = "userName"
	requestIDKey ctxKey = "requestID"
)

const (
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 45
)

// userName returns the identity stored by authenticate.
func userName(ctx context.Context) string {
	name, _ := ctx.Value(userNameKey).(string)
	return name
}

// authenticate verifies the bearer session token and stores the user name
// in the request context.
func (h *Handler) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := common.BearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if token == "" {
			h.writeError(w, r, common.ErrInvalidCredential)
			return
		}

		name, err := h.users.VerifyToken(token)
		if err != nil {
			h.writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userNameKey, name)
		next(w, r.WithContext(ctx))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestID keeps a caller supplied id only when it is a UUID.
func requestID(supplied string) string {
	if len(supplied) <= maxRequestIDLen {
		if u, err := uuid.Parse(supplied); err == nil {
			return u.String()
		}
	}
	return uuid.NewString()
}

// observe tags each request with an id, then logs and measures it.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := requestID(r.Header.Get(requestIDHeader))
		w.Header().Set(requestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, id))

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)

		h.metrics.ObserveHTTPRequest(r.Method, route, rec.status, elapsed)
		h.logger.Info(r.Context(), "http request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}
