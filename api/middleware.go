package api

import (
	"bytes"
	"crypto/subtle"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"OrcaBI/api/constants"
	"OrcaBI/internal/logger"

	"github.com/gorilla/mux"
)

// QueryToken lets EventSource clients, which cannot set headers, pass the
// bearer token in the URL.
const QueryToken = "access_token"

// Authorizer decides whether a request may reach the BI endpoints.
type Authorizer interface {
	Authorize(r *http.Request) bool
}

// AuthorizerFunc adapts a plain function to Authorizer.
type AuthorizerFunc func(r *http.Request) bool

func (f AuthorizerFunc) Authorize(r *http.Request) bool { return f(r) }

// TokenAuthorizer accepts a fixed set of bearer tokens.
type TokenAuthorizer struct {
	tokens         [][]byte
	allowAnonymous bool
}

func NewTokenAuthorizer(tokens []string, allowAnonymous bool) *TokenAuthorizer {
	a := &TokenAuthorizer{allowAnonymous: allowAnonymous}
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			a.tokens = append(a.tokens, []byte(t))
		}
	}
	return a
}

// ParseTokens splits a comma-separated token list.
func ParseTokens(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (a *TokenAuthorizer) Authorize(r *http.Request) bool {
	if a.allowAnonymous {
		return true
	}
	token := bearerToken(r)
	if token == "" {
		return false
	}
	ok := 0
	for _, t := range a.tokens {
		ok |= subtle.ConstantTimeCompare(t, []byte(token))
	}
	return ok == 1
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get(constants.HeaderAuthorization); strings.HasPrefix(h, constants.BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, constants.BearerPrefix))
	}
	return r.URL.Query().Get(QueryToken)
}

// RequireAuth rejects unauthorized requests with 401. Paths listed in open
// skip the check.
func RequireAuth(a Authorizer, open ...string) mux.MiddlewareFunc {
	skip := make(map[string]bool, len(open))
	for _, p := range open {
		skip[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !skip[r.URL.Path] && !a.Authorize(r) {
				LogError("unauthorized %s %s from %s", r.Method, r.URL.Path, extractClientIP(r))
				RespondWithJSON(w, http.StatusUnauthorized, map[string]interface{}{
					constants.ValueDetail: constants.ErrUnauthorized,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	return r.RemoteAddr
}

// responseWriter wraps http.ResponseWriter to capture the status code and,
// for failed requests, the response body.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if rw.statusCode >= 400 && rw.body.Len() < 512 {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

// Flush keeps streaming responses working through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// AuditMiddleware writes one audit line per request.
func AuditMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		var msg string
		if rw.statusCode >= 400 {
			msg = fmt.Sprintf("[HTTP][ERROR] %s %s from %s, status %d in %s, error: %s",
				r.Method, r.URL.Path, extractClientIP(r), rw.statusCode, time.Since(start), strings.TrimSpace(rw.body.String()))
		} else {
			msg = fmt.Sprintf("[HTTP] %s %s from %s, status %d in %s",
				r.Method, r.URL.Path, extractClientIP(r), rw.statusCode, time.Since(start))
		}
		if logr := logger.GlobalLogger; logr != nil {
			logr.LogAudit(msg)
		} else {
			log.Println(msg)
		}
	})
}
