package httpapi

import (
	"context"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ctxKey string

const loginNameKey ctxKey = "loginName"

const requestIDHeader = "X-Request-ID"

// loginNameFrom returns the authenticated login name set by authenticate.
func loginNameFrom(ctx context.Context) string {
	name, _ := ctx.Value(loginNameKey).(string)
	return name
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.statusCode = code
	rr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(l logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			rr := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rr, r)

			l.Info(r.Context(), "request",
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rr.statusCode,
				"remote", r.RemoteAddr,
				"duration", time.Since(start))
		})
	}
}

func recoveryMiddleware(l logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					l.Error(r.Context(), "panic", "value", p, "stack", string(debug.Stack()))
					status, kind := statusFor(common.ErrInternal)
					writeJSON(r.Context(), l, w, status, errorResponse{Error: kind})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}, ", ")
	corsHeaders = "Authorization, Cache-Control, Content-Type, Accept, Range"
	corsExpose  = "Content-Disposition, Content-Type, Content-Length, Accept-Ranges"
)

// corsMiddleware allows credentialed requests from the listed origins and
// answers preflight requests itself. "*" allows any origin.
func corsMiddleware(allowed []string) mux.MiddlewareFunc {
	allowAll := slices.Contains(allowed, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			w.Header().Add("Vary", "Origin")

			if origin != "" && (allowAll || slices.Contains(allowed, origin)) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Expose-Headers", corsExpose)
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", corsMethods)
				w.Header().Set("Access-Control-Allow-Headers", corsHeaders)
				w.Header().Set("Access-Control-Max-Age", "3600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// authenticate requires a valid bearer token and stores its subject in the
// request context.
func (h *handlers) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			writeError(r.Context(), h.logger, w, common.ErrInvalidToken)
			return
		}

		name, err := h.users.ValidateToken(token)
		if err != nil {
			writeError(r.Context(), h.logger, w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), loginNameKey, name)))
	})
}

// requireOwner checks that the authenticated login name is the identity
// named by {userId}.
func (h *handlers) requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := pathInt64(r, "userId")
		if err != nil {
			writeError(ctx, h.logger, w, err)
			return
		}

		user, err := h.users.GetUser(ctx, userID)
		if err != nil {
			writeError(ctx, h.logger, w, err)
			return
		}

		if user.LoginName != loginNameFrom(ctx) {
			writeError(ctx, h.logger, w, common.ErrAccessDenied)
			return
		}

		next.ServeHTTP(w, r)
	})
}
