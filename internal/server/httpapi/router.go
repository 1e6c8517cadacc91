package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/msgboard/internal/logging"
	"github.com/dmitrijs2005/msgboard/internal/server/models"
	"github.com/dmitrijs2005/msgboard/internal/server/services"
	"github.com/gorilla/mux"
)

// UserService is the identity side the handlers need.
type UserService interface {
	Login(ctx context.Context, loginName, password string) (*services.LoginResult, error)
	ValidateToken(token string) (string, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// MessageService is the message side the handlers need.
type MessageService interface {
	Create(ctx context.Context, ownerID int64, text *string, recording, image *models.Upload) (*models.Message, error)
	ModifyText(ctx context.Context, ownerID, messageID int64, newText string) (*models.Message, error)
	ReplaceMedia(ctx context.Context, ownerID, messageID int64, recording, image *models.Upload) (*models.Message, error)
	RetrieveMedia(ctx context.Context, messageID int64, kind models.MediaKind) (*models.MediaContent, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Message, error)
	ListAll(ctx context.Context) ([]*models.Message, error)
}

// Options tunes the router.
type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

type handlers struct {
	users          UserService
	messages       MessageService
	logger         logging.Logger
	maxUploadBytes int64
}

// NewRouter wires every route. Mutations require a bearer token whose
// subject owns the {userId} in the path; media downloads and the global
// listing are public.
func NewRouter(us UserService, ms MessageService, l logging.Logger, o Options) *mux.Router {
	h := &handlers{users: us, messages: ms, logger: l, maxUploadBytes: o.MaxUploadBytes}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = 32 << 20
	}

	r := mux.NewRouter()
	r.Use(recoveryMiddleware(l), loggingMiddleware(l), corsMiddleware(o.AllowedOrigins))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			l.Warn(r.Context(), "health write failed", "error", err)
		}
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/users").Subrouter()

	api.HandleFunc("/login", h.login).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/messages", h.listAll).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/messages/{messageId:[0-9]+}/{kind:image|recording}", h.serveMedia).Methods(http.MethodGet, http.MethodOptions)

	authed := func(fn http.HandlerFunc) http.Handler {
		return h.authenticate(fn)
	}
	owned := func(fn http.HandlerFunc) http.Handler {
		return h.authenticate(h.requireOwner(fn))
	}

	api.Handle("/{userId:[0-9]+}/messages", authed(h.listByOwner)).Methods(http.MethodGet, http.MethodOptions)
	api.Handle("/{userId:[0-9]+}/messages", owned(h.createMessage)).Methods(http.MethodPost)
	api.Handle("/{userId:[0-9]+}/messages/{messageId:[0-9]+}", owned(h.modifyText)).Methods(http.MethodPut, http.MethodOptions)
	api.Handle("/{userId:[0-9]+}/messages/{messageId:[0-9]+}/files", owned(h.replaceMedia)).Methods(http.MethodPut, http.MethodOptions)

	return r
}
