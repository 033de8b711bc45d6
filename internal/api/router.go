package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/perthro/internal/index"
	"github.com/starford/perthro/internal/opener"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// pub, if non-nil, receives every open outcome for broadcast.
func NewRouter(svc *opener.Service, idx index.FileIndex, authEnabled bool, token string, sseHandler http.Handler, pub OutcomePublisher) chi.Router {
	h := NewHandler(svc, idx, pub)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Open pipeline.
	r.Post("/open", h.Open)
	r.Post("/resolve", h.Resolve)

	// Index queries.
	r.Get("/images", h.ListImages)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
