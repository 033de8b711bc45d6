package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starford/perthro/internal/index"
	"github.com/starford/perthro/internal/opener"
)

// OutcomePublisher fans an open outcome out to connected event-stream
// clients. Satisfied by *sse.Broker.
type OutcomePublisher interface {
	PublishOutcome(ok bool, outcome interface{})
}

// Handler holds API route handlers.
type Handler struct {
	svc *opener.Service
	idx index.FileIndex
	pub OutcomePublisher
}

// NewHandler creates a new Handler. pub may be nil when no event stream
// is wired.
func NewHandler(svc *opener.Service, idx index.FileIndex, pub OutcomePublisher) *Handler {
	return &Handler{svc: svc, idx: idx, pub: pub}
}

// Open handles POST /api/open.
//
// The response is always 200 with an outcome body; failures are encoded
// in the outcome's kind, not in the HTTP status, so the editor frontend
// has a single code path. Only a malformed request is a 4xx.
//
//	@Summary		Open an image in the OS default viewer
//	@Tags			open
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OpenRequest	true	"Element HTML or raw reference"
//	@Success		200		{object}	Outcome
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/open [post]
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req OpenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Element) == "" && strings.TrimSpace(req.Ref) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("element or ref is required"))
		return
	}

	var out Outcome
	if strings.TrimSpace(req.Element) != "" {
		out = h.svc.OpenElement(r.Context(), req.Element)
	} else {
		out = h.svc.OpenReference(r.Context(), req.Ref)
	}

	if h.pub != nil {
		h.pub.PublishOutcome(out.Status == "ok", out)
	}
	writeJSON(w, http.StatusOK, out)
}

// Resolve handles POST /api/resolve: the full resolution pipeline without
// launching a viewer.
//
//	@Summary		Resolve an image reference without opening it
//	@Tags			open
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ResolveRequest	true	"Raw reference"
//	@Success		200		{object}	Outcome
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resolve [post]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Ref == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("ref is required"))
		return
	}
	writeJSON(w, http.StatusOK, h.svc.ResolveReference(req.Ref))
}

// ListImages handles GET /api/images.
//
//	@Summary		List indexed vault images
//	@Tags			images
//	@Produce		json
//	@Param			folder	query		string	false	"Restrict to a vault folder"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	ImageListResponse
//	@Security		BearerAuth
//	@Router			/images [get]
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	folder := q.Get("folder")

	rows, err := h.idx.ListImages(folder, limit)
	if err != nil {
		slog.Error("list images failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	items := make([]ImageItem, 0, len(rows))
	for _, fr := range rows {
		items = append(items, ImageItem{
			Path:    fr.Path,
			Name:    fr.Name,
			Size:    fr.Size,
			ModTime: fr.ModTime,
		})
	}
	writeJSON(w, http.StatusOK, ImageListResponse{Images: items, Total: len(items)})
}
