package notes

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-notes-saas/internal/http/middleware"
	"github.com/tendant/simple-notes-saas/internal/httputil"
	"github.com/tendant/simple-notes-saas/pkg/domain"
	notessvc "github.com/tendant/simple-notes-saas/pkg/notes"
)

// Handler handles note CRUD endpoints. The tenant scope always comes from the
// principal the Auth middleware attached, never from the request.
type Handler struct {
	logger *slog.Logger
	notes  *notessvc.Service
}

// NewHandler creates a new notes handler.
func NewHandler(logger *slog.Logger, notes *notessvc.Service) *Handler {
	return &Handler{logger: logger, notes: notes}
}

// NoteRequest represents a create or update request body.
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// NoteResponse represents a note.
type NoteResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func noteResponse(n *domain.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt,
	}
}

// List returns the tenant's notes, newest first.
// GET /v1/notes
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	notes, err := h.notes.List(r.Context(), principal.TenantID)
	if err != nil {
		h.logger.Error("list notes failed", "error", err, "tenant_id", principal.TenantID)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		resp = append(resp, noteResponse(&notes[i]))
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// Create inserts a note, subject to the tenant's plan quota.
// POST /v1/notes
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	note, err := h.notes.Create(r.Context(), req.Title, req.Content, principal.TenantID, principal.UserID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTitleContentRequired):
			httputil.Error(w, http.StatusBadRequest, "title and content required")
		case errors.Is(err, domain.ErrQuotaExceeded):
			httputil.Error(w, http.StatusForbidden, "note limit reached. upgrade to pro plan")
		case errors.Is(err, domain.ErrTenantNotFound):
			httputil.Error(w, http.StatusNotFound, "tenant not found")
		default:
			h.logger.Error("create note failed", "error", err, "tenant_id", principal.TenantID)
			httputil.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	httputil.JSON(w, http.StatusCreated, noteResponse(note))
}

// Get returns a single note.
// GET /v1/notes/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := noteID(r)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "note not found")
		return
	}

	note, err := h.notes.Get(r.Context(), id, principal.TenantID)
	if err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			httputil.Error(w, http.StatusNotFound, "note not found")
			return
		}
		h.logger.Error("get note failed", "error", err, "tenant_id", principal.TenantID)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httputil.JSON(w, http.StatusOK, noteResponse(note))
}

// Update replaces a note's title and content.
// PUT /v1/notes/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := noteID(r)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "note not found")
		return
	}

	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.notes.Update(r.Context(), id, req.Title, req.Content, principal.TenantID); err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			httputil.Error(w, http.StatusNotFound, "note not found")
			return
		}
		h.logger.Error("update note failed", "error", err, "tenant_id", principal.TenantID)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"id":      id,
		"title":   req.Title,
		"content": req.Content,
	})
}

// Delete removes a note.
// DELETE /v1/notes/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := noteID(r)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "note not found")
		return
	}

	if err := h.notes.Delete(r.Context(), id, principal.TenantID); err != nil {
		if errors.Is(err, domain.ErrNoteNotFound) {
			httputil.Error(w, http.StatusNotFound, "note not found")
			return
		}
		h.logger.Error("delete note failed", "error", err, "tenant_id", principal.TenantID)
		httputil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{"message": "note deleted"})
}

func noteID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
