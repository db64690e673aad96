package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/handler"
	"github.com/nextbet/platform/internal/service"
)

// MatchHandler handles admin match management and settlement.
type MatchHandler struct {
	admin *service.AdminService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(admin *service.AdminService) *MatchHandler {
	return &MatchHandler{admin: admin}
}

// Create handles POST /admin/matches.
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateMatchInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	match, err := h.admin.CreateMatch(r.Context(), input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, match)
}

// Update handles PUT /admin/matches/{id}.
func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid match id"))
		return
	}

	var input service.CreateMatchInput
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	match, err := h.admin.UpdateMatch(r.Context(), id, input)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, match)
}

// SetStatus handles POST /admin/matches/{id}/status.
// Moving the match to FINISHED or CANCELLED triggers settlement.
func (h *MatchHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid match id"))
		return
	}

	var input struct {
		Status string  `json:"status"`
		Winner *string `json:"winner,omitempty"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	status, err := domain.ValidateMatchStatus(input.Status)
	if err != nil {
		handler.RespondError(w, domain.ErrValidation(err.Error()))
		return
	}
	var winner *domain.Side
	if input.Winner != nil {
		side := domain.Side(*input.Winner)
		winner = &side
	}

	result, err := h.admin.SetMatchStatus(r.Context(), id, status, winner)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /admin/matches/{id}.
func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid match id"))
		return
	}

	result, err := h.admin.DeleteMatch(r.Context(), id)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, result)
}
