package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/handler"
	"github.com/nextbet/platform/internal/service"
)

// TournamentHandler handles admin tournament management.
type TournamentHandler struct {
	admin *service.AdminService
}

// NewTournamentHandler creates a new TournamentHandler.
func NewTournamentHandler(admin *service.AdminService) *TournamentHandler {
	return &TournamentHandler{admin: admin}
}

// List handles GET /admin/tournaments.
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.admin.ListTournaments(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, tournaments)
}

// Create handles POST /admin/tournaments.
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	tournament, err := h.admin.CreateTournament(r.Context(), input.Name)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, tournament)
}

// Delete handles DELETE /admin/tournaments/{id}.
func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid tournament id"))
		return
	}

	if err := h.admin.DeleteTournament(r.Context(), id); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}
