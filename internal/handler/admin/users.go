package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/handler"
	"github.com/nextbet/platform/internal/service"
)

// UserHandler handles admin user management.
type UserHandler struct {
	admin *service.AdminService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(admin *service.AdminService) *UserHandler {
	return &UserHandler{admin: admin}
}

// List handles GET /admin/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.admin.ListUsers(r.Context())
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, users)
}

// Ban handles POST /admin/users/{id}/ban.
func (h *UserHandler) Ban(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, true)
}

// Unban handles POST /admin/users/{id}/unban.
func (h *UserHandler) Unban(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, false)
}

func (h *UserHandler) setBanned(w http.ResponseWriter, r *http.Request, banned bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid user id"))
		return
	}

	if err := h.admin.SetUserBanned(r.Context(), id, banned); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]bool{"banned": banned})
}
