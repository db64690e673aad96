package handler

import (
	"net/http"
	"strconv"

	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/service"
)

// ProfileHandler handles the player account surface.
type ProfileHandler struct {
	profiles *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Me handles GET /me.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	profile, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// UpdateUsername handles PATCH /me/username.
func (h *ProfileHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input struct {
		Username string `json:"username"`
	}
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	profile, err := h.profiles.UpdateUsername(r.Context(), userID, input.Username)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}

// Transactions handles GET /me/transactions.
func (h *ProfileHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.profiles.Transactions(r.Context(), userID, cursor, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, entries)
}
