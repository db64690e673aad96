package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nextbet/platform/internal/auth"
	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/service"
)

// BettingHandler handles the player betting surface.
type BettingHandler struct {
	betting *service.BettingService
}

// NewBettingHandler creates a new BettingHandler.
func NewBettingHandler(betting *service.BettingService) *BettingHandler {
	return &BettingHandler{betting: betting}
}

// ListMatches handles GET /matches.
func (h *BettingHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.betting.ListUpcomingMatches(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, matches)
}

// PlaceCoupon handles POST /coupons.
func (h *BettingHandler) PlaceCoupon(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input service.PlaceCouponInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	coupon, err := h.betting.PlaceCoupon(r.Context(), userID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, coupon)
}

// ListCoupons handles GET /coupons.
func (h *BettingHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	coupons, err := h.betting.ListUserCoupons(r.Context(), userID, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, coupons)
}

// GetCoupon handles GET /coupons/{id}.
func (h *BettingHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	couponID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid coupon id"))
		return
	}

	coupon, err := h.betting.GetCoupon(r.Context(), userID, couponID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, coupon)
}

// Cashout handles POST /coupons/{id}/cashout.
func (h *BettingHandler) Cashout(w http.ResponseWriter, r *http.Request) {
	userID, err := authenticatedUserID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	couponID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid coupon id"))
		return
	}

	coupon, err := h.betting.Cashout(r.Context(), userID, couponID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, coupon)
}

// authenticatedUserID pulls the player ID from the JWT subject.
func authenticatedUserID(r *http.Request) (uuid.UUID, error) {
	sub := auth.SubjectFromContext(r.Context())
	if sub == "" {
		return uuid.Nil, domain.ErrUnauthorized("no auth context")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthorized("invalid subject")
	}
	return id, nil
}
