package admin

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/handler"
	"github.com/nextbet/platform/internal/service"
)

// CouponHandler handles admin coupon oversight and manual overrides.
type CouponHandler struct {
	admin *service.AdminService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(admin *service.AdminService) *CouponHandler {
	return &CouponHandler{admin: admin}
}

// List handles GET /admin/coupons.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	coupons, err := h.admin.ListRecentCoupons(r.Context(), limit)
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, coupons)
}

// Override handles POST /admin/coupons/{id}/override.
func (h *CouponHandler) Override(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid coupon id"))
		return
	}

	var input struct {
		Action string `json:"action"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	coupon, err := h.admin.OverrideCoupon(r.Context(), id, service.OverrideAction(input.Action))
	if err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, coupon)
}

// Delete handles DELETE /admin/coupons/{id}.
func (h *CouponHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid coupon id"))
		return
	}

	if err := h.admin.DeleteCoupon(r.Context(), id); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusNoContent, nil)
}
