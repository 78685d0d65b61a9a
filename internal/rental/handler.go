package rental

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/auth"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/transport"
)

type ServiceAPI interface {
	BeginCheckout(rentalCode string) (*CheckoutInfo, error)
	SubmitCheckout(rentalCode string, dto *SubmitCheckoutDTO, staffID, clientIP string) (*SubmitCheckoutResult, error)
}

type Handler struct {
	transport.BaseHandler
	Service ServiceAPI
	Logger  *slog.Logger
}

func NewHandler(service ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: *transport.NewBaseHandler(logger),
		Service:     service,
		Logger:      logger,
	}
}

// BeginCheckout handles GET /api/v1/rentals/{code}/checkout
func (h *Handler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		h.HandleError(w, errors.NewValidationError("rental code is required", errors.ErrCodeValidationFailed))
		return
	}

	info, err := h.Service.BeginCheckout(code)
	if err != nil {
		h.Logger.Error("BeginCheckout: service error", "error", err, "rental_code", code)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, info)
}

// SubmitCheckout handles POST /api/v1/rentals/{code}/checkout
func (h *Handler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		h.HandleError(w, errors.NewValidationError("rental code is required", errors.ErrCodeValidationFailed))
		return
	}

	var dto SubmitCheckoutDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SubmitCheckout: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	staffID := ""
	if staff, ok := auth.StaffFromContext(r.Context()); ok {
		staffID = staff.StaffID
	}

	result, err := h.Service.SubmitCheckout(code, &dto, staffID, clientIP(r))
	if err != nil {
		h.Logger.Error("SubmitCheckout: service error", "error", err, "rental_code", code)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("SubmitCheckout: checkout processed",
		"rental_code", code,
		"status", result.Rental.Status,
		"total_fees", result.FeeSummary.TotalFees)

	h.WriteJSON(w, http.StatusOK, result)
}

// clientIP prefers the proxy-forwarded address; the gateway embeds it in
// the signed payment link.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
