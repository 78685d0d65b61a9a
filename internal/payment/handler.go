package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	paymentDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/payment"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/gateway/vnpay"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/transport"
)

type ServiceAPI interface {
	CreatePayment(dto *CreatePaymentDTO, clientIP string) (*paymentDatamodel.Payment, *QRData, error)
	ConfirmPayment(id int64, dto *ConfirmPaymentDTO) (*paymentDatamodel.Payment, error)
	CancelPayment(id int64, dto *CancelPaymentDTO) (*paymentDatamodel.Payment, error)
	UpdatePaymentMethod(id int64, dto *UpdateMethodDTO, clientIP string) (*paymentDatamodel.Payment, *QRData, error)
	HandleGatewayReturn(params url.Values) (*vnpay.ReconciliationResult, error)
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

type paymentResponse struct {
	Payment *paymentDatamodel.Payment `json:"payment"`
	QRData  *QRData                   `json:"qr_data,omitempty"`
}

// CreatePayment handles POST /api/v1/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var dto CreatePaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreatePayment: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	payment, qrData, err := h.Service.CreatePayment(&dto, clientIP(r))
	if err != nil {
		h.Logger.Error("CreatePayment: service error", "error", err, "booking_code", dto.BookingCode)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, paymentResponse{Payment: payment, QRData: qrData})
}

// ConfirmPayment handles PATCH /api/v1/payments/{id}/confirm
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	var dto ConfirmPaymentDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.Logger.Error("ConfirmPayment: failed to parse request body", "error", err)
			h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
			return
		}
	}

	payment, err := h.Service.ConfirmPayment(id, &dto)
	if err != nil {
		h.Logger.Error("ConfirmPayment: service error", "error", err, "payment_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, paymentResponse{Payment: payment})
}

// CancelPayment handles PATCH /api/v1/payments/{id}/cancel
func (h *Handler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	var dto CancelPaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CancelPayment: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	payment, err := h.Service.CancelPayment(id, &dto)
	if err != nil {
		h.Logger.Error("CancelPayment: service error", "error", err, "payment_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, paymentResponse{Payment: payment})
}

// UpdatePaymentMethod handles PATCH /api/v1/payments/{id}/method
func (h *Handler) UpdatePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := h.paymentID(w, r)
	if !ok {
		return
	}

	var dto UpdateMethodDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdatePaymentMethod: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	payment, qrData, err := h.Service.UpdatePaymentMethod(id, &dto, clientIP(r))
	if err != nil {
		h.Logger.Error("UpdatePaymentMethod: service error", "error", err, "payment_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, paymentResponse{Payment: payment, QRData: qrData})
}

func (h *Handler) paymentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.Logger.Error("invalid payment ID", "payment_id", raw)
		h.HandleError(w, errors.NewValidationError("invalid payment ID", errors.ErrCodeValidationFailed))
		return 0, false
	}
	return id, true
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
