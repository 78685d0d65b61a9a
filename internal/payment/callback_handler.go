package payment

import (
	"net/http"
)

// GatewayReturn handles GET /api/v1/payments/vnpay/return, the browser
// redirect back from the gateway. The endpoint is unauthenticated: the
// customer's browser carries the signed parameters, not a staff session.
func (h *Handler) GatewayReturn(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.HandleGatewayReturn(r.URL.Query())
	if err != nil {
		h.Logger.Warn("GatewayReturn: callback not settled", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("GatewayReturn: callback processed",
		"txn_ref", result.TxnRef,
		"outcome", result.Outcome,
		"response_code", result.ResponseCode)

	h.WriteJSON(w, http.StatusOK, result)
}
