package payment_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	paymentDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/payment"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/gateway/vnpay"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/payment"
)

type mockPaymentService struct {
	createError   error
	confirmError  error
	cancelError   error
	updateError   error
	returnError   error
	payment       *paymentDatamodel.Payment
	qrData        *payment.QRData
	returnResult  *vnpay.ReconciliationResult
	lastConfirmID int64
	lastClientIP  string
}

func (m *mockPaymentService) CreatePayment(dto *payment.CreatePaymentDTO, clientIP string) (*paymentDatamodel.Payment, *payment.QRData, error) {
	m.lastClientIP = clientIP
	if m.createError != nil {
		return nil, nil, m.createError
	}
	return m.payment, m.qrData, nil
}

func (m *mockPaymentService) ConfirmPayment(id int64, dto *payment.ConfirmPaymentDTO) (*paymentDatamodel.Payment, error) {
	m.lastConfirmID = id
	if m.confirmError != nil {
		return nil, m.confirmError
	}
	return m.payment, nil
}

func (m *mockPaymentService) CancelPayment(id int64, dto *payment.CancelPaymentDTO) (*paymentDatamodel.Payment, error) {
	if m.cancelError != nil {
		return nil, m.cancelError
	}
	return m.payment, nil
}

func (m *mockPaymentService) UpdatePaymentMethod(id int64, dto *payment.UpdateMethodDTO, clientIP string) (*paymentDatamodel.Payment, *payment.QRData, error) {
	if m.updateError != nil {
		return nil, nil, m.updateError
	}
	return m.payment, m.qrData, nil
}

func (m *mockPaymentService) HandleGatewayReturn(params url.Values) (*vnpay.ReconciliationResult, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	return m.returnResult, nil
}

var _ = Describe("PaymentHandler", func() {
	var (
		handler  *payment.Handler
		service  *mockPaymentService
		router   *chi.Mux
		recorder *httptest.ResponseRecorder
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		service = &mockPaymentService{
			payment: &paymentDatamodel.Payment{
				ID:          7,
				BookingCode: "BK0001",
				Amount:      150000,
				Method:      paymentDatamodel.MethodCash,
				Type:        paymentDatamodel.TypeRentalFee,
				Status:      paymentDatamodel.StatusPending,
				TxnRef:      "EVRHANDLER01",
			},
		}
		handler = payment.NewHandler(service, logger)

		router = chi.NewRouter()
		router.Post("/payments", handler.CreatePayment)
		router.Patch("/payments/{id}/confirm", handler.ConfirmPayment)
		router.Patch("/payments/{id}/cancel", handler.CancelPayment)
		router.Patch("/payments/{id}/method", handler.UpdatePaymentMethod)
		router.Get("/payments/vnpay/return", handler.GatewayReturn)

		recorder = httptest.NewRecorder()
	})

	Context("CreatePayment", func() {
		It("returns 201 with the created payment", func() {
			body, _ := json.Marshal(map[string]interface{}{
				"booking_code":   "BK0001",
				"amount":         150000,
				"payment_method": "cash",
				"payment_type":   "rental_fee",
			})
			req := httptest.NewRequest("POST", "/payments", bytes.NewBuffer(body))
			req.Header.Set("X-Forwarded-For", "203.0.113.7")

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusCreated))
			Expect(service.lastClientIP).To(Equal("203.0.113.7"))

			var response map[string]interface{}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(Succeed())
			Expect(response).To(HaveKey("payment"))
			Expect(response).ToNot(HaveKey("qr_data"))
		})

		It("returns 400 for a malformed body", func() {
			req := httptest.NewRequest("POST", "/payments", bytes.NewBufferString("not json"))

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps a validation error from the service to 400", func() {
			service.createError = errors.NewValidationError("a positive amount is required", errors.ErrCodeInvalidAmount)
			body, _ := json.Marshal(map[string]interface{}{"booking_code": "BK0001"})
			req := httptest.NewRequest("POST", "/payments", bytes.NewBuffer(body))

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("ConfirmPayment", func() {
		It("confirms with an empty body", func() {
			req := httptest.NewRequest("PATCH", "/payments/7/confirm", nil)

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
			Expect(service.lastConfirmID).To(Equal(int64(7)))
		})

		It("rejects a non-numeric payment ID", func() {
			req := httptest.NewRequest("PATCH", "/payments/abc/confirm", nil)

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps a not-pending conflict to 409", func() {
			service.confirmError = errors.NewInvalidStateError(
				"only pending payments can be confirmed",
				errors.ErrCodePaymentNotPending,
				"completed")
			req := httptest.NewRequest("PATCH", "/payments/7/confirm", nil)

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusConflict))
		})
	})

	Context("CancelPayment", func() {
		It("cancels with a reason", func() {
			body, _ := json.Marshal(map[string]string{"reason": "customer pays at the desk"})
			req := httptest.NewRequest("PATCH", "/payments/7/cancel", bytes.NewBuffer(body))

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))
		})

		It("maps a missing reason to 400", func() {
			service.cancelError = errors.NewValidationError("a cancellation reason is required", errors.ErrCodeReasonRequired)
			body, _ := json.Marshal(map[string]string{})
			req := httptest.NewRequest("PATCH", "/payments/7/cancel", bytes.NewBuffer(body))

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("UpdatePaymentMethod", func() {
		It("returns the QR bundle when switching to the gateway", func() {
			service.qrData = &payment.QRData{Payload: "https://sandbox.vnpayment.vn/pay", ImageURL: "https://api.qrserver.com/v1/create-qr-code/"}
			body, _ := json.Marshal(map[string]string{"payment_method": "vnpay"})
			req := httptest.NewRequest("PATCH", "/payments/7/method", bytes.NewBuffer(body))

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var response map[string]interface{}
			Expect(json.Unmarshal(recorder.Body.Bytes(), &response)).To(Succeed())
			Expect(response).To(HaveKey("qr_data"))
		})
	})

	Context("GatewayReturn", func() {
		It("returns 200 with the reconciliation result", func() {
			service.returnResult = &vnpay.ReconciliationResult{
				Outcome:      vnpay.OutcomeSuccess,
				Message:      "Transaction completed successfully",
				ResponseCode: "00",
				TxnRef:       "EVRHANDLER01",
			}
			req := httptest.NewRequest("GET", "/payments/vnpay/return?vnp_ResponseCode=00&vnp_TxnRef=EVRHANDLER01", nil)

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusOK))

			var result vnpay.ReconciliationResult
			Expect(json.Unmarshal(recorder.Body.Bytes(), &result)).To(Succeed())
			Expect(result.Outcome).To(Equal(vnpay.OutcomeSuccess))
		})

		It("answers 202 while the callback is incomplete", func() {
			service.returnError = errors.NewGatewayUnresolvedError("missing required gateway parameters")
			req := httptest.NewRequest("GET", "/payments/vnpay/return", nil)

			router.ServeHTTP(recorder, req)

			Expect(recorder.Code).To(Equal(http.StatusAccepted))
		})
	})
})
