package payment

import (
	"fmt"
	"net/url"
	"time"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/common/validation"
	paymentDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/payment"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/gateway/vnpay"
)

type CreatePaymentDTO struct {
	BookingCode string  `json:"booking_code"`
	RentalCode  *string `json:"rental_code,omitempty"`
	Amount      *int64  `json:"amount,omitempty"`
	Method      string  `json:"payment_method"`
	Type        string  `json:"payment_type"`
	Notes       string  `json:"notes,omitempty"`
}

func (d *CreatePaymentDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()

	validator.Field("booking_code", d.BookingCode).Required()
	validator.Field("payment_method", d.Method).Required().
		OneOf(methodValues(), errors.ErrCodeInvalidMethod)
	validator.Field("payment_type", d.Type).Required().
		OneOf(typeValues(), errors.ErrCodeInvalidType)

	if d.Amount != nil {
		validator.Field("amount", *d.Amount).NonNegative(errors.ErrCodeInvalidAmount)
	}

	if paymentDatamodel.Type(d.Type) == paymentDatamodel.TypeAdditionalFee {
		if d.Amount == nil || *d.Amount <= 0 {
			validator.Field("amount", d.Amount).Custom(func(interface{}) *errors.AppError {
				return errors.NewValidationFieldError("amount",
					"additional fee payments require a positive amount",
					errors.ErrCodeInvalidAmount)
			})
		}
		if d.RentalCode == nil || *d.RentalCode == "" {
			validator.Field("rental_code", d.RentalCode).Custom(func(interface{}) *errors.AppError {
				return errors.NewValidationFieldError("rental_code",
					"additional fee payments must reference a rental",
					errors.ErrCodeValidationFailed)
			})
		}
	}

	return validator.Validate()
}

type ConfirmPaymentDTO struct {
	TransactionID string `json:"transaction_id,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type CancelPaymentDTO struct {
	Reason string `json:"reason"`
}

func (d *CancelPaymentDTO) Validate() *errors.AppError {
	if d.Reason == "" {
		return errors.NewValidationFieldError("reason",
			"a reason is required to cancel a payment",
			errors.ErrCodeReasonRequired)
	}
	return nil
}

type UpdateMethodDTO struct {
	Method string `json:"payment_method"`
}

func (d *UpdateMethodDTO) Validate() *errors.AppError {
	validator := validation.NewValidator()
	validator.Field("payment_method", d.Method).Required().
		OneOf(methodValues(), errors.ErrCodeInvalidMethod)
	return validator.Validate()
}

// VNPayBlock is the gateway-specific slice of a QR payload.
type VNPayBlock struct {
	OrderID     string    `json:"order_id"`
	TxnRef      string    `json:"txn_ref"`
	RedirectURL string    `json:"redirect_url"`
	Amount      int64     `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// QRData is everything the staff console needs to get a customer paying
// through the gateway: the scannable payload, a rendered image reference
// and the human-readable summary.
type QRData struct {
	Payload     string     `json:"payload"`
	ImageURL    string     `json:"image_url"`
	DisplayText string     `json:"display_text"`
	VNPay       VNPayBlock `json:"vnpay"`
}

func newQRData(orderID string, link *vnpay.PaymentLink) *QRData {
	return &QRData{
		Payload:     link.QRPayload,
		ImageURL:    qrImageURL(link.QRPayload),
		DisplayText: fmt.Sprintf("Scan to pay %d VND before %s", link.Amount, link.ExpiresAt.Format("15:04:05")),
		VNPay: VNPayBlock{
			OrderID:     orderID,
			TxnRef:      link.TxnRef,
			RedirectURL: link.RedirectURL,
			Amount:      link.Amount,
			CreatedAt:   link.CreatedAt,
			ExpiresAt:   link.ExpiresAt,
		},
	}
}

func qrImageURL(payload string) string {
	return "https://api.qrserver.com/v1/create-qr-code/?size=300x300&data=" + url.QueryEscape(payload)
}

func methodValues() []string {
	return []string{
		string(paymentDatamodel.MethodCash),
		string(paymentDatamodel.MethodQRCode),
		string(paymentDatamodel.MethodBankTransfer),
		string(paymentDatamodel.MethodVNPay),
	}
}

func typeValues() []string {
	return []string{
		string(paymentDatamodel.TypeDeposit),
		string(paymentDatamodel.TypeRentalFee),
		string(paymentDatamodel.TypeAdditionalFee),
		string(paymentDatamodel.TypeRefund),
	}
}
