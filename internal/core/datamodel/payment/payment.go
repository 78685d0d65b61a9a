package payment

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Method string

const (
	MethodCash         Method = "cash"
	MethodQRCode       Method = "qr_code"
	MethodBankTransfer Method = "bank_transfer"
	MethodVNPay        Method = "vnpay"
)

func (m Method) IsValid() bool {
	switch m {
	case MethodCash, MethodQRCode, MethodBankTransfer, MethodVNPay:
		return true
	}
	return false
}

type Type string

const (
	TypeDeposit       Type = "deposit"
	TypeRentalFee     Type = "rental_fee"
	TypeAdditionalFee Type = "additional_fee"
	TypeRefund        Type = "refund"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeDeposit, TypeRentalFee, TypeAdditionalFee, TypeRefund:
		return true
	}
	return false
}

type Payment struct {
	ID          int64   `gorm:"primaryKey"`
	BookingCode string  `gorm:"column:booking_code;index;not null"`
	RentalCode  *string `gorm:"column:rental_code;index"`
	Amount      int64   `gorm:"column:amount;not null"`
	Method      Method  `gorm:"column:payment_method;not null"`
	Type        Type    `gorm:"column:payment_type;not null"`
	Status      Status  `gorm:"column:status;default:pending"`

	// Gateway fields, populated only for the vnpay method.
	TxnRef               string          `gorm:"column:txn_ref;uniqueIndex;not null"`
	RedirectURL          *string         `gorm:"column:redirect_url"`
	QRPayload            *string         `gorm:"column:qr_payload"`
	BankCode             *string         `gorm:"column:bank_code"`
	GatewayTransactionNo *string         `gorm:"column:gateway_transaction_no"`
	GatewayResponse      json.RawMessage `gorm:"column:gateway_response;type:jsonb"`
	ExpiresAt            *time.Time      `gorm:"column:expires_at"`

	Reason      string     `gorm:"column:reason"`
	Notes       string     `gorm:"column:notes"`
	ProcessedAt *time.Time `gorm:"column:processed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Payment) TableName() string {
	return "payments"
}

// IsPending gates every mutating operation: confirm, cancel and
// method changes are legal only while the payment is pending.
func (p *Payment) IsPending() bool {
	return p.Status == StatusPending
}

// ClearGatewayFields drops the redirect-gateway artifacts when a payment
// is re-targeted away from the vnpay method.
func (p *Payment) ClearGatewayFields() {
	p.RedirectURL = nil
	p.QRPayload = nil
	p.BankCode = nil
	p.GatewayTransactionNo = nil
	p.ExpiresAt = nil
}
