package rental

import (
	bookingDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/booking"
	contractDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/contract"
	paymentDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/payment"
	rentalDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/rental"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/payment"
)

// InspectionDTO is the staff-submitted return inspection. Mileage and
// battery level are pointers so an omitted field is distinguishable from a
// legitimate zero.
type InspectionDTO struct {
	Mileage           *int64 `json:"mileage"`
	BatteryLevel      *int64 `json:"battery_level"`
	ExteriorCondition string `json:"exterior_condition"`
	InteriorCondition string `json:"interior_condition"`
	Notes             string `json:"notes,omitempty"`
}

func (d *InspectionDTO) ToSnapshot() *rentalDatamodel.ConditionSnapshot {
	return &rentalDatamodel.ConditionSnapshot{
		Mileage:           *d.Mileage,
		BatteryLevel:      *d.BatteryLevel,
		ExteriorCondition: rentalDatamodel.ConditionGrade(d.ExteriorCondition),
		InteriorCondition: rentalDatamodel.ConditionGrade(d.InteriorCondition),
		Notes:             d.Notes,
	}
}

// FeeEntryDTO is explicit staff fee entry. Every field is optional and
// defaults to zero when omitted.
type FeeEntryDTO struct {
	LateFee   *int64 `json:"late_fee,omitempty"`
	DamageFee *int64 `json:"damage_fee,omitempty"`
	OtherFees *int64 `json:"other_fees,omitempty"`
}

type SubmitCheckoutDTO struct {
	Inspection    *InspectionDTO `json:"inspection"`
	ImagesAfter   []string       `json:"images_after,omitempty"`
	Fees          *FeeEntryDTO   `json:"fees,omitempty"`
	PaymentMethod string         `json:"payment_method,omitempty"`
}

// ContractSummary is the slice of the contract the checkout screen shows.
type ContractSummary struct {
	Code           string                   `json:"code"`
	Status         contractDatamodel.Status `json:"status"`
	StaffSigned    bool                     `json:"staff_signed"`
	CustomerSigned bool                     `json:"customer_signed"`
	IsSigned       bool                     `json:"is_signed"`
}

func NewContractSummary(c *contractDatamodel.Contract) *ContractSummary {
	return &ContractSummary{
		Code:           c.Code,
		Status:         c.Status,
		StaffSigned:    c.StaffSignedAt != nil,
		CustomerSigned: c.CustomerSignedAt != nil,
		IsSigned:       c.IsSigned(),
	}
}

// CheckoutInfo is the pre-checkout bundle: everything staff need on screen
// before submitting the return.
type CheckoutInfo struct {
	Rental          *rentalDatamodel.Rental     `json:"rental"`
	Booking         *bookingDatamodel.Booking   `json:"booking"`
	Contract        *ContractSummary            `json:"contract"`
	PendingPayments []*paymentDatamodel.Payment `json:"pending_payments"`
}

// SubmitCheckoutResult reports the outcome of a submitted checkout. When
// fees were owed and the vnpay method was chosen, QRData carries the
// payment link the customer scans.
type SubmitCheckoutResult struct {
	Rental     *rentalDatamodel.Rental   `json:"rental"`
	FeeSummary FeeBreakdown              `json:"fee_summary"`
	Payment    *paymentDatamodel.Payment `json:"payment,omitempty"`
	QRData     *payment.QRData           `json:"qr_data,omitempty"`
}
