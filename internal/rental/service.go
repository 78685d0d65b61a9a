package rental

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/contract"
	bookingDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/booking"
	contractDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/contract"
	paymentDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/payment"
	rentalDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/rental"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/events"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/payment"
)

// RepositoryAPI defines the data access methods for rentals.
type RepositoryAPI interface {
	GetByCode(code string) (*rentalDatamodel.Rental, error)
	Update(rental *rentalDatamodel.Rental) error
}

type BookingStore interface {
	GetByCode(code string) (*bookingDatamodel.Booking, error)
}

type ContractStore interface {
	GetByRentalCode(rentalCode string) (*contractDatamodel.Contract, error)
}

// CheckoutGate decides whether a rental may enter checkout.
type CheckoutGate interface {
	CanCheckout(rentalCode string) (*contract.Eligibility, error)
}

// PaymentProcessor is the slice of the payment orchestrator the checkout
// flow needs: raising the settlement payment and inspecting what is still
// outstanding on the booking.
type PaymentProcessor interface {
	CreateAdditionalFeePayment(bookingCode, rentalCode string, amount int64, method paymentDatamodel.Method, clientIP string) (*paymentDatamodel.Payment, *payment.QRData, error)
	PendingByBookingCode(bookingCode string) ([]*paymentDatamodel.Payment, error)
}

type Service struct {
	repo      RepositoryAPI
	bookings  BookingStore
	contracts ContractStore
	gate      CheckoutGate
	payments  PaymentProcessor
	eventBus  *events.EventBus
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, bookings BookingStore, contracts ContractStore, gate CheckoutGate, payments PaymentProcessor, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		bookings:  bookings,
		contracts: contracts,
		gate:      gate,
		payments:  payments,
		eventBus:  eventBus,
		logger:    logger,
		now:       time.Now,
	}
}

// BeginCheckout assembles the pre-checkout bundle for the staff console.
// It fails with Forbidden when the contract gate blocks the rental, so the
// console never renders a checkout form it cannot submit.
func (s *Service) BeginCheckout(rentalCode string) (*CheckoutInfo, error) {
	rental, err := s.repo.GetByCode(rentalCode)
	if err != nil {
		return nil, err
	}

	if err := s.checkGate(rentalCode); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByCode(rental.BookingCode)
	if err != nil {
		s.logger.Error("rental references unknown booking", "rental_code", rentalCode, "booking_code", rental.BookingCode)
		return nil, err
	}

	contractRecord, err := s.contracts.GetByRentalCode(rentalCode)
	if err != nil {
		return nil, err
	}

	pending, err := s.payments.PendingByBookingCode(rental.BookingCode)
	if err != nil {
		return nil, err
	}

	return &CheckoutInfo{
		Rental:          rental,
		Booking:         booking,
		Contract:        NewContractSummary(contractRecord),
		PendingPayments: pending,
	}, nil
}

// SubmitCheckout runs the full checkout: gate, inspection validation, fee
// calculation, the state transition, and the settlement payment when fees
// are owed. Validation is all-or-nothing; nothing is persisted until every
// check has passed. The rental write lands before the settlement payment
// is raised, so a gateway failure at that point leaves the rental in
// pending_payment with no open payment; staff recover by raising the
// additional fee payment through the payments endpoint.
func (s *Service) SubmitCheckout(rentalCode string, dto *SubmitCheckoutDTO, staffID, clientIP string) (*SubmitCheckoutResult, error) {
	rental, err := s.repo.GetByCode(rentalCode)
	if err != nil {
		return nil, err
	}

	if err := s.checkGate(rentalCode); err != nil {
		return nil, err
	}

	if !rental.CanCheckout() {
		return nil, errors.NewInvalidStateError(
			"rental is not active and cannot be checked out",
			errors.ErrCodeRentalNotActive,
			string(rental.Status))
	}

	startMileage := int64(0)
	if rental.ConditionBefore != nil {
		startMileage = rental.ConditionBefore.Mileage
	}
	if appErr := ValidateInspection(startMileage, dto.Inspection); appErr != nil {
		return nil, appErr
	}
	if appErr := ValidateFeeEntry(dto.Fees); appErr != nil {
		return nil, appErr
	}

	fees := ComputeFees(dto.Fees)

	method := paymentDatamodel.MethodCash
	if dto.PaymentMethod != "" {
		method = paymentDatamodel.Method(dto.PaymentMethod)
		if !method.IsValid() {
			return nil, errors.NewValidationFieldError("payment_method",
				fmt.Sprintf("unknown payment method %q", dto.PaymentMethod),
				errors.ErrCodeInvalidMethod)
		}
	}

	pending, err := s.payments.PendingByBookingCode(rental.BookingCode)
	if err != nil {
		return nil, err
	}
	depositOutstanding := hasPendingDeposit(pending)

	now := s.now()
	if err := rental.Checkout(dto.Inspection.ToSnapshot(), dto.ImagesAfter, fees.LateFee, fees.DamageFee, fees.OtherFees, depositOutstanding, now); err != nil {
		return nil, errors.NewInvalidStateError(
			"rental is not active and cannot be checked out",
			errors.ErrCodeRentalNotActive,
			string(rental.Status))
	}
	if staffID != "" {
		rental.StaffID = staffID
	}

	if err := s.repo.Update(rental); err != nil {
		return nil, errors.NewInternalError("failed to persist checkout", err)
	}

	result := &SubmitCheckoutResult{
		Rental:     rental,
		FeeSummary: fees,
	}

	if fees.TotalFees > 0 {
		settlement, qrData, err := s.payments.CreateAdditionalFeePayment(rental.BookingCode, rental.Code, fees.TotalFees, method, clientIP)
		if err != nil {
			s.logger.Error("checkout recorded but settlement payment failed",
				"rental_code", rental.Code,
				"amount", fees.TotalFees,
				"error", err)
			return nil, err
		}
		result.Payment = settlement
		result.QRData = qrData
	}

	s.logger.Info("checkout submitted",
		"rental_code", rental.Code,
		"staff_id", staffID,
		"status", rental.Status,
		"total_fees", fees.TotalFees)

	if rental.Status == rentalDatamodel.StatusCompleted {
		s.eventBus.Publish(context.Background(), events.NewRentalCompletedEvent(rental.Code, rental.BookingCode, rental.TotalFees))
	}

	return result, nil
}

func (s *Service) checkGate(rentalCode string) error {
	eligibility, err := s.gate.CanCheckout(rentalCode)
	if err != nil {
		return err
	}
	if !eligibility.Allowed {
		code := errors.ErrCodeContractUnsigned
		if eligibility.Reason == contract.ReasonNoContract {
			code = errors.ErrCodeContractMissing
		}
		return errors.NewForbiddenError(eligibility.Reason, code)
	}
	return nil
}

func hasPendingDeposit(payments []*paymentDatamodel.Payment) bool {
	for _, p := range payments {
		if p.Type == paymentDatamodel.TypeDeposit && p.IsPending() {
			return true
		}
	}
	return false
}
