package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	bookingDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/booking"
	paymentDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/payment"
	rentalDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/rental"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/events"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/gateway/vnpay"
)

// RepositoryAPI defines the data access methods for payments.
type RepositoryAPI interface {
	Create(payment *paymentDatamodel.Payment) error
	GetByID(id int64) (*paymentDatamodel.Payment, error)
	GetByTxnRef(txnRef string) (*paymentDatamodel.Payment, error)
	GetPendingByBookingCode(bookingCode string) ([]*paymentDatamodel.Payment, error)
	Update(payment *paymentDatamodel.Payment) error
}

type RentalStore interface {
	GetByCode(code string) (*rentalDatamodel.Rental, error)
	GetByBookingCode(bookingCode string) (*rentalDatamodel.Rental, error)
	Update(rental *rentalDatamodel.Rental) error
}

type BookingStore interface {
	GetByCode(code string) (*bookingDatamodel.Booking, error)
}

// GatewayClient issues signed redirect links.
type GatewayClient interface {
	CreatePaymentLink(req vnpay.LinkRequest) (*vnpay.PaymentLink, error)
}

// ReconcilerAPI classifies gateway return parameters.
type ReconcilerAPI interface {
	Reconcile(params url.Values) (*vnpay.ReconciliationResult, error)
}

// Orchestrator owns the payment lifecycle: creation, manual confirmation,
// cancellation, method changes and gateway settlement. Every path that
// completes a payment re-evaluates the owning rental so a fully settled
// rental closes without staff intervention.
type Orchestrator struct {
	repo       RepositoryAPI
	rentals    RentalStore
	bookings   BookingStore
	gateway    GatewayClient
	reconciler ReconcilerAPI
	eventBus   *events.EventBus
	logger     *slog.Logger
	now        func() time.Time
}

func NewOrchestrator(repo RepositoryAPI, rentals RentalStore, bookings BookingStore, gateway GatewayClient, reconciler ReconcilerAPI, eventBus *events.EventBus, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		repo:       repo,
		rentals:    rentals,
		bookings:   bookings,
		gateway:    gateway,
		reconciler: reconciler,
		eventBus:   eventBus,
		logger:     logger,
		now:        time.Now,
	}
}

// CreatePayment validates and persists a new pending payment. For the
// vnpay method the signed link is issued first so the gateway artifacts
// land on the row in the same write.
func (o *Orchestrator) CreatePayment(dto *CreatePaymentDTO, clientIP string) (*paymentDatamodel.Payment, *QRData, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, nil, appErr
	}

	booking, err := o.bookings.GetByCode(dto.BookingCode)
	if err != nil {
		return nil, nil, err
	}

	if dto.RentalCode != nil && *dto.RentalCode != "" {
		if _, err := o.rentals.GetByCode(*dto.RentalCode); err != nil {
			return nil, nil, err
		}
	}

	amount, appErr := o.resolveAmount(dto, booking)
	if appErr != nil {
		return nil, nil, appErr
	}

	payment := &paymentDatamodel.Payment{
		BookingCode: dto.BookingCode,
		RentalCode:  dto.RentalCode,
		Amount:      amount,
		Method:      paymentDatamodel.Method(dto.Method),
		Type:        paymentDatamodel.Type(dto.Type),
		Status:      paymentDatamodel.StatusPending,
		TxnRef:      newTxnRef(),
		Notes:       dto.Notes,
	}

	var qrData *QRData
	if payment.Method == paymentDatamodel.MethodVNPay {
		qrData, err = o.issuePaymentLink(payment, clientIP)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := o.repo.Create(payment); err != nil {
		return nil, nil, errors.NewInternalError("failed to create payment", err)
	}

	o.logger.Info("payment created",
		"payment_id", payment.ID,
		"booking_code", payment.BookingCode,
		"type", payment.Type,
		"method", payment.Method,
		"amount", payment.Amount)

	return payment, qrData, nil
}

// CreateAdditionalFeePayment raises the checkout settlement payment. The
// checkout flow has already validated the fee amounts.
func (o *Orchestrator) CreateAdditionalFeePayment(bookingCode, rentalCode string, amount int64, method paymentDatamodel.Method, clientIP string) (*paymentDatamodel.Payment, *QRData, error) {
	dto := &CreatePaymentDTO{
		BookingCode: bookingCode,
		RentalCode:  &rentalCode,
		Amount:      &amount,
		Method:      string(method),
		Type:        string(paymentDatamodel.TypeAdditionalFee),
	}
	return o.CreatePayment(dto, clientIP)
}

func (o *Orchestrator) PendingByBookingCode(bookingCode string) ([]*paymentDatamodel.Payment, error) {
	return o.repo.GetPendingByBookingCode(bookingCode)
}

// ConfirmPayment settles a cash payment by staff action. Gateway payments
// never confirm this way; they settle through the return callback.
func (o *Orchestrator) ConfirmPayment(id int64, dto *ConfirmPaymentDTO) (*paymentDatamodel.Payment, error) {
	payment, err := o.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !payment.IsPending() {
		return nil, errors.NewInvalidStateError(
			"only pending payments can be confirmed",
			errors.ErrCodePaymentNotPending,
			string(payment.Status))
	}

	if payment.Method != paymentDatamodel.MethodCash {
		return nil, errors.NewValidationError(
			"only cash payments can be confirmed manually; gateway payments settle via the return callback",
			errors.ErrCodeInvalidMethod)
	}

	now := o.now()
	payment.Status = paymentDatamodel.StatusCompleted
	payment.ProcessedAt = &now
	payment.Notes = appendNote(payment.Notes, dto.Notes)
	if dto.TransactionID != "" {
		payment.Notes = appendNote(payment.Notes, "receipt "+dto.TransactionID)
	}

	if err := o.repo.Update(payment); err != nil {
		return nil, errors.NewInternalError("failed to confirm payment", err)
	}

	o.logger.Info("payment confirmed", "payment_id", payment.ID, "booking_code", payment.BookingCode)
	o.afterPaymentCompleted(payment)

	return payment, nil
}

// CancelPayment voids a pending payment. The reason is mandatory and
// stored on the record.
func (o *Orchestrator) CancelPayment(id int64, dto *CancelPaymentDTO) (*paymentDatamodel.Payment, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	payment, err := o.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !payment.IsPending() {
		return nil, errors.NewInvalidStateError(
			"only pending payments can be cancelled",
			errors.ErrCodePaymentNotPending,
			string(payment.Status))
	}

	now := o.now()
	payment.Status = paymentDatamodel.StatusCancelled
	payment.Reason = dto.Reason
	payment.ProcessedAt = &now

	if err := o.repo.Update(payment); err != nil {
		return nil, errors.NewInternalError("failed to cancel payment", err)
	}

	o.logger.Info("payment cancelled", "payment_id", payment.ID, "reason", dto.Reason)
	return payment, nil
}

// UpdatePaymentMethod re-targets a pending payment. Moving onto vnpay
// issues a fresh link under a new merchant reference; moving off vnpay
// drops the gateway artifacts.
func (o *Orchestrator) UpdatePaymentMethod(id int64, dto *UpdateMethodDTO, clientIP string) (*paymentDatamodel.Payment, *QRData, error) {
	if appErr := dto.Validate(); appErr != nil {
		return nil, nil, appErr
	}

	payment, err := o.repo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}

	if !payment.IsPending() {
		return nil, nil, errors.NewInvalidStateError(
			"only pending payments can change method",
			errors.ErrCodePaymentNotPending,
			string(payment.Status))
	}

	newMethod := paymentDatamodel.Method(dto.Method)
	if newMethod == payment.Method {
		return nil, nil, errors.NewValidationError(
			"payment already uses this method",
			errors.ErrCodeSameMethod)
	}

	payment.Method = newMethod

	var qrData *QRData
	if newMethod == paymentDatamodel.MethodVNPay {
		// A fresh merchant reference: the gateway will not accept a
		// reused one.
		payment.TxnRef = newTxnRef()
		qrData, err = o.issuePaymentLink(payment, clientIP)
		if err != nil {
			return nil, nil, err
		}
	} else {
		payment.ClearGatewayFields()
	}

	payment.UpdatedAt = o.now()
	if err := o.repo.Update(payment); err != nil {
		return nil, nil, errors.NewInternalError("failed to update payment method", err)
	}

	o.logger.Info("payment method updated", "payment_id", payment.ID, "method", newMethod)
	return payment, qrData, nil
}

// HandleGatewayReturn processes the browser redirect back from the
// gateway. Successful outcomes settle the matching pending payment; every
// other outcome leaves the payment untouched so the customer can retry or
// staff can re-target it. Safe to invoke more than once for the same
// transaction.
func (o *Orchestrator) HandleGatewayReturn(params url.Values) (*vnpay.ReconciliationResult, error) {
	result, err := o.reconciler.Reconcile(params)
	if err != nil {
		return nil, err
	}

	if result.Outcome != vnpay.OutcomeSuccess {
		o.logger.Info("gateway return without settlement",
			"txn_ref", result.TxnRef,
			"outcome", result.Outcome,
			"response_code", result.ResponseCode)
		return result, nil
	}

	payment, err := o.repo.GetByTxnRef(result.TxnRef)
	if err != nil {
		o.logger.Error("gateway return for unknown transaction", "txn_ref", result.TxnRef)
		return nil, err
	}

	if !payment.IsPending() {
		o.logger.Info("gateway return for already settled payment",
			"payment_id", payment.ID,
			"txn_ref", result.TxnRef,
			"status", payment.Status)
		return result, nil
	}

	now := o.now()
	payment.Status = paymentDatamodel.StatusCompleted
	payment.ProcessedAt = &now
	if result.BankCode != "" {
		payment.BankCode = &result.BankCode
	}
	if result.TransactionNo != "" {
		payment.GatewayTransactionNo = &result.TransactionNo
	}
	if raw, err := json.Marshal(result); err == nil {
		payment.GatewayResponse = raw
	}

	if err := o.repo.Update(payment); err != nil {
		return nil, errors.NewInternalError("failed to settle payment", err)
	}

	o.logger.Info("payment settled by gateway",
		"payment_id", payment.ID,
		"txn_ref", result.TxnRef,
		"gateway_txn_no", result.TransactionNo,
		"amount", result.Amount)

	o.afterPaymentCompleted(payment)
	return result, nil
}

// afterPaymentCompleted publishes the completion event and closes the
// owning rental when nothing on the booking is still pending.
func (o *Orchestrator) afterPaymentCompleted(payment *paymentDatamodel.Payment) {
	rentalCode := ""
	if payment.RentalCode != nil {
		rentalCode = *payment.RentalCode
	}
	o.eventBus.Publish(context.Background(), events.NewPaymentCompletedEvent(
		payment.ID, payment.BookingCode, rentalCode, payment.TxnRef, payment.Amount, string(payment.Method)))

	o.settleRental(payment)
}

func (o *Orchestrator) settleRental(payment *paymentDatamodel.Payment) {
	rental, err := o.rentalForPayment(payment)
	if err != nil || rental == nil {
		return
	}

	if rental.Status != rentalDatamodel.StatusPendingDeposit && rental.Status != rentalDatamodel.StatusPendingPayment {
		return
	}

	pending, err := o.repo.GetPendingByBookingCode(rental.BookingCode)
	if err != nil {
		o.logger.Error("failed to list pending payments for settlement",
			"booking_code", rental.BookingCode, "error", err)
		return
	}
	if len(pending) > 0 {
		return
	}

	if err := rental.MarkCompleted(o.now()); err != nil {
		o.logger.Error("rental completion rejected", "rental_code", rental.Code, "error", err)
		return
	}
	if err := o.rentals.Update(rental); err != nil {
		o.logger.Error("failed to persist rental completion", "rental_code", rental.Code, "error", err)
		return
	}

	o.logger.Info("rental completed after settlement", "rental_code", rental.Code)
	o.eventBus.Publish(context.Background(), events.NewRentalCompletedEvent(rental.Code, rental.BookingCode, rental.TotalFees))
}

func (o *Orchestrator) rentalForPayment(payment *paymentDatamodel.Payment) (*rentalDatamodel.Rental, error) {
	if payment.RentalCode != nil && *payment.RentalCode != "" {
		return o.rentals.GetByCode(*payment.RentalCode)
	}

	rental, err := o.rentals.GetByBookingCode(payment.BookingCode)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.Code == errors.ErrCodeRentalNotFound {
			return nil, nil
		}
		return nil, err
	}
	return rental, nil
}

func (o *Orchestrator) issuePaymentLink(payment *paymentDatamodel.Payment, clientIP string) (*QRData, error) {
	link, err := o.gateway.CreatePaymentLink(vnpay.LinkRequest{
		TxnRef:    payment.TxnRef,
		Amount:    payment.Amount,
		OrderInfo: orderInfo(payment),
		ClientIP:  clientIP,
	})
	if err != nil {
		return nil, errors.NewInternalError("failed to create payment link", err)
	}

	payment.RedirectURL = &link.RedirectURL
	payment.QRPayload = &link.QRPayload
	payment.ExpiresAt = &link.ExpiresAt

	return newQRData(newOrderID(), link), nil
}

func (o *Orchestrator) resolveAmount(dto *CreatePaymentDTO, booking *bookingDatamodel.Booking) (int64, *errors.AppError) {
	if dto.Amount != nil && *dto.Amount > 0 {
		return *dto.Amount, nil
	}
	if paymentDatamodel.Type(dto.Type) == paymentDatamodel.TypeDeposit && booking.DepositAmount > 0 {
		return booking.DepositAmount, nil
	}
	return 0, errors.NewValidationFieldError("amount",
		"a positive amount is required",
		errors.ErrCodeInvalidAmount)
}

func orderInfo(payment *paymentDatamodel.Payment) string {
	switch payment.Type {
	case paymentDatamodel.TypeAdditionalFee:
		if payment.RentalCode != nil {
			return fmt.Sprintf("Checkout settlement for rental %s", *payment.RentalCode)
		}
		return fmt.Sprintf("Checkout settlement for booking %s", payment.BookingCode)
	case paymentDatamodel.TypeDeposit:
		return fmt.Sprintf("Deposit for booking %s", payment.BookingCode)
	case paymentDatamodel.TypeRentalFee:
		return fmt.Sprintf("Rental fee for booking %s", payment.BookingCode)
	}
	return fmt.Sprintf("Payment for booking %s", payment.BookingCode)
}

func newTxnRef() string {
	return "EVR" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:20]
}

func newOrderID() string {
	return uuid.New().String()
}

func appendNote(existing, note string) string {
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
