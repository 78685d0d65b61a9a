package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentCompleted = "payment.completed"
	EventTypeRentalCompleted  = "rental.completed"
	EventTypeBookingDetected  = "booking.detected"
)

type PaymentCompletedEvent struct {
	BaseEvent
	PaymentID   int64  `json:"payment_id"`
	BookingCode string `json:"booking_code"`
	RentalCode  string `json:"rental_code,omitempty"`
	TxnRef      string `json:"txn_ref"`
	Amount      int64  `json:"amount"`
	Method      string `json:"method"`
}

func NewPaymentCompletedEvent(paymentID int64, bookingCode, rentalCode, txnRef string, amount int64, method string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypePaymentCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"payment_id":   paymentID,
				"booking_code": bookingCode,
				"rental_code":  rentalCode,
				"txn_ref":      txnRef,
				"amount":       amount,
				"method":       method,
			},
		},
		PaymentID:   paymentID,
		BookingCode: bookingCode,
		RentalCode:  rentalCode,
		TxnRef:      txnRef,
		Amount:      amount,
		Method:      method,
	}
}

type RentalCompletedEvent struct {
	BaseEvent
	RentalCode  string `json:"rental_code"`
	BookingCode string `json:"booking_code"`
	TotalFees   int64  `json:"total_fees"`
}

func NewRentalCompletedEvent(rentalCode, bookingCode string, totalFees int64) *RentalCompletedEvent {
	return &RentalCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeRentalCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"rental_code":  rentalCode,
				"booking_code": bookingCode,
				"total_fees":   totalFees,
			},
		},
		RentalCode:  rentalCode,
		BookingCode: bookingCode,
		TotalFees:   totalFees,
	}
}

type BookingDetectedEvent struct {
	BaseEvent
	BookingCode string `json:"booking_code"`
	StationID   string `json:"station_id"`
}

func NewBookingDetectedEvent(bookingCode, stationID string) *BookingDetectedEvent {
	return &BookingDetectedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBookingDetected,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"booking_code": bookingCode,
				"station_id":   stationID,
			},
		},
		BookingCode: bookingCode,
		StationID:   stationID,
	}
}
