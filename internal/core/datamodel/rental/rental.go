package rental

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusActive         Status = "active"
	StatusPendingDeposit Status = "pending_deposit"
	StatusPendingPayment Status = "pending_payment"
	StatusCompleted      Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusPendingDeposit, StatusPendingPayment, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal reports whether the rental record is immutable.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

type ConditionGrade string

const (
	GradeExcellent ConditionGrade = "excellent"
	GradeGood      ConditionGrade = "good"
	GradeFair      ConditionGrade = "fair"
	GradePoor      ConditionGrade = "poor"
)

func (g ConditionGrade) IsValid() bool {
	switch g {
	case GradeExcellent, GradeGood, GradeFair, GradePoor:
		return true
	}
	return false
}

// ConditionSnapshot captures the vehicle state at pickup or return.
// Stored as a JSON column on the rental row.
type ConditionSnapshot struct {
	Mileage           int64          `json:"mileage"`
	BatteryLevel      int64          `json:"battery_level"`
	ExteriorCondition ConditionGrade `json:"exterior_condition"`
	InteriorCondition ConditionGrade `json:"interior_condition"`
	Notes             string         `json:"notes,omitempty"`
}

func (c ConditionSnapshot) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *ConditionSnapshot) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	}
	return fmt.Errorf("unsupported type %T for condition snapshot", value)
}

// ImageList is a JSON array of image URLs captured during inspection.
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	return json.Marshal(l)
}

func (l *ImageList) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return fmt.Errorf("unsupported type %T for image list", value)
}

type Rental struct {
	ID              int64              `gorm:"primaryKey"`
	Code            string             `gorm:"column:code;uniqueIndex;not null"`
	BookingCode     string             `gorm:"column:booking_code;index;not null"`
	VehicleCode     string             `gorm:"column:vehicle_code;not null"`
	StationID       string             `gorm:"column:station_id;not null"`
	StaffID         string             `gorm:"column:staff_id"`
	Status          Status             `gorm:"column:status;default:active"`
	ConditionBefore *ConditionSnapshot `gorm:"column:condition_before;type:jsonb"`
	ConditionAfter  *ConditionSnapshot `gorm:"column:condition_after;type:jsonb"`
	ImagesAfter     ImageList          `gorm:"column:images_after;type:jsonb"`
	LateFee         int64              `gorm:"column:late_fee;default:0"`
	DamageFee       int64              `gorm:"column:damage_fee;default:0"`
	OtherFees       int64              `gorm:"column:other_fees;default:0"`
	TotalFees       int64              `gorm:"column:total_fees;default:0"`
	ActualEndTime   *time.Time         `gorm:"column:actual_end_time"`
	CreatedAt       time.Time          `gorm:"column:created_at;default:now()"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;default:now()"`
}

func (Rental) TableName() string {
	return "rentals"
}

var (
	ErrNotActive     = errors.New("rental is not active")
	ErrNotSettleable = errors.New("rental has no settlement in progress")
	ErrAlreadyClosed = errors.New("rental is already completed")
	ErrStatusRegress = errors.New("rental status cannot move backwards")
	ErrUnknownStatus = errors.New("unknown rental status")
)

func (r *Rental) CanCheckout() bool {
	return r.Status == StatusActive
}

// Checkout records the return inspection and moves the rental out of
// active. The status only ever moves forward: a rental that already left
// active rejects a second checkout attempt, which doubles as the
// concurrency guard for competing staff sessions.
func (r *Rental) Checkout(after *ConditionSnapshot, images []string, lateFee, damageFee, otherFees int64, depositOutstanding bool, now time.Time) error {
	if !r.CanCheckout() {
		return ErrNotActive
	}

	r.ConditionAfter = after
	r.ImagesAfter = ImageList(images)
	r.LateFee = lateFee
	r.DamageFee = damageFee
	r.OtherFees = otherFees
	r.TotalFees = lateFee + damageFee + otherFees
	r.ActualEndTime = &now
	r.UpdatedAt = now

	switch {
	case r.TotalFees > 0:
		r.Status = StatusPendingPayment
	case depositOutstanding:
		r.Status = StatusPendingDeposit
	default:
		r.Status = StatusCompleted
	}
	return nil
}

// MarkCompleted closes a rental whose outstanding payments have all
// settled. Legal only from the two pending states.
func (r *Rental) MarkCompleted(now time.Time) error {
	switch r.Status {
	case StatusPendingDeposit, StatusPendingPayment:
		r.Status = StatusCompleted
		r.UpdatedAt = now
		return nil
	case StatusCompleted:
		return ErrAlreadyClosed
	case StatusActive:
		return ErrNotSettleable
	}
	return ErrUnknownStatus
}
