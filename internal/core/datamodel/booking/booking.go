package booking

import "time"

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPickedUp  Status = "picked_up"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusConfirmed, StatusPickedUp, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type Booking struct {
	ID            int64     `gorm:"primaryKey"`
	Code          string    `gorm:"column:code;uniqueIndex;not null"`
	CustomerName  string    `gorm:"column:customer_name;not null"`
	CustomerPhone string    `gorm:"column:customer_phone"`
	StationID     string    `gorm:"column:station_id;index;not null"`
	VehicleCode   string    `gorm:"column:vehicle_code"`
	StartTime     time.Time `gorm:"column:start_time;not null"`
	EndTime       time.Time `gorm:"column:end_time;not null"`
	DepositAmount int64     `gorm:"column:deposit_amount;default:0"`
	Status        Status    `gorm:"column:status;default:confirmed"`
	CreatedAt     time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;default:now()"`
}

func (Booking) TableName() string {
	return "bookings"
}
