package contract

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusSigned    Status = "signed"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSigned, StatusExpired, StatusCancelled:
		return true
	}
	return false
}

// Contract is the rental agreement. Rendering and e-signature capture
// happen elsewhere; this service only consumes the signature timestamps.
type Contract struct {
	ID               int64      `gorm:"primaryKey"`
	Code             string     `gorm:"column:code;uniqueIndex;not null"`
	RentalCode       string     `gorm:"column:rental_code;uniqueIndex;not null"`
	Status           Status     `gorm:"column:status;default:pending"`
	StaffSignedAt    *time.Time `gorm:"column:staff_signed_at"`
	CustomerSignedAt *time.Time `gorm:"column:customer_signed_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Contract) TableName() string {
	return "contracts"
}

// IsSigned is true only when both parties have signed.
func (c *Contract) IsSigned() bool {
	return c.StaffSignedAt != nil && c.CustomerSignedAt != nil
}
