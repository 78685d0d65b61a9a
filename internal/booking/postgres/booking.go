package postgres

import (
	"time"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/booking"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) GetByCode(code string) (*booking.Booking, error) {
	var record booking.Booking
	err := r.db.Where("code = ?", code).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, err
	}
	return &record, nil
}

// ListCreatedAfter feeds the booking watcher: confirmed bookings that
// appeared since the last poll.
func (r *BookingRepository) ListCreatedAfter(since time.Time) ([]*booking.Booking, error) {
	var records []*booking.Booking
	err := r.db.
		Where("created_at > ? AND status = ?", since, booking.StatusConfirmed).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
