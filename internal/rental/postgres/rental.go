package postgres

import (
	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/rental"
	rentalPkg "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/rental"
	"gorm.io/gorm"
)

type RentalRepository struct {
	db *gorm.DB
}

// NewRentalRepository returns the concrete repository; callers accept it
// through their own narrow interfaces.
func NewRentalRepository(db *gorm.DB) *RentalRepository {
	return &RentalRepository{db: db}
}

var _ rentalPkg.RepositoryAPI = (*RentalRepository)(nil)

func (r *RentalRepository) GetByCode(code string) (*rental.Rental, error) {
	var record rental.Rental
	err := r.db.Where("code = ?", code).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRentalNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *RentalRepository) GetByBookingCode(bookingCode string) (*rental.Rental, error) {
	var record rental.Rental
	err := r.db.Where("booking_code = ?", bookingCode).Order("created_at DESC").First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRentalNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Update persists the rental with its status as an optimistic concurrency
// guard: the write only lands if the row is still in the status the
// in-memory transition started from.
func (r *RentalRepository) Update(record *rental.Rental) error {
	result := r.db.Model(&rental.Rental{}).
		Where("id = ? AND status IN ?", record.ID, updatableFrom(record.Status)).
		Updates(map[string]interface{}{
			"status":          record.Status,
			"staff_id":        record.StaffID,
			"condition_after": record.ConditionAfter,
			"images_after":    record.ImagesAfter,
			"late_fee":        record.LateFee,
			"damage_fee":      record.DamageFee,
			"other_fees":      record.OtherFees,
			"total_fees":      record.TotalFees,
			"actual_end_time": record.ActualEndTime,
			"updated_at":      record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.NewInvalidStateError(
			"rental was modified by another session",
			errors.ErrCodeRentalNotActive,
			string(record.Status))
	}
	return nil
}

// updatableFrom lists the statuses a row may currently hold for the given
// target status to be a legal forward move.
func updatableFrom(target rental.Status) []rental.Status {
	switch target {
	case rental.StatusPendingDeposit, rental.StatusPendingPayment:
		return []rental.Status{rental.StatusActive, target}
	case rental.StatusCompleted:
		return []rental.Status{rental.StatusActive, rental.StatusPendingDeposit, rental.StatusPendingPayment}
	}
	return []rental.Status{target}
}
