package postgres

import (
	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/payment"
	paymentPkg "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/payment"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) paymentPkg.RepositoryAPI {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(p *payment.Payment) error {
	return r.db.Create(p).Error
}

func (r *PaymentRepository) GetByID(id int64) (*payment.Payment, error) {
	var record payment.Payment
	err := r.db.First(&record, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *PaymentRepository) GetByTxnRef(txnRef string) (*payment.Payment, error) {
	var record payment.Payment
	err := r.db.Where("txn_ref = ?", txnRef).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *PaymentRepository) GetPendingByBookingCode(bookingCode string) ([]*payment.Payment, error) {
	var records []*payment.Payment
	err := r.db.
		Where("booking_code = ? AND status = ?", bookingCode, payment.StatusPending).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *PaymentRepository) Update(p *payment.Payment) error {
	return r.db.Save(p).Error
}
