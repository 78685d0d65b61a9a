package postgres

import (
	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	contractPkg "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/contract"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/contract"
	"gorm.io/gorm"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) contractPkg.RepositoryAPI {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) GetByRentalCode(rentalCode string) (*contract.Contract, error) {
	var c contract.Contract
	err := r.db.Where("rental_code = ?", rentalCode).First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrContractNotFound
		}
		return nil, err
	}
	return &c, nil
}
