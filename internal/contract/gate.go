package contract

import (
	"log/slog"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	contractDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/contract"
	rentalDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/rental"
)

// RentalStore is the narrow read surface the gate needs from the rental side.
type RentalStore interface {
	GetByCode(code string) (*rentalDatamodel.Rental, error)
}

// RepositoryAPI defines the data access methods for contracts.
type RepositoryAPI interface {
	GetByRentalCode(rentalCode string) (*contractDatamodel.Contract, error)
}

const (
	ReasonNoContract = "no contract exists for this rental"
	ReasonUnsigned   = "contract is awaiting signature"
)

type Eligibility struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Gate answers whether a rental may enter checkout. Read-only: it never
// mutates the rental or the contract.
type Gate struct {
	rentals   RentalStore
	contracts RepositoryAPI
	logger    *slog.Logger
}

func NewGate(rentals RentalStore, contracts RepositoryAPI, logger *slog.Logger) *Gate {
	return &Gate{
		rentals:   rentals,
		contracts: contracts,
		logger:    logger,
	}
}

// CanCheckout allows checkout only when a contract exists and both parties
// have signed. A missing rental is a NotFound error, not a false result.
func (g *Gate) CanCheckout(rentalCode string) (*Eligibility, error) {
	if _, err := g.rentals.GetByCode(rentalCode); err != nil {
		g.logger.Warn("checkout eligibility check on unknown rental", "rental_code", rentalCode, "error", err)
		return nil, err
	}

	contract, err := g.contracts.GetByRentalCode(rentalCode)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.Code == errors.ErrCodeContractNotFound {
			g.logger.Info("checkout blocked: no contract", "rental_code", rentalCode)
			return &Eligibility{Allowed: false, Reason: ReasonNoContract}, nil
		}
		return nil, err
	}

	if !contract.IsSigned() {
		g.logger.Info("checkout blocked: contract unsigned",
			"rental_code", rentalCode,
			"contract_code", contract.Code,
			"contract_status", contract.Status)
		return &Eligibility{Allowed: false, Reason: ReasonUnsigned}, nil
	}

	return &Eligibility{Allowed: true}, nil
}
