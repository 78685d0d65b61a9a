package contract_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/contract"
	contractDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/contract"
	rentalDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/rental"
)

func TestContractGate(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Contract Gate Suite")
}

type mockRentalStore struct {
	rentals map[string]*rentalDatamodel.Rental
}

func (m *mockRentalStore) GetByCode(code string) (*rentalDatamodel.Rental, error) {
	if r, ok := m.rentals[code]; ok {
		return r, nil
	}
	return nil, errors.ErrRentalNotFound
}

type mockContractRepo struct {
	contracts map[string]*contractDatamodel.Contract
}

func (m *mockContractRepo) GetByRentalCode(rentalCode string) (*contractDatamodel.Contract, error) {
	if c, ok := m.contracts[rentalCode]; ok {
		return c, nil
	}
	return nil, errors.ErrContractNotFound
}

var _ = Describe("Gate", func() {
	var (
		gate      *contract.Gate
		rentals   *mockRentalStore
		contracts *mockContractRepo
	)

	signedAt := time.Now().Add(-time.Hour)

	BeforeEach(func() {
		rentals = &mockRentalStore{rentals: map[string]*rentalDatamodel.Rental{
			"RN0001": {Code: "RN0001", Status: rentalDatamodel.StatusActive},
		}}
		contracts = &mockContractRepo{contracts: map[string]*contractDatamodel.Contract{}}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		gate = contract.NewGate(rentals, contracts, logger)
	})

	Describe("CanCheckout", func() {
		Context("when both parties have signed", func() {
			It("allows checkout", func() {
				contracts.contracts["RN0001"] = &contractDatamodel.Contract{
					Code:             "CT0001",
					RentalCode:       "RN0001",
					Status:           contractDatamodel.StatusSigned,
					StaffSignedAt:    &signedAt,
					CustomerSignedAt: &signedAt,
				}

				eligibility, err := gate.CanCheckout("RN0001")

				Expect(err).ToNot(HaveOccurred())
				Expect(eligibility.Allowed).To(BeTrue())
				Expect(eligibility.Reason).To(BeEmpty())
			})
		})

		Context("when no contract exists", func() {
			It("blocks with the no-contract reason", func() {
				eligibility, err := gate.CanCheckout("RN0001")

				Expect(err).ToNot(HaveOccurred())
				Expect(eligibility.Allowed).To(BeFalse())
				Expect(eligibility.Reason).To(Equal(contract.ReasonNoContract))
			})
		})

		Context("when only one party has signed", func() {
			It("blocks with the unsigned reason", func() {
				contracts.contracts["RN0001"] = &contractDatamodel.Contract{
					Code:          "CT0001",
					RentalCode:    "RN0001",
					Status:        contractDatamodel.StatusPending,
					StaffSignedAt: &signedAt,
				}

				eligibility, err := gate.CanCheckout("RN0001")

				Expect(err).ToNot(HaveOccurred())
				Expect(eligibility.Allowed).To(BeFalse())
				Expect(eligibility.Reason).To(Equal(contract.ReasonUnsigned))
			})
		})

		Context("when the contract status says signed but a signature is missing", func() {
			It("still blocks", func() {
				contracts.contracts["RN0001"] = &contractDatamodel.Contract{
					Code:             "CT0001",
					RentalCode:       "RN0001",
					Status:           contractDatamodel.StatusSigned,
					CustomerSignedAt: &signedAt,
				}

				eligibility, err := gate.CanCheckout("RN0001")

				Expect(err).ToNot(HaveOccurred())
				Expect(eligibility.Allowed).To(BeFalse())
			})
		})

		Context("when the rental does not exist", func() {
			It("returns NotFound instead of a blocked eligibility", func() {
				_, err := gate.CanCheckout("RN9999")

				appErr, ok := errors.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(errors.ErrCodeRentalNotFound))
			})
		})
	})
})
