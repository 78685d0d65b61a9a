package rental_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/rental"
)

func int64Ptr(v int64) *int64 { return &v }

var _ = Describe("Fee calculation", func() {
	Describe("ComputeFees", func() {
		It("returns a zero breakdown for a normal checkout", func() {
			fees := rental.ComputeFees(nil)
			Expect(fees.TotalFees).To(Equal(int64(0)))
		})

		It("sums the staff-entered components", func() {
			fees := rental.ComputeFees(&rental.FeeEntryDTO{
				LateFee:   int64Ptr(50000),
				DamageFee: int64Ptr(200000),
			})

			Expect(fees.LateFee).To(Equal(int64(50000)))
			Expect(fees.DamageFee).To(Equal(int64(200000)))
			Expect(fees.OtherFees).To(Equal(int64(0)))
			Expect(fees.TotalFees).To(Equal(int64(250000)))
		})
	})

	Describe("ValidateFeeEntry", func() {
		It("accepts zero amounts", func() {
			Expect(rental.ValidateFeeEntry(&rental.FeeEntryDTO{LateFee: int64Ptr(0)})).To(BeNil())
		})

		It("rejects negative amounts", func() {
			appErr := rental.ValidateFeeEntry(&rental.FeeEntryDTO{DamageFee: int64Ptr(-1)})
			Expect(appErr).ToNot(BeNil())
			Expect(appErr.Type).To(Equal(errors.ErrorTypeValidation))
		})
	})

	Describe("ValidateInspection", func() {
		var insp *rental.InspectionDTO

		BeforeEach(func() {
			insp = &rental.InspectionDTO{
				Mileage:           int64Ptr(12100),
				BatteryLevel:      int64Ptr(55),
				ExteriorCondition: "good",
				InteriorCondition: "fair",
			}
		})

		It("accepts a well-formed inspection", func() {
			Expect(rental.ValidateInspection(12000, insp)).To(BeNil())
		})

		It("rejects mileage below the starting mileage", func() {
			insp.Mileage = int64Ptr(11999)
			appErr := rental.ValidateInspection(12000, insp)
			Expect(appErr).ToNot(BeNil())
		})

		It("accepts mileage equal to the starting mileage", func() {
			insp.Mileage = int64Ptr(12000)
			Expect(rental.ValidateInspection(12000, insp)).To(BeNil())
		})

		It("rejects battery level outside 0-100", func() {
			insp.BatteryLevel = int64Ptr(101)
			Expect(rental.ValidateInspection(12000, insp)).ToNot(BeNil())

			insp.BatteryLevel = int64Ptr(-1)
			Expect(rental.ValidateInspection(12000, insp)).ToNot(BeNil())
		})

		It("accepts a zero battery level", func() {
			insp.BatteryLevel = int64Ptr(0)
			Expect(rental.ValidateInspection(12000, insp)).To(BeNil())
		})

		It("rejects missing mileage and battery level", func() {
			insp.Mileage = nil
			insp.BatteryLevel = nil
			Expect(rental.ValidateInspection(12000, insp)).ToNot(BeNil())
		})

		It("rejects unknown condition grades", func() {
			insp.ExteriorCondition = "scratched"
			Expect(rental.ValidateInspection(12000, insp)).ToNot(BeNil())
		})

		It("collects every failure in one pass", func() {
			insp.Mileage = int64Ptr(10)
			insp.BatteryLevel = int64Ptr(250)
			insp.InteriorCondition = "bad"

			appErr := rental.ValidateInspection(12000, insp)
			Expect(appErr).ToNot(BeNil())

			details, ok := appErr.Details.(errors.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(len(details.Errors)).To(Equal(3))
		})
	})
})
