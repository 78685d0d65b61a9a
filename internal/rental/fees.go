package rental

import (
	errors "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal"
	"github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/common/validation"
	rentalDatamodel "github.com/duchuy188/WDP301-EV-RENTAL-STAFF-sub000/internal/core/datamodel/rental"
)

// FeeBreakdown is the itemized settlement owed at checkout. Amounts are
// whole currency units, never negative.
type FeeBreakdown struct {
	LateFee   int64 `json:"late_fee"`
	DamageFee int64 `json:"damage_fee"`
	OtherFees int64 `json:"other_fees"`
	TotalFees int64 `json:"total_fees"`
}

// ComputeFees derives the breakdown from explicit staff fee entry. A nil
// entry is the normal checkout: no fees are ever auto-derived from elapsed
// time or reported condition, so the breakdown is zero.
func ComputeFees(entry *FeeEntryDTO) FeeBreakdown {
	if entry == nil {
		return FeeBreakdown{}
	}

	breakdown := FeeBreakdown{
		LateFee:   valueOrZero(entry.LateFee),
		DamageFee: valueOrZero(entry.DamageFee),
		OtherFees: valueOrZero(entry.OtherFees),
	}
	breakdown.TotalFees = breakdown.LateFee + breakdown.DamageFee + breakdown.OtherFees
	return breakdown
}

func valueOrZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

// ValidateInspection checks staff-submitted return inspection data against
// the rental's starting condition. Any failure aborts checkout before a
// single field is written.
func ValidateInspection(startMileage int64, insp *InspectionDTO) *errors.AppError {
	if insp == nil {
		return errors.NewValidationError("inspection data is required", errors.ErrCodeValidationFailed)
	}

	validator := validation.NewValidator()

	if insp.Mileage == nil {
		validator.Field("mileage", nil).Required()
	} else {
		validator.Field("mileage", *insp.Mileage).Custom(func(value interface{}) *errors.AppError {
			if v, ok := value.(int64); ok && v < startMileage {
				return errors.NewValidationFieldError("mileage",
					"return mileage cannot be lower than the starting mileage",
					errors.ErrCodeInvalidMileage)
			}
			return nil
		})
	}

	if insp.BatteryLevel == nil {
		validator.Field("battery_level", nil).Required()
	} else {
		validator.Field("battery_level", *insp.BatteryLevel).RangeInt(0, 100, errors.ErrCodeInvalidBattery)
	}

	grades := []string{
		string(rentalDatamodel.GradeExcellent),
		string(rentalDatamodel.GradeGood),
		string(rentalDatamodel.GradeFair),
		string(rentalDatamodel.GradePoor),
	}
	validator.Field("exterior_condition", insp.ExteriorCondition).Required().OneOf(grades, errors.ErrCodeInvalidCondition)
	validator.Field("interior_condition", insp.InteriorCondition).Required().OneOf(grades, errors.ErrCodeInvalidCondition)
	validator.Field("notes", insp.Notes).MaxLength(1000)

	return validator.Validate()
}

// ValidateFeeEntry rejects negative staff-entered fee amounts. Omitted
// fields default to zero and are fine.
func ValidateFeeEntry(entry *FeeEntryDTO) *errors.AppError {
	if entry == nil {
		return nil
	}

	validator := validation.NewValidator()
	if entry.LateFee != nil {
		validator.Field("late_fee", *entry.LateFee).NonNegative(errors.ErrCodeInvalidAmount)
	}
	if entry.DamageFee != nil {
		validator.Field("damage_fee", *entry.DamageFee).NonNegative(errors.ErrCodeInvalidAmount)
	}
	if entry.OtherFees != nil {
		validator.Field("other_fees", *entry.OtherFees).NonNegative(errors.ErrCodeInvalidAmount)
	}
	return validator.Validate()
}
