package engine

// =============================================================================
// PROGRAM YEAR BALANCE - What is left of an award's limit this program year
// =============================================================================

// ProgramYearBalance is the remaining headroom of one award component for the
// current program year. It is computed, never stored:
//
//	Remaining = max(Limit - AlreadyAwarded, 0)
//
// A remaining balance below MinDisbursable is not paid at all.
type ProgramYearBalance struct {
	Code           AwardCode
	Component      Component
	Limit          Money
	AlreadyAwarded Money
	MinDisbursable Money
}

func (b ProgramYearBalance) Remaining() Money {
	return b.Limit.Sub(b.AlreadyAwarded).Floor0()
}

// Disbursable is the remaining balance, or zero when it is under the minimum increment.
func (b ProgramYearBalance) Disbursable() Money {
	r := b.Remaining()
	if r.LessThan(b.MinDisbursable) {
		return ZeroMoney()
	}
	return r
}

// Apply nets a gross amount against the balance.
func (b ProgramYearBalance) Apply(gross Money) Money {
	return gross.Min(b.Disbursable()).Floor0()
}

// NewProgramYearBalance reads the already-awarded total for a component from
// the program-year totals according to the cumulative scope.
func NewProgramYearBalance(
	in *ConsolidatedAssessmentData,
	code AwardCode,
	component Component,
	limit Money,
	c ComponentConfig,
) ProgramYearBalance {
	var awarded AwardedTotal
	if c.Cumulative == ScopeProgramYear {
		awarded = in.Totals.AwardedAcrossIntensities(code)
	} else {
		awarded = in.Totals.Awarded(in.Intensity, code)
	}
	already := awarded.Federal
	if component == Provincial {
		already = awarded.Provincial
	}
	return ProgramYearBalance{
		Code:           code,
		Component:      component,
		Limit:          limit,
		AlreadyAwarded: already,
		MinDisbursable: c.MinDisbursable,
	}
}
