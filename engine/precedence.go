package engine

// ResolveEffectiveValue picks the value in force for one run.
// Precedence: appeal override > CRA-reported > raw. Nil pointers mean "absent".
func ResolveEffectiveValue[T any](raw T, craReported, appealOverride *T) T {
	if appealOverride != nil {
		return *appealOverride
	}
	if craReported != nil {
		return *craReported
	}
	return raw
}

// firstPresent returns the first non-nil value, or fallback.
func firstPresent[T any](fallback T, candidates ...*T) T {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return fallback
}

// IncomeSource names which precedence tier supplied an effective income.
type IncomeSource string

const (
	IncomeFromAppeal   IncomeSource = "appeal"
	IncomeFromCRA      IncomeSource = "cra"
	IncomeFromEstimate IncomeSource = "estimate"
	IncomeNotApplicable IncomeSource = "notApplicable"
)

func incomeSource(craReported *Money, appealPresent bool) IncomeSource {
	switch {
	case appealPresent:
		return IncomeFromAppeal
	case craReported != nil:
		return IncomeFromCRA
	default:
		return IncomeFromEstimate
	}
}

// effectiveStudentIncome applies appeal > CRA > estimate to the student.
// Within an appeal, CurrentYearIncome supersedes the appeal's tax-return figure;
// the raw estimate likewise prefers CurrentYearIncome over the tax return.
func effectiveStudentIncome(s StudentData, appeal *StudentIncomeAppeal) (Money, IncomeSource) {
	estimate := firstPresent(s.TaxReturnIncome, s.CurrentYearIncome)
	var override *Money
	if appeal != nil {
		v := firstPresent(appeal.TaxReturnIncome, appeal.CurrentYearIncome)
		override = &v
	}
	return ResolveEffectiveValue(estimate, s.CRAReportedIncome, override), incomeSource(s.CRAReportedIncome, appeal != nil)
}

// effectivePartnerIncome applies appeal > CRA > estimate to the partner.
func effectivePartnerIncome(p *PartnerData, appeal *PartnerIncomeAppeal) (Money, IncomeSource) {
	var raw PartnerData
	if p != nil {
		raw = *p
	}
	var override *Money
	if appeal != nil {
		v := firstPresent(appeal.PartnerIncome, appeal.CurrentYearPartnerIncome)
		override = &v
	}
	return ResolveEffectiveValue(raw.EstimatedIncome, raw.CRAReportedIncome, override), incomeSource(raw.CRAReportedIncome, appeal != nil)
}

func effectiveRelationshipStatus(raw RelationshipStatus, appeal *RelationshipStatusAppeal) RelationshipStatus {
	var override *RelationshipStatus
	if appeal != nil {
		override = &appeal.RelationshipStatus
	}
	return ResolveEffectiveValue(raw, nil, override)
}

func effectiveDependants(raw []Dependant, appeal *DependantsAppeal) []Dependant {
	var override *[]Dependant
	if appeal != nil {
		override = &appeal.Dependants
	}
	return ResolveEffectiveValue(raw, nil, override)
}
