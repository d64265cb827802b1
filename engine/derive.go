package engine

// =============================================================================
// DERIVED ASSESSMENT VALUES - Intermediate values computed per run
// =============================================================================

type DerivedAssessmentValues struct {
	RelationshipStatus  RelationshipStatus `json:"relationshipStatus"`
	PartnerPresent      bool               `json:"partnerPresent"`
	StudentIncome       Money              `json:"studentIncome"`
	StudentIncomeSource IncomeSource       `json:"studentIncomeSource"`
	PartnerIncome       Money              `json:"partnerIncome"`
	PartnerIncomeSource IncomeSource       `json:"partnerIncomeSource"`
	TotalFamilyIncome   Money              `json:"totalFamilyIncome"`

	Dependants             []DerivedDependant `json:"dependants"`
	EligibleDependantCount int                `json:"eligibleDependantCount"`
	ChildcareEligibleCount int                `json:"childcareEligibleCount"`
	DependantGrantCount    int                `json:"dependantGrantCount"`
	FamilySize             int                `json:"familySize"`

	Costs               AssessedCosts `json:"costs"`
	Contributions       Contributions `json:"contributions"`
	TotalAssessedCost   Money         `json:"totalAssessedCost"`
	TotalAssessmentNeed Money         `json:"totalAssessmentNeed"`

	YearsSinceHighSchool *int `json:"yearsSinceHighSchool,omitempty"`
}

// Derive computes the derived values for one consolidated input.
// It is a pure, total function of its arguments: well-formed input never fails.
//
// Order matters only through data dependencies:
//
//	relationship → partner income → total family income
//	dependants → family size → living allowance → costs → need
func Derive(in *ConsolidatedAssessmentData, cfg *ProgramYearConfig) DerivedAssessmentValues {
	var d DerivedAssessmentValues

	// Relationship appeals override family composition entirely.
	d.RelationshipStatus = effectiveRelationshipStatus(in.Student.RelationshipStatus, in.Appeals.RelationshipStatus)
	d.PartnerPresent = d.RelationshipStatus.HasPartner()

	d.StudentIncome, d.StudentIncomeSource = effectiveStudentIncome(in.Student, in.Appeals.StudentIncome)
	d.StudentIncome = d.StudentIncome.Floor0().Round()
	d.PartnerIncomeSource = IncomeNotApplicable
	if d.PartnerPresent {
		d.PartnerIncome, d.PartnerIncomeSource = effectivePartnerIncome(in.Partner, in.Appeals.PartnerInformationAndIncome)
		d.PartnerIncome = d.PartnerIncome.Floor0().Round()
	}
	d.TotalFamilyIncome = d.StudentIncome.Add(d.PartnerIncome)

	dependants := effectiveDependants(in.Dependants, in.Appeals.Dependants)
	d.Dependants = ClassifyDependants(dependants, in.Offering.StudyStartDate, cfg.Dependants)
	counts := countDependants(d.Dependants)
	d.EligibleDependantCount = counts.family
	d.ChildcareEligibleCount = counts.childcare
	d.DependantGrantCount = counts.grant

	d.FamilySize = 1 + counts.family
	if d.PartnerPresent {
		d.FamilySize++
	}

	d.Costs = assessCosts(in, d.FamilySize, d.ChildcareEligibleCount, cfg)
	d.TotalAssessedCost = d.Costs.Total
	d.Contributions = assessContributions(d.StudentIncome, d.PartnerIncome, d.PartnerPresent, cfg.Contributions[in.Intensity])
	d.TotalAssessmentNeed = d.TotalAssessedCost.Sub(d.Contributions.Total).Floor0().Round()

	if leave := in.Student.HighSchoolLeaveDate; leave != nil && !leave.IsZero() {
		years := WholeYearsBetween(*leave, in.EffectiveAssessmentDate())
		d.YearsSinceHighSchool = &years
	}
	return d
}
