package engine

// =============================================================================
// CONSOLIDATED ASSESSMENT DATA - Immutable input snapshot for one run
// =============================================================================

// ConsolidatedAssessmentData is every fact needed to assess one application.
// It is assembled by the caller and never mutated by the engine.
type ConsolidatedAssessmentData struct {
	ApplicationID  ApplicationID      `json:"applicationId"`
	ProgramYear    string             `json:"programYear"`
	Intensity      OfferingIntensity  `json:"offeringIntensity"`
	AssessmentDate Date               `json:"assessmentDate"`
	Student        StudentData        `json:"student"`
	Partner        *PartnerData       `json:"partner,omitempty"`
	Dependants     []Dependant        `json:"dependants,omitempty"`
	Program        ProgramData        `json:"program"`
	Offering       OfferingData       `json:"offering"`
	Totals         ProgramYearTotals  `json:"programYearTotals,omitempty"`
	Appeals        Appeals            `json:"appeals"`
}

type StudentData struct {
	TaxReturnIncome    Money              `json:"taxReturnIncome"`
	CRAReportedIncome  *Money             `json:"craReportedIncome,omitempty"`
	CurrentYearIncome  *Money             `json:"currentYearIncome,omitempty"`
	RelationshipStatus RelationshipStatus `json:"relationshipStatus"`
	DisabilityStatus   DisabilityStatus   `json:"disabilityStatus"`
	// HighSchoolLeaveDate is the declared graduation or leave date.
	HighSchoolLeaveDate    *Date    `json:"highSchoolLeaveDate,omitempty"`
	CSLPOutstandingBalance Money    `json:"cslpOutstandingBalance"`
	ChildcareCosts         Money    `json:"childcareCosts"`
	SecondResidence        bool     `json:"secondResidence"`
	AdditionalTransportation *AdditionalTransportation `json:"additionalTransportation,omitempty"`
}

// AdditionalTransportation is a claim for practicum or placement travel.
type AdditionalTransportation struct {
	WeeklyCost        Money `json:"weeklyCost"`
	Weeks             int   `json:"weeks"`
	DistanceKm        int   `json:"distanceKm"`
	PlacementProvided bool  `json:"placementProvided"`
}

type PartnerData struct {
	CRAReportedIncome *Money `json:"craReportedIncome,omitempty"`
	EstimatedIncome   Money  `json:"estimatedIncome"`
}

type Dependant struct {
	Name                   string `json:"name,omitempty"`
	BirthDate              Date   `json:"birthDate"`
	DeclaredOnTaxes        bool   `json:"declaredOnTaxes"`
	AttendingPostSecondary bool   `json:"attendingPostSecondary"`
	AttendingHighSchool    bool   `json:"attendingHighSchool"`
}

type ProgramData struct {
	CredentialType  CredentialType  `json:"credentialType"`
	Length          ProgramLength   `json:"programLength"`
	InstitutionType InstitutionType `json:"institutionType"`
	Aviation        bool            `json:"aviation"`
}

type OfferingData struct {
	DeliveryMode           DeliveryMode `json:"deliveryMode"`
	CourseLoad             int          `json:"courseLoad"` // percent, part-time only
	Weeks                  int          `json:"weeks"`
	StudyStartDate         Date         `json:"studyStartDate"`
	StudyEndDate           Date         `json:"studyEndDate"`
	Tuition                Money        `json:"tuition"`
	MandatoryFees          Money        `json:"mandatoryFees"`
	ProgramRelatedCosts    Money        `json:"programRelatedCosts"`
	ExceptionalExpenses    Money        `json:"exceptionalExpenses"`
	WorkIntegratedLearning bool         `json:"workIntegratedLearning"`
	Travel                 bool         `json:"travel"`
	Exchange               bool         `json:"exchange"`
}

// =============================================================================
// PROGRAM YEAR TOTALS - Amounts already awarded this program year
// =============================================================================

// ProgramYearTotals holds what was already awarded this program year, per
// intensity and award code. Federal and provincial components are tracked
// separately.
type ProgramYearTotals map[OfferingIntensity]map[AwardCode]AwardedTotal

type AwardedTotal struct {
	Federal    Money `json:"federal"`
	Provincial Money `json:"provincial"`
}

// Awarded returns the total for one intensity and code; missing entries are zero.
func (t ProgramYearTotals) Awarded(intensity OfferingIntensity, code AwardCode) AwardedTotal {
	if t == nil {
		return AwardedTotal{}
	}
	return t[intensity][code]
}

// AwardedAcrossIntensities sums the totals for a code over full-time and part-time.
func (t ProgramYearTotals) AwardedAcrossIntensities(code AwardCode) AwardedTotal {
	var sum AwardedTotal
	for _, i := range Intensities {
		a := t.Awarded(i, code)
		sum.Federal = sum.Federal.Add(a.Federal)
		sum.Provincial = sum.Provincial.Add(a.Provincial)
	}
	return sum
}

// =============================================================================
// APPEALS - Approved overrides that supersede raw data for one run
// =============================================================================

type Appeals struct {
	StudentIncome               *StudentIncomeAppeal      `json:"studentIncomeAppealData,omitempty"`
	PartnerInformationAndIncome *PartnerIncomeAppeal      `json:"partnerInformationAndIncomeAppealData,omitempty"`
	RelationshipStatus          *RelationshipStatusAppeal `json:"relationshipStatusAppealData,omitempty"`
	Dependants                  *DependantsAppeal         `json:"dependantsAppealData,omitempty"`
}

type StudentIncomeAppeal struct {
	TaxReturnIncome   Money  `json:"taxReturnIncome"`
	CurrentYearIncome *Money `json:"currentYearIncome,omitempty"`
}

type PartnerIncomeAppeal struct {
	PartnerIncome            Money  `json:"partnerIncome"`
	CurrentYearPartnerIncome *Money `json:"currentYearPartnerIncome,omitempty"`
}

type RelationshipStatusAppeal struct {
	RelationshipStatus RelationshipStatus `json:"relationshipStatus"`
}

type DependantsAppeal struct {
	Dependants []Dependant `json:"dependants"`
}

// =============================================================================
// PRECONDITIONS
// =============================================================================

// CheckRequired reports the first missing field the engine cannot assess without.
// The engine does not validate beyond this; richer validation belongs to the caller.
func (in ConsolidatedAssessmentData) CheckRequired() error {
	switch {
	case in.ProgramYear == "":
		return &InputError{Field: "programYear", Reason: "is required"}
	case !in.Intensity.Valid():
		return &InputError{Field: "offeringIntensity", Reason: "must be fullTime or partTime"}
	case in.Offering.StudyStartDate.IsZero():
		return &InputError{Field: "offering.studyStartDate", Reason: "is required"}
	case in.Offering.Weeks <= 0:
		return &InputError{Field: "offering.weeks", Reason: "must be positive"}
	case in.Program.CredentialType == "":
		return &InputError{Field: "program.credentialType", Reason: "is required"}
	case in.Intensity == PartTime && (in.Offering.CourseLoad <= 0 || in.Offering.CourseLoad > 100):
		return &InputError{Field: "offering.courseLoad", Reason: "must be between 1 and 100 for part-time offerings"}
	}
	return nil
}

// EffectiveWeeks is the offering's weeks, or the weeks its study dates span
// when Weeks is unset.
func (o OfferingData) EffectiveWeeks() int {
	if o.Weeks > 0 || o.StudyStartDate.IsZero() || o.StudyEndDate.IsZero() {
		return o.Weeks
	}
	return WeeksBetween(o.StudyStartDate, o.StudyEndDate)
}

// EffectiveAssessmentDate is the assessment date, defaulting to the study start.
func (in ConsolidatedAssessmentData) EffectiveAssessmentDate() Date {
	if in.AssessmentDate.IsZero() {
		return in.Offering.StudyStartDate
	}
	return in.AssessmentDate
}
