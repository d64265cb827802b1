/*
scenarios.go - Demo consolidated inputs for testing and demonstrations

PURPOSE:

	Provides pre-built consolidated inputs that exercise specific awards.
	Each scenario starts from a baseline student and changes the few
	fields the award under demonstration depends on.

AVAILABLE SCENARIOS:

	csgp-disability:        PD/PPD status "yes", both intensities pay CSGP
	csgt-adult-learner:     Left high school 10 years before the assessment
	csgd-dependants:        Low income, four eligible and four ineligible dependants
	bcag-part-time:         Income under the cap with 300 already awarded
	bcag-part-time-tapered: Income 8000 over the cap
	sbsd-course-load:       Disability with a 40% course load
	cslp-outstanding:       Part-time loan net of a 1000 outstanding balance

USAGE VIA API:

	GET  /api/scenarios
	POST /api/scenarios/{id}/assess

NOTE:

	Assessing a scenario is a preview. Nothing is recorded.

SEE ALSO:
  - handlers.go: Error mapping and JSON helpers
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/studentaid/assessment-engine/engine"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	input func() engine.ConsolidatedAssessmentData
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "csgp-disability",
			Name:        "Permanent Disability",
			Description: "Full-time student with PD/PPD status yes",
			Category:    string(engine.FullTime),
		},
		input: func() engine.ConsolidatedAssessmentData {
			in := baselineFullTime("demo-csgp")
			in.Student.DisabilityStatus = engine.DisabilityYes
			return in
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "csgt-adult-learner",
			Name:        "Adult Learner",
			Description: "Full-time student who left high school 10 years before the assessment",
			Category:    string(engine.FullTime),
		},
		input: func() engine.ConsolidatedAssessmentData {
			in := baselineFullTime("demo-csgt")
			leave := in.AssessmentDate.AddYears(-10)
			in.Student.HighSchoolLeaveDate = &leave
			return in
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "csgd-dependants",
			Name:        "Student With Dependants",
			Description: "Income 32999 with four eligible and four ineligible dependants",
			Category:    string(engine.FullTime),
		},
		input: func() engine.ConsolidatedAssessmentData {
			in := baselineFullTime("demo-csgd")
			in.Student.TaxReturnIncome = engine.Dollars(32999)
			in.Dependants = demoDependants()
			return in
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "bcag-part-time",
			Name:        "BC Access Grant",
			Description: "Part-time student under the income cap with 300 already awarded",
			Category:    string(engine.PartTime),
		},
		input: func() engine.ConsolidatedAssessmentData {
			in := baselinePartTime("demo-bcag")
			in.Totals = engine.ProgramYearTotals{
				engine.PartTime: {engine.AwardBCAG: {Provincial: engine.Dollars(300)}},
			}
			return in
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "bcag-part-time-tapered",
			Name:        "BC Access Grant Tapered",
			Description: "Part-time student with income 53000, above the cap",
			Category:    string(engine.PartTime),
		},
		input: func() engine.ConsolidatedAssessmentData {
			in := baselinePartTime("demo-bcag-taper")
			in.Student.TaxReturnIncome = engine.Dollars(53000)
			return in
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "sbsd-course-load",
			Name:        "Supplemental Bursary",
			Description: "Part-time student with a disability at 40% course load",
			Category:    string(engine.PartTime),
		},
		input: func() engine.ConsolidatedAssessmentData {
			in := baselinePartTime("demo-sbsd")
			in.Student.DisabilityStatus = engine.DisabilityYes
			in.Offering.CourseLoad = 40
			in.Totals = engine.ProgramYearTotals{
				engine.FullTime: {engine.AwardSBSD: {Provincial: engine.Dollars(200)}},
				engine.PartTime: {engine.AwardSBSD: {Provincial: engine.Dollars(90)}},
			}
			return in
		},
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "cslp-outstanding",
			Name:        "Part-Time Loan",
			Description: "Part-time loan with 1000 outstanding",
			Category:    string(engine.PartTime),
		},
		input: func() engine.ConsolidatedAssessmentData {
			in := baselinePartTime("demo-cslp")
			in.Student.CSLPOutstandingBalance = engine.Dollars(1000)
			return in
		},
	},
}

// ScenarioInput returns the consolidated input of a scenario.
func ScenarioInput(id string) (engine.ConsolidatedAssessmentData, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s.input(), true
		}
	}
	return engine.ConsolidatedAssessmentData{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// AssessScenario previews the assessment of a scenario input.
func (h *Handler) AssessScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, ok := ScenarioInput(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario: "+id, nil)
		return
	}

	result, err := h.Service.Preview(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, "Failed to assess scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, toResultDTO(result))
}

// =============================================================================
// BASELINES
// =============================================================================

const demoProgramYear = "2024-2025"

var demoStudyStart = engine.NewDate(2024, time.September, 3)

// baselineFullTime is a single student with 34 weeks at a BC public institution.
func baselineFullTime(app engine.ApplicationID) engine.ConsolidatedAssessmentData {
	return engine.ConsolidatedAssessmentData{
		ApplicationID:  app,
		ProgramYear:    demoProgramYear,
		Intensity:      engine.FullTime,
		AssessmentDate: engine.NewDate(2024, time.September, 1),
		Student: engine.StudentData{
			TaxReturnIncome:    engine.Dollars(20000),
			RelationshipStatus: engine.RelationshipSingle,
			DisabilityStatus:   engine.DisabilityNo,
		},
		Program: engine.ProgramData{
			CredentialType:  engine.CredentialUndergraduateDegree,
			Length:          engine.Length3To4Years,
			InstitutionType: engine.InstitutionBCPublic,
		},
		Offering: engine.OfferingData{
			DeliveryMode:        engine.DeliveryOnsite,
			Weeks:               34,
			StudyStartDate:      demoStudyStart,
			StudyEndDate:        engine.NewDate(2025, time.April, 30),
			Tuition:             engine.Dollars(6000),
			ProgramRelatedCosts: engine.Dollars(1500),
		},
	}
}

// baselinePartTime is a single student at 50% course load for 16 weeks.
func baselinePartTime(app engine.ApplicationID) engine.ConsolidatedAssessmentData {
	return engine.ConsolidatedAssessmentData{
		ApplicationID:  app,
		ProgramYear:    demoProgramYear,
		Intensity:      engine.PartTime,
		AssessmentDate: engine.NewDate(2024, time.September, 1),
		Student: engine.StudentData{
			TaxReturnIncome:    engine.Dollars(43000),
			RelationshipStatus: engine.RelationshipSingle,
			DisabilityStatus:   engine.DisabilityNo,
		},
		Program: engine.ProgramData{
			CredentialType:  engine.CredentialUndergraduateDiploma,
			Length:          engine.Length1To2Years,
			InstitutionType: engine.InstitutionBCPublic,
		},
		Offering: engine.OfferingData{
			DeliveryMode:        engine.DeliveryOnsite,
			CourseLoad:          50,
			Weeks:               16,
			StudyStartDate:      demoStudyStart,
			StudyEndDate:        engine.NewDate(2024, time.December, 20),
			Tuition:             engine.Dollars(2000),
			ProgramRelatedCosts: engine.Dollars(500),
		},
	}
}

func demoDependants() []engine.Dependant {
	child := func(name string, year int, declared, highSchool, postSecondary bool) engine.Dependant {
		return engine.Dependant{
			Name:                   name,
			BirthDate:              engine.NewDate(year, time.January, 1),
			DeclaredOnTaxes:        declared,
			AttendingHighSchool:    highSchool,
			AttendingPostSecondary: postSecondary,
		}
	}
	return []engine.Dependant{
		child("Ava", 2022, false, false, false),
		child("Ben", 2019, false, false, false),
		child("Cara", 2014, false, false, false),
		child("Dev", 2008, true, true, false),
		child("Eli", 2004, false, false, true),
		child("Fay", 2005, false, false, false),
		child("Gus", 1994, false, false, false),
		child("Hana", 1999, false, false, true),
	}
}
