package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studentaid/assessment-engine/engine"
	"github.com/studentaid/assessment-engine/factory"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

const testProgramYear = "2024-2025"

func programYear(t *testing.T) *engine.ProgramYearConfig {
	t.Helper()
	reg, err := factory.NewProgramYearFactory().LoadDefaults()
	require.NoError(t, err)
	cfg, err := reg.ProgramYear(testProgramYear)
	require.NoError(t, err)
	return cfg
}

func money(v float64) engine.Money { return engine.NewMoney(v) }
func moneyPtr(v float64) *engine.Money { m := engine.NewMoney(v); return &m }
func date(y int, m time.Month, d int) engine.Date { return engine.NewDate(y, m, d) }

// requireMoney compares by value so 4000 equals 4000.00.
func requireMoney(t *testing.T, want float64, got engine.Money, msgAndArgs ...interface{}) {
	t.Helper()
	if !got.Equal(money(want)) {
		require.Failf(t, "money mismatch", "expected %v, got %s. %v", want, got, msgAndArgs)
	}
}

var studyStart = date(2024, time.September, 3)

// partTimeInput is a single part-time student at a BC public institution:
// 16 weeks, 50% course load, tuition 2000, books 500, income 43000.
func partTimeInput() engine.ConsolidatedAssessmentData {
	return engine.ConsolidatedAssessmentData{
		ApplicationID:  "app-pt-1",
		ProgramYear:    testProgramYear,
		Intensity:      engine.PartTime,
		AssessmentDate: date(2024, time.September, 1),
		Student: engine.StudentData{
			TaxReturnIncome:    money(43000),
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
			StudyStartDate:      studyStart,
			StudyEndDate:        date(2024, time.December, 20),
			Tuition:             money(2000),
			ProgramRelatedCosts: money(500),
		},
	}
}

// fullTimeInput is a single full-time student at a BC public institution:
// 34 weeks, tuition 6000, books 1500, income 20000.
func fullTimeInput() engine.ConsolidatedAssessmentData {
	return engine.ConsolidatedAssessmentData{
		ApplicationID:  "app-ft-1",
		ProgramYear:    testProgramYear,
		Intensity:      engine.FullTime,
		AssessmentDate: date(2024, time.September, 1),
		Student: engine.StudentData{
			TaxReturnIncome:    money(20000),
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
			StudyStartDate:      studyStart,
			StudyEndDate:        date(2025, time.April, 30),
			Tuition:             money(6000),
			ProgramRelatedCosts: money(1500),
		},
	}
}

func assess(t *testing.T, in engine.ConsolidatedAssessmentData) engine.AssessmentResult {
	t.Helper()
	result, err := engine.NewAssessor(engine.StaticConfigs{testProgramYear: programYear(t)}).Assess(in)
	require.NoError(t, err)
	return result
}

func award(t *testing.T, r engine.AssessmentResult, code engine.AwardCode) engine.AwardResult {
	t.Helper()
	a, ok := r.Award(code)
	require.True(t, ok, "award %s missing from result", code)
	return a
}

func dependant(birth engine.Date, declared, highSchool, postSecondary bool) engine.Dependant {
	return engine.Dependant{
		BirthDate:              birth,
		DeclaredOnTaxes:        declared,
		AttendingHighSchool:    highSchool,
		AttendingPostSecondary: postSecondary,
	}
}
