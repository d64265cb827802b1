/*
Package fulltime registers the full-time award catalogue.

PURPOSE:
  Declares, for every award a full-time student can receive, the
  eligibility conditions and the amount formula. Numbers are never
  hard-coded here: each rule reads its limits, thresholds and allow-sets
  from the program-year AwardConfig.

CATALOGUE (registration order = result order):
  CSLF  Canada Student Loan            federal     share of need, weekly cap
  BCSL  BC Student Loan                provincial  share of need, weekly cap
  CSGP  Grant, permanent disability    both        flat
  CSGD  Grant, dependants              both        per dependant, tapered
  CSGF  Grant, full-time               federal     tapered flat
  CSGT  Grant, adult learner top-up    both        flat
  BCAG  BC Access Grant                both        tapered flat
  BGPD  BC Grant, disability           provincial  flat
  SBSD  BC Supplemental Bursary, dis.  provincial  tier, remaining of limit

SEE ALSO:
  - parttime/rules.go: Part-time catalogue
  - engine/conditions.go, engine/amounts.go: Building blocks
*/
package fulltime

import "github.com/studentaid/assessment-engine/engine"

var oneDollar = engine.Dollars(1)

// Rules returns the full-time catalogue in registration order.
func Rules() []engine.AwardRule {
	return []engine.AwardRule{
		{
			Code:        engine.AwardCSLF,
			Intensity:   engine.FullTime,
			Kind:        engine.KindLoan,
			Description: "Canada Student Loan for full-time students",
			Components:  engine.FederalOnly,
			Conditions:  []engine.Condition{engine.NeedAtLeast(oneDollar)},
			Gross:       engine.NeedShare(),
		},
		{
			Code:        engine.AwardBCSL,
			Intensity:   engine.FullTime,
			Kind:        engine.KindLoan,
			Description: "BC Student Loan",
			Components:  engine.ProvincialOnly,
			Conditions: []engine.Condition{
				engine.NeedAtLeast(oneDollar),
				engine.InstitutionIn(),
			},
			Gross: engine.NeedShare(),
		},
		{
			Code:        engine.AwardCSGP,
			Intensity:   engine.FullTime,
			Kind:        engine.KindGrant,
			Description: "Canada Student Grant for Students with Permanent Disabilities",
			Components:  engine.BothComponents,
			Conditions:  []engine.Condition{engine.HasPermanentDisability()},
			Gross:       engine.Flat(),
		},
		{
			Code:        engine.AwardCSGD,
			Intensity:   engine.FullTime,
			Kind:        engine.KindGrant,
			Description: "Canada Student Grant for Full-Time Students with Dependants",
			Components:  engine.FederalOnly,
			Conditions: []engine.Condition{
				engine.HasEligibleDependants(1),
				engine.HasGrantDependants(1),
				engine.IncomeBelowThreshold(),
				engine.NeedAtLeast(oneDollar),
			},
			Gross: engine.Tapered(engine.PerDependant()),
		},
		{
			Code:        engine.AwardCSGF,
			Intensity:   engine.FullTime,
			Kind:        engine.KindGrant,
			Description: "Canada Student Grant for Full-Time Students",
			Components:  engine.FederalOnly,
			Conditions: []engine.Condition{
				engine.NeedAtLeast(oneDollar),
				engine.CredentialIn(),
				engine.ProgramLengthIn(),
				engine.IncomeBelowThreshold(),
			},
			Gross: engine.Tapered(engine.Flat()),
		},
		{
			Code:        engine.AwardCSGT,
			Intensity:   engine.FullTime,
			Kind:        engine.KindGrant,
			Description: "Canada Student Grant top-up for adult learners",
			Components:  engine.BothComponents,
			Conditions: []engine.Condition{
				engine.NeedAtLeast(oneDollar),
				engine.YearsSinceHighSchoolAtLeast(),
				engine.IncomeBelowThreshold(),
			},
			Gross: engine.Flat(),
		},
		{
			Code:        engine.AwardBCAG,
			Intensity:   engine.FullTime,
			Kind:        engine.KindGrant,
			Description: "BC Access Grant",
			Components:  engine.BothComponents,
			Conditions: []engine.Condition{
				engine.InstitutionIn(),
				engine.ProgramLengthIn(),
				engine.NeedAtLeast(oneDollar),
				engine.IncomeBelowThreshold(),
			},
			Gross: engine.Tapered(engine.Flat()),
		},
		{
			Code:        engine.AwardBGPD,
			Intensity:   engine.FullTime,
			Kind:        engine.KindGrant,
			Description: "BC Grant for Students with Permanent Disabilities",
			Components:  engine.ProvincialOnly,
			Conditions: []engine.Condition{
				engine.HasPermanentDisability(),
				engine.InstitutionIn(),
				engine.NeedAtLeast(oneDollar),
			},
			Gross: engine.Flat(),
		},
		{
			Code:        engine.AwardSBSD,
			Intensity:   engine.FullTime,
			Kind:        engine.KindGrant,
			Description: "BC Supplemental Bursary for Students with Disabilities",
			Components:  engine.ProvincialOnly,
			Conditions: []engine.Condition{
				engine.HasPermanentDisability(),
				engine.InstitutionIn(),
			},
			Gross:   engine.CourseLoadTier(),
			Netting: ptr(engine.RemainingOfGross()),
		},
	}
}

func ptr[T any](v T) *T { return &v }

// Register all full-time rules with the engine catalogue
func init() {
	for _, r := range Rules() {
		engine.RegisterRule(r)
	}
}
