/*
Package parttime registers the part-time award catalogue.

KEY DIFFERENCES FROM FULL-TIME:
  1. Course load: a percentage gates CSLP and tiers SBSD
  2. No living allowance or second residence in the assessed costs
  3. CSLP nets against the student's outstanding part-time loan balance
  4. BCAG and CSPT are netted against the part-time program-year limit

CATALOGUE (registration order = result order):
  CSLP, CSPT, CSGP, CSGD, BCAG, SBSD

SEE ALSO:
  - fulltime/rules.go: Full-time catalogue
*/
package parttime

import "github.com/studentaid/assessment-engine/engine"

var oneDollar = engine.Dollars(1)

// Rules returns the part-time catalogue in registration order.
func Rules() []engine.AwardRule {
	return []engine.AwardRule{
		{
			Code:        engine.AwardCSLP,
			Intensity:   engine.PartTime,
			Kind:        engine.KindLoan,
			Description: "Canada Student Loan for part-time students",
			Components:  engine.FederalOnly,
			Conditions: []engine.Condition{
				engine.NeedAtLeast(oneDollar),
				engine.CourseLoadAtLeastMinimum(),
			},
			Gross:   engine.Flat(),
			Netting: ptr(engine.OutstandingBalanceNet()),
		},
		{
			Code:        engine.AwardCSPT,
			Intensity:   engine.PartTime,
			Kind:        engine.KindGrant,
			Description: "Canada Student Grant for Part-Time Studies",
			Components:  engine.FederalOnly,
			Conditions: []engine.Condition{
				engine.NeedAtLeast(oneDollar),
				engine.IncomeBelowThreshold(),
			},
			Gross: engine.Tapered(engine.Flat()),
		},
		{
			Code:        engine.AwardCSGP,
			Intensity:   engine.PartTime,
			Kind:        engine.KindGrant,
			Description: "Canada Student Grant for Students with Permanent Disabilities",
			Components:  engine.BothComponents,
			Conditions:  []engine.Condition{engine.HasPermanentDisability()},
			Gross:       engine.Flat(),
		},
		{
			Code:        engine.AwardCSGD,
			Intensity:   engine.PartTime,
			Kind:        engine.KindGrant,
			Description: "Canada Student Grant for Part-Time Students with Dependants",
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
			Code:        engine.AwardBCAG,
			Intensity:   engine.PartTime,
			Kind:        engine.KindGrant,
			Description: "BC Access Grant for part-time students",
			Components:  engine.BothComponents,
			Conditions: []engine.Condition{
				engine.InstitutionIn(),
				engine.NeedAtLeast(oneDollar),
				engine.IncomeBelowThreshold(),
			},
			Gross: engine.Tapered(engine.Flat()),
		},
		{
			Code:        engine.AwardSBSD,
			Intensity:   engine.PartTime,
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

// Register all part-time rules with the engine catalogue
func init() {
	for _, r := range Rules() {
		engine.RegisterRule(r)
	}
}
