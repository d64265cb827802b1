/*
config.go - Program-year configuration (limits, thresholds, caps)

PURPOSE:
  Every numeric constant the engine uses lives here as data, keyed by program
  year. A configuration is loaded once at startup (see factory/), validated
  against the registered award catalogue, and passed explicitly into every
  derivation, eligibility and amount function.

STRUCTURE:
  ProgramYearConfig
    ├── Dependants      age bands for dependant eligibility
    ├── Costs           allowable cost caps and weekly allowances
    ├── Transportation  base and additional transportation allowances
    ├── Contributions   per intensity
    └── Awards          per intensity, per award code
          └── AwardConfig
                ├── eligibility parameters (thresholds, allow-sets)
                ├── Federal    ComponentConfig
                └── Provincial ComponentConfig

SEE ALSO:
  - rules.go: Requirements each rule declares against its AwardConfig
  - factory/programyear.go: YAML → ProgramYearConfig
*/
package engine

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PROGRAM YEAR CONFIG
// =============================================================================

type ProgramYearConfig struct {
	ProgramYear    ProgramYear
	Dependants     DependantRules
	Costs          CostRules
	Transportation TransportationRules
	Contributions  map[OfferingIntensity]ContributionRules
	Awards         map[OfferingIntensity]map[AwardCode]AwardConfig
}

func (c *ProgramYearConfig) Name() string { return c.ProgramYear.Name }

// Award returns the configuration for one award, and whether it exists.
func (c *ProgramYearConfig) Award(intensity OfferingIntensity, code AwardCode) (AwardConfig, bool) {
	a, ok := c.Awards[intensity][code]
	return a, ok
}

type DependantRules struct {
	MinorMaxAge      int // at or below: always eligible
	YoungAdultMaxAge int // up to: eligible if attending high school or declared on taxes
	ChildcareMaxAge  int // at or below: childcare costs are allowable
}

type CostRules struct {
	TuitionCap              Money
	AviationTuitionCap      Money
	BooksCap                Money
	WeeklyLivingAllowance   FamilySizeTable // full-time only
	ChildcareWeeklyPerChild Money
	SecondResidenceWeekly   Money // full-time only
	TravelAllowance         Money
	ExchangeAllowance       Money
}

type TransportationRules struct {
	WeeklyAllowance           Money
	MaxAdditionalAllowance    Money
	PlacementDeduction        Money
	OnsiteDistanceThresholdKm int
	DistanceReductionFactor   decimal.Decimal
}

type ContributionRules struct {
	StudentExemption Money
	PartnerExemption Money
	StudentRate      decimal.Decimal
	PartnerRate      decimal.Decimal
}

// =============================================================================
// FAMILY SIZE TABLE - Values keyed by family size, capped at the largest size
// =============================================================================

type FamilySizeTable map[int]Money

// Lookup returns the value for a family size. Sizes above the largest key use
// the largest key; sizes below the smallest key use the smallest key.
func (t FamilySizeTable) Lookup(size int) (Money, bool) {
	if len(t) == 0 {
		return ZeroMoney(), false
	}
	if v, ok := t[size]; ok {
		return v, true
	}
	sizes := t.Sizes()
	if size > sizes[len(sizes)-1] {
		return t[sizes[len(sizes)-1]], true
	}
	if size < sizes[0] {
		return t[sizes[0]], true
	}
	// gap inside the table: use the nearest smaller size
	best := sizes[0]
	for _, s := range sizes {
		if s <= size {
			best = s
		}
	}
	return t[best], true
}

// Sizes returns the configured family sizes in ascending order.
func (t FamilySizeTable) Sizes() []int {
	sizes := make([]int, 0, len(t))
	for s := range t {
		sizes = append(sizes, s)
	}
	sort.Ints(sizes)
	return sizes
}

// =============================================================================
// AWARD CONFIG
// =============================================================================

type AwardConfig struct {
	IncomeThresholds     FamilySizeTable
	Credentials          []CredentialType
	ProgramLengths       []ProgramLength
	Institutions         []InstitutionType
	CourseLoadThreshold  int // percent; at or above pays Amount, below pays ReducedAmount
	MinimumCourseLoad    int // percent
	YearsSinceHighSchool int
	Federal              ComponentConfig
	Provincial           ComponentConfig
}

// Component returns the federal or provincial component configuration.
func (a AwardConfig) Component(c Component) ComponentConfig {
	if c == Federal {
		return a.Federal
	}
	return a.Provincial
}

type CumulativeScope string

const (
	// ScopeIntensity nets against totals awarded at the same intensity.
	ScopeIntensity CumulativeScope = "intensity"
	// ScopeProgramYear nets against totals across full-time and part-time.
	ScopeProgramYear CumulativeScope = "programYear"
)

type Taper struct {
	IncomeCap Money
	Slope     decimal.Decimal
	Floor     Money
}

// ComponentConfig holds the parameters of one federal or provincial amount.
// Which fields are required depends on the formula the rule uses.
type ComponentConfig struct {
	Amount           Money
	ReducedAmount    Money
	PerDependant     Money
	Weekly           Money
	NeedShare        decimal.Decimal
	Taper            *Taper
	ProgramYearLimit *Money
	MinDisbursable   Money
	Cumulative       CumulativeScope
}

// Component identifies the federal or provincial side of an award.
type Component string

const (
	Federal    Component = "federal"
	Provincial Component = "provincial"
)

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the shared sections and every registered award rule's
// requirements. The first problem is reported as a *ConfigError.
func (c *ProgramYearConfig) Validate() error {
	name := c.ProgramYear.Name
	fail := func(intensity OfferingIntensity, code AwardCode, field, reason string) error {
		return &ConfigError{ProgramYear: name, Intensity: intensity, Award: code, Field: field, Reason: reason}
	}

	if name == "" {
		return fail("", "", "programYear.name", "is required")
	}
	if c.ProgramYear.End.Before(c.ProgramYear.Start) {
		return fail("", "", "programYear.end", "is before start")
	}
	d := c.Dependants
	if d.MinorMaxAge <= 0 || d.YoungAdultMaxAge < d.MinorMaxAge || d.ChildcareMaxAge <= 0 {
		return fail("", "", "dependants", "age bands must be positive and ordered")
	}
	if len(c.Costs.WeeklyLivingAllowance) == 0 {
		return fail("", "", "costs.weeklyLivingAllowance", "is required")
	}
	if c.Transportation.DistanceReductionFactor.IsNegative() ||
		c.Transportation.DistanceReductionFactor.GreaterThan(decimal.NewFromInt(1)) {
		return fail("", "", "transportation.distanceReductionFactor", "must be between 0 and 1")
	}

	for _, intensity := range Intensities {
		if _, ok := c.Contributions[intensity]; !ok {
			return fail(intensity, "", "contributions", "is required")
		}
		for _, rule := range RulesFor(intensity) {
			award, ok := c.Award(intensity, rule.Code)
			if !ok {
				return fail(intensity, rule.Code, "award", "is not configured")
			}
			if err := rule.Validate(award); err != nil {
				var ce *ConfigError
				if errors.As(err, &ce) {
					ce.ProgramYear, ce.Intensity, ce.Award = name, intensity, rule.Code
					return ce
				}
				return err
			}
		}
	}
	return nil
}
