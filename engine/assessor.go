/*
assessor.go - The assessment pipeline

PURPOSE:
  Runs one consolidated input through every stage:

    Input → Derive → EvaluateEligibility → ComputeAmount → Aggregate

  Every stage is a pure function. The Assessor only adds the lookup of the
  program-year configuration the input names.

INVARIANTS:
  - Identical input and configuration produce an identical result
  - An ineligible award always has zero federal and provincial amounts
  - Every registered rule for the intensity appears in the result

SEE ALSO:
  - derive.go: Derivation layer
  - rules.go: Award rule registry
  - aggregate.go: Result aggregation
  - service/assessment_service.go: Caching, persistence and logging around Assess
*/
package engine

import "fmt"

// ConfigProvider resolves a program-year configuration by name.
type ConfigProvider interface {
	ProgramYear(name string) (*ProgramYearConfig, error)
}

// StaticConfigs is a ConfigProvider over preloaded configurations.
type StaticConfigs map[string]*ProgramYearConfig

func (s StaticConfigs) ProgramYear(name string) (*ProgramYearConfig, error) {
	cfg, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProgramYearNotConfigured, name)
	}
	return cfg, nil
}

// Assessor assesses consolidated inputs against configured program years.
type Assessor struct {
	Configs ConfigProvider
}

func NewAssessor(configs ConfigProvider) *Assessor {
	return &Assessor{Configs: configs}
}

// Assess checks the input preconditions, resolves the program year and runs the pipeline.
func (a *Assessor) Assess(in ConsolidatedAssessmentData) (AssessmentResult, error) {
	in.Offering.Weeks = in.Offering.EffectiveWeeks()
	if err := in.CheckRequired(); err != nil {
		return AssessmentResult{}, err
	}
	cfg, err := a.Configs.ProgramYear(in.ProgramYear)
	if err != nil {
		return AssessmentResult{}, err
	}
	return Assess(&in, cfg), nil
}

// Assess runs the full pipeline against one configuration.
func Assess(in *ConsolidatedAssessmentData, cfg *ProgramYearConfig) AssessmentResult {
	derived := Derive(in, cfg)
	catalogue := RulesFor(in.Intensity)

	eligibility := make([]EligibilityResult, 0, len(catalogue))
	amounts := make([]AmountResult, 0, len(catalogue))
	for _, rule := range catalogue {
		award, _ := cfg.Award(in.Intensity, rule.Code)
		ctx := EvaluationContext{Input: in, Derived: &derived, Year: cfg, Award: award, Code: rule.Code}
		e := EvaluateEligibility(rule, ctx)
		eligibility = append(eligibility, e)
		amounts = append(amounts, ComputeAmount(rule, ctx, e))
	}
	return Aggregate(in, derived, catalogue, eligibility, amounts)
}

// EvaluateEligibility tests every condition of a rule. All conditions are
// evaluated so the result names each one that failed.
func EvaluateEligibility(rule AwardRule, ctx EvaluationContext) EligibilityResult {
	result := EligibilityResult{Code: rule.Code, Eligible: true}
	for _, c := range rule.Conditions {
		if !c.Test(ctx) {
			result.Eligible = false
			result.Failed = append(result.Failed, c.Name)
		}
	}
	return result
}

// ComputeAmount computes the gross and net amounts of each component the rule pays.
// Ineligible awards short-circuit to zero before any formula runs.
func ComputeAmount(rule AwardRule, ctx EvaluationContext, eligibility EligibilityResult) AmountResult {
	result := AmountResult{
		Code:            rule.Code,
		FederalGross:    ZeroMoney(),
		ProvincialGross: ZeroMoney(),
		FederalNet:      ZeroMoney(),
		ProvincialNet:   ZeroMoney(),
	}
	if !eligibility.Eligible {
		return result
	}

	netting := rule.netting()
	for _, comp := range []Component{Federal, Provincial} {
		if !rule.Components.Has(comp) {
			continue
		}
		c := ctx.Award.Component(comp)
		gross := rule.Gross.Gross(ctx, c).Floor0().Round()
		net := netting.Net(ctx, comp, c, gross).Floor0().Round()
		if comp == Federal {
			result.FederalGross, result.FederalNet = gross, net
		} else {
			result.ProvincialGross, result.ProvincialNet = gross, net
		}
	}
	return result
}
