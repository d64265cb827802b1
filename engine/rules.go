/*
rules.go - Award rule contract and registration

PURPOSE:
  An AwardRule describes one award code at one offering intensity: the
  conditions that make a student eligible, the formula producing the gross
  amount of each component, and how the gross is netted. Intensity packages
  (fulltime/, parttime/) register their rules on init(); the engine itself
  knows no award.

HOW IT WORKS:
  1. Intensity packages build AwardRules from the condition and formula
     helpers in conditions.go and amounts.go
  2. They register them with RegisterRule on init()
  3. Config validation and the assessor iterate RulesFor(intensity) in
     registration order, which is the catalogue order of results

USAGE:
  // In parttime/rules.go
  func init() {
      engine.RegisterRule(engine.AwardRule{
          Code:       engine.AwardCSGP,
          Intensity:  engine.PartTime,
          Kind:       engine.KindGrant,
          Components: engine.BothComponents,
          Conditions: []engine.Condition{engine.HasPermanentDisability()},
          Gross:      engine.Flat(),
      })
  }

SEE ALSO:
  - conditions.go: Eligibility condition helpers
  - amounts.go: Gross amount formulas and netting
  - assessor.go: Pipeline that evaluates the registered rules
*/
package engine

import (
	"fmt"
	"strings"
	"sync"
)

// =============================================================================
// EVALUATION CONTEXT
// =============================================================================

// EvaluationContext is everything a condition or formula may read.
// It is built once per award per run and never mutated.
type EvaluationContext struct {
	Input   *ConsolidatedAssessmentData
	Derived *DerivedAssessmentValues
	Year    *ProgramYearConfig
	Award   AwardConfig
	Code    AwardCode
}

func (ctx EvaluationContext) Intensity() OfferingIntensity { return ctx.Input.Intensity }

// =============================================================================
// RULE BUILDING BLOCKS
// =============================================================================

// Requirement lists the AwardConfig fields a building block needs but finds missing.
type Requirement func(AwardConfig) []string

// Condition is one independently testable eligibility predicate.
type Condition struct {
	Name     string
	Test     func(EvaluationContext) bool
	Requires Requirement
}

// Formula computes the gross amount of one component.
type Formula struct {
	Name     string
	Gross    func(EvaluationContext, ComponentConfig) Money
	Requires func(ComponentConfig) []string
}

// Netting turns a component's gross amount into its net amount.
type Netting struct {
	Name string
	Net  func(ctx EvaluationContext, component Component, c ComponentConfig, gross Money) Money
}

// ComponentSet declares which components an award pays.
type ComponentSet int

const (
	FederalOnly ComponentSet = 1 << iota
	ProvincialOnly
	BothComponents = FederalOnly | ProvincialOnly
)

func (s ComponentSet) Has(c Component) bool {
	if c == Federal {
		return s&FederalOnly != 0
	}
	return s&ProvincialOnly != 0
}

// =============================================================================
// AWARD RULE
// =============================================================================

type AwardRule struct {
	Code        AwardCode
	Intensity   OfferingIntensity
	Kind        AwardKind
	Description string
	Components  ComponentSet
	Conditions  []Condition
	Gross       Formula
	// Netting defaults to ProgramYearNet when unset.
	Netting *Netting
}

// Validate reports the first configuration value this rule requires but is missing.
func (r AwardRule) Validate(a AwardConfig) error {
	var missing []string
	for _, c := range r.Conditions {
		if c.Requires != nil {
			missing = append(missing, c.Requires(a)...)
		}
	}
	for _, comp := range []Component{Federal, Provincial} {
		if !r.Components.Has(comp) || r.Gross.Requires == nil {
			continue
		}
		for _, f := range r.Gross.Requires(a.Component(comp)) {
			missing = append(missing, string(comp)+"."+f)
		}
	}
	if len(missing) > 0 {
		return &ConfigError{Field: strings.Join(missing, ", "), Reason: "is required"}
	}
	return nil
}

func (r AwardRule) netting() Netting {
	if r.Netting != nil {
		return *r.Netting
	}
	return ProgramYearNet()
}

// =============================================================================
// RULE REGISTRY
// =============================================================================

var (
	ruleRegistry = make(map[OfferingIntensity][]AwardRule)
	registryMu   sync.RWMutex
)

// RegisterRule adds an award rule to the global catalogue.
// Call this from intensity package init() functions. Registering the same code
// twice for one intensity replaces the earlier rule in place.
func RegisterRule(r AwardRule) {
	if !r.Intensity.Valid() {
		panic(fmt.Sprintf("award rule %s: invalid intensity %q", r.Code, r.Intensity))
	}
	if r.Gross.Gross == nil {
		panic(fmt.Sprintf("award rule %s/%s: gross formula is required", r.Intensity, r.Code))
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	rules := ruleRegistry[r.Intensity]
	for i := range rules {
		if rules[i].Code == r.Code {
			rules[i] = r
			return
		}
	}
	ruleRegistry[r.Intensity] = append(rules, r)
}

// LookupRule finds a registered rule. Returns false if not found.
func LookupRule(intensity OfferingIntensity, code AwardCode) (AwardRule, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, r := range ruleRegistry[intensity] {
		if r.Code == code {
			return r, true
		}
	}
	return AwardRule{}, false
}

// RulesFor returns the catalogue for an intensity in registration order.
func RulesFor(intensity OfferingIntensity) []AwardRule {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]AwardRule, len(ruleRegistry[intensity]))
	copy(out, ruleRegistry[intensity])
	return out
}

// CatalogueCodes returns the award codes registered for an intensity.
func CatalogueCodes(intensity OfferingIntensity) []AwardCode {
	rules := RulesFor(intensity)
	codes := make([]AwardCode, len(rules))
	for i, r := range rules {
		codes[i] = r.Code
	}
	return codes
}
