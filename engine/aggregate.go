package engine

import "fmt"

// =============================================================================
// PER-AWARD RESULTS
// =============================================================================

type EligibilityResult struct {
	Code     AwardCode `json:"code"`
	Eligible bool      `json:"eligible"`
	// Failed names the conditions that did not hold, in rule order.
	Failed []string `json:"failed,omitempty"`
}

type AmountResult struct {
	Code            AwardCode `json:"code"`
	FederalGross    Money     `json:"federalGross"`
	ProvincialGross Money     `json:"provincialGross"`
	FederalNet      Money     `json:"federalNet"`
	ProvincialNet   Money     `json:"provincialNet"`
}

// AwardResult is the merged eligibility and amounts for one award code.
type AwardResult struct {
	Code                  AwardCode `json:"awardCode"`
	Kind                  AwardKind `json:"kind"`
	Eligible              bool      `json:"eligible"`
	FailedConditions      []string  `json:"failedConditions,omitempty"`
	GrossAmount           Money     `json:"grossAmount"`
	FederalGrossAmount    Money     `json:"federalGrossAmount"`
	ProvincialGrossAmount Money     `json:"provincialGrossAmount"`
	FederalNetAmount      Money     `json:"federalNetAmount"`
	ProvincialNetAmount   Money     `json:"provincialNetAmount"`
}

// =============================================================================
// ASSESSMENT RESULT
// =============================================================================

// AssessmentResult is the immutable output of one assessment run.
// Awards holds every rule in the catalogue, in catalogue order.
type AssessmentResult struct {
	ApplicationID  ApplicationID           `json:"applicationId"`
	ProgramYear    string                  `json:"programYear"`
	Intensity      OfferingIntensity       `json:"offeringIntensity"`
	AssessmentDate Date                    `json:"assessmentDate"`
	Derived        DerivedAssessmentValues `json:"derived"`
	Awards         []AwardResult           `json:"awards"`
}

// Award returns the result for one code.
func (r AssessmentResult) Award(code AwardCode) (AwardResult, bool) {
	for _, a := range r.Awards {
		if a.Code == code {
			return a, true
		}
	}
	return AwardResult{}, false
}

func (r AssessmentResult) Codes() []AwardCode {
	codes := make([]AwardCode, len(r.Awards))
	for i, a := range r.Awards {
		codes[i] = a.Code
	}
	return codes
}

func (r AssessmentResult) TotalFederal() Money {
	total := ZeroMoney()
	for _, a := range r.Awards {
		total = total.Add(a.FederalNetAmount)
	}
	return total
}

func (r AssessmentResult) TotalProvincial() Money {
	total := ZeroMoney()
	for _, a := range r.Awards {
		total = total.Add(a.ProvincialNetAmount)
	}
	return total
}

// EligibleCount is the number of awards the student qualified for.
func (r AssessmentResult) EligibleCount() int {
	n := 0
	for _, a := range r.Awards {
		if a.Eligible {
			n++
		}
	}
	return n
}

// Outputs flattens the result into the variable names downstream consumers read,
// e.g. awardEligibilityCSGP, federalAwardNetCSGPAmount, calculatedDataFamilySize.
func (r AssessmentResult) Outputs() map[string]any {
	out := map[string]any{
		"calculatedDataFamilySize":          r.Derived.FamilySize,
		"calculatedDataTotalFamilyIncome":   r.Derived.TotalFamilyIncome.Float64(),
		"calculatedDataTotalAssessedCost":   r.Derived.TotalAssessedCost.Float64(),
		"calculatedDataTotalAssessmentNeed": r.Derived.TotalAssessmentNeed.Float64(),
	}
	for _, a := range r.Awards {
		out[fmt.Sprintf("awardEligibility%s", a.Code)] = a.Eligible
		out[fmt.Sprintf("federalAward%sAmount", a.Code)] = a.FederalGrossAmount.Float64()
		out[fmt.Sprintf("provincialAward%sAmount", a.Code)] = a.ProvincialGrossAmount.Float64()
		out[fmt.Sprintf("federalAwardNet%sAmount", a.Code)] = a.FederalNetAmount.Float64()
		out[fmt.Sprintf("provincialAwardNet%sAmount", a.Code)] = a.ProvincialNetAmount.Float64()
	}
	return out
}

// =============================================================================
// AGGREGATION
// =============================================================================

// Aggregate merges eligibility and amount results keyed by award code into one
// result. The catalogue fixes the order and the set of codes: a code with no
// eligibility or amount result is reported ineligible with zero amounts.
func Aggregate(
	in *ConsolidatedAssessmentData,
	derived DerivedAssessmentValues,
	catalogue []AwardRule,
	eligibility []EligibilityResult,
	amounts []AmountResult,
) AssessmentResult {
	elig := make(map[AwardCode]EligibilityResult, len(eligibility))
	for _, e := range eligibility {
		elig[e.Code] = e
	}
	amt := make(map[AwardCode]AmountResult, len(amounts))
	for _, a := range amounts {
		amt[a.Code] = a
	}

	result := AssessmentResult{
		ApplicationID:  in.ApplicationID,
		ProgramYear:    in.ProgramYear,
		Intensity:      in.Intensity,
		AssessmentDate: in.EffectiveAssessmentDate(),
		Derived:        derived,
		Awards:         make([]AwardResult, 0, len(catalogue)),
	}
	for _, rule := range catalogue {
		e := elig[rule.Code]
		a := amt[rule.Code]
		award := AwardResult{
			Code:                  rule.Code,
			Kind:                  rule.Kind,
			Eligible:              e.Eligible,
			FailedConditions:      e.Failed,
			GrossAmount:           ZeroMoney(),
			FederalGrossAmount:    ZeroMoney(),
			ProvincialGrossAmount: ZeroMoney(),
			FederalNetAmount:      ZeroMoney(),
			ProvincialNetAmount:   ZeroMoney(),
		}
		if e.Eligible {
			award.FederalGrossAmount = a.FederalGross
			award.ProvincialGrossAmount = a.ProvincialGross
			award.GrossAmount = a.FederalGross.Max(a.ProvincialGross)
			award.FederalNetAmount = a.FederalNet
			award.ProvincialNetAmount = a.ProvincialNet
		}
		result.Awards = append(result.Awards, award)
	}
	return result
}
