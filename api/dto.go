/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. The consolidated input
  itself is accepted in its engine shape; the DTOs here wrap it and shape
  the responses.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Assessment:
    AssessmentRequest, AssessmentResultDTO, AssessmentRecordDTO

  Program years:
    ProgramYearDTO, AwardRuleDTO

  Scenarios:
    ScenarioDTO

VALIDATION:
  inputEnvelope carries validator tags for the top-level input fields.
  Deeper checks belong to engine.ConsolidatedAssessmentData.CheckRequired.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/input.go: ConsolidatedAssessmentData
*/
package api

import (
	"time"

	"github.com/studentaid/assessment-engine/engine"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// AssessmentRequest runs and records an assessment.
type AssessmentRequest struct {
	Trigger engine.AssessmentTrigger          `json:"trigger,omitempty" validate:"omitempty,oneof=originalAssessment appealApproval scholasticStandingChange reassessment"`
	Input   engine.ConsolidatedAssessmentData `json:"input"`
}

// inputEnvelope is decoded from the same body as the full input so the
// top-level fields can be checked before the pipeline runs.
type inputEnvelope struct {
	ApplicationID     string `json:"applicationId" validate:"omitempty,max=64"`
	ProgramYear       string `json:"programYear" validate:"required,len=9"`
	OfferingIntensity string `json:"offeringIntensity" validate:"required,oneof=fullTime partTime"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// AssessmentResultDTO is a result plus its flattened output variables.
type AssessmentResultDTO struct {
	engine.AssessmentResult
	TotalFederal    engine.Money   `json:"totalFederal"`
	TotalProvincial engine.Money   `json:"totalProvincial"`
	Outputs         map[string]any `json:"outputs"`
}

// AssessmentRecordDTO is a recorded assessment.
type AssessmentRecordDTO struct {
	ID            string                   `json:"id"`
	ApplicationID string                   `json:"applicationId"`
	Sequence      int                      `json:"sequence"`
	Trigger       engine.AssessmentTrigger `json:"trigger"`
	InputDigest   string                   `json:"inputDigest"`
	CreatedAt     string                   `json:"createdAt"`
	Result        AssessmentResultDTO      `json:"result"`
}

// AssessmentSummaryDTO is one line of an application's history.
type AssessmentSummaryDTO struct {
	ID              string                   `json:"id"`
	Sequence        int                      `json:"sequence"`
	Trigger         engine.AssessmentTrigger `json:"trigger"`
	ProgramYear     string                   `json:"programYear"`
	Intensity       engine.OfferingIntensity `json:"offeringIntensity"`
	TotalNeed       engine.Money             `json:"totalAssessmentNeed"`
	TotalFederal    engine.Money             `json:"totalFederal"`
	TotalProvincial engine.Money             `json:"totalProvincial"`
	EligibleAwards  int                      `json:"eligibleAwards"`
	CreatedAt       string                   `json:"createdAt"`
}

// ProgramYearDTO describes a configured program year.
type ProgramYearDTO struct {
	Name  string      `json:"name"`
	Start engine.Date `json:"start"`
	End   engine.Date `json:"end"`
}

// AwardRuleDTO describes one award of the catalogue for a program year.
type AwardRuleDTO struct {
	Code        engine.AwardCode         `json:"code"`
	Intensity   engine.OfferingIntensity `json:"offeringIntensity"`
	Kind        engine.AwardKind         `json:"kind"`
	Description string                   `json:"description"`
	Federal     bool                     `json:"federal"`
	Provincial  bool                     `json:"provincial"`
	Conditions  []string                 `json:"conditions"`
	Formula     string                   `json:"formula"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"` // "fullTime" or "partTime"
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toResultDTO(r engine.AssessmentResult) AssessmentResultDTO {
	return AssessmentResultDTO{
		AssessmentResult: r,
		TotalFederal:     r.TotalFederal(),
		TotalProvincial:  r.TotalProvincial(),
		Outputs:          r.Outputs(),
	}
}

func toRecordDTO(rec engine.AssessmentRecord) AssessmentRecordDTO {
	return AssessmentRecordDTO{
		ID:            rec.ID.String(),
		ApplicationID: string(rec.ApplicationID),
		Sequence:      rec.Sequence,
		Trigger:       rec.Trigger,
		InputDigest:   rec.InputDigest,
		CreatedAt:     rec.CreatedAt.Format(time.RFC3339),
		Result:        toResultDTO(rec.Result),
	}
}

func toSummaryDTOs(recs []engine.AssessmentRecord) []AssessmentSummaryDTO {
	dtos := make([]AssessmentSummaryDTO, len(recs))
	for i, rec := range recs {
		dtos[i] = AssessmentSummaryDTO{
			ID:              rec.ID.String(),
			Sequence:        rec.Sequence,
			Trigger:         rec.Trigger,
			ProgramYear:     rec.ProgramYear,
			Intensity:       rec.Intensity,
			TotalNeed:       rec.Result.Derived.TotalAssessmentNeed,
			TotalFederal:    rec.Result.TotalFederal(),
			TotalProvincial: rec.Result.TotalProvincial(),
			EligibleAwards:  rec.Result.EligibleCount(),
			CreatedAt:       rec.CreatedAt.Format(time.RFC3339),
		}
	}
	return dtos
}

func toAwardRuleDTO(r engine.AwardRule) AwardRuleDTO {
	conditions := make([]string, len(r.Conditions))
	for i, c := range r.Conditions {
		conditions[i] = c.Name
	}
	return AwardRuleDTO{
		Code:        r.Code,
		Intensity:   r.Intensity,
		Kind:        r.Kind,
		Description: r.Description,
		Federal:     r.Components.Has(engine.Federal),
		Provincial:  r.Components.Has(engine.Provincial),
		Conditions:  conditions,
		Formula:     r.Gross.Name,
	}
}
