/*
handlers.go - HTTP API handlers for the assessment engine

PURPOSE:
  Exposes the assessment service via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the service.

ENDPOINTS:
  Assessments:
    POST   /api/assessments                            Assess and record
    POST   /api/assessments/preview                    Assess only

  Applications:
    GET    /api/applications/{id}/assessments          Assessment history
    GET    /api/applications/{id}/notice-of-assessment Latest assessment

  Program years:
    GET    /api/program-years                          Configured program years
    GET    /api/program-years/{name}/awards            Award catalogue
    GET    /api/program-years/{name}/summary           Award totals of latest runs

  Scenarios:
    GET    /api/scenarios                              List demo scenarios
    POST   /api/scenarios/{id}/assess                  Preview a demo scenario

  Operations:
    POST   /api/reset                                  Clear recorded assessments (dev only)
    GET    /healthz                                    Liveness and store ping

REQUEST FLOW:
  1. Decode and validate the request body
  2. Call the assessment service
  3. Serialize response
  4. Map errors to status codes

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid input, unknown intensity, program year not configured
  - 404: No notice of assessment, unknown program year or scenario
  - 409: Concurrent reassessment of the same application
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario inputs
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/studentaid/assessment-engine/engine"
	"github.com/studentaid/assessment-engine/factory"
	"github.com/studentaid/assessment-engine/service"
	"github.com/studentaid/assessment-engine/store/sqlite"
)

const maxBodyBytes = 1 << 20

// NoticeNotPresent is the message returned when an application has no
// recorded assessment.
const NoticeNotPresent = "Notice of assessment data is not present"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// RecordStore is the optional reporting and maintenance side of the store.
type RecordStore interface {
	AwardSummaries(ctx context.Context, programYear string) ([]sqlite.AwardSummary, error)
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service      *service.AssessmentService
	ProgramYears *factory.Registry

	// Records is nil when the store has no reporting side.
	Records RecordStore

	// OnReset runs after a reset, e.g. to flush the result cache.
	OnReset func(ctx context.Context) error

	logger   *zap.Logger
	validate *validator.Validate
}

// NewHandler creates a new handler.
func NewHandler(svc *service.AssessmentService, years *factory.Registry, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Service:      svc,
		ProgramYears: years,
		logger:       logger,
		validate:     validator.New(),
	}
}

// =============================================================================
// ASSESSMENT HANDLERS
// =============================================================================

// CreateAssessment assesses the input and records it as the next assessment
// of its application.
func (h *Handler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var req AssessmentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", validationDetails(err))
		return
	}
	var wrapper struct {
		Input json.RawMessage `json:"input"`
	}
	_ = json.Unmarshal(body, &wrapper)
	if err := h.validateEnvelope(wrapper.Input); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	rec, err := h.Service.Assess(r.Context(), service.AssessCommand{
		ApplicationID: req.Input.ApplicationID,
		Trigger:       req.Trigger,
		Input:         req.Input,
	})
	if err != nil {
		h.writeServiceError(w, "Failed to assess application", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRecordDTO(rec))
}

// PreviewAssessment assesses the input without recording it.
func (h *Handler) PreviewAssessment(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validateEnvelope(body); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	var in engine.ConsolidatedAssessmentData
	if err := json.Unmarshal(body, &in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	result, err := h.Service.Preview(r.Context(), in)
	if err != nil {
		h.writeServiceError(w, "Failed to assess application", err)
		return
	}

	writeJSON(w, http.StatusOK, toResultDTO(result))
}

// =============================================================================
// APPLICATION HANDLERS
// =============================================================================

// ListAssessments returns the assessment history of an application.
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	id := engine.ApplicationID(chi.URLParam(r, "id"))

	recs, err := h.Service.History(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to list assessments", err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryDTOs(recs))
}

// GetNoticeOfAssessment returns the latest recorded assessment.
func (h *Handler) GetNoticeOfAssessment(w http.ResponseWriter, r *http.Request) {
	id := engine.ApplicationID(chi.URLParam(r, "id"))

	rec, err := h.Service.NoticeOfAssessment(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "Failed to load notice of assessment", err)
		return
	}

	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// =============================================================================
// PROGRAM YEAR HANDLERS
// =============================================================================

// ListProgramYears returns all configured program years.
func (h *Handler) ListProgramYears(w http.ResponseWriter, r *http.Request) {
	names := h.ProgramYears.Names()
	dtos := make([]ProgramYearDTO, 0, len(names))
	for _, name := range names {
		cfg, err := h.ProgramYears.ProgramYear(name)
		if err != nil {
			continue
		}
		dtos = append(dtos, ProgramYearDTO{
			Name:  cfg.Name(),
			Start: cfg.ProgramYear.Start,
			End:   cfg.ProgramYear.End,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListAwards returns the award catalogue of both intensities for a program year.
func (h *Handler) ListAwards(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, err := h.ProgramYears.ProgramYear(name); err != nil {
		writeError(w, http.StatusNotFound, "Program year not configured", err)
		return
	}

	var dtos []AwardRuleDTO
	for _, intensity := range engine.Intensities {
		for _, rule := range engine.RulesFor(intensity) {
			dtos = append(dtos, toAwardRuleDTO(rule))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetAwardSummary returns per-award totals of the latest assessment of each
// application in a program year.
func (h *Handler) GetAwardSummary(w http.ResponseWriter, r *http.Request) {
	if h.Records == nil {
		writeError(w, http.StatusNotImplemented, "Reporting is not available for this store", nil)
		return
	}
	name := chi.URLParam(r, "name")

	sums, err := h.Records.AwardSummaries(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to summarize awards", err)
		return
	}
	if sums == nil {
		sums = []sqlite.AwardSummary{}
	}
	writeJSON(w, http.StatusOK, sums)
}

// =============================================================================
// OPERATIONS
// =============================================================================

// ResetDatabase clears all recorded assessments.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if h.Records == nil {
		writeError(w, http.StatusNotImplemented, "Reset is not available for this store", nil)
		return
	}
	if err := h.Records.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if h.OnReset != nil {
		if err := h.OnReset(r.Context()); err != nil {
			h.logger.Warn("post-reset hook failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health reports liveness and, when available, store reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.Records != nil {
		if err := h.Records.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}
	return body, nil
}

func (h *Handler) validateEnvelope(raw []byte) error {
	var env inputEnvelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return err
		}
	}
	if err := h.validate.Struct(env); err != nil {
		return validationDetails(err)
	}
	return nil
}

// validationDetails names the failing fields by their JSON names.
func validationDetails(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msg := ""
	for i, fe := range verrs {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%s failed %s", jsonName(fe.Field()), fe.Tag())
	}
	return errors.New(msg)
}

func jsonName(field string) string {
	switch field {
	case "ApplicationID":
		return "applicationId"
	case "ProgramYear":
		return "programYear"
	case "OfferingIntensity":
		return "offeringIntensity"
	case "Trigger":
		return "trigger"
	}
	return field
}

// writeServiceError maps engine errors to HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, NoticeNotPresent, nil)
	case engine.IsRetryable(err):
		writeError(w, http.StatusConflict, "Application is being reassessed concurrently", err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.logger.Error(message, zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
