package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentaid/assessment-engine/api"
	"github.com/studentaid/assessment-engine/engine"
	"github.com/studentaid/assessment-engine/factory"
	"github.com/studentaid/assessment-engine/metrics"
	"github.com/studentaid/assessment-engine/service"
	"github.com/studentaid/assessment-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newServer(t *testing.T) http.Handler {
	t.Helper()
	years, err := factory.NewProgramYearFactory().LoadDefaults()
	require.NoError(t, err)
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m := metrics.New()
	svc := service.NewAssessmentService(years, store, service.WithMetrics(m))
	h := api.NewHandler(svc, years, nil)
	h.Records = store
	return api.NewRouter(h, api.RouterOptions{Metrics: m, EnableReset: true})
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func partTimeInput(app engine.ApplicationID) engine.ConsolidatedAssessmentData {
	in, ok := api.ScenarioInput("cslp-outstanding")
	if !ok {
		panic("scenario missing")
	}
	in.ApplicationID = app
	in.Student.CSLPOutstandingBalance = engine.ZeroMoney()
	return in
}

// =============================================================================
// ASSESSMENTS
// =============================================================================

func TestCreateAssessment_RecordsSequence(t *testing.T) {
	srv := newServer(t)

	// GIVEN: an application assessed once
	first := do(t, srv, http.MethodPost, "/api/assessments", api.AssessmentRequest{Input: partTimeInput("app-1")})
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	// WHEN: it is assessed again
	second := do(t, srv, http.MethodPost, "/api/assessments", api.AssessmentRequest{Input: partTimeInput("app-1")})
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())

	// THEN: the second record is a reassessment with sequence 2
	rec := decode[api.AssessmentRecordDTO](t, second)
	assert.Equal(t, 2, rec.Sequence)
	assert.Equal(t, engine.TriggerReassessment, rec.Trigger)
	assert.Equal(t, true, rec.Result.Outputs["awardEligibilityCSLP"])
	assert.Equal(t, 10000.0, rec.Result.Outputs["federalAwardNetCSLPAmount"])

	history := decode[[]api.AssessmentSummaryDTO](t, do(t, srv, http.MethodGet, "/api/applications/app-1/assessments", nil))
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Sequence)
}

func TestNoticeOfAssessment(t *testing.T) {
	srv := newServer(t)

	// Not yet assessed
	missing := do(t, srv, http.MethodGet, "/api/applications/app-1/notice-of-assessment", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, api.NoticeNotPresent, decode[api.ErrorResponse](t, missing).Error)

	// After an assessment
	require.Equal(t, http.StatusCreated,
		do(t, srv, http.MethodPost, "/api/assessments", api.AssessmentRequest{Input: partTimeInput("app-1")}).Code)
	found := do(t, srv, http.MethodGet, "/api/applications/app-1/notice-of-assessment", nil)
	require.Equal(t, http.StatusOK, found.Code)
	assert.Equal(t, "app-1", decode[api.AssessmentRecordDTO](t, found).ApplicationID)
}

func TestCreateAssessment_InvalidTrigger(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodPost, "/api/assessments",
		api.AssessmentRequest{Trigger: "someday", Input: partTimeInput("app-1")})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[api.ErrorResponse](t, rec).Details, "trigger failed oneof")
}

func TestPreviewAssessment_Errors(t *testing.T) {
	srv := newServer(t)

	noYear := partTimeInput("app-1")
	noYear.ProgramYear = ""
	unknownYear := partTimeInput("app-1")
	unknownYear.ProgramYear = "1999-2000"
	noWeeks := partTimeInput("app-1")
	noWeeks.Offering.Weeks = 0

	tests := []struct {
		name    string
		body    any
		details string
	}{
		{"missing program year", noYear, "programYear failed required"},
		{"unknown program year", unknownYear, "program year not configured"},
		{"missing weeks", noWeeks, "offering.weeks"},
		{"bad intensity", map[string]any{"programYear": "2024-2025", "offeringIntensity": "sometimes"}, "offeringIntensity failed oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/assessments/preview", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode[api.ErrorResponse](t, rec).Details, tt.details)
		})
	}
}

func TestPreviewAssessment_DoesNotRecord(t *testing.T) {
	srv := newServer(t)

	rec := do(t, srv, http.MethodPost, "/api/assessments/preview", partTimeInput("app-1"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	result := decode[api.AssessmentResultDTO](t, rec)
	assert.Equal(t, engine.PartTime, result.Intensity)
	assert.Equal(t, 1000.0, result.Outputs["federalAwardBCAGAmount"])

	notice := do(t, srv, http.MethodGet, "/api/applications/app-1/notice-of-assessment", nil)
	assert.Equal(t, http.StatusNotFound, notice.Code)
}

// =============================================================================
// PROGRAM YEARS
// =============================================================================

func TestListProgramYears(t *testing.T) {
	srv := newServer(t)

	years := decode[[]api.ProgramYearDTO](t, do(t, srv, http.MethodGet, "/api/program-years", nil))

	require.NotEmpty(t, years)
	assert.Equal(t, "2024-2025", years[0].Name)
	assert.True(t, years[0].Start.Equal(engine.NewDate(2024, time.August, 1)))
}

func TestListAwards(t *testing.T) {
	srv := newServer(t)

	awards := decode[[]api.AwardRuleDTO](t, do(t, srv, http.MethodGet, "/api/program-years/2024-2025/awards", nil))
	assert.Len(t, awards, len(engine.CatalogueCodes(engine.FullTime))+len(engine.CatalogueCodes(engine.PartTime)))

	missing := do(t, srv, http.MethodGet, "/api/program-years/1999-2000/awards", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestAwardSummary_AfterAssessments(t *testing.T) {
	srv := newServer(t)
	require.Equal(t, http.StatusCreated,
		do(t, srv, http.MethodPost, "/api/assessments", api.AssessmentRequest{Input: partTimeInput("app-1")}).Code)

	sums := decode[[]sqlite.AwardSummary](t, do(t, srv, http.MethodGet, "/api/program-years/2024-2025/summary", nil))

	var found bool
	for _, s := range sums {
		if s.Code == engine.AwardBCAG {
			found = true
			assert.Equal(t, 1, s.EligibleRuns)
		}
	}
	assert.True(t, found)
}

// =============================================================================
// OPERATIONS
// =============================================================================

func TestReset_ClearsRecords(t *testing.T) {
	srv := newServer(t)
	require.Equal(t, http.StatusCreated,
		do(t, srv, http.MethodPost, "/api/assessments", api.AssessmentRequest{Input: partTimeInput("app-1")}).Code)

	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/reset", nil).Code)

	notice := do(t, srv, http.MethodGet, "/api/applications/app-1/notice-of-assessment", nil)
	assert.Equal(t, http.StatusNotFound, notice.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newServer(t)

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/healthz", nil).Code)

	do(t, srv, http.MethodPost, "/api/assessments/preview", partTimeInput("app-1"))
	rec := do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `assessments_total{intensity="partTime",outcome="assessed"} 1`)
	assert.Contains(t, rec.Body.String(), `route="/api/assessments/preview"`)
}
