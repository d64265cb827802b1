package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studentaid/assessment-engine/cache"
	"github.com/studentaid/assessment-engine/engine"
	"github.com/studentaid/assessment-engine/engine/store"
	"github.com/studentaid/assessment-engine/factory"
	"github.com/studentaid/assessment-engine/metrics"
	"github.com/studentaid/assessment-engine/service"
)

func programYears(t *testing.T) *factory.Registry {
	t.Helper()
	reg, err := factory.NewProgramYearFactory().LoadDefaults()
	require.NoError(t, err)
	return reg
}

func partTimeInput(app engine.ApplicationID) engine.ConsolidatedAssessmentData {
	return engine.ConsolidatedAssessmentData{
		ApplicationID: app,
		ProgramYear:   "2024-2025",
		Intensity:     engine.PartTime,
		Student: engine.StudentData{
			TaxReturnIncome:    engine.Dollars(43000),
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
			StudyStartDate:      engine.NewDate(2024, time.September, 3),
			StudyEndDate:        engine.NewDate(2024, time.December, 20),
			Tuition:             engine.Dollars(2000),
			ProgramRelatedCosts: engine.Dollars(500),
		},
	}
}

// staleStore reports no prior assessment, as a racing reader would.
type staleStore struct{ *store.Memory }

func (staleStore) Latest(context.Context, engine.ApplicationID) (engine.AssessmentRecord, error) {
	return engine.AssessmentRecord{}, engine.ErrAssessmentNotFound
}

func TestAssess_SequencesAndTriggers(t *testing.T) {
	ctx := context.Background()
	svc := service.NewAssessmentService(programYears(t), store.NewMemory(), service.WithLogger(zap.NewNop()))

	// GIVEN: an original assessment
	first, err := svc.Assess(ctx, service.AssessCommand{Input: partTimeInput("app-1")})
	require.NoError(t, err)

	// WHEN: the application is reassessed after an appeal
	appeal := partTimeInput("app-1")
	appeal.Appeals.StudentIncome = &engine.StudentIncomeAppeal{TaxReturnIncome: engine.Dollars(30000)}
	second, err := svc.Assess(ctx, service.AssessCommand{Input: appeal, Trigger: engine.TriggerAppealApproval})
	require.NoError(t, err)

	// THEN: records are numbered and the notice shows the latest
	assert.Equal(t, 1, first.Sequence)
	assert.Equal(t, engine.TriggerOriginal, first.Trigger)
	assert.Equal(t, 2, second.Sequence)
	assert.Equal(t, engine.TriggerAppealApproval, second.Trigger)
	assert.NotEqual(t, first.InputDigest, second.InputDigest)

	notice, err := svc.NoticeOfAssessment(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, notice.ID)

	history, err := svc.History(ctx, "app-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestAssess_DefaultTriggerForLaterRuns(t *testing.T) {
	ctx := context.Background()
	svc := service.NewAssessmentService(programYears(t), store.NewMemory())

	_, err := svc.Assess(ctx, service.AssessCommand{Input: partTimeInput("app-1")})
	require.NoError(t, err)
	rec, err := svc.Assess(ctx, service.AssessCommand{Input: partTimeInput("app-1")})
	require.NoError(t, err)

	assert.Equal(t, engine.TriggerReassessment, rec.Trigger)
}

func TestNoticeOfAssessment_NotPresent(t *testing.T) {
	svc := service.NewAssessmentService(programYears(t), store.NewMemory())

	_, err := svc.NoticeOfAssessment(context.Background(), "never-assessed")

	assert.ErrorIs(t, err, engine.ErrAssessmentNotFound)
	assert.True(t, engine.IsNotFound(err))
}

func TestPreview_DoesNotPersist(t *testing.T) {
	ctx := context.Background()
	svc := service.NewAssessmentService(programYears(t), store.NewMemory())

	result, err := svc.Preview(ctx, partTimeInput("app-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, result.Awards)

	_, err = svc.NoticeOfAssessment(ctx, "app-1")
	assert.ErrorIs(t, err, engine.ErrAssessmentNotFound)
}

func TestAssess_ValidationErrors(t *testing.T) {
	svc := service.NewAssessmentService(programYears(t), store.NewMemory())

	tests := []struct {
		name  string
		cmd   service.AssessCommand
		field string
	}{
		{"missing application id", service.AssessCommand{Input: partTimeInput("")}, "applicationId"},
		{"unknown trigger", service.AssessCommand{Input: partTimeInput("app-1"), Trigger: "whenever"}, "trigger"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Assess(context.Background(), tt.cmd)

			var ie *engine.InputError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, tt.field, ie.Field)
			assert.True(t, engine.IsClientError(err))
		})
	}
}

func TestAssess_UnknownProgramYear_Rejected(t *testing.T) {
	m := metrics.New()
	svc := service.NewAssessmentService(programYears(t), store.NewMemory(), service.WithMetrics(m))
	in := partTimeInput("app-1")
	in.ProgramYear = "1999-2000"

	_, err := svc.Assess(context.Background(), service.AssessCommand{Input: in})

	assert.ErrorIs(t, err, engine.ErrProgramYearNotConfigured)
	count, err := testutil.GatherAndCount(m.Registry(), "assessments_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAssess_ConcurrentReassessment_Conflicts(t *testing.T) {
	ctx := context.Background()
	// GIVEN: a store whose latest-read is stale, so both runs pick sequence 1
	svc := service.NewAssessmentService(programYears(t), staleStore{store.NewMemory()})

	_, err := svc.Assess(ctx, service.AssessCommand{Input: partTimeInput("app-1")})
	require.NoError(t, err)

	// WHEN: a second run races on the same sequence
	_, err = svc.Assess(ctx, service.AssessCommand{Input: partTimeInput("app-1")})

	// THEN: it is rejected and retryable
	assert.ErrorIs(t, err, engine.ErrConcurrentAssessment)
	assert.True(t, engine.IsRetryable(err))
}

func TestPreview_UsesResultCache(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	m := metrics.New()
	svc := service.NewAssessmentService(programYears(t), store.NewMemory(),
		service.WithCache(cache.NewResultCache(client, time.Minute, nil)),
		service.WithMetrics(m))

	in := partTimeInput("app-1")
	first, err := svc.Preview(ctx, in)
	require.NoError(t, err)

	digest, err := engine.InputDigest(in)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.Key(digest)))

	second, err := svc.Preview(ctx, in)
	require.NoError(t, err)

	// One miss then one hit
	count, err := testutil.GatherAndCount(m.Registry(), "result_cache_lookups_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, first.Codes(), second.Codes())
	assert.True(t, first.TotalProvincial().Equal(second.TotalProvincial()))
}
