package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentaid/assessment-engine/engine"
	"github.com/studentaid/assessment-engine/factory"
	"github.com/studentaid/assessment-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
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

// assessed builds a record from a real assessment run.
func assessed(t *testing.T, app engine.ApplicationID, seq int) engine.AssessmentRecord {
	t.Helper()
	reg, err := factory.NewProgramYearFactory().LoadDefaults()
	require.NoError(t, err)

	in := partTimeInput(app)
	result, err := engine.NewAssessor(reg).Assess(in)
	require.NoError(t, err)
	digest, err := engine.InputDigest(in)
	require.NoError(t, err)

	return engine.AssessmentRecord{
		ID:            uuid.New(),
		ApplicationID: app,
		Sequence:      seq,
		Trigger:       engine.TriggerOriginal,
		ProgramYear:   in.ProgramYear,
		Intensity:     in.Intensity,
		InputDigest:   digest,
		Input:         in,
		Result:        result,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestStore_AppendAndLatest(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// GIVEN: an original assessment and one reassessment
	first := assessed(t, "app-1", 1)
	second := assessed(t, "app-1", 2)
	second.Trigger = engine.TriggerReassessment
	require.NoError(t, s.Append(ctx, first))
	require.NoError(t, s.Append(ctx, second))

	// WHEN: reading the latest
	latest, err := s.Latest(ctx, "app-1")

	// THEN: the reassessment is returned with its result intact
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, 2, latest.Sequence)
	assert.Equal(t, engine.TriggerReassessment, latest.Trigger)
	assert.Equal(t, second.InputDigest, latest.InputDigest)
	assert.True(t, latest.Result.Derived.TotalAssessmentNeed.Equal(second.Result.Derived.TotalAssessmentNeed))
	assert.Equal(t, second.Result.Codes(), latest.Result.Codes())

	bcag, ok := latest.Result.Award(engine.AwardBCAG)
	require.True(t, ok)
	assert.True(t, bcag.Eligible)
	assert.True(t, bcag.ProvincialNetAmount.Equal(engine.Dollars(1000)))
}

func TestStore_History_OrderedBySequence(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Append(ctx, assessed(t, "app-1", 2)))
	require.NoError(t, s.Append(ctx, assessed(t, "app-1", 1)))
	require.NoError(t, s.Append(ctx, assessed(t, "app-2", 1)))

	history, err := s.History(ctx, "app-1")

	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Sequence)
	assert.Equal(t, 2, history[1].Sequence)
}

func TestStore_SameSequence_ConcurrentAssessment(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Append(ctx, assessed(t, "app-1", 1)))

	err := s.Append(ctx, assessed(t, "app-1", 1))

	assert.ErrorIs(t, err, engine.ErrConcurrentAssessment)
	assert.True(t, sqlite.IsConflict(err))

	// The losing write left nothing behind
	history, err := s.History(ctx, "app-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestStore_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	rec := assessed(t, "app-1", 1)
	require.NoError(t, s.Append(ctx, rec))

	rec.Sequence = 2
	err := s.Append(ctx, rec)

	assert.ErrorIs(t, err, engine.ErrDuplicateAssessment)
	assert.False(t, sqlite.IsConflict(err))
}

func TestStore_Latest_NotFound(t *testing.T) {
	s := newStore(t)

	_, err := s.Latest(context.Background(), "missing")

	assert.ErrorIs(t, err, engine.ErrAssessmentNotFound)
}

func TestStore_AwardSummaries_CountLatestRunOnly(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	// GIVEN: app-1 assessed twice and app-2 once
	require.NoError(t, s.Append(ctx, assessed(t, "app-1", 1)))
	require.NoError(t, s.Append(ctx, assessed(t, "app-1", 2)))
	require.NoError(t, s.Append(ctx, assessed(t, "app-2", 1)))

	sums, err := s.AwardSummaries(ctx, "2024-2025")
	require.NoError(t, err)

	// THEN: BCAG counted once per application
	var bcag *sqlite.AwardSummary
	for i := range sums {
		if sums[i].Code == engine.AwardBCAG {
			bcag = &sums[i]
		}
	}
	require.NotNil(t, bcag)
	assert.Equal(t, 2, bcag.EligibleRuns)
	assert.True(t, bcag.ProvincialNet.Equal(engine.Dollars(2000)))
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Append(ctx, assessed(t, "app-1", 1)))

	require.NoError(t, s.Reset(ctx))

	_, err := s.Latest(ctx, "app-1")
	assert.ErrorIs(t, err, engine.ErrAssessmentNotFound)
}
