package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studentaid/assessment-engine/engine"
	"github.com/studentaid/assessment-engine/engine/store"
)

func record(app engine.ApplicationID, seq int) engine.AssessmentRecord {
	return engine.AssessmentRecord{
		ID:            uuid.New(),
		ApplicationID: app,
		Sequence:      seq,
		Trigger:       engine.TriggerOriginal,
		ProgramYear:   "2024-2025",
		Intensity:     engine.PartTime,
	}
}

func TestMemory_AppendAndLatest(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()

	require.NoError(t, s.Append(ctx, record("app-1", 1)))
	require.NoError(t, s.Append(ctx, record("app-1", 2)))

	latest, err := s.Latest(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Sequence)

	history, err := s.History(ctx, "app-1")
	require.NoError(t, err)
	assert.Len(t, history, 2)
	assert.Equal(t, 1, history[0].Sequence)
}

func TestMemory_SameSequence_ConcurrentAssessment(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	require.NoError(t, s.Append(ctx, record("app-1", 1)))

	err := s.Append(ctx, record("app-1", 1))

	assert.ErrorIs(t, err, engine.ErrConcurrentAssessment)
	assert.True(t, engine.IsRetryable(err))
}

func TestMemory_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	rec := record("app-1", 1)
	require.NoError(t, s.Append(ctx, rec))

	rec.Sequence = 2
	assert.ErrorIs(t, s.Append(ctx, rec), engine.ErrDuplicateAssessment)
}

func TestMemory_Latest_NotFound(t *testing.T) {
	_, err := store.NewMemory().Latest(context.Background(), "missing")

	assert.ErrorIs(t, err, engine.ErrAssessmentNotFound)
	assert.True(t, engine.IsNotFound(err))
}
