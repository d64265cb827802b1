// Package store provides AssessmentStore implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/studentaid/assessment-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	records map[engine.ApplicationID][]engine.AssessmentRecord
	ids     map[uuid.UUID]bool
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[engine.ApplicationID][]engine.AssessmentRecord),
		ids:     make(map[uuid.UUID]bool),
	}
}

// Append adds a record. Append-only.
func (m *Memory) Append(_ context.Context, rec engine.AssessmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ids[rec.ID] {
		return fmt.Errorf("%w: %s", engine.ErrDuplicateAssessment, rec.ID)
	}
	recs := m.records[rec.ApplicationID]
	for _, existing := range recs {
		if existing.Sequence == rec.Sequence {
			return fmt.Errorf("%w: %s sequence %d", engine.ErrConcurrentAssessment, rec.ApplicationID, rec.Sequence)
		}
	}

	// Records arrive in sequence order; keep the slice sorted anyway.
	i := len(recs)
	for i > 0 && recs[i-1].Sequence > rec.Sequence {
		i--
	}
	recs = append(recs, engine.AssessmentRecord{})
	copy(recs[i+1:], recs[i:])
	recs[i] = rec
	m.records[rec.ApplicationID] = recs
	m.ids[rec.ID] = true
	return nil
}

func (m *Memory) Latest(_ context.Context, applicationID engine.ApplicationID) (engine.AssessmentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.records[applicationID]
	if len(recs) == 0 {
		return engine.AssessmentRecord{}, engine.ErrAssessmentNotFound
	}
	return recs[len(recs)-1], nil
}

func (m *Memory) History(_ context.Context, applicationID engine.ApplicationID) ([]engine.AssessmentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.AssessmentRecord, len(m.records[applicationID]))
	copy(result, m.records[applicationID])
	return result, nil
}

var _ engine.AssessmentStore = (*Memory)(nil)
