/*
store.go - Persistence interface for assessment records

PURPOSE:
  Defines the interface between the assessment service and the database.
  Assessment records are append-only: a reassessment writes a new record
  with the next sequence number and the prior records stay for history
  and audit display.

APPEND-ONLY CONTRACT:
  - Append(): the only write operation
  - NO Update() or Delete() methods exist

SEQUENCING:
  Each record carries Sequence = previous latest + 1 for its application.
  Two reassessments racing on the same application compute the same
  sequence; the store accepts the first and rejects the second with
  ErrConcurrentAssessment. This is the single-active-assessment guard.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - engine/store/memory.go: In-memory for testing

SEE ALSO:
  - service/assessment_service.go: Computes sequences and retries nothing
*/
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ASSESSMENT RECORD
// =============================================================================

type AssessmentRecord struct {
	ID            uuid.UUID                  `json:"id"`
	ApplicationID ApplicationID              `json:"applicationId"`
	Sequence      int                        `json:"sequence"`
	Trigger       AssessmentTrigger          `json:"trigger"`
	ProgramYear   string                     `json:"programYear"`
	Intensity     OfferingIntensity          `json:"offeringIntensity"`
	InputDigest   string                     `json:"inputDigest"`
	Input         ConsolidatedAssessmentData `json:"input"`
	Result        AssessmentResult           `json:"result"`
	CreatedAt     time.Time                  `json:"createdAt"`
}

// =============================================================================
// STORE - Interface for assessment persistence (append-only)
// =============================================================================

type AssessmentStore interface {
	// Append persists a record. Returns ErrConcurrentAssessment if the
	// application already has a record with this sequence, and
	// ErrDuplicateAssessment if the record id exists.
	Append(ctx context.Context, rec AssessmentRecord) error

	// Latest returns the highest-sequence record, or ErrAssessmentNotFound.
	Latest(ctx context.Context, applicationID ApplicationID) (AssessmentRecord, error)

	// History returns every record of an application ordered by sequence.
	History(ctx context.Context, applicationID ApplicationID) ([]AssessmentRecord, error)
}

// =============================================================================
// INPUT DIGEST
// =============================================================================

// InputDigest is a stable hash of the program year and the input, used to
// recognise a repeated assessment of identical data.
func InputDigest(in ConsolidatedAssessmentData) (string, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(append([]byte(in.ProgramYear+"|"), payload...))
	return hex.EncodeToString(sum[:]), nil
}
