/*
Package sqlite provides a SQLite-backed implementation of engine.AssessmentStore.

PURPOSE:
  Persists assessment records: the consolidated input, the aggregated result
  and the run metadata. Reassessments append a new row; prior rows remain for
  history and audit display.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the assessments table
  - No DELETE statements on the assessments table (Reset is for demos only)

KEY TABLES:
  assessments:       One row per assessment run
  assessment_awards: One row per award code of each run (eligibility and net amounts)

INDEXES:
  - idx_unique_application_sequence: One record per (application, sequence).
    Two reassessments racing on the same application collide here and the
    loser gets engine.ErrConcurrentAssessment.
  - idx_assessments_application: History lookups
  - idx_awards_code: Per-award reporting

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's single writer.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/assessments.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - engine/store.go: Interface definition
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/studentaid/assessment-engine/engine"
)

// Store implements engine.AssessmentStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection for health probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Assessment runs (append-only)
	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		application_id TEXT NOT NULL,
		sequence INTEGER NOT NULL,
		trigger TEXT NOT NULL,
		program_year TEXT NOT NULL,
		intensity TEXT NOT NULL,
		input_digest TEXT NOT NULL,
		input_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		family_size INTEGER NOT NULL,
		total_family_income TEXT NOT NULL,
		total_assessment_need TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_application_sequence
		ON assessments(application_id, sequence);
	CREATE INDEX IF NOT EXISTS idx_assessments_application
		ON assessments(application_id);
	CREATE INDEX IF NOT EXISTS idx_assessments_digest
		ON assessments(input_digest);

	-- Per-award outcome of each run
	CREATE TABLE IF NOT EXISTS assessment_awards (
		assessment_id TEXT NOT NULL REFERENCES assessments(id),
		award_code TEXT NOT NULL,
		eligible INTEGER NOT NULL,
		federal_net TEXT NOT NULL,
		provincial_net TEXT NOT NULL,
		PRIMARY KEY (assessment_id, award_code)
	);

	CREATE INDEX IF NOT EXISTS idx_awards_code
		ON assessment_awards(award_code);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ASSESSMENT STORE (engine.AssessmentStore interface)
// =============================================================================

// Append writes the record and its award rows atomically.
func (s *Store) Append(ctx context.Context, rec engine.AssessmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inputJSON, err := json.Marshal(rec.Input)
	if err != nil {
		return fmt.Errorf("failed to encode input: %w", err)
	}
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO assessments
		(id, application_id, sequence, trigger, program_year, intensity, input_digest,
		 input_json, result_json, family_size, total_family_income, total_assessment_need, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID.String(),
		rec.ApplicationID,
		rec.Sequence,
		rec.Trigger,
		rec.ProgramYear,
		rec.Intensity,
		rec.InputDigest,
		string(inputJSON),
		string(resultJSON),
		rec.Result.Derived.FamilySize,
		rec.Result.Derived.TotalFamilyIncome.Value.String(),
		rec.Result.Derived.TotalAssessmentNeed.Value.String(),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			// Distinguish a sequence race from a replayed record id
			if isSequenceUniquenessError(err) {
				return fmt.Errorf("%w: %s sequence %d", engine.ErrConcurrentAssessment, rec.ApplicationID, rec.Sequence)
			}
			return fmt.Errorf("%w: %s", engine.ErrDuplicateAssessment, rec.ID)
		}
		return fmt.Errorf("failed to append assessment: %w", err)
	}

	for _, a := range rec.Result.Awards {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO assessment_awards (assessment_id, award_code, eligible, federal_net, provincial_net)
			VALUES (?, ?, ?, ?, ?)
		`, rec.ID.String(), a.Code, a.Eligible, a.FederalNetAmount.Value.String(), a.ProvincialNetAmount.Value.String())
		if err != nil {
			return fmt.Errorf("failed to append award %s: %w", a.Code, err)
		}
	}

	return tx.Commit()
}

// Latest returns the highest-sequence record of an application.
func (s *Store) Latest(ctx context.Context, applicationID engine.ApplicationID) (engine.AssessmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	recs, err := s.queryRecords(ctx, `
		SELECT id, application_id, sequence, trigger, program_year, intensity,
		       input_digest, input_json, result_json, created_at
		FROM assessments WHERE application_id = ?
		ORDER BY sequence DESC LIMIT 1
	`, applicationID)
	if err != nil {
		return engine.AssessmentRecord{}, err
	}
	if len(recs) == 0 {
		return engine.AssessmentRecord{}, engine.ErrAssessmentNotFound
	}
	return recs[0], nil
}

// History returns every record of an application ordered by sequence.
func (s *Store) History(ctx context.Context, applicationID engine.ApplicationID) ([]engine.AssessmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRecords(ctx, `
		SELECT id, application_id, sequence, trigger, program_year, intensity,
		       input_digest, input_json, result_json, created_at
		FROM assessments WHERE application_id = ?
		ORDER BY sequence ASC
	`, applicationID)
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]engine.AssessmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	var result []engine.AssessmentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func scanRecord(rows *sql.Rows) (engine.AssessmentRecord, error) {
	var (
		rec                           engine.AssessmentRecord
		id, inputJSON, resultJSON, at string
	)
	if err := rows.Scan(&id, &rec.ApplicationID, &rec.Sequence, &rec.Trigger, &rec.ProgramYear,
		&rec.Intensity, &rec.InputDigest, &inputJSON, &resultJSON, &at); err != nil {
		return rec, fmt.Errorf("failed to scan assessment: %w", err)
	}

	var err error
	if rec.ID, err = uuid.Parse(id); err != nil {
		return rec, fmt.Errorf("corrupt assessment id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(inputJSON), &rec.Input); err != nil {
		return rec, fmt.Errorf("failed to decode input of %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return rec, fmt.Errorf("failed to decode result of %s: %w", id, err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, at)
	return rec, nil
}

// =============================================================================
// REPORTING
// =============================================================================

// AwardSummary counts, for one program year, how many runs each award code
// was eligible in and the provincial and federal net totals paid. Only the
// latest run of each application is counted.
type AwardSummary struct {
	Code          engine.AwardCode `json:"awardCode"`
	EligibleRuns  int              `json:"eligibleRuns"`
	FederalNet    engine.Money     `json:"federalNet"`
	ProvincialNet engine.Money     `json:"provincialNet"`
}

func (s *Store) AwardSummaries(ctx context.Context, programYear string) ([]AwardSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT aw.award_code, aw.eligible, aw.federal_net, aw.provincial_net
		FROM assessment_awards aw
		JOIN assessments a ON a.id = aw.assessment_id
		WHERE a.program_year = ?
		  AND a.sequence = (SELECT MAX(sequence) FROM assessments WHERE application_id = a.application_id)
		ORDER BY aw.award_code
	`, programYear)
	if err != nil {
		return nil, fmt.Errorf("failed to query award summaries: %w", err)
	}
	defer rows.Close()

	byCode := make(map[engine.AwardCode]*AwardSummary)
	var order []engine.AwardCode
	for rows.Next() {
		var (
			code                   engine.AwardCode
			eligible               bool
			federalNet, provincial string
		)
		if err := rows.Scan(&code, &eligible, &federalNet, &provincial); err != nil {
			return nil, fmt.Errorf("failed to scan award summary: %w", err)
		}
		sum, ok := byCode[code]
		if !ok {
			sum = &AwardSummary{Code: code, FederalNet: engine.ZeroMoney(), ProvincialNet: engine.ZeroMoney()}
			byCode[code] = sum
			order = append(order, code)
		}
		if eligible {
			sum.EligibleRuns++
		}
		sum.FederalNet = sum.FederalNet.Add(engine.MustParseMoney(federalNet))
		sum.ProvincialNet = sum.ProvincialNet.Add(engine.MustParseMoney(provincial))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]AwardSummary, 0, len(order))
	for _, code := range order {
		result = append(result, *byCode[code])
	}
	return result, nil
}

// Reset clears all data (for demo purposes only).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"assessment_awards", "assessments"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

var _ engine.AssessmentStore = (*Store)(nil)

// Helper functions

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isSequenceUniquenessError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "assessments.sequence")
}

// IsConflict reports whether err is a sequence race the caller may retry.
func IsConflict(err error) bool {
	return errors.Is(err, engine.ErrConcurrentAssessment)
}
