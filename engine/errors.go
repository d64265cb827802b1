/*
errors.go - Centralized error types for the assessment engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The service and API layers classify these with the helpers below.

ERROR CATEGORIES:
  1. Configuration errors - Missing or malformed program-year values (fatal at startup)
  2. Input errors - Consolidated input the caller should have rejected
  3. Store errors - Assessment record persistence failures

USAGE:
    if errors.Is(err, engine.ErrAssessmentNotFound) {
        // "Notice of assessment data is not present"
    }

SEE ALSO:
  - config.go: Returns ConfigError from Validate
  - store.go: Uses the store sentinels
  - api/handlers.go: Maps errors to HTTP status codes
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidConfig is wrapped by every ConfigError.
	ErrInvalidConfig = errors.New("invalid program year configuration")

	// ErrProgramYearNotConfigured is returned when no configuration exists for
	// the requested program year.
	ErrProgramYearNotConfigured = errors.New("program year not configured")

	// ErrUnknownIntensity is returned for an offering intensity other than
	// full-time or part-time.
	ErrUnknownIntensity = errors.New("unknown offering intensity")

	// ErrInvalidInput is wrapped by every InputError.
	ErrInvalidInput = errors.New("invalid assessment input")

	// ErrAssessmentNotFound is returned when an application has no persisted assessment.
	ErrAssessmentNotFound = errors.New("notice of assessment data is not present")

	// ErrConcurrentAssessment is returned when two reassessments of the same
	// application race for the same sequence number.
	ErrConcurrentAssessment = errors.New("concurrent assessment for application")

	// ErrDuplicateAssessment is returned when a record id is stored twice.
	ErrDuplicateAssessment = errors.New("duplicate assessment record")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ConfigError describes a required program-year value that is missing or malformed.
type ConfigError struct {
	ProgramYear string
	Intensity   OfferingIntensity
	Award       AwardCode
	Field       string
	Reason      string
}

func (e *ConfigError) Error() string {
	where := e.ProgramYear
	if e.Intensity != "" {
		where += "/" + string(e.Intensity)
	}
	if e.Award != "" {
		where += "/" + string(e.Award)
	}
	return fmt.Sprintf("invalid program year configuration %s: %s %s", where, e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// InputError describes a consolidated input field the orchestrator failed to populate.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid assessment input: %s %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentAssessment)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnknownIntensity) ||
		errors.Is(err, ErrProgramYearNotConfigured)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssessmentNotFound)
}
