/*
assessment_service.go - Orchestration around the assessment pipeline

PURPOSE:
  Everything the pure engine leaves out: request validation, the result
  cache, sequence numbering, append-only persistence, metrics and logging.

FLOW:
  Preview: validate → cache → engine.Assessor.Assess → cache
  Assess:  Preview flow → Latest (sequence) → Append

CONCURRENCY:
  Two reassessments of one application may both read sequence N and try
  to append N+1. The store accepts one and the other gets
  engine.ErrConcurrentAssessment. The service reports the conflict and
  does not retry; the caller re-submits against the new latest record.

SEE ALSO:
  - engine/assessor.go: The pipeline itself
  - engine/store.go: AssessmentStore contract
  - cache/redis.go: Result cache
*/
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studentaid/assessment-engine/engine"
	"github.com/studentaid/assessment-engine/metrics"
)

type resultCache interface {
	Get(ctx context.Context, digest string) (engine.AssessmentResult, error)
	Set(ctx context.Context, digest string, result engine.AssessmentResult) error
}

// AssessCommand asks for an assessment to be run and recorded.
type AssessCommand struct {
	ApplicationID engine.ApplicationID     `validate:"required,max=64"`
	Trigger       engine.AssessmentTrigger `validate:"omitempty,oneof=originalAssessment appealApproval scholasticStandingChange reassessment"`
	Input         engine.ConsolidatedAssessmentData
}

// AssessmentService runs and records assessments.
type AssessmentService struct {
	assessor  *engine.Assessor
	store     engine.AssessmentStore
	cache     resultCache
	metrics   *metrics.Metrics
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// Option customises the service.
type Option func(*AssessmentService)

func WithCache(c resultCache) Option { return func(s *AssessmentService) { s.cache = c } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *AssessmentService) { s.metrics = m } }
func WithLogger(l *zap.Logger) Option { return func(s *AssessmentService) { s.logger = l } }
func WithClock(now func() time.Time) Option { return func(s *AssessmentService) { s.now = now } }
func WithValidator(v *validator.Validate) Option {
	return func(s *AssessmentService) { s.validator = v }
}

func NewAssessmentService(configs engine.ConfigProvider, store engine.AssessmentStore, opts ...Option) *AssessmentService {
	s := &AssessmentService{
		assessor: engine.NewAssessor(configs),
		store:    store,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = validator.New()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Preview assesses without recording anything.
func (s *AssessmentService) Preview(ctx context.Context, in engine.ConsolidatedAssessmentData) (engine.AssessmentResult, error) {
	result, _, err := s.evaluate(ctx, in)
	return result, err
}

// Assess runs the assessment and appends it as the application's next record.
func (s *AssessmentService) Assess(ctx context.Context, cmd AssessCommand) (engine.AssessmentRecord, error) {
	if cmd.ApplicationID == "" {
		cmd.ApplicationID = cmd.Input.ApplicationID
	}
	cmd.Input.ApplicationID = cmd.ApplicationID
	if err := s.validator.Struct(cmd); err != nil {
		return engine.AssessmentRecord{}, validationError(err)
	}

	result, digest, err := s.evaluate(ctx, cmd.Input)
	if err != nil {
		return engine.AssessmentRecord{}, err
	}

	sequence := 1
	latest, err := s.store.Latest(ctx, cmd.ApplicationID)
	switch {
	case err == nil:
		sequence = latest.Sequence + 1
	case !errors.Is(err, engine.ErrAssessmentNotFound):
		return engine.AssessmentRecord{}, fmt.Errorf("load latest assessment: %w", err)
	}

	trigger := cmd.Trigger
	if trigger == "" {
		trigger = engine.TriggerOriginal
		if sequence > 1 {
			trigger = engine.TriggerReassessment
		}
	}

	rec := engine.AssessmentRecord{
		ID:            uuid.New(),
		ApplicationID: cmd.ApplicationID,
		Sequence:      sequence,
		Trigger:       trigger,
		ProgramYear:   cmd.Input.ProgramYear,
		Intensity:     cmd.Input.Intensity,
		InputDigest:   digest,
		Input:         cmd.Input,
		Result:        result,
		CreatedAt:     s.now().UTC(),
	}

	if err := s.store.Append(ctx, rec); err != nil {
		if engine.IsRetryable(err) {
			s.metrics.ObserveAssessment(string(rec.Intensity), metrics.OutcomeConflict, nil, 0)
			s.logger.Warn("concurrent assessment rejected",
				zap.String("application_id", string(rec.ApplicationID)),
				zap.Int("sequence", sequence))
		}
		return engine.AssessmentRecord{}, err
	}

	s.logger.Info("assessment recorded",
		zap.String("application_id", string(rec.ApplicationID)),
		zap.String("assessment_id", rec.ID.String()),
		zap.Int("sequence", rec.Sequence),
		zap.String("trigger", string(rec.Trigger)))

	return rec, nil
}

// History lists every recorded assessment of an application, oldest first.
func (s *AssessmentService) History(ctx context.Context, applicationID engine.ApplicationID) ([]engine.AssessmentRecord, error) {
	return s.store.History(ctx, applicationID)
}

// NoticeOfAssessment returns the latest recorded assessment. Returns
// engine.ErrAssessmentNotFound if the application was never assessed.
func (s *AssessmentService) NoticeOfAssessment(ctx context.Context, applicationID engine.ApplicationID) (engine.AssessmentRecord, error) {
	return s.store.Latest(ctx, applicationID)
}

// evaluate returns the result and the input digest.
func (s *AssessmentService) evaluate(ctx context.Context, in engine.ConsolidatedAssessmentData) (engine.AssessmentResult, string, error) {
	start := s.now()
	intensity := string(in.Intensity)

	digest, err := engine.InputDigest(in)
	if err != nil {
		return engine.AssessmentResult{}, "", fmt.Errorf("digest input: %w", err)
	}

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, digest); err == nil {
			s.metrics.ObserveCacheLookup(true)
			s.metrics.ObserveAssessment(intensity, metrics.OutcomeCached, nil, 0)
			return cached, digest, nil
		}
		s.metrics.ObserveCacheLookup(false)
	}

	result, err := s.assessor.Assess(in)
	if err != nil {
		outcome := metrics.OutcomeError
		if engine.IsClientError(err) {
			outcome = metrics.OutcomeRejected
		}
		s.metrics.ObserveAssessment(intensity, outcome, nil, 0)
		s.logger.Info("assessment rejected",
			zap.String("application_id", string(in.ApplicationID)),
			zap.String("program_year", in.ProgramYear),
			zap.Error(err))
		return engine.AssessmentResult{}, "", err
	}

	elapsed := s.now().Sub(start)
	s.metrics.ObserveAssessment(intensity, metrics.OutcomeAssessed, eligibleCodes(result), elapsed)
	s.logger.Info("assessment completed",
		zap.String("application_id", string(in.ApplicationID)),
		zap.String("program_year", in.ProgramYear),
		zap.String("intensity", intensity),
		zap.Int("eligible_awards", result.EligibleCount()),
		zap.String("total_need", result.Derived.TotalAssessmentNeed.String()),
		zap.Duration("duration", elapsed))

	if s.cache != nil {
		if err := s.cache.Set(ctx, digest, result); err != nil {
			s.logger.Warn("failed to cache assessment result", zap.String("digest", digest), zap.Error(err))
		}
	}

	return result, digest, nil
}

func eligibleCodes(r engine.AssessmentResult) []string {
	var codes []string
	for _, a := range r.Awards {
		if a.Eligible {
			codes = append(codes, string(a.Code))
		}
	}
	return codes
}

// validationError converts the first validator failure into an InputError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &engine.InputError{Field: fieldName(fe.Field()), Reason: "failed " + fe.Tag()}
	}
	return &engine.InputError{Field: "request", Reason: err.Error()}
}

func fieldName(goName string) string {
	switch goName {
	case "ApplicationID":
		return "applicationId"
	case "Trigger":
		return "trigger"
	}
	return goName
}
