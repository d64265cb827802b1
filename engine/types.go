/*
Package engine provides the core award assessment engine.

PURPOSE:
  This package contains the intensity-agnostic types and algorithms used to
  assess a student financial-aid application. Whether the offering is full-time
  or part-time, the same pipeline derives family size, income, costs and need,
  evaluates every registered award rule and nets the amounts against
  program-year limits.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency amount backed by decimal.Decimal
  - AwardCode / AwardKind: Identifiers for grant and loan programs
  - OfferingIntensity: Full-time or part-time study
  - Enumerations used by the consolidated input (credential, program length,
    delivery mode, institution type, relationship and disability status)

DESIGN PRINCIPLES:
  1. Purity: Nothing in this package performs I/O or logs
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Type Safety: Strong typing for codes prevents mixing awards and intensities
  4. Determinism: Identical input always yields an identical result

USAGE:
  need := engine.Dollars(12000).Sub(engine.Dollars(2500)).Floor0()
  if need.GreaterThanOrEqual(engine.Dollars(1)) { ... }

SEE ALSO:
  - input.go: ConsolidatedAssessmentData
  - derive.go: Derivation layer
  - rules.go: Award rule contract and registry
  - assessor.go: The assessment pipeline
*/
package engine

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount in dollars
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

func Dollars(v int64) Money       { return Money{Value: decimal.NewFromInt(v)} }
func NewMoney(v float64) Money    { return Money{Value: decimal.NewFromFloat(v)} }
func ZeroMoney() Money            { return Money{Value: decimal.Zero} }

// MustParseMoney parses a decimal string, returning zero on malformed input.
func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroMoney()
	}
	return Money{Value: d}
}

func (m Money) Add(o Money) Money                  { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money                  { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(d decimal.Decimal) Money        { return Money{Value: m.Value.Mul(d)} }
func (m Money) MulInt(n int) Money                 { return Money{Value: m.Value.Mul(decimal.NewFromInt(int64(n)))} }
func (m Money) IsZero() bool                       { return m.Value.IsZero() }
func (m Money) IsPositive() bool                   { return m.Value.IsPositive() }
func (m Money) IsNegative() bool                   { return m.Value.IsNegative() }
func (m Money) Equal(o Money) bool                 { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool           { return m.Value.GreaterThan(o.Value) }
func (m Money) GreaterThanOrEqual(o Money) bool    { return m.Value.GreaterThanOrEqual(o.Value) }
func (m Money) LessThan(o Money) bool              { return m.Value.LessThan(o.Value) }
func (m Money) Floor0() Money                      { return m.Max(ZeroMoney()) }
func (m Money) Float64() float64                   { f, _ := m.Value.Float64(); return f }
func (m Money) String() string                     { return m.Value.StringFixedBank(2) }

func (m Money) Min(o Money) Money {
	if m.LessThan(o) {
		return m
	}
	return o
}

func (m Money) Max(o Money) Money {
	if m.GreaterThan(o) {
		return m
	}
	return o
}

// Round rounds half away from zero to the cent.
func (m Money) Round() Money { return Money{Value: m.Value.Round(2)} }

// Cents is the value in whole cents, used for digests and sqlite columns.
func (m Money) Cents() int64 { return m.Value.Mul(hundred).Round(0).IntPart() }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Value.Round(2).String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(b, &d); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	m.Value = d
	return nil
}

// SumMoney adds a list of amounts.
func SumMoney(ms ...Money) Money {
	total := ZeroMoney()
	for _, m := range ms {
		total = total.Add(m)
	}
	return total
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ApplicationID string

// AwardCode identifies a federal or provincial grant or loan program.
type AwardCode string

const (
	AwardCSLF AwardCode = "CSLF" // Canada Student Loan, full-time
	AwardCSLP AwardCode = "CSLP" // Canada Student Loan, part-time
	AwardBCSL AwardCode = "BCSL" // BC Student Loan
	AwardCSGP AwardCode = "CSGP" // Canada Student Grant for Students with Disabilities
	AwardCSGD AwardCode = "CSGD" // Canada Student Grant for Students with Dependants
	AwardCSGF AwardCode = "CSGF" // Canada Student Grant for Full-time Students
	AwardCSGT AwardCode = "CSGT" // Canada Student Grant for Adult Learners (top-up)
	AwardCSPT AwardCode = "CSPT" // Canada Student Grant for Part-time Students
	AwardBCAG AwardCode = "BCAG" // BC Access Grant
	AwardBGPD AwardCode = "BGPD" // BC Grant for Students with Permanent Disabilities
	AwardSBSD AwardCode = "SBSD" // BC Supplemental Bursary for Students with Disabilities
)

// AllAwardCodes lists every known code in display order.
var AllAwardCodes = []AwardCode{
	AwardCSLF, AwardCSLP, AwardBCSL, AwardCSGP, AwardCSGD, AwardCSGF,
	AwardCSGT, AwardCSPT, AwardBCAG, AwardBGPD, AwardSBSD,
}

func (c AwardCode) String() string { return string(c) }

func (c AwardCode) Valid() bool {
	for _, known := range AllAwardCodes {
		if c == known {
			return true
		}
	}
	return false
}

type AwardKind string

const (
	KindGrant AwardKind = "grant"
	KindLoan  AwardKind = "loan"
)

// =============================================================================
// OFFERING INTENSITY
// =============================================================================

type OfferingIntensity string

const (
	FullTime OfferingIntensity = "fullTime"
	PartTime OfferingIntensity = "partTime"
)

var Intensities = []OfferingIntensity{FullTime, PartTime}

func (i OfferingIntensity) Valid() bool { return i == FullTime || i == PartTime }

// ParseIntensity accepts the canonical names and a few common spellings.
func ParseIntensity(s string) (OfferingIntensity, error) {
	switch s {
	case "fullTime", "full-time", "fulltime", "FT":
		return FullTime, nil
	case "partTime", "part-time", "parttime", "PT":
		return PartTime, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIntensity, s)
}

// =============================================================================
// INPUT ENUMERATIONS
// =============================================================================

type RelationshipStatus string

const (
	RelationshipSingle  RelationshipStatus = "single"
	RelationshipMarried RelationshipStatus = "married" // includes common-law
	RelationshipOther   RelationshipStatus = "other"
)

func (r RelationshipStatus) HasPartner() bool { return r == RelationshipMarried }

type DisabilityStatus string

const (
	DisabilityYes          DisabilityStatus = "yes"
	DisabilityNo           DisabilityStatus = "no"
	DisabilityPending      DisabilityStatus = "pending"
	DisabilityNotRequested DisabilityStatus = "notRequested"
)

type CredentialType string

const (
	CredentialUndergraduateCertificate CredentialType = "undergraduateCertificate"
	CredentialUndergraduateCitation    CredentialType = "undergraduateCitation"
	CredentialUndergraduateDiploma     CredentialType = "undergraduateDiploma"
	CredentialUndergraduateDegree      CredentialType = "undergraduateDegree"
	CredentialGraduateCertificate      CredentialType = "graduateCertificate"
	CredentialGraduateDiploma          CredentialType = "graduateDiploma"
	CredentialGraduateDegree           CredentialType = "graduateDegree"
	CredentialMasters                  CredentialType = "masters"
	CredentialDoctorate                CredentialType = "doctorate"
	CredentialQualifyingStudies        CredentialType = "qualifyingStudies"
	CredentialEntryLevelCertificate    CredentialType = "entryLevelCertificate"
)

type ProgramLength string

const (
	LengthUnder12Weeks  ProgramLength = "under12Weeks"
	Length12To52Weeks   ProgramLength = "12to52Weeks"
	Length1To2Years     ProgramLength = "1to2Years"
	Length2To3Years     ProgramLength = "2to3Years"
	Length3To4Years     ProgramLength = "3to4Years"
	Length4YearsPlus    ProgramLength = "4YearsPlus"
)

type DeliveryMode string

const (
	DeliveryOnsite  DeliveryMode = "onsite"
	DeliveryOnline  DeliveryMode = "online"
	DeliveryBlended DeliveryMode = "blended"
)

// AttendsOnsite reports whether the mode earns the base transportation allowance.
func (d DeliveryMode) AttendsOnsite() bool { return d == DeliveryOnsite || d == DeliveryBlended }

type InstitutionType string

const (
	InstitutionBCPublic  InstitutionType = "bcPublic"
	InstitutionBCPrivate InstitutionType = "bcPrivate"
	InstitutionOther     InstitutionType = "other"
)

// AssessmentTrigger records what caused an assessment run.
type AssessmentTrigger string

const (
	TriggerOriginal                AssessmentTrigger = "originalAssessment"
	TriggerAppealApproval          AssessmentTrigger = "appealApproval"
	TriggerScholasticStandingChange AssessmentTrigger = "scholasticStandingChange"
	TriggerReassessment            AssessmentTrigger = "reassessment"
)

func (t AssessmentTrigger) Valid() bool {
	switch t {
	case TriggerOriginal, TriggerAppealApproval, TriggerScholasticStandingChange, TriggerReassessment:
		return true
	}
	return false
}
