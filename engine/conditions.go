package engine

import "fmt"

// =============================================================================
// ELIGIBILITY CONDITIONS
// =============================================================================
// Each helper returns one Condition. Rules combine them as a conjunction.

// HasPermanentDisability requires PD/PPD status "yes".
func HasPermanentDisability() Condition {
	return Condition{
		Name: "disabilityStatus",
		Test: func(ctx EvaluationContext) bool {
			return ctx.Input.Student.DisabilityStatus == DisabilityYes
		},
	}
}

// NeedAtLeast requires the total assessed need to reach min.
func NeedAtLeast(min Money) Condition {
	return Condition{
		Name: "assessedNeed",
		Test: func(ctx EvaluationContext) bool {
			return ctx.Derived.TotalAssessmentNeed.GreaterThanOrEqual(min)
		},
	}
}

// IncomeBelowThreshold requires totalFamilyIncome < threshold(familySize).
func IncomeBelowThreshold() Condition {
	return Condition{
		Name: "incomeThreshold",
		Test: func(ctx EvaluationContext) bool {
			threshold, ok := ctx.Award.IncomeThresholds.Lookup(ctx.Derived.FamilySize)
			return ok && ctx.Derived.TotalFamilyIncome.LessThan(threshold)
		},
		Requires: func(a AwardConfig) []string {
			if len(a.IncomeThresholds) == 0 {
				return []string{"incomeThresholds"}
			}
			return nil
		},
	}
}

// CredentialIn requires the program credential to be in the configured allow-set.
func CredentialIn() Condition {
	return Condition{
		Name: "credentialType",
		Test: func(ctx EvaluationContext) bool {
			return contains(ctx.Award.Credentials, ctx.Input.Program.CredentialType)
		},
		Requires: requireNonEmpty("credentials", func(a AwardConfig) int { return len(a.Credentials) }),
	}
}

// ProgramLengthIn requires the program length bucket to be in the configured allow-set.
func ProgramLengthIn() Condition {
	return Condition{
		Name: "programLength",
		Test: func(ctx EvaluationContext) bool {
			return contains(ctx.Award.ProgramLengths, ctx.Input.Program.Length)
		},
		Requires: requireNonEmpty("programLengths", func(a AwardConfig) int { return len(a.ProgramLengths) }),
	}
}

// InstitutionIn requires the institution type to be in the configured allow-set.
func InstitutionIn() Condition {
	return Condition{
		Name: "institutionType",
		Test: func(ctx EvaluationContext) bool {
			return contains(ctx.Award.Institutions, ctx.Input.Program.InstitutionType)
		},
		Requires: requireNonEmpty("institutions", func(a AwardConfig) int { return len(a.Institutions) }),
	}
}

// HasEligibleDependants requires at least min family-eligible dependants.
func HasEligibleDependants(min int) Condition {
	return Condition{
		Name: "eligibleDependants",
		Test: func(ctx EvaluationContext) bool {
			return ctx.Derived.EligibleDependantCount >= min
		},
	}
}

// HasGrantDependants requires at least min dependants a dependant grant pays for.
func HasGrantDependants(min int) Condition {
	return Condition{
		Name: "grantDependants",
		Test: func(ctx EvaluationContext) bool {
			return ctx.Derived.DependantGrantCount >= min
		},
	}
}

// HasChildcareEligibleDependants requires at least min dependants in the childcare age band.
func HasChildcareEligibleDependants(min int) Condition {
	return Condition{
		Name: "childcareEligibleDependants",
		Test: func(ctx EvaluationContext) bool {
			return ctx.Derived.ChildcareEligibleCount >= min
		},
	}
}

// YearsSinceHighSchoolAtLeast requires the configured number of whole years
// between the declared high-school leave date and the assessment date.
// A missing leave date fails the condition.
func YearsSinceHighSchoolAtLeast() Condition {
	return Condition{
		Name: "yearsSinceHighSchool",
		Test: func(ctx EvaluationContext) bool {
			years := ctx.Derived.YearsSinceHighSchool
			return years != nil && *years >= ctx.Award.YearsSinceHighSchool
		},
		Requires: func(a AwardConfig) []string {
			if a.YearsSinceHighSchool <= 0 {
				return []string{"yearsSinceHighSchool"}
			}
			return nil
		},
	}
}

// CourseLoadAtLeastMinimum requires the part-time course load to meet the configured minimum.
func CourseLoadAtLeastMinimum() Condition {
	return Condition{
		Name: "minimumCourseLoad",
		Test: func(ctx EvaluationContext) bool {
			return ctx.Input.Offering.CourseLoad >= ctx.Award.MinimumCourseLoad
		},
		Requires: func(a AwardConfig) []string {
			if a.MinimumCourseLoad <= 0 || a.MinimumCourseLoad > 100 {
				return []string{"minimumCourseLoad"}
			}
			return nil
		},
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func requireNonEmpty(field string, size func(AwardConfig) int) Requirement {
	return func(a AwardConfig) []string {
		if size(a) == 0 {
			return []string{field}
		}
		return nil
	}
}

func (c Condition) String() string { return fmt.Sprintf("condition(%s)", c.Name) }
