package engine

// =============================================================================
// GROSS FORMULAS
// =============================================================================

// Flat pays the configured Amount.
func Flat() Formula {
	return Formula{
		Name:     "flat",
		Gross:    func(_ EvaluationContext, c ComponentConfig) Money { return c.Amount },
		Requires: requireAmount,
	}
}

// CourseLoadTier pays Amount when the course load meets the award's
// CourseLoadThreshold and ReducedAmount otherwise. With no threshold
// configured it always pays Amount.
func CourseLoadTier() Formula {
	return Formula{
		Name: "courseLoadTier",
		Gross: func(ctx EvaluationContext, c ComponentConfig) Money {
			threshold := ctx.Award.CourseLoadThreshold
			if threshold == 0 || ctx.Input.Offering.CourseLoad >= threshold {
				return c.Amount
			}
			return c.ReducedAmount
		},
		Requires: requireAmount,
	}
}

// PerDependant pays PerDependant for each dependant counted for dependant
// grants, capped at Amount when Amount is set.
func PerDependant() Formula {
	return Formula{
		Name: "perDependant",
		Gross: func(ctx EvaluationContext, c ComponentConfig) Money {
			gross := c.PerDependant.MulInt(ctx.Derived.DependantGrantCount)
			if c.Amount.IsPositive() {
				gross = gross.Min(c.Amount)
			}
			return gross
		},
		Requires: func(c ComponentConfig) []string {
			if !c.PerDependant.IsPositive() {
				return []string{"perDependant"}
			}
			return nil
		},
	}
}

// NeedShare pays NeedShare of the assessed need, capped at Weekly × offering weeks.
func NeedShare() Formula {
	return Formula{
		Name: "needShare",
		Gross: func(ctx EvaluationContext, c ComponentConfig) Money {
			share := ctx.Derived.TotalAssessmentNeed.Mul(c.NeedShare)
			return share.Min(c.Weekly.MulInt(ctx.Input.Offering.Weeks))
		},
		Requires: func(c ComponentConfig) []string {
			var missing []string
			if !c.NeedShare.IsPositive() {
				missing = append(missing, "needShare")
			}
			if !c.Weekly.IsPositive() {
				missing = append(missing, "weekly")
			}
			return missing
		},
	}
}

// Tapered applies the component's linear income taper to a base formula:
//
//	amount = max(base - (income - incomeCap) * slope, floor)   when income > incomeCap
//
// Components without a taper pay the base amount.
func Tapered(base Formula) Formula {
	return Formula{
		Name: "tapered(" + base.Name + ")",
		Gross: func(ctx EvaluationContext, c ComponentConfig) Money {
			amount := base.Gross(ctx, c)
			if c.Taper == nil {
				return amount
			}
			return ApplyTaper(amount, ctx.Derived.TotalFamilyIncome, *c.Taper)
		},
		Requires: base.Requires,
	}
}

// ApplyTaper reduces amount by slope for every dollar of income over the cap,
// never going below the floor. A base amount already under the floor is kept.
func ApplyTaper(amount, income Money, t Taper) Money {
	excess := income.Sub(t.IncomeCap)
	if !excess.IsPositive() {
		return amount
	}
	reduced := amount.Sub(excess.Mul(t.Slope))
	return reduced.Max(t.Floor.Min(amount))
}

func requireAmount(c ComponentConfig) []string {
	if !c.Amount.IsPositive() {
		return []string{"amount"}
	}
	return nil
}

// =============================================================================
// NETTING
// =============================================================================

// ProgramYearNet nets the gross against the component's ProgramYearLimit.
// Components without a limit pay the gross.
func ProgramYearNet() Netting {
	return Netting{
		Name: "programYearLimit",
		Net: func(ctx EvaluationContext, comp Component, c ComponentConfig, gross Money) Money {
			if c.ProgramYearLimit == nil {
				return gross
			}
			return NewProgramYearBalance(ctx.Input, ctx.Code, comp, *c.ProgramYearLimit, c).Apply(gross)
		},
	}
}

// RemainingOfGross treats the gross amount itself as the program-year limit,
// so amounts already awarded are subtracted from it.
func RemainingOfGross() Netting {
	return Netting{
		Name: "remainingOfGross",
		Net: func(ctx EvaluationContext, comp Component, c ComponentConfig, gross Money) Money {
			return NewProgramYearBalance(ctx.Input, ctx.Code, comp, gross, c).Disbursable()
		},
	}
}

// OutstandingBalanceNet nets a loan's configured Amount against the student's
// existing loan balance, then caps at the gross.
func OutstandingBalanceNet() Netting {
	return Netting{
		Name: "outstandingBalance",
		Net: func(ctx EvaluationContext, _ Component, c ComponentConfig, gross Money) Money {
			remaining := c.Amount.Sub(ctx.Input.Student.CSLPOutstandingBalance).Floor0()
			return gross.Min(remaining)
		},
	}
}
