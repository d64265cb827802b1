package engine

// AssessedCosts itemises the allowable costs of one offering.
type AssessedCosts struct {
	Tuition         Money                   `json:"tuition"`
	Books           Money                   `json:"books"`
	Living          Money                   `json:"living"`
	Childcare       Money                   `json:"childcare"`
	Transportation  TransportationBreakdown `json:"transportation"`
	Exceptional     Money                   `json:"exceptional"`
	SecondResidence Money                   `json:"secondResidence"`
	Travel          Money                   `json:"travel"`
	Exchange        Money                   `json:"exchange"`
	Total           Money                   `json:"total"`
}

// Contributions are the amounts the student and partner are expected to pay.
type Contributions struct {
	Student Money `json:"student"`
	Partner Money `json:"partner"`
	Total   Money `json:"total"`
}

func assessCosts(in *ConsolidatedAssessmentData, familySize, childcareEligible int, cfg *ProgramYearConfig) AssessedCosts {
	rules := cfg.Costs
	o := in.Offering
	var c AssessedCosts

	tuitionCap := rules.TuitionCap
	if in.Program.Aviation && rules.AviationTuitionCap.IsPositive() {
		tuitionCap = rules.AviationTuitionCap
	}
	c.Tuition = capped(o.Tuition.Add(o.MandatoryFees), tuitionCap)
	c.Books = capped(o.ProgramRelatedCosts, rules.BooksCap)

	if in.Intensity == FullTime {
		weekly, _ := rules.WeeklyLivingAllowance.Lookup(familySize)
		c.Living = weekly.MulInt(o.Weeks)
		if in.Student.SecondResidence {
			c.SecondResidence = rules.SecondResidenceWeekly.MulInt(o.Weeks)
		}
	}

	childcareCeiling := rules.ChildcareWeeklyPerChild.MulInt(childcareEligible * o.Weeks)
	c.Childcare = in.Student.ChildcareCosts.Floor0().Min(childcareCeiling)

	c.Transportation = TransportationAllowance(o, in.Student.AdditionalTransportation, cfg.Transportation)
	c.Exceptional = o.ExceptionalExpenses.Floor0()
	if o.Travel {
		c.Travel = rules.TravelAllowance
	}
	if o.Exchange {
		c.Exchange = rules.ExchangeAllowance
	}

	c.Total = SumMoney(c.Tuition, c.Books, c.Living, c.Childcare, c.Transportation.Total,
		c.Exceptional, c.SecondResidence, c.Travel, c.Exchange).Round()
	return c
}

// capped limits a claimed cost to a cap; a zero cap means uncapped.
func capped(claimed, limit Money) Money {
	claimed = claimed.Floor0()
	if limit.IsPositive() {
		return claimed.Min(limit)
	}
	return claimed
}

func assessContributions(studentIncome, partnerIncome Money, partnerPresent bool, r ContributionRules) Contributions {
	var c Contributions
	c.Student = studentIncome.Sub(r.StudentExemption).Floor0().Mul(r.StudentRate).Round()
	if partnerPresent {
		c.Partner = partnerIncome.Sub(r.PartnerExemption).Floor0().Mul(r.PartnerRate).Round()
	}
	c.Total = c.Student.Add(c.Partner)
	return c
}
