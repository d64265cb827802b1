package engine

// TransportationBreakdown itemises the transportation allowance.
type TransportationBreakdown struct {
	Base            Money `json:"base"`
	Additional      Money `json:"additional"`
	AdditionalWeeks int   `json:"additionalWeeks"`
	Total           Money `json:"total"`
}

// TransportationAllowance computes the transportation cost for an offering.
//
// Online offerings earn no base allowance; onsite and blended offerings earn
// WeeklyAllowance for every week. When additional transportation is claimed:
//
//	additionalWeeks = min(offering weeks, claimed weeks)
//	additional      = min(MaxAdditional - placementDeduction, max(weeklyCost, 0) × additionalWeeks)
//	additional     *= DistanceReductionFactor   if distance < OnsiteDistanceThresholdKm
//
// The placement deduction applies when a placement is provided or the offering
// is work-integrated learning. Onsite totals pay the base allowance only for
// the weeks not covered by the additional claim.
func TransportationAllowance(o OfferingData, claim *AdditionalTransportation, r TransportationRules) TransportationBreakdown {
	var b TransportationBreakdown
	onsite := o.DeliveryMode.AttendsOnsite()
	if onsite {
		b.Base = r.WeeklyAllowance.MulInt(o.Weeks)
	}
	if claim == nil || claim.Weeks <= 0 {
		b.Total = b.Base
		return b
	}

	b.AdditionalWeeks = min(o.Weeks, claim.Weeks)
	ceiling := r.MaxAdditionalAllowance
	if claim.PlacementProvided || o.WorkIntegratedLearning {
		ceiling = ceiling.Sub(r.PlacementDeduction).Floor0()
	}
	b.Additional = ceiling.Min(claim.WeeklyCost.Floor0().MulInt(b.AdditionalWeeks))
	if claim.DistanceKm < r.OnsiteDistanceThresholdKm {
		b.Additional = b.Additional.Mul(r.DistanceReductionFactor)
	}
	b.Additional = b.Additional.Round()

	if onsite {
		b.Total = r.WeeklyAllowance.MulInt(o.Weeks - b.AdditionalWeeks).Add(b.Additional)
	} else {
		b.Total = b.Additional
	}
	b.Total = b.Total.Floor0()
	return b
}
