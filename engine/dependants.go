package engine

// DerivedDependant is a dependant classified against the study start date.
type DerivedDependant struct {
	Dependant
	AgeAtStudyStart int `json:"ageAtStudyStart"`
	// FamilyEligible dependants count toward family size.
	FamilyEligible bool `json:"familyEligible"`
	// ChildcareEligible dependants make childcare costs allowable.
	ChildcareEligible bool `json:"childcareEligible"`
	// CountsForDependantGrant dependants are paid for by dependant grants.
	CountsForDependantGrant bool `json:"countsForDependantGrant"`
}

// ClassifyDependant applies the age bands at studyStart:
//
//	age <= MinorMaxAge                    eligible
//	MinorMaxAge < age <= YoungAdultMaxAge  eligible if attending high school or declared on taxes
//	age > YoungAdultMaxAge                eligible if declared on taxes
func ClassifyDependant(d Dependant, studyStart Date, rules DependantRules) DerivedDependant {
	age := AgeAt(d.BirthDate, studyStart)

	var family bool
	switch {
	case age <= rules.MinorMaxAge:
		family = true
	case age <= rules.YoungAdultMaxAge:
		family = d.AttendingHighSchool || d.DeclaredOnTaxes
	default:
		family = d.DeclaredOnTaxes
	}

	return DerivedDependant{
		Dependant:               d,
		AgeAtStudyStart:         age,
		FamilyEligible:          family,
		ChildcareEligible:       family && age <= rules.ChildcareMaxAge,
		CountsForDependantGrant: family && (age <= rules.MinorMaxAge || (d.DeclaredOnTaxes && !d.AttendingPostSecondary)),
	}
}

// ClassifyDependants classifies a list, preserving order.
func ClassifyDependants(ds []Dependant, studyStart Date, rules DependantRules) []DerivedDependant {
	out := make([]DerivedDependant, 0, len(ds))
	for _, d := range ds {
		out = append(out, ClassifyDependant(d, studyStart, rules))
	}
	return out
}

type dependantCounts struct {
	family, childcare, grant int
}

func countDependants(ds []DerivedDependant) dependantCounts {
	var c dependantCounts
	for _, d := range ds {
		if d.FamilyEligible {
			c.family++
		}
		if d.ChildcareEligible {
			c.childcare++
		}
		if d.CountsForDependantGrant {
			c.grant++
		}
	}
	return c
}
