// Package eligibility implements the scheme eligibility predicate.
package eligibility

import "github.com/margdarshak/schemeseek/internal/models"

// Check reports whether the user satisfies every constrained field of the
// scheme's eligibility block. Pure and total: an unconstrained sentinel always
// passes, and any single mismatch fails the whole check.
func Check(scheme *models.SchemeProfile, user *models.UserProfile) bool {
	e := &scheme.Eligibility

	if e.MinAge != nil && user.Age < *e.MinAge {
		return false
	}
	if e.MaxAge != nil && user.Age > *e.MaxAge {
		return false
	}
	if e.Gender != "any" && user.Gender != e.Gender {
		return false
	}
	if e.MaxFamilyIncome != nil && user.FamilyIncome > *e.MaxFamilyIncome {
		return false
	}
	if !e.CasteUnconstrained() && !contains(e.Caste, user.Caste) {
		return false
	}
	if !e.OccupationUnconstrained() && !contains(e.Occupation, user.Occupation) {
		return false
	}
	if e.Residence != "any" && user.Residence != e.Residence {
		return false
	}
	if e.StateSpecific != nil && user.State != *e.StateSpecific {
		return false
	}
	return true
}

// FilterEligible returns the subset of schemes the user qualifies for,
// preserving corpus order.
func FilterEligible(schemes []*models.SchemeProfile, user *models.UserProfile) []*models.SchemeProfile {
	var eligible []*models.SchemeProfile
	for _, s := range schemes {
		if Check(s, user) {
			eligible = append(eligible, s)
		}
	}
	return eligible
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
