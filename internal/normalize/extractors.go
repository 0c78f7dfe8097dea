// Package normalize converts raw welfare-program records into SchemeProfiles
// through a pipeline of independent field extractors.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// BPLIncomeCeiling is the income ceiling assigned when a scheme mentions
// "below poverty line" without a concrete amount.
const BPLIncomeCeiling = 100000

var (
	ageRangeRe = regexp.MustCompile(`(\d+)\s*(?:to|-)\s*(\d+)\s*years?`)
	ageBelowRe = regexp.MustCompile(`below\s*(\d+)\s*years?`)
	ageAboveRe = regexp.MustCompile(`above\s*(\d+)\s*years?`)
	incomeRe   = regexp.MustCompile(`(?:income|earning).*?(?:below|less than|up to|maximum).*?(?:rs\.?|inr|₹)?\s*(\d+(?:,\d+)*)`)
	bplRe      = regexp.MustCompile(`\b(?:bpl|below poverty line)\b`)
	amountRe   = regexp.MustCompile(`(?:rs\.?|inr|₹)\s*(\d+(?:,\d+)*)`)
	casteSCRe  = regexp.MustCompile(`\b(?:sc|scheduled caste)\b`)
	casteSTRe  = regexp.MustCompile(`\b(?:st|scheduled tribe)\b`)
	casteOBCRe = regexp.MustCompile(`\b(?:obc|other backward class)\b`)
	casteGenRe = regexp.MustCompile(`\b(?:general|unreserved)\b`)
)

// stateNames is the fixed jurisdiction enumeration; extractState returns the
// first name found, so the order here is authoritative.
var stateNames = []string{
	"andhra pradesh", "arunachal pradesh", "assam", "bihar", "chhattisgarh",
	"goa", "gujarat", "haryana", "himachal pradesh", "jharkhand", "karnataka",
	"kerala", "madhya pradesh", "maharashtra", "manipur", "meghalaya",
	"mizoram", "nagaland", "odisha", "punjab", "rajasthan", "sikkim",
	"tamil nadu", "telangana", "tripura", "uttar pradesh", "uttarakhand",
	"west bengal", "delhi",
}

// extractAgeRange parses "N to M years" ranges, falling back to independent
// "below N years" / "above N years" bounds.
func extractAgeRange(text string) (minAge, maxAge *int) {
	if m := ageRangeRe.FindStringSubmatch(text); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return &lo, &hi
	}
	if m := ageBelowRe.FindStringSubmatch(text); m != nil {
		hi, _ := strconv.Atoi(m[1])
		maxAge = &hi
	}
	if m := ageAboveRe.FindStringSubmatch(text); m != nil {
		lo, _ := strconv.Atoi(m[1])
		minAge = &lo
	}
	return minAge, maxAge
}

func extractGender(text string) string {
	if strings.Contains(text, "female") || strings.Contains(text, "women") || strings.Contains(text, "girl") {
		return "female"
	}
	if strings.Contains(text, "male") {
		return "male"
	}
	return "any"
}

// extractIncomeCeiling finds a currency amount near income keywords; a bare
// BPL mention maps to the fixed ceiling.
func extractIncomeCeiling(text string) *int {
	if m := incomeRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err == nil {
			return &n
		}
	}
	if bplRe.MatchString(text) {
		n := BPLIncomeCeiling
		return &n
	}
	return nil
}

func extractCaste(text string) []string {
	var castes []string
	if casteSCRe.MatchString(text) {
		castes = append(castes, "SC")
	}
	if casteSTRe.MatchString(text) {
		castes = append(castes, "ST")
	}
	if casteOBCRe.MatchString(text) {
		castes = append(castes, "OBC")
	}
	if casteGenRe.MatchString(text) {
		castes = append(castes, "General")
	}
	if len(castes) == 0 {
		return []string{"Any"}
	}
	return castes
}

func extractOccupation(text string) []string {
	var occupations []string
	if strings.Contains(text, "farmer") || strings.Contains(text, "agriculture") {
		occupations = append(occupations, "farmer")
	}
	if strings.Contains(text, "student") || strings.Contains(text, "education") {
		occupations = append(occupations, "student")
	}
	if strings.Contains(text, "unemployed") {
		occupations = append(occupations, "unemployed")
	}
	if strings.Contains(text, "worker") || strings.Contains(text, "labour") || strings.Contains(text, "labor") {
		occupations = append(occupations, "worker")
	}
	if len(occupations) == 0 {
		return []string{"any"}
	}
	return occupations
}

// extractResidence returns "rural" or "urban" only when exactly one of the
// pair occurs in the text.
func extractResidence(text string) string {
	rural := strings.Contains(text, "rural")
	urban := strings.Contains(text, "urban")
	switch {
	case rural && !urban:
		return "rural"
	case urban && !rural:
		return "urban"
	default:
		return "any"
	}
}

func extractState(text string) *string {
	for _, name := range stateNames {
		if strings.Contains(text, name) {
			titled := titleCase(name)
			return &titled
		}
	}
	return nil
}

// extractBenefitType uses fixed priority order; the first matching kind wins.
func extractBenefitType(text string) string {
	switch {
	case strings.Contains(text, "scholarship") || strings.Contains(text, "education"):
		return "scholarship"
	case strings.Contains(text, "pension"):
		return "pension"
	case strings.Contains(text, "loan") || strings.Contains(text, "credit"):
		return "loan"
	case strings.Contains(text, "subsidy"):
		return "subsidy"
	case strings.Contains(text, "insurance"):
		return "insurance"
	default:
		return "financial_assistance"
	}
}

func extractBenefitAmount(text string) *int {
	if m := amountRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err == nil {
			return &n
		}
	}
	return nil
}

// extractCategory uses fixed priority order; the first matching category wins.
func extractCategory(text string) string {
	switch {
	case strings.Contains(text, "education") || strings.Contains(text, "student") || strings.Contains(text, "scholarship"):
		return "education"
	case strings.Contains(text, "health") || strings.Contains(text, "medical"):
		return "health"
	case strings.Contains(text, "agriculture") || strings.Contains(text, "farmer"):
		return "agriculture"
	case strings.Contains(text, "employment") || strings.Contains(text, "skill"):
		return "employment"
	case strings.Contains(text, "pension") || strings.Contains(text, "senior") || strings.Contains(text, "elderly"):
		return "social_security"
	case strings.Contains(text, "women") || strings.Contains(text, "girl"):
		return "women_empowerment"
	default:
		return "general_welfare"
	}
}

func extractTargetGroups(text string) []string {
	var groups []string
	if strings.Contains(text, "women") || strings.Contains(text, "girl") {
		groups = append(groups, "women")
	}
	if strings.Contains(text, "student") || strings.Contains(text, "education") {
		groups = append(groups, "students")
	}
	if strings.Contains(text, "farmer") {
		groups = append(groups, "farmers")
	}
	if strings.Contains(text, "senior") || strings.Contains(text, "elderly") || strings.Contains(text, "aged") {
		groups = append(groups, "senior_citizens")
	}
	if strings.Contains(text, "child") {
		groups = append(groups, "children")
	}
	if strings.Contains(text, "disabled") || strings.Contains(text, "handicapped") {
		groups = append(groups, "disabled")
	}
	if strings.Contains(text, "widow") {
		groups = append(groups, "widows")
	}
	if strings.Contains(text, "minority") {
		groups = append(groups, "minorities")
	}
	if len(groups) == 0 {
		return []string{"general"}
	}
	return groups
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
