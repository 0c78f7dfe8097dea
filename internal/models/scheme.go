// Package models defines core data structures for schemes, user profiles, and API requests.
package models

// Eligibility holds the constraint fields of a scheme. Every field is always
// populated; an absent real-world constraint is expressed by an explicit
// sentinel (nil pointer, "any", or an "Any"/"any" member in a set), never by
// omitting the field.
type Eligibility struct {
	MinAge          *int     `json:"min_age"`
	MaxAge          *int     `json:"max_age"`
	Gender          string   `json:"gender"` // "female", "male", or "any"
	MaxFamilyIncome *int     `json:"max_family_income"`
	Caste           []string `json:"caste"`      // subset of SC/ST/OBC/General, or ["Any"]
	Occupation      []string `json:"occupation"` // subset of farmer/student/unemployed/worker, or ["any"]
	Residence       string   `json:"residence"`  // "rural", "urban", or "any"
	StateSpecific   *string  `json:"state_specific"`
}

// CasteUnconstrained reports whether the caste set carries the "Any" sentinel.
func (e *Eligibility) CasteUnconstrained() bool {
	for _, c := range e.Caste {
		if c == "Any" {
			return true
		}
	}
	return false
}

// OccupationUnconstrained reports whether the occupation set carries the "any" sentinel.
func (e *Eligibility) OccupationUnconstrained() bool {
	for _, o := range e.Occupation {
		if o == "any" {
			return true
		}
	}
	return false
}

// Benefits describes what a scheme provides.
type Benefits struct {
	Type        string `json:"type"`
	Amount      *int   `json:"amount"`
	Description string `json:"description"`
}

// SchemeProfile is the normalized form of one raw welfare-program record.
// Immutable once created.
type SchemeProfile struct {
	SchemeID           string      `json:"scheme_id"`
	Name               string      `json:"name"`
	Level              string      `json:"level"` // "central" or "state"
	State              string      `json:"state"` // state name or "All"
	Category           string      `json:"category"`
	TargetGroups       []string    `json:"target_groups"`
	Eligibility        Eligibility `json:"eligibility"`
	Benefits           Benefits    `json:"benefits"`
	Details            string      `json:"details"`
	ApplicationProcess string      `json:"application_process"`
	Tags               []string    `json:"tags"`
	// SemanticSummary is the text encoded into the scheme's embedding vector.
	SemanticSummary string `json:"semantic_summary"`
}
