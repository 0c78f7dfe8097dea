package models

import "fmt"

// UserProfile is the demographic profile supplied with a request. Transient:
// it is never persisted beyond the owning session.
type UserProfile struct {
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	FamilyIncome int    `json:"family_income"`
	Caste        string `json:"caste"`
	Occupation   string `json:"occupation"`
	Residence    string `json:"residence"`
	State        string `json:"state"`
	Interests    string `json:"interests"`
}

// Validate checks that the required profile fields are present.
func (u *UserProfile) Validate() error {
	if u.Age <= 0 {
		return fmt.Errorf("age must be positive")
	}
	if u.Gender == "" {
		return fmt.Errorf("gender is required")
	}
	if u.State == "" {
		return fmt.Errorf("state is required")
	}
	return nil
}

// HistoryTurn is one completed conversation exchange.
type HistoryTurn struct {
	UserMessage       string   `json:"user_message"`
	AssistantResponse string   `json:"assistant_response"`
	ReferencedSchemes []string `json:"referenced_scheme_names"`
}
