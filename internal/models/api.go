package models

import "fmt"

// RecommendRequest is the body of a recommendation request.
type RecommendRequest struct {
	Profile UserProfile `json:"profile"`
	Limit   int         `json:"limit,omitempty"`
}

// Validate ensures the request has a usable profile and normalizes the limit.
func (r *RecommendRequest) Validate() error {
	if err := r.Profile.Validate(); err != nil {
		return err
	}
	if r.Limit <= 0 || r.Limit > 8 {
		r.Limit = 8
	}
	return nil
}

// RecommendResponse is the result of a recommendation request.
type RecommendResponse struct {
	EligibleCount int              `json:"eligible_count"`
	TopSchemes    []*SchemeProfile `json:"top_schemes"`
	// Report is a rendered markdown summary of the recommendations.
	Report string `json:"report"`
}

// ChatRequest is the body of a conversational query.
type ChatRequest struct {
	UserID  string        `json:"user_id"`
	Message string        `json:"message"`
	Profile *UserProfile  `json:"profile,omitempty"`
	History []HistoryTurn `json:"history,omitempty"`
}

// Validate rejects malformed chat requests before any index work.
func (r *ChatRequest) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("user_id cannot be empty")
	}
	if r.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if r.Profile != nil {
		if err := r.Profile.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ChatResponse is the result of a conversational query.
type ChatResponse struct {
	Response          string   `json:"response"`
	ReferencedSchemes []string `json:"referenced_scheme_names"`
	EligibleCount     int      `json:"eligible_count"`
	// Fallback is true when the referenced schemes came from the unfiltered
	// semantic results because eligibility filtering emptied the candidate set.
	Fallback bool `json:"fallback,omitempty"`
}

// StatusResponse reports engine readiness.
type StatusResponse struct {
	SchemesLoaded        int  `json:"schemes_loaded"`
	SchemesDropped       int  `json:"schemes_dropped"`
	IndexReady           bool `json:"index_ready"`
	ActiveSessions       int  `json:"active_sessions"`
	GenerationConfigured bool `json:"generation_configured"`
}
