// Package retrieval combines semantic search, eligibility filtering, and fallback policy.
package retrieval

import (
	"context"
	"fmt"

	"github.com/margdarshak/schemeseek/internal/eligibility"
	"github.com/margdarshak/schemeseek/internal/embedding"
	"github.com/margdarshak/schemeseek/internal/models"
	"github.com/margdarshak/schemeseek/internal/vector"
)

// MaxRecommendations caps the number of schemes a recommendation returns.
const MaxRecommendations = 8

// Outcome tags how a retrieval result was produced, so callers can tell
// genuine eligibility matches from the safety-net fallback.
type Outcome int

const (
	// OutcomeFilteredHit means every returned scheme passed eligibility.
	OutcomeFilteredHit Outcome = iota
	// OutcomeUnfilteredFallback means eligibility filtering emptied the
	// candidate set and the unfiltered semantic results were returned instead.
	OutcomeUnfilteredFallback
	// OutcomeUnfiltered means no profile was supplied, so no filtering ran.
	OutcomeUnfiltered
)

// Recommendation is the result of profile-based recommendation.
type Recommendation struct {
	// EligibleCount is the total number of eligible schemes in the corpus,
	// not just the ones returned.
	EligibleCount int
	Top           []*models.SchemeProfile
}

// Orchestrator runs retrieval over an immutable corpus snapshot: the schemes,
// their embedding vectors in the same order, and the global index built from
// those vectors.
type Orchestrator struct {
	schemes  []*models.SchemeProfile
	vectors  [][]float32
	index    *vector.FlatIndex
	embedder embedding.Embedder
}

// New creates an orchestrator. vectors[i] must be the embedding of
// schemes[i].SemanticSummary and index must have been built over vectors in
// the same order.
func New(schemes []*models.SchemeProfile, vectors [][]float32, index *vector.FlatIndex, embedder embedding.Embedder) *Orchestrator {
	return &Orchestrator{
		schemes:  schemes,
		vectors:  vectors,
		index:    index,
		embedder: embedder,
	}
}

// Retrieve returns up to k schemes relevant to the query. The global index is
// oversampled at 2k before eligibility filtering; when a profile is given and
// filtering leaves nothing, the unfiltered top-k is returned instead so a
// non-empty corpus never yields an empty result.
func (o *Orchestrator) Retrieve(ctx context.Context, query string, profile *models.UserProfile, k int) ([]*models.SchemeProfile, Outcome, error) {
	queryVec, err := o.embedder.Embed(ctx, query)
	if err != nil {
		return nil, OutcomeUnfiltered, fmt.Errorf("embed query: %w", err)
	}
	hits, err := o.index.Search(ctx, queryVec, k*2)
	if err != nil {
		return nil, OutcomeUnfiltered, fmt.Errorf("vector search: %w", err)
	}

	candidates := make([]*models.SchemeProfile, len(hits))
	for i, h := range hits {
		candidates[i] = o.schemes[h.Ordinal]
	}

	if profile == nil {
		return truncate(candidates, k), OutcomeUnfiltered, nil
	}

	eligible := eligibility.FilterEligible(candidates, profile)
	if len(eligible) > 0 {
		return truncate(eligible, k), OutcomeFilteredHit, nil
	}
	return truncate(candidates, k), OutcomeUnfilteredFallback, nil
}

// Recommend filters the entire corpus by eligibility, then ranks the eligible
// set against a query synthesized from the profile. Zero eligible schemes is a
// valid empty result, not an error.
func (o *Orchestrator) Recommend(ctx context.Context, profile *models.UserProfile, k int) (*Recommendation, error) {
	if k <= 0 || k > MaxRecommendations {
		k = MaxRecommendations
	}

	var (
		eligible        []*models.SchemeProfile
		eligibleVectors [][]float32
	)
	for i, s := range o.schemes {
		if eligibility.Check(s, profile) {
			eligible = append(eligible, s)
			eligibleVectors = append(eligibleVectors, o.vectors[i])
		}
	}
	if len(eligible) == 0 {
		return &Recommendation{EligibleCount: 0}, nil
	}

	queryVec, err := o.embedder.Embed(ctx, ProfileQuery(profile))
	if err != nil {
		return nil, fmt.Errorf("embed profile query: %w", err)
	}

	// Ephemeral index scoped to the eligible set; the global index is untouched.
	subIndex, err := vector.NewSubIndex(o.embedder.Dimensions(), eligibleVectors)
	if err != nil {
		return nil, fmt.Errorf("build eligible sub-index: %w", err)
	}
	if k > len(eligible) {
		k = len(eligible)
	}
	hits, err := subIndex.Search(ctx, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("sub-index search: %w", err)
	}

	top := make([]*models.SchemeProfile, len(hits))
	for i, h := range hits {
		top[i] = eligible[h.Ordinal]
	}
	return &Recommendation{EligibleCount: len(eligible), Top: top}, nil
}

// ProfileQuery synthesizes a ranking query from the profile's interests and
// demographic terms.
func ProfileQuery(p *models.UserProfile) string {
	return fmt.Sprintf("%s for %s %s age %d", p.Interests, p.Gender, p.Occupation, p.Age)
}

func truncate(schemes []*models.SchemeProfile, k int) []*models.SchemeProfile {
	if len(schemes) > k {
		return schemes[:k]
	}
	return schemes
}
