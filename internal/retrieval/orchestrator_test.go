package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/margdarshak/schemeseek/internal/eligibility"
	"github.com/margdarshak/schemeseek/internal/embedding"
	"github.com/margdarshak/schemeseek/internal/models"
	"github.com/margdarshak/schemeseek/internal/vector"
)

func femaleOnly() models.Eligibility {
	return models.Eligibility{
		Gender:     "female",
		Caste:      []string{"Any"},
		Occupation: []string{"any"},
		Residence:  "any",
	}
}

func open() models.Eligibility {
	return models.Eligibility{
		Gender:     "any",
		Caste:      []string{"Any"},
		Occupation: []string{"any"},
		Residence:  "any",
	}
}

func testSchemes() []*models.SchemeProfile {
	return []*models.SchemeProfile{
		{SchemeID: "scheme_1", Name: "Girls Scholarship", Eligibility: femaleOnly(), SemanticSummary: "Girls Scholarship. scholarship for female students education"},
		{SchemeID: "scheme_2", Name: "Farmer Credit", Eligibility: open(), SemanticSummary: "Farmer Credit. crop loan for farmers agriculture"},
		{SchemeID: "scheme_3", Name: "Elder Pension", Eligibility: open(), SemanticSummary: "Elder Pension. monthly pension for senior citizens"},
	}
}

func newOrchestrator(t *testing.T, schemes []*models.SchemeProfile) *Orchestrator {
	t.Helper()
	embedder := embedding.NewMockEmbedder(16)
	ctx := context.Background()
	summaries := make([]string, len(schemes))
	for i, s := range schemes {
		summaries[i] = s.SemanticSummary
	}
	vectors, err := embedder.EmbedBatch(ctx, summaries)
	if err != nil {
		t.Fatal(err)
	}
	index, err := vector.NewFlatIndex(embedder.Dimensions())
	if err != nil {
		t.Fatal(err)
	}
	if err := index.Add(ctx, vectors); err != nil {
		t.Fatal(err)
	}
	return New(schemes, vectors, index, embedder)
}

func maleUser() *models.UserProfile {
	return &models.UserProfile{Age: 30, Gender: "male", Occupation: "farmer", Residence: "rural", State: "Bihar", Interests: "farming"}
}

func TestRetrieveAtMostCorpusSize(t *testing.T) {
	o := newOrchestrator(t, testSchemes())
	// k=5 over a 3-scheme corpus returns at most 3, never 5
	got, outcome, err := o.Retrieve(context.Background(), "scholarship for students", nil, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || len(got) > 3 {
		t.Errorf("got %d results", len(got))
	}
	if outcome != OutcomeUnfiltered {
		t.Errorf("outcome=%v", outcome)
	}
}

func TestRetrieveFilteredHit(t *testing.T) {
	o := newOrchestrator(t, testSchemes())
	got, outcome, err := o.Retrieve(context.Background(), "loans for farming", maleUser(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeFilteredHit {
		t.Fatalf("outcome=%v", outcome)
	}
	for _, s := range got {
		if !eligibility.Check(s, maleUser()) {
			t.Errorf("ineligible scheme %s in filtered results", s.SchemeID)
		}
	}
}

func TestRetrieveFallbackNeverEmpty(t *testing.T) {
	// every scheme is female-only, so a male user filters everything out
	schemes := testSchemes()
	for _, s := range schemes {
		s.Eligibility = femaleOnly()
	}
	o := newOrchestrator(t, schemes)
	got, outcome, err := o.Retrieve(context.Background(), "any scheme", maleUser(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if outcome != OutcomeUnfilteredFallback {
		t.Errorf("outcome=%v", outcome)
	}
	if len(got) == 0 {
		t.Error("fallback must not return an empty result on a non-empty corpus")
	}
	if len(got) > 2 {
		t.Errorf("got %d results, want at most 2", len(got))
	}
}

func TestRecommendZeroEligible(t *testing.T) {
	schemes := testSchemes()
	for _, s := range schemes {
		s.Eligibility = femaleOnly()
	}
	o := newOrchestrator(t, schemes)
	rec, err := o.Recommend(context.Background(), maleUser(), 8)
	if err != nil {
		t.Fatal(err)
	}
	if rec.EligibleCount != 0 {
		t.Errorf("EligibleCount=%d", rec.EligibleCount)
	}
	if len(rec.Top) != 0 {
		t.Errorf("Top=%v", rec.Top)
	}
}

func TestRecommendRanksEligibleSet(t *testing.T) {
	o := newOrchestrator(t, testSchemes())
	user := maleUser()
	rec, err := o.Recommend(context.Background(), user, 8)
	if err != nil {
		t.Fatal(err)
	}
	// scheme_1 is female-only; the other two are open
	if rec.EligibleCount != 2 {
		t.Fatalf("EligibleCount=%d", rec.EligibleCount)
	}
	if len(rec.Top) != 2 {
		t.Fatalf("len(Top)=%d", len(rec.Top))
	}
	for _, s := range rec.Top {
		if s.SchemeID == "scheme_1" {
			t.Error("ineligible scheme recommended")
		}
	}
}

func TestRecommendCapsK(t *testing.T) {
	var schemes []*models.SchemeProfile
	for i := 0; i < 12; i++ {
		schemes = append(schemes, &models.SchemeProfile{
			SchemeID:        fmt.Sprintf("scheme_%d", i+1),
			Name:            fmt.Sprintf("Scheme %d", i+1),
			Eligibility:     open(),
			SemanticSummary: fmt.Sprintf("Scheme %d. generic welfare support %d", i+1, i),
		})
	}
	o := newOrchestrator(t, schemes)
	rec, err := o.Recommend(context.Background(), maleUser(), 100)
	if err != nil {
		t.Fatal(err)
	}
	if rec.EligibleCount != 12 {
		t.Errorf("EligibleCount=%d", rec.EligibleCount)
	}
	if len(rec.Top) != MaxRecommendations {
		t.Errorf("len(Top)=%d, want %d", len(rec.Top), MaxRecommendations)
	}
}

func TestProfileQuery(t *testing.T) {
	q := ProfileQuery(&models.UserProfile{Age: 22, Gender: "female", Occupation: "student", Interests: "higher education"})
	want := "higher education for female student age 22"
	if q != want {
		t.Errorf("got %q, want %q", q, want)
	}
}
