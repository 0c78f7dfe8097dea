package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/margdarshak/schemeseek/internal/models"
	"github.com/margdarshak/schemeseek/pkg/utils"
)

// summaryDetailLimit bounds the details portion of the semantic summary so a
// single verbose record cannot dominate its embedding input.
const summaryDetailLimit = 512

// RawRecord is one unnormalized scheme entry: arbitrary string-keyed text
// fields with no fixed schema.
type RawRecord map[string]string

// Name returns the record's display name, checking the field names seen in
// scraped data.
func (r RawRecord) Name() string {
	for _, key := range []string{"schemeName", "scheme_name", "name", "title"} {
		if v := strings.TrimSpace(r[key]); v != "" {
			return v
		}
	}
	return ""
}

func (r RawRecord) details() string {
	for _, key := range []string{"Details", "details", "description"} {
		if v := strings.TrimSpace(r[key]); v != "" {
			return v
		}
	}
	return ""
}

func (r RawRecord) benefits() string {
	for _, key := range []string{"Benefits", "benefits"} {
		if v := strings.TrimSpace(r[key]); v != "" {
			return v
		}
	}
	return ""
}

func (r RawRecord) applicationProcess() string {
	for _, key := range []string{"How to Avail", "application_process", "how_to_apply"} {
		if v := strings.TrimSpace(r[key]); v != "" {
			return v
		}
	}
	return ""
}

// combinedText joins every field value into one blob for the extractors.
// Keys are sorted so the blob is deterministic regardless of map order.
func (r RawRecord) combinedText() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, r[k])
	}
	return strings.Join(parts, " ")
}

// Normalize converts one raw record into a SchemeProfile. The ordinal assigns
// the unique scheme_id. Records with no text content are rejected.
func Normalize(raw RawRecord, ordinal int) (*models.SchemeProfile, error) {
	combined := raw.combinedText()
	if strings.TrimSpace(combined) == "" {
		return nil, fmt.Errorf("record %d has no text content", ordinal)
	}
	text := strings.ToLower(combined)

	minAge, maxAge := extractAgeRange(text)
	caste := extractCaste(text)
	occupation := extractOccupation(text)
	targetGroups := extractTargetGroups(text)
	category := extractCategory(text)
	stateSpecific := extractState(text)

	level := "central"
	state := "All"
	if stateSpecific != nil {
		level = "state"
		state = *stateSpecific
	}

	name := raw.Name()
	details := raw.details()
	benefits := raw.benefits()
	summary := fmt.Sprintf("%s. %s %s", name, utils.Truncate(details, summaryDetailLimit), benefits)

	return &models.SchemeProfile{
		SchemeID:     fmt.Sprintf("scheme_%d", ordinal+1),
		Name:         name,
		Level:        level,
		State:        state,
		Category:     category,
		TargetGroups: targetGroups,
		Eligibility: models.Eligibility{
			MinAge:          minAge,
			MaxAge:          maxAge,
			Gender:          extractGender(text),
			MaxFamilyIncome: extractIncomeCeiling(text),
			Caste:           caste,
			Occupation:      occupation,
			Residence:       extractResidence(text),
			StateSpecific:   stateSpecific,
		},
		Benefits: models.Benefits{
			Type:        extractBenefitType(text),
			Amount:      extractBenefitAmount(text),
			Description: benefits,
		},
		Details:            details,
		ApplicationProcess: raw.applicationProcess(),
		Tags:               buildTags(targetGroups, category, caste, occupation),
		SemanticSummary:    summary,
	}, nil
}

// buildTags merges target groups, category, and any constrained caste or
// occupation labels into a deduplicated tag set.
func buildTags(targetGroups []string, category string, caste, occupation []string) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(labels ...string) {
		for _, l := range labels {
			if l == "" || seen[l] {
				continue
			}
			seen[l] = true
			tags = append(tags, l)
		}
	}
	add(targetGroups...)
	add(category)
	if !(len(caste) == 1 && caste[0] == "Any") {
		add(caste...)
	}
	if !(len(occupation) == 1 && occupation[0] == "any") {
		add(occupation...)
	}
	return tags
}

// Result is the outcome of normalizing a batch of raw records.
type Result struct {
	Schemes []*models.SchemeProfile
	Dropped int
}

// NormalizeAll normalizes every record, dropping and counting failures.
// A single bad record never aborts the batch.
func NormalizeAll(raws []RawRecord) *Result {
	res := &Result{Schemes: make([]*models.SchemeProfile, 0, len(raws))}
	for i, raw := range raws {
		scheme, err := Normalize(raw, i)
		if err != nil {
			res.Dropped++
			continue
		}
		res.Schemes = append(res.Schemes, scheme)
	}
	return res
}
