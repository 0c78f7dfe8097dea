// Package keyword provides Bleve keyword search over the scheme corpus.
package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/margdarshak/schemeseek/internal/models"
)

// Hit is a single keyword search match.
type Hit struct {
	SchemeID string  `json:"scheme_id"`
	Score    float64 `json:"score"`
}

// schemeDoc is the shape indexed per scheme.
type schemeDoc struct {
	Name     string `json:"name"`
	Details  string `json:"details"`
	Benefits string `json:"benefits"`
	Tags     string `json:"tags"`
}

// Index is an in-memory Bleve index over scheme names, details, and tags.
// Build it once per corpus snapshot; the store is memory-only so nothing
// survives the process.
type Index struct {
	index bleve.Index
}

// NewIndex creates an empty in-memory index.
func NewIndex() (*Index, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so scheme names
	// match the exact words users type.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("details", textFieldMapping)
	docMapping.AddFieldMappingsAt("benefits", textFieldMapping)
	docMapping.AddFieldMappingsAt("tags", textFieldMapping)
	im.AddDocumentMapping("scheme", docMapping)
	im.DefaultType = "scheme"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create keyword index: %w", err)
	}
	return &Index{index: index}, nil
}

// IndexSchemes indexes the whole corpus in one batch.
func (b *Index) IndexSchemes(ctx context.Context, schemes []*models.SchemeProfile) error {
	batch := b.index.NewBatch()
	for _, s := range schemes {
		doc := schemeDoc{
			Name:     s.Name,
			Details:  s.Details,
			Benefits: s.Benefits.Description,
			Tags:     strings.Join(s.Tags, " "),
		}
		if err := batch.Index(s.SchemeID, doc); err != nil {
			return fmt.Errorf("index scheme %s: %w", s.SchemeID, err)
		}
	}
	if err := b.index.Batch(batch); err != nil {
		return fmt.Errorf("commit keyword batch: %w", err)
	}
	return nil
}

// Search runs a match query and returns up to limit hits by descending score.
func (b *Index) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	hits := make([]Hit, len(results.Hits))
	for i, h := range results.Hits {
		hits[i] = Hit{SchemeID: h.ID, Score: h.Score}
	}
	return hits, nil
}

// Close releases the index.
func (b *Index) Close() error {
	return b.index.Close()
}
