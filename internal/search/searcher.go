// Package search resolves free text into solution-shaped answers, first via
// keyword similarity over the taxonomy, then via the fallback responder.
package search

import (
	"context"

	"github.com/spec-kit/support-desk/internal/taxonomy"
)

// Match is a candidate solution with a 0-1 confidence score.
type Match struct {
	Issue      string
	Solution   string
	Category   string
	Confidence float64
}

// Searcher finds the best known solution for a free-text query.
// ok is false when nothing matched at all.
type Searcher interface {
	Search(ctx context.Context, query string) (match Match, ok bool, err error)
}

type taxonomySearcher struct {
	catalog    *taxonomy.Catalog
	ticketType string
}

// NewTaxonomySearcher scores taxonomy issues by keyword overlap.
func NewTaxonomySearcher(catalog *taxonomy.Catalog, ticketType string) Searcher {
	return &taxonomySearcher{catalog: catalog, ticketType: ticketType}
}

func (s *taxonomySearcher) Search(ctx context.Context, query string) (Match, bool, error) {
	if err := ctx.Err(); err != nil {
		return Match{}, false, err
	}
	results := s.catalog.Search(query, s.ticketType)
	if len(results) == 0 {
		return Match{}, false, nil
	}
	best := results[0]
	max := taxonomy.MaxScore(query)
	confidence := 0.0
	if max > 0 {
		confidence = float64(best.Score) / float64(max)
	}
	if confidence > 1 {
		confidence = 1
	}
	return Match{
		Issue:      best.Issue,
		Solution:   best.Solution,
		Category:   best.SmartCategory,
		Confidence: confidence,
	}, true, nil
}
