package search

import (
	"context"
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

const defaultLimit = 20

// Hit is a single search result.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Title string  `json:"title"`
	Style string  `json:"style,omitempty"`
}

// Search finds thumbnails belonging to ownerID that match q. The
// owner filter is a mandatory term query joined by conjunction, so a
// matching document owned by someone else can never surface.
func (s *SearchIndex) Search(ctx context.Context, ownerID, q string, limit int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = defaultLimit
	}

	ownerQuery := bleve.NewTermQuery(ownerID)
	ownerQuery.SetField("owner_id")

	var textQuery query.Query
	if q == "" {
		textQuery = bleve.NewMatchAllQuery()
	} else {
		titleMatch := bleve.NewMatchQuery(q)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		detailsMatch := bleve.NewMatchQuery(q)
		detailsMatch.SetField("details")

		// Fuzzy on title for typo tolerance
		fuzzy := bleve.NewFuzzyQuery(q)
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")
		fuzzy.SetBoost(0.8)

		textQuery = bleve.NewDisjunctionQuery(titleMatch, detailsMatch, fuzzy)
	}

	searchQuery := bleve.NewConjunctionQuery(ownerQuery, textQuery)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, limit, 0, false)
	searchRequest.Fields = []string{"title", "style"}
	searchRequest.SortBy([]string{"-_score"})

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		h := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}
		if title, ok := hit.Fields["title"].(string); ok {
			h.Title = title
		}
		if style, ok := hit.Fields["style"].(string); ok {
			h.Style = style
		}
		hits = append(hits, h)
	}

	return hits, nil
}
