package search

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/cadenceapp/cadence-server/internal/normalize"
)

// SearchParams configures a song search.
type SearchParams struct {
	Query  string
	Artist string // exact artist filter, compared case-insensitively

	MinDuration int // seconds
	MaxDuration int // seconds, 0 means unbounded

	Limit  int
	Offset int

	SortBy    string // "relevance", "title", "artist", "duration", "recent"
	SortOrder string // "asc", "desc"

	IncludeFacets bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:     20,
		SortBy:    "relevance",
		SortOrder: "desc",
	}
}

// SearchResult is the result of a song search.
type SearchResult struct {
	Query   string       `json:"query"`
	Total   uint64       `json:"total"`
	TookMs  int64        `json:"took_ms"`
	Hits    []SearchHit  `json:"hits"`
	Artists []FacetCount `json:"artists,omitempty"`
}

// SearchHit is a single matched song.
type SearchHit struct {
	SongID   int64   `json:"song_id"`
	Score    float64 `json:"score"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Duration int     `json:"duration"`
}

// FacetCount is a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// SongIDs returns the matched song IDs in rank order.
func (r *SearchResult) SongIDs() []int64 {
	ids := make([]int64, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.SongID
	}
	return ids
}

// Search executes a song search.
func (s *SongIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)
	if params.IncludeFacets {
		req.AddFacet("artist_key", bleve.NewFacetRequest("artist_key", 20))
	}
	req.Fields = []string{"title", "artist", "duration"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		songID, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			s.logger.Warn("skipping search hit with malformed id", "id", hit.ID)
			continue
		}
		h := SearchHit{SongID: songID, Score: hit.Score}
		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if a, ok := hit.Fields["artist"].(string); ok {
			h.Artist = a
		}
		if d, ok := hit.Fields["duration"].(float64); ok {
			h.Duration = int(d)
		}
		result.Hits = append(result.Hits, h)
	}

	if params.IncludeFacets {
		if facet, ok := res.Facets["artist_key"]; ok && facet.Terms != nil {
			for _, term := range facet.Terms.Terms() {
				result.Artists = append(result.Artists, FacetCount{Value: term.Term, Count: term.Count})
			}
		}
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		titleMatch := bleve.NewMatchQuery(q)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		artistMatch := bleve.NewMatchQuery(q)
		artistMatch.SetField("artist")
		artistMatch.SetBoost(2.0)

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{titleMatch, artistMatch, fuzzy}

		// Prefix matching for search-as-you-type, on the last word only.
		fields := strings.Fields(strings.ToLower(q))
		if last := fields[len(fields)-1]; len([]rune(last)) >= 2 {
			for _, field := range []string{"title", "artist"} {
				prefix := bleve.NewPrefixQuery(last)
				prefix.SetField(field)
				prefix.SetBoost(0.5)
				textQueries = append(textQueries, prefix)
			}
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.Artist != "" {
		tq := bleve.NewTermQuery(normalize.Key(params.Artist))
		tq.SetField("artist_key")
		queries = append(queries, tq)
	}

	if params.MinDuration > 0 || params.MaxDuration > 0 {
		lo := float64(params.MinDuration)
		hi := math.MaxFloat64
		if params.MaxDuration > 0 {
			hi = float64(params.MaxDuration)
		}
		inclusive := true
		rangeQuery := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		rangeQuery.SetField("duration")
		queries = append(queries, rangeQuery)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	desc := params.SortOrder == "desc"
	order := func(fields ...string) []string {
		if !desc {
			return fields
		}
		out := make([]string, len(fields))
		for i, f := range fields {
			out[i] = "-" + f
		}
		return out
	}

	switch params.SortBy {
	case "title":
		req.SortBy(order("title", "_id"))
	case "artist":
		req.SortBy(order("artist_key", "title"))
	case "duration":
		req.SortBy(order("duration", "_id"))
	case "recent":
		req.SortBy(order("created_at", "_id"))
	default:
		req.SortBy([]string{"-_score", "_id"})
	}
}
