package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Query describes a game search. Genre and Publisher filter by exact name.
type Query struct {
	Text      string
	Genre     string
	Publisher string
	Limit     int
}

// Hit is one matching game.
type Hit struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Genre     string  `json:"genre"`
	Publisher string  `json:"publisher"`
	Score     float64 `json:"score"`
}

// Result is a page of hits plus the total match count.
type Result struct {
	Total uint64 `json:"total"`
	Hits  []Hit  `json:"hits"`
}

// Search runs q against the index.
func (x *Index) Search(ctx context.Context, q Query) (*Result, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	req := bleve.NewSearchRequestOptions(buildQuery(q), limit, 0, false)
	req.Fields = []string{"name", "genre", "publisher"}

	x.mu.RLock()
	res, err := x.index.SearchInContext(ctx, req)
	x.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := &Result{Total: res.Total, Hits: make([]Hit, 0, len(res.Hits))}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		hit.Name, _ = h.Fields["name"].(string)
		hit.Genre, _ = h.Fields["genre"].(string)
		hit.Publisher, _ = h.Fields["publisher"].(string)
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

func buildQuery(q Query) query.Query {
	var must []query.Query

	if text := strings.TrimSpace(q.Text); text != "" {
		name := bleve.NewMatchQuery(text)
		name.SetField("name")
		name.SetBoost(3)

		desc := bleve.NewMatchQuery(text)
		desc.SetField("description")

		genre := bleve.NewMatchQuery(text)
		genre.SetField("genre")
		genre.SetBoost(1.5)

		publisher := bleve.NewMatchQuery(text)
		publisher.SetField("publisher")
		publisher.SetBoost(1.5)

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
		fuzzy.SetField("name")
		fuzzy.SetFuzziness(1)
		fuzzy.SetBoost(0.8)

		should := []query.Query{name, desc, genre, publisher, fuzzy}
		if len(text) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(text))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			should = append(should, prefix)
		}
		must = append(must, bleve.NewDisjunctionQuery(should...))
	}

	if q.Genre != "" {
		t := bleve.NewTermQuery(q.Genre)
		t.SetField("genre_exact")
		must = append(must, t)
	}
	if q.Publisher != "" {
		t := bleve.NewTermQuery(q.Publisher)
		t.SetField("publisher_exact")
		must = append(must, t)
	}

	if len(must) == 0 {
		return bleve.NewMatchAllQuery()
	}
	return bleve.NewConjunctionQuery(must...)
}
