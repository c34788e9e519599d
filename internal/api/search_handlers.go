package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/icgdb/icgdb-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchGames",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search games",
		Description: "Full-text search over game names and descriptions, optionally filtered by exact genre and publisher",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

type SearchInput struct {
	Query     string `query:"q" doc:"Search text"`
	Genre     string `query:"genre" doc:"Exact genre name"`
	Publisher string `query:"publisher" doc:"Exact publisher name"`
	Limit     int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum hits (default 20)"`
}

type SearchHitResponse struct {
	ID        string  `json:"id" doc:"Game ID"`
	Name      string  `json:"name" doc:"Game name"`
	Genre     string  `json:"genre" doc:"Genre name"`
	Publisher string  `json:"publisher" doc:"Publisher name"`
	Score     float64 `json:"score" doc:"Relevance"`
}

type SearchResponse struct {
	Total uint64              `json:"total" doc:"Total matches"`
	Hits  []SearchHitResponse `json:"hits" doc:"Best matches first"`
}

type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	res, err := s.services.Search.Search(ctx, search.Query{
		Text:      input.Query,
		Genre:     input.Genre,
		Publisher: input.Publisher,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResponse, len(res.Hits))
	for i, h := range res.Hits {
		hits[i] = SearchHitResponse{
			ID:        h.ID,
			Name:      h.Name,
			Genre:     h.Genre,
			Publisher: h.Publisher,
			Score:     h.Score,
		}
	}
	return &SearchOutput{Body: SearchResponse{Total: res.Total, Hits: hits}}, nil
}
