package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/icgdb/icgdb-server/internal/domain"
	"github.com/icgdb/icgdb-server/internal/service"
	"github.com/icgdb/icgdb-server/internal/store"
)

func (s *Server) registerGameRoutes() {
	bearer := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "listGames",
		Method:      http.MethodGet,
		Path:        "/api/v1/games",
		Summary:     "List games",
		Description: "Returns games ordered by name, optionally filtered by genre and publisher",
		Tags:        []string{"Games"},
	}, s.handleListGames)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createGame",
		Method:        http.MethodPost,
		Path:          "/api/v1/games",
		Summary:       "Create game",
		Description:   "Creates a game owned by the caller. An empty genre or publisher files it under \"Other\".",
		Tags:          []string{"Games"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateGame)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGame",
		Method:      http.MethodGet,
		Path:        "/api/v1/games/{name}",
		Summary:     "Get game",
		Description: "Returns a game by exact name",
		Tags:        []string{"Games"},
	}, s.handleGetGame)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateGame",
		Method:      http.MethodPatch,
		Path:        "/api/v1/games/{name}",
		Summary:     "Update game",
		Description: "Applies the non-empty fields. Creator or superuser only.",
		Tags:        []string{"Games"},
		Security:    bearer,
	}, s.handleUpdateGame)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteGame",
		Method:      http.MethodDelete,
		Path:        "/api/v1/games/{name}",
		Summary:     "Delete game",
		Description: "Deletes a game and its picture. Creator or superuser only.",
		Tags:        []string{"Games"},
		Security:    bearer,
	}, s.handleDeleteGame)
}

// === DTOs ===

type GameResponse struct {
	ID              string    `json:"id" doc:"Record ID"`
	Name            string    `json:"name" doc:"Unique name"`
	Genre           string    `json:"genre" doc:"Genre name"`
	Publisher       string    `json:"publisher" doc:"Publisher name"`
	CreatorEmail    string    `json:"creator_email" doc:"Owner"`
	ReleaseDate     string    `json:"release_date,omitempty" doc:"YYYY-MM-DD"`
	Description     string    `json:"description,omitempty" doc:"Description"`
	Rating          string    `json:"rating,omitempty" doc:"Rating out of 10"`
	MarketValue     string    `json:"market_value,omitempty" doc:"Market value"`
	MarketValueDate string    `json:"mv_date,omitempty" doc:"Date the market value was observed"`
	PictureURL      string    `json:"pic_url,omitempty" doc:"Picture URL"`
	PictureBlurHash string    `json:"pic_blurhash,omitempty" doc:"BlurHash placeholder"`
	CreatedAt       time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt       time.Time `json:"updated_at" doc:"Last update time"`
}

type ListGamesInput struct {
	Genre     string `query:"genre" doc:"Exact genre name"`
	Publisher string `query:"publisher" doc:"Exact publisher name"`
}

type ListGamesResponse struct {
	Items []GameResponse `json:"items" doc:"Games ordered by name"`
}

type ListGamesOutput struct {
	Body ListGamesResponse
}

type GameRequest struct {
	Name            string `json:"name,omitempty" doc:"Unique name"`
	Genre           string `json:"genre,omitempty" doc:"Existing genre name"`
	Publisher       string `json:"publisher,omitempty" doc:"Existing publisher name"`
	ReleaseDate     string `json:"release_date,omitempty" doc:"YYYY-MM-DD"`
	Description     string `json:"description,omitempty" doc:"Description"`
	Rating          string `json:"rating,omitempty" doc:"Rating, 0 to 10"`
	MarketValue     string `json:"market_value,omitempty" doc:"Market value"`
	MarketValueDate string `json:"mv_date,omitempty" doc:"YYYY-MM-DD"`
}

type CreateGameInput struct {
	Authorization string `header:"Authorization"`
	Body          GameRequest
}

type GamePathInput struct {
	Authorization string `header:"Authorization"`
	Name          string `path:"name" doc:"Exact name"`
}

type UpdateGameInput struct {
	Authorization string `header:"Authorization"`
	Name          string `path:"name" doc:"Exact name"`
	Body          GameRequest
}

type GameOutput struct {
	Body GameResponse
}

// === Handlers ===

func (s *Server) handleListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	games, err := s.services.Games.List(ctx, store.GameFilter{
		GenreName:     input.Genre,
		PublisherName: input.Publisher,
	})
	if err != nil {
		return nil, err
	}
	resp := make([]GameResponse, len(games))
	for i, g := range games {
		resp[i] = mapGameResponse(g)
	}
	return &ListGamesOutput{Body: ListGamesResponse{Items: resp}}, nil
}

func (s *Server) handleCreateGame(ctx context.Context, input *CreateGameInput) (*GameOutput, error) {
	g, err := s.services.Games.Create(ctx, actingEmail(ctx), gameInput(input.Body))
	if err != nil {
		return nil, err
	}
	return &GameOutput{Body: mapGameResponse(g)}, nil
}

func (s *Server) handleGetGame(ctx context.Context, input *GamePathInput) (*GameOutput, error) {
	g, err := s.services.Games.Get(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	return &GameOutput{Body: mapGameResponse(g)}, nil
}

func (s *Server) handleUpdateGame(ctx context.Context, input *UpdateGameInput) (*GameOutput, error) {
	g, err := s.services.Games.Update(ctx, actingEmail(ctx), input.Name, gameInput(input.Body))
	if err != nil {
		return nil, err
	}
	return &GameOutput{Body: mapGameResponse(g)}, nil
}

func (s *Server) handleDeleteGame(ctx context.Context, input *GamePathInput) (*MessageOutput, error) {
	if err := s.services.Games.Delete(ctx, actingEmail(ctx), input.Name); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Game \"" + input.Name + "\" was deleted."}}, nil
}

func gameInput(r GameRequest) service.GameInput {
	return service.GameInput{
		Name:            r.Name,
		Genre:           r.Genre,
		Publisher:       r.Publisher,
		ReleaseDate:     r.ReleaseDate,
		Description:     r.Description,
		Rating:          r.Rating,
		MarketValue:     r.MarketValue,
		MarketValueDate: r.MarketValueDate,
	}
}

func mapGameResponse(g *domain.Game) GameResponse {
	return GameResponse{
		ID:              g.ID,
		Name:            g.Name,
		Genre:           g.GenreName,
		Publisher:       g.PublisherName,
		CreatorEmail:    g.CreatorEmail,
		ReleaseDate:     domain.FormatDate(g.ReleaseDate),
		Description:     g.Description,
		Rating:          g.Rating,
		MarketValue:     g.MarketValue,
		MarketValueDate: domain.FormatDate(g.MarketValueDate),
		PictureURL:      pictureURL(g.PictureRef),
		PictureBlurHash: g.PictureBlurHash,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
}

// pictureURL is the public path a stored picture is served from.
func pictureURL(ref string) string {
	if ref == "" {
		return ""
	}
	return "/pictures/" + ref
}
