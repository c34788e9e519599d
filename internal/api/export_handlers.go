package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/icgdb/icgdb-server/internal/domain"
	"github.com/icgdb/icgdb-server/internal/store"
)

func (s *Server) registerExportRoutes() {
	tags := []string{"Export"}

	huma.Register(s.api, huma.Operation{
		OperationID: "exportGames",
		Method:      http.MethodGet,
		Path:        "/api/v1/export/games",
		Summary:     "Export games",
		Description: "Every game in the flat export shape",
		Tags:        tags,
	}, s.handleExportGames)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportGame",
		Method:      http.MethodGet,
		Path:        "/api/v1/export/games/{name}",
		Summary:     "Export game",
		Description: "One game in the flat export shape",
		Tags:        tags,
	}, s.handleExportGame)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/export/genres",
		Summary:     "Export genres",
		Tags:        tags,
	}, func(ctx context.Context, _ *struct{}) (*ExportGenresOutput, error) {
		items, err := s.exportCategories(ctx, domain.KindGenre)
		if err != nil {
			return nil, err
		}
		return &ExportGenresOutput{Body: ExportGenresResponse{Genres: items}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "exportPublishers",
		Method:      http.MethodGet,
		Path:        "/api/v1/export/publishers",
		Summary:     "Export publishers",
		Tags:        tags,
	}, func(ctx context.Context, _ *struct{}) (*ExportPublishersOutput, error) {
		items, err := s.exportCategories(ctx, domain.KindPublisher)
		if err != nil {
			return nil, err
		}
		return &ExportPublishersOutput{Body: ExportPublishersResponse{Publishers: items}}, nil
	})
}

// === DTOs ===

type ExportGame struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Publisher   string `json:"publisher"`
	ReleaseDate string `json:"release_date"`
	Rating      string `json:"rating"`
	MarketValue string `json:"market_value"`
	MVDate      string `json:"mv_date"`
	PictureURL  string `json:"pic_url"`
}

type ExportCategory struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type ExportGamesResponse struct {
	Games []ExportGame `json:"games"`
}

type ExportGamesOutput struct {
	Body ExportGamesResponse
}

type ExportGameInput struct {
	Name string `path:"name" doc:"Exact name"`
}

type ExportGameResponse struct {
	Game ExportGame `json:"game"`
}

type ExportGameOutput struct {
	Body ExportGameResponse
}

type ExportGenresResponse struct {
	Genres []ExportCategory `json:"genres"`
}

type ExportGenresOutput struct {
	Body ExportGenresResponse
}

type ExportPublishersResponse struct {
	Publishers []ExportCategory `json:"publishers"`
}

type ExportPublishersOutput struct {
	Body ExportPublishersResponse
}

// === Handlers ===

func (s *Server) handleExportGames(ctx context.Context, _ *struct{}) (*ExportGamesOutput, error) {
	games, err := s.services.Games.List(ctx, store.GameFilter{})
	if err != nil {
		return nil, err
	}
	items := make([]ExportGame, len(games))
	for i, g := range games {
		items[i] = exportGame(g)
	}
	return &ExportGamesOutput{Body: ExportGamesResponse{Games: items}}, nil
}

func (s *Server) handleExportGame(ctx context.Context, input *ExportGameInput) (*ExportGameOutput, error) {
	g, err := s.services.Games.Get(ctx, input.Name)
	if err != nil {
		return nil, err
	}
	return &ExportGameOutput{Body: ExportGameResponse{Game: exportGame(g)}}, nil
}

func (s *Server) exportCategories(ctx context.Context, kind domain.Kind) ([]ExportCategory, error) {
	list, err := s.services.Categories.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	items := make([]ExportCategory, len(list))
	for i, c := range list {
		items[i] = ExportCategory{Name: c.Name, Description: c.Description}
	}
	return items, nil
}

func exportGame(g *domain.Game) ExportGame {
	return ExportGame{
		Name:        g.Name,
		Description: g.Description,
		Genre:       g.GenreName,
		Publisher:   g.PublisherName,
		ReleaseDate: domain.FormatDate(g.ReleaseDate),
		Rating:      g.Rating,
		MarketValue: g.MarketValue,
		MVDate:      domain.FormatDate(g.MarketValueDate),
		PictureURL:  pictureURL(g.PictureRef),
	}
}
