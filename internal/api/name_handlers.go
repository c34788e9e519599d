package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/icgdb/icgdb-server/internal/domain"
	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
	"github.com/icgdb/icgdb-server/internal/store"
)

func (s *Server) registerNameRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNames",
		Method:      http.MethodGet,
		Path:        "/api/v1/names/{kind}",
		Summary:     "List names",
		Description: "Returns every name used by a kind, ordered",
		Tags:        []string{"Names"},
	}, s.handleListNames)

	huma.Register(s.api, huma.Operation{
		OperationID: "isNameTaken",
		Method:      http.MethodGet,
		Path:        "/api/v1/names/{kind}/taken",
		Summary:     "Check name",
		Description: "Reports whether a name is already used within a kind. Matching is case-sensitive.",
		Tags:        []string{"Names"},
	}, s.handleIsNameTaken)
}

// === DTOs ===

type NamesInput struct {
	Kind string `path:"kind" enum:"genre,publisher,game" doc:"Record kind"`
}

type NamesResponse struct {
	Names []string `json:"names" doc:"Names in order"`
}

type NamesOutput struct {
	Body NamesResponse
}

type NameTakenInput struct {
	Kind string `path:"kind" enum:"genre,publisher,game" doc:"Record kind"`
	Name string `query:"name" required:"true" doc:"Candidate name"`
}

type NameTakenResponse struct {
	Name  string `json:"name" doc:"Candidate name"`
	Taken bool   `json:"taken" doc:"True when a record of the kind already has this name"`
}

type NameTakenOutput struct {
	Body NameTakenResponse
}

// === Handlers ===

func (s *Server) handleListNames(ctx context.Context, input *NamesInput) (*NamesOutput, error) {
	kind, err := domain.ParseKind(input.Kind)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}

	var names []string
	if kind == domain.KindGame {
		games, err := s.services.Games.List(ctx, store.GameFilter{})
		if err != nil {
			return nil, err
		}
		names = make([]string, len(games))
		for i, g := range games {
			names[i] = g.Name
		}
	} else if names, err = s.services.Categories.Names(ctx, kind); err != nil {
		return nil, err
	}

	if names == nil {
		names = []string{}
	}
	return &NamesOutput{Body: NamesResponse{Names: names}}, nil
}

func (s *Server) handleIsNameTaken(ctx context.Context, input *NameTakenInput) (*NameTakenOutput, error) {
	taken, err := s.services.Names.IsNameTaken(ctx, domain.Kind(input.Kind), input.Name)
	if err != nil {
		return nil, err
	}
	return &NameTakenOutput{Body: NameTakenResponse{Name: input.Name, Taken: taken}}, nil
}
