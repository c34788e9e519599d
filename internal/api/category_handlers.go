package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/icgdb/icgdb-server/internal/domain"
	"github.com/icgdb/icgdb-server/internal/service"
)

// registerCategoryRoutes registers the genre or publisher routes under
// /api/v1/{plural}. Both kinds share handlers.
func (s *Server) registerCategoryRoutes(kind domain.Kind, plural, tag string) {
	base := "/api/v1/" + plural
	label := kind.Label()
	tags := []string{tag}
	bearer := []map[string][]string{{"bearer": {}}}

	huma.Register(s.api, huma.Operation{
		OperationID: "list" + tag,
		Method:      http.MethodGet,
		Path:        base,
		Summary:     "List " + plural,
		Description: "Returns every " + string(kind) + " ordered by name, including \"Other\"",
		Tags:        tags,
	}, func(ctx context.Context, _ *struct{}) (*ListCategoriesOutput, error) {
		return s.handleListCategories(ctx, kind)
	})

	huma.Register(s.api, huma.Operation{
		OperationID:   "create" + label,
		Method:        http.MethodPost,
		Path:          base,
		Summary:       "Create " + string(kind),
		Description:   "Creates a " + string(kind) + " owned by the caller. Names are unique and case-sensitive.",
		Tags:          tags,
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
		return s.handleCreateCategory(ctx, kind, input)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get" + label,
		Method:      http.MethodGet,
		Path:        base + "/{name}",
		Summary:     "Get " + string(kind),
		Description: "Returns the " + string(kind) + ", its games and the related names of the other kind",
		Tags:        tags,
	}, func(ctx context.Context, input *CategoryPathInput) (*CategoryPageOutput, error) {
		return s.handleGetCategoryPage(ctx, kind, input)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "update" + label,
		Method:      http.MethodPatch,
		Path:        base + "/{name}",
		Summary:     "Update " + string(kind),
		Description: "Changes the description. Creator or superuser only.",
		Tags:        tags,
		Security:    bearer,
	}, func(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
		return s.handleUpdateCategory(ctx, kind, input)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "rename" + label,
		Method:      http.MethodPost,
		Path:        base + "/{name}/rename",
		Summary:     "Rename " + string(kind),
		Description: "Renames the " + string(kind) + " and every game reference to it in one transaction. Creator or superuser only.",
		Tags:        tags,
		Security:    bearer,
	}, func(ctx context.Context, input *RenameCategoryInput) (*RenameOutput, error) {
		return s.handleRenameCategory(ctx, kind, input)
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "delete" + label,
		Method:      http.MethodDelete,
		Path:        base + "/{name}",
		Summary:     "Delete " + string(kind),
		Description: "Moves every game that references the " + string(kind) + " to \"Other\", then deletes it. Creator or superuser only.",
		Tags:        tags,
		Security:    bearer,
	}, func(ctx context.Context, input *CategoryPathInput) (*DeleteCategoryOutput, error) {
		return s.handleDeleteCategory(ctx, kind, input)
	})
}

// === DTOs ===

type CategoryResponse struct {
	ID           string    `json:"id" doc:"Record ID"`
	Kind         string    `json:"kind" doc:"genre or publisher"`
	Name         string    `json:"name" doc:"Unique name"`
	Description  string    `json:"description,omitempty" doc:"Description"`
	CreatorEmail string    `json:"creator_email,omitempty" doc:"Owner; empty for \"Other\""`
	CreatedAt    time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time `json:"updated_at" doc:"Last update time"`
}

type ListCategoriesResponse struct {
	Items []CategoryResponse `json:"items" doc:"Records ordered by name"`
}

type ListCategoriesOutput struct {
	Body ListCategoriesResponse
}

type CreateCategoryRequest struct {
	Name        string `json:"name" doc:"Name, unique within the kind"`
	Description string `json:"description,omitempty" doc:"Description"`
}

type CreateCategoryInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateCategoryRequest
}

type CategoryOutput struct {
	Body CategoryResponse
}

type CategoryPathInput struct {
	Authorization string `header:"Authorization"`
	Name          string `path:"name" doc:"Exact name"`
}

type CategoryPageResponse struct {
	CategoryResponse
	Games   []GameResponse `json:"games" doc:"Games filed under this record"`
	Related []string       `json:"related" doc:"Distinct names of the other kind among the games"`
}

type CategoryPageOutput struct {
	Body CategoryPageResponse
}

type UpdateCategoryRequest struct {
	Description string `json:"description" doc:"New description"`
}

type UpdateCategoryInput struct {
	Authorization string `header:"Authorization"`
	Name          string `path:"name" doc:"Exact name"`
	Body          UpdateCategoryRequest
}

type RenameCategoryRequest struct {
	Name string `json:"name" doc:"New name"`
}

type RenameCategoryInput struct {
	Authorization string `header:"Authorization"`
	Name          string `path:"name" doc:"Current name"`
	Body          RenameCategoryRequest
}

type RenameResponse struct {
	CategoryResponse
	GamesUpdated int `json:"games_updated" doc:"Games whose reference was rewritten"`
}

type RenameOutput struct {
	Body RenameResponse
}

type DeleteCategoryResponse struct {
	Name            string `json:"name" doc:"Deleted name"`
	GamesReassigned int    `json:"games_reassigned" doc:"Games moved to \"Other\""`
	Message         string `json:"message" doc:"Human-readable result"`
}

type DeleteCategoryOutput struct {
	Body DeleteCategoryResponse
}

// === Handlers ===

func (s *Server) handleListCategories(ctx context.Context, kind domain.Kind) (*ListCategoriesOutput, error) {
	list, err := s.services.Categories.List(ctx, kind)
	if err != nil {
		return nil, err
	}
	resp := make([]CategoryResponse, len(list))
	for i, c := range list {
		resp[i] = mapCategoryResponse(c)
	}
	return &ListCategoriesOutput{Body: ListCategoriesResponse{Items: resp}}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, kind domain.Kind, input *CreateCategoryInput) (*CategoryOutput, error) {
	c, err := s.services.Categories.Create(ctx, actingEmail(ctx), kind, service.CategoryInput{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleGetCategoryPage(ctx context.Context, kind domain.Kind, input *CategoryPathInput) (*CategoryPageOutput, error) {
	page, err := s.services.Categories.Page(ctx, kind, input.Name)
	if err != nil {
		return nil, err
	}

	games := make([]GameResponse, len(page.Games))
	for i, g := range page.Games {
		games[i] = mapGameResponse(g)
	}
	related := page.Related
	if related == nil {
		related = []string{}
	}

	return &CategoryPageOutput{Body: CategoryPageResponse{
		CategoryResponse: mapCategoryResponse(page.Category),
		Games:            games,
		Related:          related,
	}}, nil
}

func (s *Server) handleUpdateCategory(ctx context.Context, kind domain.Kind, input *UpdateCategoryInput) (*CategoryOutput, error) {
	c, err := s.services.Categories.UpdateDescription(ctx, actingEmail(ctx), kind, input.Name, input.Body.Description)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: mapCategoryResponse(c)}, nil
}

func (s *Server) handleRenameCategory(ctx context.Context, kind domain.Kind, input *RenameCategoryInput) (*RenameOutput, error) {
	res, err := s.services.Categories.Rename(ctx, actingEmail(ctx), kind, input.Name, input.Body.Name)
	if err != nil {
		return nil, err
	}
	return &RenameOutput{Body: RenameResponse{
		CategoryResponse: mapCategoryResponse(res.Category),
		GamesUpdated:     res.GamesUpdated,
	}}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, kind domain.Kind, input *CategoryPathInput) (*DeleteCategoryOutput, error) {
	res, err := s.services.Categories.Delete(ctx, actingEmail(ctx), kind, input.Name)
	if err != nil {
		return nil, err
	}
	return &DeleteCategoryOutput{Body: DeleteCategoryResponse{
		Name:            res.Name,
		GamesReassigned: res.GamesReassigned,
		Message:         kind.Label() + " \"" + res.Name + "\" was deleted.",
	}}, nil
}

func mapCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:           c.ID,
		Kind:         string(c.Kind),
		Name:         c.Name,
		Description:  c.Description,
		CreatorEmail: c.CreatorEmail,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
