package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/icgdb/icgdb-server/internal/domain"
	"github.com/icgdb/icgdb-server/internal/store"
)

func TestCreateGame_AllFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "owner@example.com", domain.PrivilegeDefault)
	mustCreateCategory(t, s, domain.KindGenre, "Platformer", "owner@example.com")
	mustCreateCategory(t, s, domain.KindPublisher, "Nintendo", "owner@example.com")

	release := time.Date(1985, 9, 13, 0, 0, 0, 0, time.UTC)
	mv := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	g := &domain.Game{
		ID:              "game-smb",
		Name:            "Super Mario Bros.",
		GenreName:       "Platformer",
		PublisherName:   "Nintendo",
		CreatorEmail:    "owner@example.com",
		ReleaseDate:     &release,
		Description:     "Run right.",
		Rating:          "95/100",
		MarketValue:     "$40",
		MarketValueDate: &mv,
		PictureRef:      "smb.png",
		PictureBlurHash: "LEHV6nWB2yk8pyo0adR*.7kCMdnj",
	}
	g.InitTimestamps()
	if err := s.CreateGame(ctx, g); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}

	got, err := s.GetGame(ctx, "Super Mario Bros.")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.GenreName != "Platformer" || got.PublisherName != "Nintendo" {
		t.Errorf("categories: got %s / %s", got.GenreName, got.PublisherName)
	}
	if got.ReleaseDate == nil || !got.ReleaseDate.Equal(release) {
		t.Errorf("ReleaseDate: got %v, want %v", got.ReleaseDate, release)
	}
	if got.MarketValueDate == nil || !got.MarketValueDate.Equal(mv) {
		t.Errorf("MarketValueDate: got %v, want %v", got.MarketValueDate, mv)
	}
	if got.Rating != "95/100" || got.MarketValue != "$40" || got.Description != "Run right." {
		t.Errorf("scalars: got %+v", got)
	}
	if got.PictureRef != "smb.png" || got.PictureBlurHash == "" {
		t.Errorf("picture: got %q / %q", got.PictureRef, got.PictureBlurHash)
	}
}

func TestCreateGame_OptionalFieldsEmpty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "owner@example.com", domain.PrivilegeDefault)
	mustCreateGame(t, s, "Bare", domain.SentinelName, domain.SentinelName, "owner@example.com")

	got, err := s.GetGame(ctx, "Bare")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.ReleaseDate != nil || got.MarketValueDate != nil {
		t.Errorf("dates should be nil, got %v / %v", got.ReleaseDate, got.MarketValueDate)
	}
	if got.Description != "" || got.Rating != "" {
		t.Errorf("optional strings should be empty, got %+v", got)
	}
}

func TestCreateGame_UnknownGenre(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, "owner@example.com", domain.PrivilegeDefault)

	g := &domain.Game{
		ID: "game-x", Name: "X", GenreName: "Missing", PublisherName: domain.SentinelName,
		CreatorEmail: "owner@example.com",
	}
	g.InitTimestamps()
	err := s.CreateGame(context.Background(), g)
	if !errors.Is(err, store.ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
}

func TestCreateGame_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, "owner@example.com", domain.PrivilegeDefault)
	mustCreateGame(t, s, "Tetris", domain.SentinelName, domain.SentinelName, "owner@example.com")

	g := &domain.Game{
		ID: "game-tetris-2", Name: "Tetris", GenreName: domain.SentinelName,
		PublisherName: domain.SentinelName, CreatorEmail: "owner@example.com",
	}
	g.InitTimestamps()
	err := s.CreateGame(context.Background(), g)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestListGames_Filter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "owner@example.com", domain.PrivilegeDefault)
	mustCreateCategory(t, s, domain.KindGenre, "RPG", "owner@example.com")
	mustCreateCategory(t, s, domain.KindPublisher, "Square", "owner@example.com")

	mustCreateGame(t, s, "FF7", "RPG", "Square", "owner@example.com")
	mustCreateGame(t, s, "Chrono", "RPG", domain.SentinelName, "owner@example.com")
	mustCreateGame(t, s, "Tobal", domain.SentinelName, "Square", "owner@example.com")

	tests := []struct {
		name   string
		filter store.GameFilter
		want   []string
	}{
		{"all", store.GameFilter{}, []string{"Chrono", "FF7", "Tobal"}},
		{"genre", store.GameFilter{GenreName: "RPG"}, []string{"Chrono", "FF7"}},
		{"publisher", store.GameFilter{PublisherName: "Square"}, []string{"FF7", "Tobal"}},
		{"both", store.GameFilter{GenreName: "RPG", PublisherName: "Square"}, []string{"FF7"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			games, err := s.ListGames(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListGames: %v", err)
			}
			if len(games) != len(tt.want) {
				t.Fatalf("got %d games, want %d", len(games), len(tt.want))
			}
			for i, g := range games {
				if g.Name != tt.want[i] {
					t.Errorf("games[%d] = %s, want %s", i, g.Name, tt.want[i])
				}
			}
		})
	}
}

func TestUpdateGame(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "owner@example.com", domain.PrivilegeDefault)
	g := mustCreateGame(t, s, "Old Name", domain.SentinelName, domain.SentinelName, "owner@example.com")

	g.Name = "New Name"
	g.Rating = "80/100"
	g.Touch()
	if err := s.UpdateGame(ctx, g); err != nil {
		t.Fatalf("UpdateGame: %v", err)
	}

	if _, err := s.GetGame(ctx, "Old Name"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("old name still resolves: %v", err)
	}
	got, err := s.GetGame(ctx, "New Name")
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if got.Rating != "80/100" || got.CreatorEmail != "owner@example.com" {
		t.Errorf("got %+v", got)
	}
}

func TestDeleteGame(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	mustCreateUser(t, s, "owner@example.com", domain.PrivilegeDefault)
	g := mustCreateGame(t, s, "Gone", domain.SentinelName, domain.SentinelName, "owner@example.com")

	if err := s.DeleteGame(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGame: %v", err)
	}
	if err := s.DeleteGame(ctx, g.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
