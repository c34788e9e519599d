// Package search provides full-text search over games using Bleve.
package search

import "github.com/icgdb/icgdb-server/internal/domain"

// GameDocument is the indexed form of a game. The Bleve document ID is the
// game's ID, so renames update the same document.
type GameDocument struct {
	ID          string
	Name        string
	Description string
	Genre       string
	Publisher   string
	ReleaseYear int
}

// NewGameDocument builds the indexed form of g.
func NewGameDocument(g *domain.Game) *GameDocument {
	doc := &GameDocument{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Genre:       g.GenreName,
		Publisher:   g.PublisherName,
	}
	if g.ReleaseDate != nil {
		doc.ReleaseYear = g.ReleaseDate.Year()
	}
	return doc
}

// toMap uses the lower-case field names the mapping declares.
func (d *GameDocument) toMap() map[string]any {
	m := map[string]any{
		"name":        d.Name,
		"description": d.Description,
		"genre":       d.Genre,
		"publisher":   d.Publisher,
		// Keyword copies for exact filtering.
		"genre_exact":     d.Genre,
		"publisher_exact": d.Publisher,
	}
	if d.ReleaseYear > 0 {
		m["release_year"] = float64(d.ReleaseYear)
	}
	return m
}
