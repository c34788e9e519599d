package api

import (
	"encoding/xml"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/icgdb/icgdb-server/internal/domain"
	"github.com/icgdb/icgdb-server/internal/http/response"
	"github.com/icgdb/icgdb-server/internal/store"
)

// XML documents. List endpoints wrap their items in a root element.

type xmlGame struct {
	XMLName     xml.Name `xml:"game"`
	Genre       string   `xml:"genre,attr"`
	Publisher   string   `xml:"publisher,attr"`
	Name        string   `xml:"name"`
	Description string   `xml:"description"`
	ReleaseDate string   `xml:"release_date"`
	Rating      string   `xml:"rating"`
	MarketValue string   `xml:"market_value"`
	MVDate      string   `xml:"mv_date"`
}

type xmlGames struct {
	XMLName xml.Name  `xml:"games"`
	Games   []xmlGame `xml:"game"`
}

type xmlCategory struct {
	XMLName     xml.Name
	Name        string `xml:"name"`
	Description string `xml:"description"`
}

type xmlCategories struct {
	XMLName xml.Name
	Items   []xmlCategory
}

func (s *Server) registerXMLRoutes() {
	s.router.Get("/xml/games", s.handleXMLGames)
	s.router.Get("/xml/games/{name}", s.handleXMLGame)
	s.router.Get("/xml/genres", s.handleXMLCategories(domain.KindGenre, "genres"))
	s.router.Get("/xml/publishers", s.handleXMLCategories(domain.KindPublisher, "publishers"))
}

func (s *Server) handleXMLGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.services.Games.List(r.Context(), store.GameFilter{})
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	doc := xmlGames{Games: make([]xmlGame, len(games))}
	for i, g := range games {
		doc.Games[i] = toXMLGame(g)
	}
	response.XML(w, http.StatusOK, doc, s.logger)
}

func (s *Server) handleXMLGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.services.Games.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.XML(w, http.StatusOK, toXMLGame(g), s.logger)
}

func (s *Server) handleXMLCategories(kind domain.Kind, root string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.services.Categories.List(r.Context(), kind)
		if err != nil {
			response.HandleError(w, err, s.logger)
			return
		}
		doc := xmlCategories{
			XMLName: xml.Name{Local: root},
			Items:   make([]xmlCategory, len(list)),
		}
		for i, c := range list {
			doc.Items[i] = xmlCategory{
				XMLName:     xml.Name{Local: string(kind)},
				Name:        c.Name,
				Description: c.Description,
			}
		}
		response.XML(w, http.StatusOK, doc, s.logger)
	}
}

func toXMLGame(g *domain.Game) xmlGame {
	return xmlGame{
		Genre:       g.GenreName,
		Publisher:   g.PublisherName,
		Name:        g.Name,
		Description: g.Description,
		ReleaseDate: domain.FormatDate(g.ReleaseDate),
		Rating:      g.Rating,
		MarketValue: g.MarketValue,
		MVDate:      domain.FormatDate(g.MarketValueDate),
	}
}
