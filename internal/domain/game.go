package domain

import "time"

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// Game references its Genre and Publisher by name, so renaming either
// cascades into every game row.
type Game struct {
	Timestamps
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	GenreName       string     `json:"genre"`
	PublisherName   string     `json:"publisher"`
	CreatorEmail    string     `json:"creator_email"`
	ReleaseDate     *time.Time `json:"release_date,omitempty"`
	Description     string     `json:"description,omitempty"`
	Rating          string     `json:"rating,omitempty"`
	MarketValue     string     `json:"market_value,omitempty"`
	MarketValueDate *time.Time `json:"mv_date,omitempty"`
	PictureRef      string     `json:"pic_url,omitempty"`
	PictureBlurHash string     `json:"pic_blurhash,omitempty"`
}

// CategoryName returns the name the game references for a category kind.
func (g *Game) CategoryName(k Kind) string {
	switch k {
	case KindGenre:
		return g.GenreName
	case KindPublisher:
		return g.PublisherName
	default:
		return ""
	}
}

// FormatDate renders an optional date in DateLayout, or "" when unset.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate parses an optional DateLayout string. Empty input yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
