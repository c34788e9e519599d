package domain

import "fmt"

// SentinelName is the fallback Genre/Publisher every orphaned Game is reassigned to.
const SentinelName = "Other"

// Kind identifies a record type with its own name namespace.
type Kind string

const (
	KindGenre     Kind = "genre"
	KindPublisher Kind = "publisher"
	KindGame      Kind = "game"
)

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindGenre, KindPublisher, KindGame:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

// IsCategory reports whether games reference this kind by name.
func (k Kind) IsCategory() bool {
	return k == KindGenre || k == KindPublisher
}

// Label returns the capitalised singular used in user-facing messages.
func (k Kind) Label() string {
	switch k {
	case KindGenre:
		return "Genre"
	case KindPublisher:
		return "Publisher"
	case KindGame:
		return "Game"
	default:
		return string(k)
	}
}

// Category is a Genre or a Publisher. Both share one shape and each kind
// has an independent name namespace.
type Category struct {
	Timestamps
	ID           string `json:"id"`
	Kind         Kind   `json:"kind"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	CreatorEmail string `json:"creator_email,omitempty"`
}

// SentinelID returns the fixed ID the initial migration assigns to a kind's "Other" row.
func SentinelID(k Kind) string {
	return string(k) + "-other"
}
