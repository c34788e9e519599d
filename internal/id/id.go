// Package id generates prefixed record identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// alphabet keeps identifiers safe for use as file names and URL segments.
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// size gives roughly 103 bits of entropy with the 36-character alphabet.
const size = 20

// Prefixes used for catalog records.
const (
	PrefixGenre     = "genre"
	PrefixPublisher = "publisher"
	PrefixGame      = "game"
	PrefixToken     = "tok"
)

// Generate creates an identifier of the form prefix-xxxxxxxxxxxxxxxxxxxx.
// Returns an error if the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.Generate(alphabet, size)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}
