// Package ngram holds the character n-gram frequency profiles used for
// language identification and the out-of-place distance between them.
package ngram

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by profile operations.
var (
	ErrAlreadyFinalized = errors.New("profile is already finalized")
	ErrNotFinalized     = errors.New("profile is not yet finalized")
	ErrInvalidNGram     = errors.New("invalid n-gram")
	ErrCorruptProfile   = errors.New("corrupt profile data")
)

// unranked marks an n-gram whose profile has not been finalized yet.
const unranked = -1

// NGram is a character slice of a text together with its number of
// occurrences and its position in the finalized frequency ranking.
type NGram struct {
	text  string
	count int
	rank  int
}

// NewNGram creates an n-gram seen once and not yet ranked.
func NewNGram(text string) (*NGram, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text must not be empty", ErrInvalidNGram)
	}
	return &NGram{text: text, count: 1, rank: unranked}, nil
}

// Text returns the characters of the n-gram.
func (g NGram) Text() string { return g.text }

// Count returns the number of occurrences.
func (g NGram) Count() int { return g.count }

// Rank returns the position in the frequency ranking, or -1 before finalization.
func (g NGram) Rank() int { return g.rank }

// Ranked reports whether a rank has been assigned.
func (g NGram) Ranked() bool { return g.rank != unranked }

func (g *NGram) increment() int {
	g.count++
	return g.count
}

// String renders the n-gram as "text (count,rank)".
func (g NGram) String() string {
	return fmt.Sprintf("%s (%d,%d)", g.text, g.count, g.rank)
}

// byFrequency orders n-grams by descending count. Equal counts compare equal,
// so a stable sort keeps first-insertion order among them.
func byFrequency(a, b *NGram) int {
	return b.count - a.count
}
