// Package detector selects the reference profiles closest to a query profile.
package detector

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MeKo-Tech/langid/internal/ngram"
)

// Sentinel errors returned by classification.
var (
	ErrNoReferenceData = errors.New("no reference profiles available")
	ErrEmptyQuery      = errors.New("query contains no n-grams")
	ErrDuplicateLabel  = errors.New("duplicate reference label")
)

// Match is the out-of-place distance between a query and one reference.
type Match struct {
	Label    string `json:"label"`
	Distance int    `json:"distance"`
}

// Classify ranks refs by their distance from query, closest first. Equal
// distances keep the order of refs. A query without n-grams is rejected with
// ErrEmptyQuery since it would match every reference at distance 0.
func Classify(query *ngram.Profile, refs []*ngram.Profile) ([]Match, error) {
	if len(refs) == 0 {
		return nil, ErrNoReferenceData
	}
	if query == nil || !query.IsFinalized() {
		return nil, fmt.Errorf("query: %w", ngram.ErrNotFinalized)
	}
	if query.Size() == 0 {
		return nil, ErrEmptyQuery
	}

	matches := make([]Match, 0, len(refs))
	for _, ref := range refs {
		if ref == nil {
			return nil, fmt.Errorf("reference: %w", ngram.ErrNotFinalized)
		}
		d, err := query.Distance(ref)
		if err != nil {
			return nil, fmt.Errorf("reference %q: %w", ref.Label(), err)
		}
		matches = append(matches, Match{Label: ref.Label(), Distance: d})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		return a.Distance - b.Distance
	})
	return matches, nil
}

// Top returns the first k matches; k <= 0 returns all of them.
func Top(matches []Match, k int) []Match {
	if k <= 0 || k > len(matches) {
		return matches
	}
	return matches[:k]
}
