package ngram

import (
	"fmt"
	"slices"
	"strings"
)

const (
	// Cutoff is the maximum number of n-grams kept in a finalized profile.
	Cutoff = 300
	// MaxOutOfPlace is the distance charged for an n-gram missing from the compared profile.
	MaxOutOfPlace = 300
)

// Profile is the frequency ranking of the n-grams of one text. While open it
// accumulates occurrences; Finalize freezes it into a ranking of at most
// Cutoff entries that can be compared with other finalized profiles.
type Profile struct {
	label     string
	entries   map[string]*NGram
	order     []*NGram // first-occurrence order, dropped on finalize
	ranked    []*NGram
	finalized bool
}

// Entry is the persisted form of one ranked n-gram.
type Entry struct {
	Text  string `json:"text" yaml:"text"`
	Count int    `json:"count" yaml:"count"`
}

// NewProfile creates an empty, open profile.
func NewProfile(label string) *Profile {
	return &Profile{
		label:   label,
		entries: make(map[string]*NGram),
	}
}

// Restore rebuilds a finalized profile from entries listed in rank order.
func Restore(label string, entries []Entry) (*Profile, error) {
	if len(entries) > Cutoff {
		return nil, fmt.Errorf("%w: %s has %d n-grams, cutoff is %d", ErrCorruptProfile, label, len(entries), Cutoff)
	}

	p := NewProfile(label)
	p.ranked = make([]*NGram, 0, len(entries))
	for i, e := range entries {
		g, err := NewNGram(e.Text)
		if err != nil {
			return nil, fmt.Errorf("%s rank %d: %w", label, i, err)
		}
		if _, dup := p.entries[e.Text]; dup {
			return nil, fmt.Errorf("%w: %s lists %q twice", ErrCorruptProfile, label, e.Text)
		}
		if e.Count < 1 {
			return nil, fmt.Errorf("%w: %s count %d for %q", ErrCorruptProfile, label, e.Count, e.Text)
		}
		if i > 0 && e.Count > entries[i-1].Count {
			return nil, fmt.Errorf("%w: %s is not sorted by frequency at rank %d", ErrCorruptProfile, label, i)
		}
		g.count = e.Count
		g.rank = i
		p.entries[e.Text] = g
		p.ranked = append(p.ranked, g)
	}
	p.finalized = true
	return p, nil
}

// Label returns the language label; empty for anonymous queries.
func (p *Profile) Label() string { return p.label }

// IsFinalized reports whether the profile has been frozen.
func (p *Profile) IsFinalized() bool { return p.finalized }

// Size returns the number of n-grams held: all accumulated ones while open,
// the retained ones after finalization.
func (p *Profile) Size() int { return len(p.entries) }

// Add records one occurrence of text and returns its new count.
func (p *Profile) Add(text string) (int, error) {
	if p.finalized {
		return 0, ErrAlreadyFinalized
	}
	if g, ok := p.entries[text]; ok {
		return g.increment(), nil
	}
	g, err := NewNGram(text)
	if err != nil {
		return 0, err
	}
	p.entries[text] = g
	p.order = append(p.order, g)
	return g.count, nil
}

// Finalize ranks the accumulated n-grams by descending frequency, keeping
// first-occurrence order among equal counts, and drops everything ranked at
// or beyond Cutoff. Finalizing a finalized profile does nothing.
func (p *Profile) Finalize() {
	if p.finalized {
		return
	}

	sorted := p.order
	slices.SortStableFunc(sorted, byFrequency)

	if len(sorted) > Cutoff {
		for _, g := range sorted[Cutoff:] {
			delete(p.entries, g.text)
		}
		sorted = sorted[:Cutoff:Cutoff]
	}
	for i, g := range sorted {
		g.rank = i
	}

	p.ranked = sorted
	p.order = nil
	p.finalized = true
}

// RankOf returns the rank of text and whether it is part of the ranking.
func (p *Profile) RankOf(text string) (int, bool, error) {
	if !p.finalized {
		return 0, false, ErrNotFinalized
	}
	g, ok := p.entries[text]
	if !ok {
		return 0, false, nil
	}
	return g.rank, true, nil
}

// Distance computes the out-of-place measure of p against other: for every
// n-gram ranked in p, the absolute rank difference to other, or
// MaxOutOfPlace when other lacks it. The measure is driven by p and is not
// symmetric.
func (p *Profile) Distance(other *Profile) (int, error) {
	if !p.finalized || other == nil || !other.finalized {
		return 0, ErrNotFinalized
	}

	dist := 0
	for _, g := range p.ranked {
		o, ok := other.entries[g.text]
		if !ok {
			dist += MaxOutOfPlace
			continue
		}
		if d := g.rank - o.rank; d < 0 {
			dist -= d
		} else {
			dist += d
		}
	}
	return dist, nil
}

// Ranked returns a copy of the ranking, or nil while the profile is open.
func (p *Profile) Ranked() []NGram {
	if !p.finalized {
		return nil
	}
	out := make([]NGram, len(p.ranked))
	for i, g := range p.ranked {
		out[i] = *g
	}
	return out
}

// Entries returns the ranking in its persisted form.
func (p *Profile) Entries() []Entry {
	if !p.finalized {
		return nil
	}
	out := make([]Entry, len(p.ranked))
	for i, g := range p.ranked {
		out[i] = Entry{Text: g.text, Count: g.count}
	}
	return out
}

// String renders the profile as "label: [g (count,rank), ...]".
func (p *Profile) String() string {
	var b strings.Builder
	b.WriteString(p.label)
	b.WriteString(": [")
	grams := p.ranked
	if !p.finalized {
		grams = p.order
	}
	for i, g := range grams {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(g.String())
	}
	b.WriteString("]")
	return b.String()
}
