package detector

import (
	"fmt"
	"io"
	"slices"

	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/tokenizer"
)

// Detector holds a fixed set of finalized reference profiles and the
// tokenizer used to profile queries. It is safe for concurrent use.
type Detector struct {
	tok  *tokenizer.Tokenizer
	refs []*ngram.Profile
}

// New creates a detector. Every reference must be finalized and carry a
// distinct label.
func New(tok *tokenizer.Tokenizer, refs []*ngram.Profile) (*Detector, error) {
	if tok == nil {
		tok = tokenizer.Default()
	}
	if len(refs) == 0 {
		return nil, ErrNoReferenceData
	}

	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if ref == nil || !ref.IsFinalized() {
			return nil, fmt.Errorf("reference: %w", ngram.ErrNotFinalized)
		}
		if _, dup := seen[ref.Label()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, ref.Label())
		}
		seen[ref.Label()] = struct{}{}
	}

	return &Detector{tok: tok, refs: slices.Clone(refs)}, nil
}

// Detect profiles text and ranks all references against it.
func (d *Detector) Detect(text string) ([]Match, error) {
	query := ngram.NewProfile("")
	if err := d.tok.BuildProfile(query, text); err != nil {
		return nil, err
	}
	return Classify(query, d.refs)
}

// DetectReader profiles the text read from r and ranks all references against it.
func (d *Detector) DetectReader(r io.Reader) ([]Match, error) {
	query := ngram.NewProfile("")
	if err := d.tok.BuildProfileFromReader(query, r); err != nil {
		return nil, err
	}
	return Classify(query, d.refs)
}

// Languages returns the reference labels in reference order.
func (d *Detector) Languages() []string {
	labels := make([]string, len(d.refs))
	for i, ref := range d.refs {
		labels[i] = ref.Label()
	}
	return labels
}

// Reference returns the reference profile with the given label.
func (d *Detector) Reference(label string) (*ngram.Profile, bool) {
	for _, ref := range d.refs {
		if ref.Label() == label {
			return ref, true
		}
	}
	return nil, false
}

// References returns the number of reference profiles.
func (d *Detector) References() int { return len(d.refs) }
