package server

import (
	"testing"

	"github.com/MeKo-Tech/langid/internal/detector"
	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/testutil"
	"github.com/MeKo-Tech/langid/internal/tokenizer"
	"github.com/stretchr/testify/require"
)

// fakeDetector returns canned results.
type fakeDetector struct {
	matches []detector.Match
	err     error
	langs   []string
	queries []string
}

func (f *fakeDetector) Detect(text string) ([]detector.Match, error) {
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

func (f *fakeDetector) Languages() []string { return f.langs }

func newFakeDetector() *fakeDetector {
	return &fakeDetector{
		matches: []detector.Match{
			{Label: "en", Distance: 100},
			{Label: "de", Distance: 200},
			{Label: "es", Distance: 300},
		},
		langs: []string{"de", "en", "es"},
	}
}

func newRealDetector(t *testing.T) *detector.Detector {
	t.Helper()
	tok := tokenizer.Default()

	var refs []*ngram.Profile
	for label, text := range map[string]string{
		"de": testutil.GermanText,
		"en": testutil.EnglishText,
		"es": testutil.SpanishText,
	} {
		p := ngram.NewProfile(label)
		require.NoError(t, tok.BuildProfile(p, text))
		refs = append(refs, p)
	}

	d, err := detector.New(tok, refs)
	require.NoError(t, err)
	return d
}

func newTestServer(t *testing.T, cfg Config, det detectorInterface) *Server {
	t.Helper()
	s, err := NewServer(cfg, det)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
