package corpus

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/langid/internal/detector"
	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/testutil"
	"github.com/MeKo-Tech/langid/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labels(profiles []*ngram.Profile) []string {
	out := make([]string, len(profiles))
	for i, p := range profiles {
		out[i] = p.Label()
	}
	return out
}

func TestLabel(t *testing.T) {
	tests := []struct {
		path   string
		length int
		want   string
	}{
		{path: "data/training/de_wiki.txt", length: 2, want: "de"},
		{path: "en.txt", length: 2, want: "en"},
		{path: "fr", length: 2, want: "fr"},
		{path: "x.txt", length: 2, want: "x"},
		{path: "german.txt", length: 0, want: "german"},
		{path: "ελληνικά.txt", length: 2, want: "ελ"},
		{path: "pt-BR.sample.txt", length: 5, want: "pt-BR"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.path, tt.length))
		})
	}
}

func TestLoad_SampleCorpus(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dir = testutil.WriteCorpus(t)

	profiles, err := Load(context.Background(), cfg, tokenizer.Default())
	require.NoError(t, err)
	assert.Equal(t, []string{"de", "en", "es"}, labels(profiles))

	for _, p := range profiles {
		assert.True(t, p.IsFinalized())
		assert.Positive(t, p.Size())
		assert.LessOrEqual(t, p.Size(), ngram.Cutoff)
	}

	d, err := detector.New(tokenizer.Default(), profiles)
	require.NoError(t, err)
	matches, err := d.Detect("die Kinder spielen im Garten")
	require.NoError(t, err)
	assert.Equal(t, "de", matches[0].Label)
}

func TestLoad_MergesFilesWithSameLabel(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.WriteFile(t, dir, "en_1.txt", "a")
	testutil.WriteFile(t, dir, "en_2.txt", "A")

	profiles, err := Load(context.Background(), Config{Dir: dir, LabelLength: 2}, nil)
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	for _, g := range profiles[0].Ranked() {
		assert.Equal(t, 2, g.Count())
	}
}

func TestLoad_EmptyDirectory(t *testing.T) {
	dir := testutil.CreateTempDir(t)

	_, err := Load(context.Background(), Config{Dir: dir, LabelLength: 2}, nil)
	require.ErrorIs(t, err, ErrNoReferenceFiles)
}

func TestLoad_OnlyEmptyFiles(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.WriteFile(t, dir, "de.txt", "1234 ...")

	_, err := Load(context.Background(), Config{Dir: dir, LabelLength: 2}, nil)
	require.ErrorIs(t, err, ErrNoReferenceFiles)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load(context.Background(), Config{Dir: "/non/existent/corpus"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot access")
}

func TestLoad_Cancelled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dir = testutil.WriteCorpus(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, cfg, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoad_HTML(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.WriteFile(t, dir, "en.html", `<html><head><style>zzz{}</style>
<script>var qqq = 1;</script></head><body><p>a</p><p>a</p></body></html>`)

	profiles, err := Load(context.Background(), Config{Dir: dir, LabelLength: 2}, nil)
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	p := profiles[0]
	assert.Equal(t, 4, p.Size())
	_, ok, err := p.RankOf(" a ")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = p.RankOf("z")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoad_IncludeExcludeRecursive(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	testutil.WriteFile(t, dir, "de.txt", testutil.GermanText)
	testutil.WriteFile(t, dir, "en.md", testutil.EnglishText)
	testutil.WriteFile(t, dir, filepath.Join("more", "es.txt"), testutil.SpanishText)
	testutil.WriteFile(t, dir, ".hidden.txt", testutil.EnglishText)

	tests := []struct {
		name string
		cfg  Config
		want []string
	}{
		{name: "flat", cfg: Config{Dir: dir, LabelLength: 2}, want: []string{"de", "en"}},
		{name: "recursive", cfg: Config{Dir: dir, LabelLength: 2, Recursive: true}, want: []string{"de", "en", "es"}},
		{name: "include", cfg: Config{Dir: dir, LabelLength: 2, Recursive: true, Include: []string{"*.txt"}}, want: []string{"de", "es"}},
		{name: "exclude", cfg: Config{Dir: dir, LabelLength: 2, Exclude: []string{"de*"}}, want: []string{"en"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles, err := Load(context.Background(), tt.cfg, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, labels(profiles))
		})
	}
}
