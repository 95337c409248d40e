package ngram

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addAll adds every gram to p, failing the test on error.
func addAll(t *testing.T, p *Profile, grams ...string) {
	t.Helper()
	for _, g := range grams {
		_, err := p.Add(g)
		require.NoError(t, err)
	}
}

func finalized(t *testing.T, label string, grams ...string) *Profile {
	t.Helper()
	p := NewProfile(label)
	addAll(t, p, grams...)
	p.Finalize()
	return p
}

func TestNewNGram(t *testing.T) {
	g, err := NewNGram("test")
	require.NoError(t, err)
	assert.Equal(t, "test", g.Text())
	assert.Equal(t, 1, g.Count())
	assert.Equal(t, -1, g.Rank())
	assert.False(t, g.Ranked())

	assert.Equal(t, 2, g.increment())
	assert.Equal(t, "test (2,-1)", g.String())

	_, err = NewNGram("")
	require.ErrorIs(t, err, ErrInvalidNGram)
}

func TestByFrequency(t *testing.T) {
	a := &NGram{text: "a", count: 4}
	b := &NGram{text: "b", count: 1}
	c := &NGram{text: "c", count: 1}

	assert.Negative(t, byFrequency(a, b))
	assert.Positive(t, byFrequency(b, a))
	assert.Zero(t, byFrequency(b, c))
}

func TestProfile_Add(t *testing.T) {
	p := NewProfile("Test")
	assert.Equal(t, "Test", p.Label())
	assert.False(t, p.IsFinalized())

	n, err := p.Add("a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = p.Add("a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = p.Add("")
	require.ErrorIs(t, err, ErrInvalidNGram)
	assert.Equal(t, 1, p.Size())
}

func TestProfile_AddAfterFinalize(t *testing.T) {
	p := finalized(t, "Test", "a")

	_, err := p.Add("abc")
	require.ErrorIs(t, err, ErrAlreadyFinalized)
	assert.Equal(t, 1, p.Size())

	_, ok, err := p.RankOf("abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfile_NotFinalized(t *testing.T) {
	open := NewProfile("open")
	addAll(t, open, "a")
	closed := finalized(t, "closed", "a")

	_, err := open.Distance(closed)
	require.ErrorIs(t, err, ErrNotFinalized)

	_, err = closed.Distance(open)
	require.ErrorIs(t, err, ErrNotFinalized)

	_, err = closed.Distance(nil)
	require.ErrorIs(t, err, ErrNotFinalized)

	_, _, err = open.RankOf("a")
	require.ErrorIs(t, err, ErrNotFinalized)

	assert.Nil(t, open.Ranked())
	assert.Nil(t, open.Entries())
}

func TestProfile_FinalizeRanksByFrequency(t *testing.T) {
	// c first seen, then b, then a; b and c tie
	p := finalized(t, "Test", "c", "b", "a", "a", "a", "b", "c", "d")

	ranked := p.Ranked()
	require.Len(t, ranked, 4)

	texts := make([]string, len(ranked))
	for i, g := range ranked {
		texts[i] = g.Text()
		assert.Equal(t, i, g.Rank())
	}
	assert.Equal(t, []string{"a", "c", "b", "d"}, texts)

	rank, ok, err := p.RankOf("b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, rank)
}

func TestProfile_FinalizeIdempotent(t *testing.T) {
	p := finalized(t, "Test", "x", "y", "y", "z")
	before := p.Ranked()

	p.Finalize()

	assert.Equal(t, before, p.Ranked())
	assert.True(t, p.IsFinalized())
}

func TestProfile_FinalizeCutoff(t *testing.T) {
	p := NewProfile("big")
	// gram i occurs i+1 times so the ranking is fully determined
	total := Cutoff + 50
	for i := range total {
		g := fmt.Sprintf("g%03d", i)
		for range i + 1 {
			_, err := p.Add(g)
			require.NoError(t, err)
		}
	}
	assert.Equal(t, total, p.Size())

	p.Finalize()

	assert.Equal(t, Cutoff, p.Size())
	ranked := p.Ranked()
	require.Len(t, ranked, Cutoff)
	assert.Equal(t, fmt.Sprintf("g%03d", total-1), ranked[0].Text())
	assert.Equal(t, fmt.Sprintf("g%03d", total-Cutoff), ranked[Cutoff-1].Text())

	// the least frequent grams are gone entirely
	_, ok, err := p.RankOf("g000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfile_EmptyFinalize(t *testing.T) {
	p := NewProfile("")
	p.Finalize()

	assert.True(t, p.IsFinalized())
	assert.Equal(t, 0, p.Size())
	assert.Empty(t, p.Ranked())

	other := finalized(t, "x", "a")
	d, err := p.Distance(other)
	require.NoError(t, err)
	assert.Equal(t, 0, d)
}

func TestProfile_ZeroDistance(t *testing.T) {
	a := finalized(t, "Test", "a")
	b := finalized(t, "Test", "a")

	d, err := a.Distance(b)
	require.NoError(t, err)
	assert.Equal(t, 0, d)
}

func TestProfile_MaxDistance(t *testing.T) {
	// three distinct n-grams, none of which appear in the other profile
	a := finalized(t, "Test", "a", "b", "b", "c")
	b := finalized(t, "Test", "d")

	d, err := a.Distance(b)
	require.NoError(t, err)
	assert.Equal(t, 3*MaxOutOfPlace, d)
}

func TestProfile_CertainDistance(t *testing.T) {
	// a (3), b (2), c (1)
	a := finalized(t, "A", "a", "a", "a", "b", "b", "c")
	// b (3), c (2), a (1)
	b := finalized(t, "B", "a", "b", "b", "b", "c", "c")

	d, err := a.Distance(b)
	require.NoError(t, err)
	assert.Equal(t, 4, d)
}

func TestProfile_DistanceAsymmetric(t *testing.T) {
	a := finalized(t, "A", "a", "a", "b")
	b := finalized(t, "B", "a", "b", "b", "c")

	ab, err := a.Distance(b)
	require.NoError(t, err)
	ba, err := b.Distance(a)
	require.NoError(t, err)

	// a: a=0,b=1  b: b=0,a=1,c=2
	assert.Equal(t, 2, ab)
	assert.Equal(t, 2+MaxOutOfPlace, ba)
}

func TestProfile_String(t *testing.T) {
	p := finalized(t, "en", "b", "a", "a")
	assert.Equal(t, "en: [a (2,0), b (1,1)]", p.String())

	open := NewProfile("de")
	addAll(t, open, "x")
	assert.Equal(t, "de: [x (1,-1)]", open.String())
}

func TestRestore(t *testing.T) {
	src := finalized(t, "fr", "l", "e", "e", " l", "le", "le", "le")

	restored, err := Restore(src.Label(), src.Entries())
	require.NoError(t, err)
	assert.True(t, restored.IsFinalized())
	assert.Equal(t, src.Ranked(), restored.Ranked())

	d, err := restored.Distance(src)
	require.NoError(t, err)
	assert.Equal(t, 0, d)

	_, err = restored.Add("x")
	require.ErrorIs(t, err, ErrAlreadyFinalized)
}

func TestRestore_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
		wantErr error
	}{
		{
			name:    "empty text",
			entries: []Entry{{Text: "", Count: 1}},
			wantErr: ErrInvalidNGram,
		},
		{
			name:    "duplicate",
			entries: []Entry{{Text: "a", Count: 2}, {Text: "a", Count: 1}},
			wantErr: ErrCorruptProfile,
		},
		{
			name:    "zero count",
			entries: []Entry{{Text: "a", Count: 0}},
			wantErr: ErrCorruptProfile,
		},
		{
			name:    "unsorted",
			entries: []Entry{{Text: "a", Count: 1}, {Text: "b", Count: 3}},
			wantErr: ErrCorruptProfile,
		},
		{
			name:    "over cutoff",
			entries: make([]Entry, Cutoff+1),
			wantErr: ErrCorruptProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Restore("xx", tt.entries)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, p)
		})
	}
}
