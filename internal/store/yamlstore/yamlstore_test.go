package yamlstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/store"
	"github.com/MeKo-Tech/langid/internal/testutil"
	"github.com/MeKo-Tech/langid/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfiles(t *testing.T) []*ngram.Profile {
	t.Helper()
	var out []*ngram.Profile
	for _, ref := range []struct{ label, text string }{
		{"en", testutil.EnglishText},
		{"de", testutil.GermanText},
	} {
		p := ngram.NewProfile(ref.label)
		require.NoError(t, tokenizer.Default().BuildProfile(p, ref.text))
		out = append(out, p)
	}
	return out
}

func TestYAMLStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(testutil.CreateTempDir(t), "nested", "profiles.yaml")

	st, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()

	profiles := sampleProfiles(t)
	snap := store.NewSnapshot(profiles, 1, 5)
	require.NoError(t, st.Save(ctx, snap))

	got, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, got.ID)
	assert.True(t, snap.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, got.Compatible(1, 5))
	require.Len(t, got.Profiles, 2)

	for i, p := range got.Profiles {
		assert.Equal(t, profiles[i].Label(), p.Label())
		assert.Equal(t, profiles[i].Ranked(), p.Ranked())
		d, err := p.Distance(profiles[i])
		require.NoError(t, err)
		assert.Equal(t, 0, d)
	}
}

func TestYAMLStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(testutil.CreateTempDir(t), "profiles.yaml")
	st, err := Open(path)
	require.NoError(t, err)

	profiles := sampleProfiles(t)
	require.NoError(t, st.Save(ctx, store.NewSnapshot(profiles, 1, 5)))
	second := store.NewSnapshot(profiles[:1], 1, 5)
	require.NoError(t, st.Save(ctx, second))

	got, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Len(t, got.Profiles, 1)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestYAMLStore_LoadMissing(t *testing.T) {
	st, err := Open(filepath.Join(testutil.CreateTempDir(t), "missing.yaml"))
	require.NoError(t, err)

	_, err = st.Load(context.Background())
	require.ErrorIs(t, err, store.ErrNoSnapshot)
}

func TestYAMLStore_LoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "not yaml", content: "profiles: [unterminated"},
		{
			name: "increasing counts",
			content: `id: 01HZX3T4W5V6B7N8M9K0J1H2G3
cutoff: 300
min_len: 1
max_len: 5
profiles:
  - label: en
    ngrams:
      - {text: a, count: 1}
      - {text: b, count: 2}
`,
			wantErr: ngram.ErrCorruptProfile,
		},
		{
			name: "no profiles",
			content: `id: 01HZX3T4W5V6B7N8M9K0J1H2G3
cutoff: 300
profiles: []
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.CreateTempDir(t)
			path := testutil.WriteFile(t, dir, "profiles.yaml", tt.content)
			st, err := Open(path)
			require.NoError(t, err)

			_, err = st.Load(context.Background())
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestYAMLStore_SaveRejectsInvalid(t *testing.T) {
	st, err := Open(filepath.Join(testutil.CreateTempDir(t), "profiles.yaml"))
	require.NoError(t, err)

	err = st.Save(context.Background(), store.NewSnapshot([]*ngram.Profile{ngram.NewProfile("en")}, 1, 5))
	require.ErrorIs(t, err, ngram.ErrNotFinalized)
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
}
