package store

import (
	"testing"

	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finalized(t *testing.T, label string, grams ...string) *ngram.Profile {
	t.Helper()
	p := ngram.NewProfile(label)
	for _, g := range grams {
		_, err := p.Add(g)
		require.NoError(t, err)
	}
	p.Finalize()
	return p
}

func TestNewID_Monotonic(t *testing.T) {
	prev := NewID()
	for range 100 {
		id := NewID()
		_, err := ulid.ParseStrict(id)
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestSnapshot_Validate(t *testing.T) {
	en := finalized(t, "en", "a")
	open := ngram.NewProfile("de")

	tests := []struct {
		name    string
		snap    *Snapshot
		wantErr bool
	}{
		{name: "valid", snap: NewSnapshot([]*ngram.Profile{en}, 1, 5)},
		{name: "nil", snap: nil, wantErr: true},
		{name: "empty id", snap: &Snapshot{Profiles: []*ngram.Profile{en}}, wantErr: true},
		{name: "bad id", snap: &Snapshot{ID: "nope", Profiles: []*ngram.Profile{en}}, wantErr: true},
		{name: "no profiles", snap: NewSnapshot(nil, 1, 5), wantErr: true},
		{name: "open profile", snap: NewSnapshot([]*ngram.Profile{open}, 1, 5), wantErr: true},
		{name: "duplicate", snap: NewSnapshot([]*ngram.Profile{en, finalized(t, "en", "b")}, 1, 5), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSnapshot_Compatible(t *testing.T) {
	snap := NewSnapshot([]*ngram.Profile{finalized(t, "en", "a")}, 1, 5)
	assert.True(t, snap.Compatible(1, 5))
	assert.False(t, snap.Compatible(2, 5))
	assert.False(t, snap.Compatible(1, 4))
}
