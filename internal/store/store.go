// Package store persists finalized reference profiles as snapshots so the
// corpus does not have to be re-read on every start.
package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/oklog/ulid/v2"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// Store saves and loads reference snapshots.
type Store interface {
	Save(ctx context.Context, snap *Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
	Close() error
}

// Snapshot is a set of finalized reference profiles together with the
// tokenizer bounds they were built with.
type Snapshot struct {
	ID        string
	CreatedAt time.Time
	Cutoff    int
	MinLen    int
	MaxLen    int
	Profiles  []*ngram.Profile
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new lexically sortable id.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// NewSnapshot wraps profiles in a snapshot with a fresh id.
func NewSnapshot(profiles []*ngram.Profile, minLen, maxLen int) *Snapshot {
	return &Snapshot{
		ID:        NewID(),
		CreatedAt: time.Now().UTC(),
		Cutoff:    ngram.Cutoff,
		MinLen:    minLen,
		MaxLen:    maxLen,
		Profiles:  profiles,
	}
}

// Validate checks that a snapshot can be stored.
func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.New("snapshot is nil")
	}
	if s.ID == "" {
		return errors.New("snapshot id is empty")
	}
	if _, err := ulid.ParseStrict(s.ID); err != nil {
		return fmt.Errorf("invalid snapshot id %q: %w", s.ID, err)
	}
	if len(s.Profiles) == 0 {
		return errors.New("snapshot holds no profiles")
	}
	seen := make(map[string]struct{}, len(s.Profiles))
	for _, p := range s.Profiles {
		if p == nil || !p.IsFinalized() {
			return fmt.Errorf("snapshot profile: %w", ngram.ErrNotFinalized)
		}
		if _, dup := seen[p.Label()]; dup {
			return fmt.Errorf("duplicate profile label %q", p.Label())
		}
		seen[p.Label()] = struct{}{}
	}
	return nil
}

// Compatible reports whether the snapshot was built with the given n-gram bounds.
func (s *Snapshot) Compatible(minLen, maxLen int) bool {
	return s.Cutoff == ngram.Cutoff && s.MinLen == minLen && s.MaxLen == maxLen
}
