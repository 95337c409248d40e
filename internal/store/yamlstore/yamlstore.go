// Package yamlstore keeps a single reference snapshot in a YAML file.
package yamlstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/store"
	"gopkg.in/yaml.v3"
)

type fileSnapshot struct {
	ID        string        `yaml:"id"`
	CreatedAt time.Time     `yaml:"created_at"`
	Cutoff    int           `yaml:"cutoff"`
	MinLen    int           `yaml:"min_len"`
	MaxLen    int           `yaml:"max_len"`
	Profiles  []fileProfile `yaml:"profiles"`
}

type fileProfile struct {
	Label  string        `yaml:"label"`
	NGrams []ngram.Entry `yaml:"ngrams"`
}

type yamlStore struct {
	path string
}

// Open returns a store backed by the YAML file at path. The file is created
// on the first Save.
func Open(path string) (store.Store, error) {
	if path == "" {
		return nil, errors.New("yaml store path is empty")
	}
	return &yamlStore{path: path}, nil
}

// Save replaces the file with snap. The write goes through a temporary file
// in the same directory and a rename.
func (s *yamlStore) Save(ctx context.Context, snap *store.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	doc := fileSnapshot{
		ID:        snap.ID,
		CreatedAt: snap.CreatedAt.UTC(),
		Cutoff:    snap.Cutoff,
		MinLen:    snap.MinLen,
		MaxLen:    snap.MaxLen,
		Profiles:  make([]fileProfile, 0, len(snap.Profiles)),
	}
	for _, p := range snap.Profiles {
		doc.Profiles = append(doc.Profiles, fileProfile{Label: p.Label(), NGrams: p.Entries()})
	}

	buf, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot file back into finalized profiles.
func (s *yamlStore) Load(ctx context.Context) (*store.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var doc fileSnapshot
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", s.path, err)
	}

	snap := &store.Snapshot{
		ID:        doc.ID,
		CreatedAt: doc.CreatedAt,
		Cutoff:    doc.Cutoff,
		MinLen:    doc.MinLen,
		MaxLen:    doc.MaxLen,
		Profiles:  make([]*ngram.Profile, 0, len(doc.Profiles)),
	}
	for _, fp := range doc.Profiles {
		p, err := ngram.Restore(fp.Label, fp.NGrams)
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", fp.Label, err)
		}
		snap.Profiles = append(snap.Profiles, p)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.path, err)
	}
	return snap, nil
}

func (s *yamlStore) Close() error { return nil }
