// Package corpus builds reference profiles from a directory of training
// texts, one language per file.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/tokenizer"
)

// ErrNoReferenceFiles is returned when a corpus yields no usable profile.
var ErrNoReferenceFiles = errors.New("no reference files found")

// DefaultDir is the training directory used when none is configured.
const DefaultDir = "data/training"

// Config describes where the training texts live and how they are labelled.
type Config struct {
	Dir         string   `mapstructure:"dir"          yaml:"dir"          json:"dir"`
	LabelLength int      `mapstructure:"label_length" yaml:"label_length" json:"label_length"`
	Recursive   bool     `mapstructure:"recursive"    yaml:"recursive"    json:"recursive"`
	Include     []string `mapstructure:"include"      yaml:"include"      json:"include"`
	Exclude     []string `mapstructure:"exclude"      yaml:"exclude"      json:"exclude"`
}

// DefaultConfig returns the flat data/training layout with two-letter labels.
func DefaultConfig() Config {
	return Config{
		Dir:         DefaultDir,
		LabelLength: 2,
		Include:     []string{},
		Exclude:     []string{},
	}
}

// Label derives the reference label from a file name: its first length runes,
// or the name without extension when length is 0 or exceeds it.
func Label(path string, length int) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	runes := []rune(stem)
	if length <= 0 || length >= len(runes) {
		return stem
	}
	return string(runes[:length])
}

// Load builds one finalized profile per label found in cfg.Dir. Files sharing
// a label are merged into a single profile. Profiles are returned in the
// order their labels first appear in the sorted file list.
func Load(ctx context.Context, cfg Config, tok *tokenizer.Tokenizer) ([]*ngram.Profile, error) {
	if tok == nil {
		tok = tokenizer.Default()
	}
	dir := cfg.Dir
	if dir == "" {
		dir = DefaultDir
	}

	files, err := discoverFiles(dir, cfg.Recursive, cfg.Include, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	slog.Debug("Discovered reference files", "dir", dir, "count", len(files))

	var order []*ngram.Profile
	byLabel := make(map[string]*ngram.Profile)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		label := Label(path, cfg.LabelLength)
		if label == "" {
			slog.Warn("Skipping reference file without label", "file", path)
			continue
		}
		p, ok := byLabel[label]
		if !ok {
			p = ngram.NewProfile(label)
			byLabel[label] = p
			order = append(order, p)
		}
		if err := loadFile(tok, p, path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		slog.Debug("Loaded reference file", "file", path, "label", label, "ngrams", p.Size())
	}

	profiles := make([]*ngram.Profile, 0, len(order))
	for _, p := range order {
		p.Finalize()
		if p.Size() == 0 {
			slog.Warn("Skipping reference without n-grams", "label", p.Label())
			continue
		}
		profiles = append(profiles, p)
		slog.Info("Reference profile ready", "label", p.Label(), "ngrams", p.Size())
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoReferenceFiles, dir)
	}
	return profiles, nil
}

func loadFile(tok *tokenizer.Tokenizer, p *ngram.Profile, path string) error {
	f, err := os.Open(path) //nolint:gosec // G304: corpus paths come from the configured directory
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if isHTML(path) {
		text, err := extractText(f)
		if err != nil {
			return fmt.Errorf("failed to parse HTML: %w", err)
		}
		r = strings.NewReader(text)
	}
	return tok.Accumulate(p, r)
}
