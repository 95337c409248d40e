package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MeKo-Tech/langid/internal/config"
	"github.com/MeKo-Tech/langid/internal/corpus"
	"github.com/MeKo-Tech/langid/internal/detector"
	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/store"
	"github.com/MeKo-Tech/langid/internal/store/sqlite"
	"github.com/MeKo-Tech/langid/internal/store/yamlstore"
	"github.com/MeKo-Tech/langid/internal/tokenizer"
)

// openStore opens the configured snapshot store, or returns nil when
// persistence is disabled.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.StoreNone:
		return nil, nil
	case config.StoreYAML:
		return yamlstore.Open(cfg.Path)
	case config.StoreSQLite:
		return sqlite.OpenSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

// loadReferences returns the reference profiles from the store when it holds
// a snapshot built with the same n-gram lengths, and otherwise builds them
// from the corpus and saves them to the store.
func loadReferences(ctx context.Context, cfg *config.Config, tok *tokenizer.Tokenizer) ([]*ngram.Profile, error) {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}
	if st != nil {
		defer func() { _ = st.Close() }()

		snap, err := st.Load(ctx)
		switch {
		case err == nil && snap.Compatible(tok.MinLen(), tok.MaxLen()):
			slog.Info("Loaded reference snapshot",
				"id", snap.ID, "profiles", len(snap.Profiles), "store", cfg.Store.Driver)
			return snap.Profiles, nil
		case err == nil:
			slog.Warn("Snapshot n-gram lengths differ from tokenizer, rebuilding",
				"id", snap.ID, "min_len", snap.MinLen, "max_len", snap.MaxLen)
		case errors.Is(err, store.ErrNoSnapshot):
			slog.Debug("No snapshot stored yet", "store", cfg.Store.Driver, "path", cfg.Store.Path)
		default:
			return nil, fmt.Errorf("failed to load snapshot: %w", err)
		}
	}

	profiles, err := corpus.Load(ctx, cfg.Corpus, tok)
	if err != nil {
		return nil, err
	}

	if st != nil {
		if err := saveSnapshot(ctx, st, profiles, tok); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

func saveSnapshot(ctx context.Context, st store.Store, profiles []*ngram.Profile, tok *tokenizer.Tokenizer) error {
	snap := store.NewSnapshot(profiles, tok.MinLen(), tok.MaxLen())
	if err := st.Save(ctx, snap); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	slog.Info("Saved reference snapshot", "id", snap.ID, "profiles", len(profiles))
	return nil
}

// buildDetector creates the tokenizer and detector for the configuration.
func buildDetector(ctx context.Context, cfg *config.Config) (*detector.Detector, error) {
	tok, err := tokenizer.New(cfg.ToTokenizerConfig())
	if err != nil {
		return nil, err
	}

	refs, err := loadReferences(ctx, cfg, tok)
	if err != nil {
		return nil, err
	}

	return detector.New(tok, refs)
}
