// Package sqlite stores reference snapshots in a SQLite database. Every Save
// adds a snapshot; Load returns the most recent one.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/store"
)

type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// snapshot tables if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS snapshots (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	cutoff INTEGER NOT NULL,
	min_len INTEGER NOT NULL,
	max_len INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
	snapshot_id TEXT NOT NULL,
	label TEXT NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY(snapshot_id, label),
	FOREIGN KEY(snapshot_id) REFERENCES snapshots(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS profile_ngrams (
	snapshot_id TEXT NOT NULL,
	label TEXT NOT NULL,
	rank INTEGER NOT NULL,
	text TEXT NOT NULL,
	count INTEGER NOT NULL,
	PRIMARY KEY(snapshot_id, label, rank),
	FOREIGN KEY(snapshot_id, label) REFERENCES profiles(snapshot_id, label) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Save writes snap and all its profiles in one transaction.
func (s *sqliteStore) Save(ctx context.Context, snap *store.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots(id, created_at, cutoff, min_len, max_len) VALUES(?, ?, ?, ?, ?)`,
		snap.ID, snap.CreatedAt.UTC().Format(time.RFC3339Nano), snap.Cutoff, snap.MinLen, snap.MaxLen,
	); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}

	profStmt, err := tx.PrepareContext(ctx, `INSERT INTO profiles(snapshot_id, label, position) VALUES(?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = profStmt.Close() }()

	gramStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO profile_ngrams(snapshot_id, label, rank, text, count) VALUES(?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = gramStmt.Close() }()

	for pos, p := range snap.Profiles {
		if _, err := profStmt.ExecContext(ctx, snap.ID, p.Label(), pos); err != nil {
			return fmt.Errorf("insert profile %q: %w", p.Label(), err)
		}
		for rank, e := range p.Entries() {
			if _, err := gramStmt.ExecContext(ctx, snap.ID, p.Label(), rank, e.Text, e.Count); err != nil {
				return fmt.Errorf("insert n-gram of %q: %w", p.Label(), err)
			}
		}
	}

	return tx.Commit()
}

// Load returns the snapshot with the greatest id. ULIDs sort by creation time.
func (s *sqliteStore) Load(ctx context.Context) (*store.Snapshot, error) {
	var (
		snap      store.Snapshot
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, cutoff, min_len, max_len FROM snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&snap.ID, &createdAt, &snap.Cutoff, &snap.MinLen, &snap.MaxLen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("snapshot %s: invalid created_at: %w", snap.ID, err)
	}

	labels, err := s.loadLabels(ctx, snap.ID)
	if err != nil {
		return nil, err
	}
	entries, err := s.loadEntries(ctx, snap.ID)
	if err != nil {
		return nil, err
	}

	for _, label := range labels {
		p, err := ngram.Restore(label, entries[label])
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", label, err)
		}
		snap.Profiles = append(snap.Profiles, p)
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	return &snap, nil
}

func (s *sqliteStore) loadLabels(ctx context.Context, snapshotID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label FROM profiles WHERE snapshot_id = ? ORDER BY position`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (s *sqliteStore) loadEntries(ctx context.Context, snapshotID string) (map[string][]ngram.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, text, count FROM profile_ngrams WHERE snapshot_id = ? ORDER BY label, rank`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string][]ngram.Entry)
	for rows.Next() {
		var (
			label string
			e     ngram.Entry
		)
		if err := rows.Scan(&label, &e.Text, &e.Count); err != nil {
			return nil, err
		}
		entries[label] = append(entries[label], e)
	}
	return entries, rows.Err()
}
