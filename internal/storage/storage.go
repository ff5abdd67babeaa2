// Package storage persists profiles and their slots in SQLite.
//
// A profile row owns one command row per slot, keyed by (profile_id,
// ordinal). Each command stores the chord twice: as canonical text in
// hotkey and as the raw (virtual_key_code, modifiers) pair used for OS
// registration. The pair is authoritative when loading.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/dshills/chordboard/internal/input/key"
	"github.com/dshills/chordboard/internal/slot"
)

var (
	// ErrProfileNotFound indicates no profile has the requested id.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrProfileExists indicates another profile already has the name.
	ErrProfileExists = errors.New("profile name already in use")

	// ErrInvalidName indicates an empty profile name.
	ErrInvalidName = errors.New("invalid profile name")
)

// Profile is a named set of slots.
type Profile struct {
	ID        int64
	Name      string
	Slots     int
	CreatedAt time.Time
}

// Store is the SQLite-backed profile store.
type Store struct {
	db  *sql.DB
	log logrus.FieldLogger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// Open opens (creating if needed) the database at path and brings its
// schema up to date.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "storage")

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	s.log.WithField("path", path).Debug("database opened")
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the latest applied migration.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	return schemaVersion(ctx, s.db)
}

// ListProfiles returns every profile ordered by id.
func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.created_at, COUNT(c.ordinal)
		FROM profile p
		LEFT JOIN command c ON c.profile_id = p.id
		GROUP BY p.id
		ORDER BY p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		var p Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt, &p.Slots); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// GetProfile returns one profile.
func (s *Store) GetProfile(ctx context.Context, id int64) (Profile, error) {
	p := Profile{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT p.name, p.created_at, COUNT(c.ordinal)
		FROM profile p
		LEFT JOIN command c ON c.profile_id = p.id
		WHERE p.id = ?
		GROUP BY p.id
	`, id).Scan(&p.Name, &p.CreatedAt, &p.Slots)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, fmt.Errorf("%w: %d", ErrProfileNotFound, id)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("failed to get profile %d: %w", id, err)
	}
	return p, nil
}

// CreateProfile adds a profile with n empty slots.
func (s *Store) CreateProfile(ctx context.Context, name string, n int) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, ErrInvalidName
	}

	var id int64
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "INSERT INTO profile (name) VALUES (?)", name)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		return upsertSlots(ctx, tx, id, slot.New(n))
	})
	if isUnique(err) {
		return Profile{}, fmt.Errorf("%w: %q", ErrProfileExists, name)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("failed to create profile: %w", err)
	}

	s.log.WithFields(logrus.Fields{"profile": id, "name": name, "slots": n}).Info("profile created")
	return s.GetProfile(ctx, id)
}

// RenameProfile changes a profile's name.
func (s *Store) RenameProfile(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	res, err := s.db.ExecContext(ctx, "UPDATE profile SET name = ? WHERE id = ?", name, id)
	if isUnique(err) {
		return fmt.Errorf("%w: %q", ErrProfileExists, name)
	}
	if err != nil {
		return fmt.Errorf("failed to rename profile %d: %w", id, err)
	}
	return requireRow(res, id)
}

// DeleteProfile removes a profile and its slots.
func (s *Store) DeleteProfile(ctx context.Context, id int64) error {
	var res sql.Result
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM command WHERE profile_id = ?", id); err != nil {
			return err
		}
		var err error
		res, err = tx.ExecContext(ctx, "DELETE FROM profile WHERE id = ?", id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete profile %d: %w", id, err)
	}
	if err := requireRow(res, id); err != nil {
		return err
	}
	s.log.WithField("profile", id).Info("profile deleted")
	return nil
}

// LoadSlots returns a profile's slots ordered by ordinal.
func (s *Store) LoadSlots(ctx context.Context, profileID int64) ([]slot.Slot, error) {
	if _, err := s.GetProfile(ctx, profileID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT ordinal, hotkey, virtual_key_code, modifiers, name, file_path
		FROM command
		WHERE profile_id = ?
		ORDER BY ordinal
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots: %w", err)
	}
	defer rows.Close()

	var slots []slot.Slot
	for rows.Next() {
		var (
			sl         slot.Slot
			text       string
			code, mods uint16
		)
		if err := rows.Scan(&sl.Ordinal, &text, &code, &mods, &sl.Label, &sl.Payload); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		sl.Chord = key.FromPersisted(code, mods)
		if sl.Chord.String() != text {
			s.log.WithFields(logrus.Fields{
				"profile": profileID,
				"slot":    sl.Ordinal,
				"stored":  text,
				"decoded": sl.Chord.String(),
			}).Warn("chord text out of sync with key code")
		}
		slots = append(slots, sl)
	}
	return slots, rows.Err()
}

// SaveSlot writes one slot.
func (s *Store) SaveSlot(ctx context.Context, profileID int64, sl slot.Slot) error {
	return s.SaveSlots(ctx, profileID, []slot.Slot{sl})
}

// SaveSlots writes slots in one transaction.
func (s *Store) SaveSlots(ctx context.Context, profileID int64, slots []slot.Slot) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		return upsertSlots(ctx, tx, profileID, slots)
	})
	if err != nil {
		return fmt.Errorf("failed to save slots: %w", err)
	}
	return nil
}

func upsertSlots(ctx context.Context, tx *sql.Tx, profileID int64, slots []slot.Slot) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO command (profile_id, ordinal, hotkey, virtual_key_code, modifiers, name, file_path)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (profile_id, ordinal) DO UPDATE SET
			hotkey = excluded.hotkey,
			virtual_key_code = excluded.virtual_key_code,
			modifiers = excluded.modifiers,
			name = excluded.name,
			file_path = excluded.file_path
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sl := range slots {
		code, mods := sl.Chord.Persisted()
		if _, err := stmt.ExecContext(ctx, profileID, sl.Ordinal, sl.Chord.String(), code, mods, sl.Label, sl.Payload); err != nil {
			return fmt.Errorf("slot %d: %w", sl.Ordinal, err)
		}
	}
	return nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrProfileNotFound, id)
	}
	return nil
}

func isUnique(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}
