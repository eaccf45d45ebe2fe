package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/tally-dev/tally/internal/id"
	"github.com/tally-dev/tally/internal/model"
)

var (
	// ErrStoreUnavailable wraps failures to open or initialise the database.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDuplicateFingerprint is returned when inserting a fingerprint that is already stored.
	ErrDuplicateFingerprint = errors.New("duplicate fingerprint")
)

const tableName = "transactions"

// Amounts are stored as fixed two-place text so equality is exact.
const createTable = `
CREATE TABLE IF NOT EXISTS ` + tableName + ` (
	id          TEXT PRIMARY KEY,
	date        TEXT NOT NULL,
	reference   TEXT NOT NULL,
	institution TEXT NOT NULL,
	debit       TEXT NOT NULL,
	credit      TEXT NOT NULL,
	category    TEXT NOT NULL,
	UNIQUE(reference, institution, debit, credit)
)`

// Store is a SQLite-backed table of remembered categorizations.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file at path. Call Setup before use.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrStoreUnavailable, path, err)
	}
	// One session, one writer.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: connecting to %s: %v", ErrStoreUnavailable, path, err)
	}
	return &Store{db: db}, nil
}

// Setup creates the table if it does not already exist. Safe to call on every start.
func (s *Store) Setup(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("%w: creating %s table: %v", ErrStoreUnavailable, tableName, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores a categorized transaction, assigning a new ID when none is set.
// An existing fingerprint is never overwritten.
func (s *Store) Insert(ctx context.Context, st model.StoredTransaction) (err error) {
	if st.ID == "" {
		st.ID = id.New()
	} else if st.ID, err = id.Parse(st.ID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning insert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO `+tableName+` (id, date, reference, institution, debit, credit, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.Date, st.Reference, string(st.Institution), st.DebitKey(), st.CreditKey(), string(st.Category),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q (%s)", ErrDuplicateFingerprint, st.Reference, st.Institution)
		}
		return fmt.Errorf("inserting %q: %w", st.Reference, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing insert: %w", err)
	}
	return nil
}

// Lookup returns the remembered category for an exact fingerprint match.
func (s *Store) Lookup(ctx context.Context, fp model.Fingerprint) (model.Category, bool, error) {
	var category string
	err := s.db.QueryRowContext(ctx,
		`SELECT category FROM `+tableName+`
		WHERE reference = ? AND institution = ? AND debit = ? AND credit = ?
		ORDER BY rowid LIMIT 1`,
		fp.Reference, string(fp.Institution), fp.DebitKey(), fp.CreditKey(),
	).Scan(&category)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up %q: %w", fp.Reference, err)
	}
	return model.Category(category), true, nil
}

// List returns every stored transaction in insertion order.
func (s *Store) List(ctx context.Context) ([]model.StoredTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, reference, institution, debit, credit, category
		FROM `+tableName+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", tableName, err)
	}
	defer rows.Close()

	var out []model.StoredTransaction
	for rows.Next() {
		var st model.StoredTransaction
		var institution, debit, credit, category string
		if err := rows.Scan(&st.ID, &st.Date, &st.Reference, &institution, &debit, &credit, &category); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", tableName, err)
		}
		if st.ID, err = id.Parse(st.ID); err != nil {
			return nil, fmt.Errorf("reading %s row: %w", tableName, err)
		}
		st.Institution = model.Institution(institution)
		st.Category = model.Category(category)
		if st.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("parsing debit %q of %s: %w", debit, st.ID, err)
		}
		if st.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("parsing credit %q of %s: %w", credit, st.ID, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	// Primary key clashes report SQLITE_CONSTRAINT_PRIMARYKEY and are not fingerprint duplicates.
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
