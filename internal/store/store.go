// Package store persists wizards and generated report data in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"sirius/internal/wizard"
)

// Store is the SQLite-backed persistence layer.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the database at dbPath. Use ":memory:" for tests.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Concurrent patch writers serialize on a single connection; SQLite has
	// no row-level locking and the merge contract is read-modify-write.
	db.SetMaxOpenConns(1)

	queries := []string{
		`CREATE TABLE IF NOT EXISTS wizards (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			status TEXT NOT NULL,
			current_step TEXT NOT NULL,
			entity_id TEXT,
			data TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS wizard_files (
			id TEXT PRIMARY KEY,
			wizard_id TEXT NOT NULL,
			name TEXT NOT NULL,
			size INTEGER NOT NULL DEFAULT 0,
			row_count INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS report_data (
			id TEXT PRIMARY KEY,
			wizard_id TEXT NOT NULL,
			retention TEXT NOT NULL,
			rows TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS workers (
			id TEXT PRIMARY KEY,
			ssn TEXT,
			first_name TEXT,
			last_name TEXT,
			employer_id TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS employers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS compliance_configs (
			id TEXT PRIMARY KEY,
			employer_id TEXT,
			policy_name TEXT NOT NULL,
			minimum_rate REAL NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS correction_configs (
			id TEXT PRIMARY KEY,
			field_id TEXT NOT NULL,
			old_value TEXT,
			new_value TEXT,
			applied_to INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS contributions (
			worker_id TEXT NOT NULL,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			hours REAL NOT NULL DEFAULT 0,
			contribution REAL NOT NULL DEFAULT 0
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateWizard inserts a new wizard row.
func (s *Store) CreateWizard(ctx context.Context, w *wizard.Wizard) error {
	data, err := json.Marshal(w.Data)
	if err != nil {
		return fmt.Errorf("encoding wizard data: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO wizards (id, type, status, current_step, entity_id, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Type, string(w.Status), w.CurrentStep, w.EntityID, string(data),
		w.CreatedAt.UTC(), w.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting wizard: %w", err)
	}
	return nil
}

// GetWizard fetches a wizard by id. Returns wizard.ErrWizardNotFound when the
// row does not exist.
func (s *Store) GetWizard(ctx context.Context, id string) (*wizard.Wizard, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, type, status, current_step, entity_id, data, created_at, updated_at
		 FROM wizards WHERE id = ?`, id)
	return scanWizard(row)
}

// ListWizards returns all wizards, most recently created first.
func (s *Store) ListWizards(ctx context.Context) ([]*wizard.Wizard, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, status, current_step, entity_id, data, created_at, updated_at
		 FROM wizards ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing wizards: %w", err)
	}
	defer rows.Close()

	var out []*wizard.Wizard
	for rows.Next() {
		w, err := scanWizard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// UpdateStatus sets a wizard's lifecycle status.
func (s *Store) UpdateStatus(ctx context.Context, id string, status wizard.Status) error {
	return s.updateColumn(ctx, id, "status", string(status))
}

// UpdateCurrentStep sets a wizard's active step.
func (s *Store) UpdateCurrentStep(ctx context.Context, id, stepID string) error {
	return s.updateColumn(ctx, id, "current_step", stepID)
}

func (s *Store) updateColumn(ctx context.Context, id, column, value string) error {
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE wizards SET %s = ?, updated_at = ? WHERE id = ?`, column),
		value, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating wizard %s: %w", column, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return wizard.ErrWizardNotFound
	}
	return nil
}

// PatchData applies a field-level merge to a wizard's data blob: the current
// value is read, mutated in place, and written back within one transaction.
// Concurrent writers to different fields do not clobber each other; writers
// to the same field remain last-writer-wins.
func (s *Store) PatchData(ctx context.Context, id string, mutate func(*wizard.WizardData)) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning patch tx: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT data FROM wizards WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return wizard.ErrWizardNotFound
	}
	if err != nil {
		return fmt.Errorf("reading wizard data: %w", err)
	}

	var data wizard.WizardData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return fmt.Errorf("decoding wizard data: %w", err)
	}
	mutate(&data)

	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding wizard data: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE wizards SET data = ?, updated_at = ? WHERE id = ?`,
		string(encoded), time.Now().UTC(), id); err != nil {
		return fmt.Errorf("writing wizard data: %w", err)
	}
	return tx.Commit()
}

// DeleteWizard removes a wizard row.
func (s *Store) DeleteWizard(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM wizards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting wizard: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return wizard.ErrWizardNotFound
	}
	return nil
}

// AddFile records an uploaded file against a wizard.
func (s *Store) AddFile(ctx context.Context, wizardID string, f wizard.FileRef) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wizard_files (id, wizard_id, name, size, row_count) VALUES (?, ?, ?, ?, ?)`,
		f.ID, wizardID, f.Name, f.Size, f.RowCount)
	if err != nil {
		return fmt.Errorf("inserting wizard file: %w", err)
	}
	return nil
}

// FilesFor returns the uploaded files associated with a wizard.
func (s *Store) FilesFor(ctx context.Context, wizardID string) ([]wizard.FileRef, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, size, row_count FROM wizard_files WHERE wizard_id = ? ORDER BY id`, wizardID)
	if err != nil {
		return nil, fmt.Errorf("listing wizard files: %w", err)
	}
	defer rows.Close()

	var out []wizard.FileRef
	for rows.Next() {
		var f wizard.FileRef
		if err := rows.Scan(&f.ID, &f.Name, &f.Size, &f.RowCount); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// SaveReportData stores generated report rows under a fresh data id with the
// wizard's retention tag.
func (s *Store) SaveReportData(ctx context.Context, dataID, wizardID string, retention wizard.Retention, records any) error {
	encoded, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding report rows: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO report_data (id, wizard_id, retention, rows, created_at) VALUES (?, ?, ?, ?, ?)`,
		dataID, wizardID, string(retention), string(encoded), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("inserting report data: %w", err)
	}
	return nil
}

// GetReportData fetches stored report rows by data id.
func (s *Store) GetReportData(ctx context.Context, dataID string) ([]map[string]any, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT rows FROM report_data WHERE id = ?`, dataID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("report data %s not found", dataID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading report data: %w", err)
	}
	var records []map[string]any
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decoding report rows: %w", err)
	}
	return records, nil
}

// PurgeExpired deletes report data whose retention period has elapsed at the
// given instant. Rows tagged "always" are never deleted. Returns the number
// of rows removed.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, retention, created_at FROM report_data`)
	if err != nil {
		return 0, fmt.Errorf("listing report data: %w", err)
	}
	var expired []string
	for rows.Next() {
		var id, retention string
		var createdAt time.Time
		if err := rows.Scan(&id, &retention, &createdAt); err != nil {
			rows.Close()
			return 0, err
		}
		if wizard.Retention(retention).ExpiredAt(createdAt, now) {
			expired = append(expired, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	var purged int64
	for _, id := range expired {
		res, err := s.db.ExecContext(ctx, `DELETE FROM report_data WHERE id = ?`, id)
		if err != nil {
			return purged, fmt.Errorf("purging report data %s: %w", id, err)
		}
		n, _ := res.RowsAffected()
		purged += n
	}
	return purged, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWizard(row scanner) (*wizard.Wizard, error) {
	var w wizard.Wizard
	var status, raw string
	var entityID sql.NullString
	err := row.Scan(&w.ID, &w.Type, &status, &w.CurrentStep, &entityID, &raw, &w.CreatedAt, &w.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, wizard.ErrWizardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning wizard: %w", err)
	}
	w.Status = wizard.Status(status)
	w.EntityID = entityID.String
	if err := json.Unmarshal([]byte(raw), &w.Data); err != nil {
		return nil, fmt.Errorf("decoding wizard data: %w", err)
	}
	return &w, nil
}
