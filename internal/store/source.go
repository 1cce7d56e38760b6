package store

import (
	"context"
	"fmt"

	"sirius/internal/feed"
	"sirius/internal/report"
)

// The store doubles as the read-only data source for report and feed
// engines. All methods here are plain selects; engines stay query-only.

var _ report.Source = (*Store)(nil)
var _ feed.RemittanceSource = (*Store)(nil)

// Workers returns all worker rows.
func (s *Store) Workers(ctx context.Context) ([]report.Worker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ssn, first_name, last_name, employer_id FROM workers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing workers: %w", err)
	}
	defer rows.Close()

	var out []report.Worker
	for rows.Next() {
		var w report.Worker
		if err := rows.Scan(&w.ID, &w.SSN, &w.FirstName, &w.LastName, &w.EmployerID); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// Employers returns all employer rows.
func (s *Store) Employers(ctx context.Context) ([]report.Employer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM employers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing employers: %w", err)
	}
	defer rows.Close()

	var out []report.Employer
	for rows.Next() {
		var e report.Employer
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ComplianceConfigs returns all compliance configuration rows.
func (s *Store) ComplianceConfigs(ctx context.Context) ([]report.ComplianceConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, COALESCE(employer_id, ''), policy_name, minimum_rate FROM compliance_configs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing compliance configs: %w", err)
	}
	defer rows.Close()

	var out []report.ComplianceConfig
	for rows.Next() {
		var c report.ComplianceConfig
		if err := rows.Scan(&c.ID, &c.EmployerID, &c.PolicyName, &c.MinimumRate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CorrectionConfigs returns all correction rule rows.
func (s *Store) CorrectionConfigs(ctx context.Context) ([]report.CorrectionConfig, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, field_id, COALESCE(old_value, ''), COALESCE(new_value, ''), applied_to
		 FROM correction_configs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing correction configs: %w", err)
	}
	defer rows.Close()

	var out []report.CorrectionConfig
	for rows.Next() {
		var c report.CorrectionConfig
		if err := rows.Scan(&c.ID, &c.FieldID, &c.OldValue, &c.NewValue, &c.AppliedTo); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ContributionRows returns the contribution ledger joined to workers for one
// reporting period.
func (s *Store) ContributionRows(ctx context.Context, year, month int) ([]feed.ContributionRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.worker_id, COALESCE(w.first_name || ' ' || w.last_name, ''), COALESCE(w.employer_id, ''),
		        c.hours, c.contribution
		 FROM contributions c LEFT JOIN workers w ON w.id = c.worker_id
		 WHERE c.year = ? AND c.month = ?
		 ORDER BY c.worker_id`, year, month)
	if err != nil {
		return nil, fmt.Errorf("listing contributions: %w", err)
	}
	defer rows.Close()

	var out []feed.ContributionRow
	for rows.Next() {
		var r feed.ContributionRow
		if err := rows.Scan(&r.WorkerID, &r.WorkerName, &r.EmployerID, &r.Hours, &r.Contribution); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
