package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSourceData(t *testing.T, s *Store) {
	t.Helper()
	stmts := []string{
		`INSERT INTO workers (id, ssn, first_name, last_name, employer_id) VALUES
			('w1', '111-11-1111', 'Ana', 'Reyes', 'e1'),
			('w2', '222-22-2222', 'Ben', 'Cho', 'e2')`,
		`INSERT INTO employers (id, name) VALUES ('e1', 'Acme'), ('e2', 'Globex')`,
		`INSERT INTO compliance_configs (id, employer_id, policy_name, minimum_rate) VALUES
			('c1', NULL, 'statewide', 12),
			('c2', 'e1', 'acme-special', 18)`,
		`INSERT INTO correction_configs (id, field_id, old_value, new_value, applied_to) VALUES
			('fix1', 'ssn', '000-00-0000', '111-11-1111', 4)`,
		`INSERT INTO contributions (worker_id, year, month, hours, contribution) VALUES
			('w2', 2026, 3, 80, 120.5),
			('w1', 2026, 3, 160, 240),
			('w1', 2026, 4, 150, 230)`,
	}
	for _, q := range stmts {
		_, err := s.db.Exec(q)
		require.NoError(t, err)
	}
}

func TestSourceQueries(t *testing.T) {
	s := openTestStore(t)
	seedSourceData(t, s)
	ctx := context.Background()

	workers, err := s.Workers(ctx)
	require.NoError(t, err)
	require.Len(t, workers, 2)
	assert.Equal(t, "111-11-1111", workers[0].SSN)
	assert.Equal(t, "e2", workers[1].EmployerID)

	employers, err := s.Employers(ctx)
	require.NoError(t, err)
	require.Len(t, employers, 2)
	assert.Equal(t, "Acme", employers[0].Name)

	configs, err := s.ComplianceConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 2)
	// NULL employer_id reads back as the empty string, the global marker.
	assert.Equal(t, "", configs[0].EmployerID)
	assert.Equal(t, "e1", configs[1].EmployerID)

	corrections, err := s.CorrectionConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, corrections, 1)
	assert.Equal(t, 4, corrections[0].AppliedTo)
}

func TestContributionRows(t *testing.T) {
	s := openTestStore(t)
	seedSourceData(t, s)

	rows, err := s.ContributionRows(context.Background(), 2026, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "w1", rows[0].WorkerID)
	assert.Equal(t, "Ana Reyes", rows[0].WorkerName)
	assert.Equal(t, 160.0, rows[0].Hours)
	assert.Equal(t, "w2", rows[1].WorkerID)
	assert.Equal(t, 120.5, rows[1].Contribution)

	empty, err := s.ContributionRows(context.Background(), 2025, 1)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
