package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sirius/internal/wizard"
)

func complianceFixture() *fakeSource {
	return &fakeSource{
		workers: []Worker{
			{ID: "w1", FirstName: "Ana", LastName: "Reyes", EmployerID: "e1"},
			{ID: "w2", FirstName: "Ben", LastName: "Cho", EmployerID: "e2"},
			{ID: "w3", FirstName: "Cam", LastName: "Diaz", EmployerID: "e3"},
		},
		employers: []Employer{
			{ID: "e1", Name: "Acme"},
			{ID: "e2", Name: "Globex"},
			{ID: "e3", Name: "Initech"},
		},
		compliance: []ComplianceConfig{
			{ID: "c1", PolicyName: "statewide", MinimumRate: 12},
			{ID: "c2", EmployerID: "e1", PolicyName: "acme-special", MinimumRate: 18},
		},
	}
}

func TestLegalComplianceReportOverrideResolution(t *testing.T) {
	r := NewLegalComplianceReport(complianceFixture())

	records, err := r.FetchRecords(context.Background(), wizard.Config{}, 0, nil)
	require.NoError(t, err)
	require.Len(t, records, 3)

	byWorker := map[string]Record{}
	for _, rec := range records {
		byWorker[rec["workerId"].(string)] = rec
	}

	// Employer e1's workers resolve to the employer-scoped override.
	assert.Equal(t, "acme-special", byWorker["w1"]["policyName"])
	assert.Equal(t, 18.0, byWorker["w1"]["minimumRate"])

	// Everyone else resolves to the global default.
	assert.Equal(t, "statewide", byWorker["w2"]["policyName"])
	assert.Equal(t, "statewide", byWorker["w3"]["policyName"])
	assert.Equal(t, "Globex", byWorker["w2"]["employerName"])
}

func TestLegalComplianceReportSkipsUnconfiguredEmployers(t *testing.T) {
	src := complianceFixture()
	// Only the e1 override remains: no global default at all.
	src.compliance = []ComplianceConfig{
		{ID: "c2", EmployerID: "e1", PolicyName: "acme-special", MinimumRate: 18},
	}
	r := NewLegalComplianceReport(src)

	records, err := r.FetchRecords(context.Background(), wizard.Config{}, 0, nil)
	require.NoError(t, err)

	// Workers of employers with no applicable configuration are skipped,
	// never defaulted.
	require.Len(t, records, 1)
	assert.Equal(t, "w1", records[0]["workerId"])
}

func TestLegalComplianceReportProgressCalledOnce(t *testing.T) {
	r := NewLegalComplianceReport(complianceFixture())

	var calls int
	_, err := r.FetchRecords(context.Background(), wizard.Config{}, 100, func(processed, total int) {
		calls++
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 1)
}
