package report

import (
	"context"
	"fmt"

	"sirius/internal/wizard"
)

// LegalComplianceReport lists workers whose employer falls under a compliance
// policy. Configuration resolution is per employer: an employer-scoped
// override beats the global default, and an employer with no applicable
// configuration has its workers skipped entirely rather than defaulted.
type LegalComplianceReport struct {
	source Source
}

// NewLegalComplianceReport creates the report over the given data source.
func NewLegalComplianceReport(source Source) *LegalComplianceReport {
	return &LegalComplianceReport{source: source}
}

func (r *LegalComplianceReport) Name() string        { return "legal-compliance" }
func (r *LegalComplianceReport) DisplayName() string { return "Legal Compliance Report" }
func (r *LegalComplianceReport) Category() string    { return "compliance" }

func (r *LegalComplianceReport) Description() string {
	return "Workers covered by compliance policies, resolved per employer"
}

func (r *LegalComplianceReport) Columns() []wizard.Column {
	return []wizard.Column{
		{ID: "workerId", Header: "Worker", Type: wizard.ColumnLink, Width: 100},
		{ID: "workerName", Header: "Name", Type: wizard.ColumnString},
		{ID: "employerName", Header: "Employer", Type: wizard.ColumnString},
		{ID: "policyName", Header: "Policy", Type: wizard.ColumnString},
		{ID: "minimumRate", Header: "Minimum Rate", Type: wizard.ColumnNumber, Width: 90},
	}
}

func (r *LegalComplianceReport) PrimaryKeyField() string { return DefaultPrimaryKeyField }

func (r *LegalComplianceReport) FetchRecords(ctx context.Context, _ wizard.Config, batchSize int, onProgress ProgressFunc) ([]Record, error) {
	workers, err := r.source.Workers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading workers: %w", err)
	}
	employers, err := r.source.Employers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading employers: %w", err)
	}
	configs, err := r.source.ComplianceConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading compliance configs: %w", err)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	employerNames := make(map[string]string, len(employers))
	for _, e := range employers {
		employerNames[e.ID] = e.Name
	}

	var records []Record
	for i, w := range workers {
		cfg := ResolveComplianceConfig(configs, w.EmployerID)
		if cfg == nil {
			// No applicable configuration: skipped, not defaulted.
			continue
		}
		records = append(records, Record{
			"workerId":     w.ID,
			"workerName":   w.FirstName + " " + w.LastName,
			"employerName": employerNames[w.EmployerID],
			"policyName":   cfg.PolicyName,
			"minimumRate":  cfg.MinimumRate,
		})
		if onProgress != nil && (i+1)%batchSize == 0 {
			onProgress(i+1, len(workers))
		}
	}

	if onProgress != nil {
		onProgress(len(workers), len(workers))
	}
	return records, nil
}
