package report

import "context"

// Worker is a worker row as seen by report queries.
type Worker struct {
	ID         string
	SSN        string
	FirstName  string
	LastName   string
	EmployerID string
}

// Employer is an employer row as seen by report queries.
type Employer struct {
	ID   string
	Name string
}

// ComplianceConfig is one legal-compliance configuration row. EmployerID is
// empty for the global default; a row with a matching EmployerID is an
// entity-scoped override and takes precedence.
type ComplianceConfig struct {
	ID          string
	EmployerID  string
	PolicyName  string
	MinimumRate float64
}

// CorrectionConfig is one correction-rule configuration row. The corrections
// report legitimately returns nothing when no rows exist.
type CorrectionConfig struct {
	ID        string
	FieldID   string
	OldValue  string
	NewValue  string
	AppliedTo int
}

// Source is the read-only data access surface report engines query through.
// Engines never reach the database directly, which keeps FetchRecords a pure
// query and makes engines trivially testable.
type Source interface {
	Workers(ctx context.Context) ([]Worker, error)
	Employers(ctx context.Context) ([]Employer, error)
	ComplianceConfigs(ctx context.Context) ([]ComplianceConfig, error)
	CorrectionConfigs(ctx context.Context) ([]CorrectionConfig, error)
}

// ResolveComplianceConfig picks the configuration applicable to an employer:
// an employer-scoped override beats the global default; no applicable row
// means the employer's candidates are skipped, not defaulted.
func ResolveComplianceConfig(configs []ComplianceConfig, employerID string) *ComplianceConfig {
	var global *ComplianceConfig
	for i := range configs {
		c := &configs[i]
		if c.EmployerID == employerID && employerID != "" {
			return c
		}
		if c.EmployerID == "" && global == nil {
			global = c
		}
	}
	return global
}
