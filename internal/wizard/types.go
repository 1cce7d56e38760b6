package wizard

import (
	"time"
)

// Wizard lifecycle statuses
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Step run statuses recorded under Data.Progress
const (
	RunStatusInProgress = "in_progress"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
)

// StepIDRun is the conventional id of a report wizard's run step. The runner
// records its two-phase status under this key.
const StepIDRun = "run"

// Unmapped is the sentinel value a column mapping holds when the user has not
// assigned the column to any field. It never satisfies a required field.
const Unmapped = "_unmapped"

// Retention is the advisory data-lifetime tag attached to wizard-produced
// report data. Enforcement is performed by a cleanup job, not by the wizard
// core itself.
type Retention string

const (
	Retention1Day   Retention = "1day"
	Retention7Days  Retention = "7days"
	Retention30Days Retention = "30days"
	Retention1Year  Retention = "1year"
	RetentionAlways Retention = "always"

	// DefaultRetention applies when a wizard is created without an explicit tag.
	DefaultRetention = Retention30Days
)

// IsValid reports whether r is one of the enumerated retention values.
func (r Retention) IsValid() bool {
	switch r {
	case Retention1Day, Retention7Days, Retention30Days, Retention1Year, RetentionAlways:
		return true
	}
	return false
}

// Period returns the lifetime the tag stands for, and whether the tagged data
// ever expires. RetentionAlways returns (0, false).
func (r Retention) Period() (time.Duration, bool) {
	switch r {
	case Retention1Day:
		return 24 * time.Hour, true
	case Retention7Days:
		return 7 * 24 * time.Hour, true
	case Retention30Days:
		return 30 * 24 * time.Hour, true
	case Retention1Year:
		return 365 * 24 * time.Hour, true
	}
	return 0, false
}

// ExpiredAt reports whether data created at createdAt is eligible for deletion
// at the given instant under this retention tag.
func (r Retention) ExpiredAt(createdAt, now time.Time) bool {
	period, expires := r.Period()
	if !expires {
		return false
	}
	return now.Sub(createdAt) > period
}

// Wizard is a persisted multi-step workflow instance. Type is immutable after
// creation and keys both the step registry and the report/feed engine
// registries. CurrentStep is mutated only by explicit navigation.
type Wizard struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      Status     `json:"status"`
	CurrentStep string     `json:"currentStep"`
	EntityID    string     `json:"entityId,omitempty"`
	Data        WizardData `json:"data"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// WizardData is the wizard's working state. The fields mirror the persisted
// JSON contract; all are optional and merged field-by-field on update.
type WizardData struct {
	Config            *Config                   `json:"config,omitempty"`
	Progress          map[string]*ProgressEntry `json:"progress,omitempty"`
	ReportMeta        *ReportMeta               `json:"reportMeta,omitempty"`
	ReportDataID      string                    `json:"reportDataId,omitempty"`
	UploadedFileID    string                    `json:"uploadedFileId,omitempty"`
	FileCount         int                       `json:"fileCount,omitempty"`
	Mode              string                    `json:"mode,omitempty"`
	ColumnMappings    map[string]string         `json:"columnMappings,omitempty"`
	ValidationResults *ValidationResults        `json:"validationResults,omitempty"`
	Period            *Period                   `json:"period,omitempty"`
	OutputFormat      string                    `json:"outputFormat,omitempty"`
	Retention         Retention                 `json:"retention,omitempty"`
}

// Config holds free-form filter/report configuration, shaped per wizard type.
type Config struct {
	Filters   map[string]any `json:"filters,omitempty"`
	DateRange *DateRange     `json:"dateRange,omitempty"`
}

// DateRange is an inclusive date interval in ISO-8601 date form.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Period identifies a feed's reporting month.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// ProgressEntry is the per-step state the server tracks.
type ProgressEntry struct {
	Status          string     `json:"status"`
	PercentComplete float64    `json:"percentComplete,omitempty"`
	Error           string     `json:"error,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// ReportMeta describes a completed report run's output shape.
type ReportMeta struct {
	GeneratedAt     time.Time `json:"generatedAt"`
	RecordCount     int       `json:"recordCount"`
	Columns         []Column  `json:"columns"`
	PrimaryKeyField string    `json:"primaryKeyField,omitempty"`
}

// Column type enum for report output. "link" signals the UI should render a
// clickable reference; the core attaches no other behavior to it.
type ColumnType string

const (
	ColumnString  ColumnType = "string"
	ColumnNumber  ColumnType = "number"
	ColumnDate    ColumnType = "date"
	ColumnBoolean ColumnType = "boolean"
	ColumnLink    ColumnType = "link"
)

// Column is report output metadata, not stored data. Width is a presentation
// hint only.
type Column struct {
	ID     string     `json:"id"`
	Header string     `json:"header"`
	Type   ColumnType `json:"type"`
	Width  int        `json:"width,omitempty"`
}

// ValidationResults summarizes a validate step. Invalid rows are data, not
// errors: they are counted here and never thrown.
type ValidationResults struct {
	TotalRows   int      `json:"totalRows"`
	ValidRows   int      `json:"validRows"`
	InvalidRows int      `json:"invalidRows"`
	Messages    []string `json:"messages,omitempty"`
}

// FileRef is an uploaded file record associated with a wizard.
type FileRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	RowCount int    `json:"rowCount,omitempty"`
}

// FieldMeta describes one importable field of a feed wizard's target record
// type. The required flags are mode-conditional: Required applies always,
// RequiredForCreate/RequiredForUpdate only in the matching mode.
type FieldMeta struct {
	ID                string `json:"id"`
	Label             string `json:"label"`
	Required          bool   `json:"required"`
	RequiredForCreate bool   `json:"requiredForCreate"`
	RequiredForUpdate bool   `json:"requiredForUpdate"`
}

// ProgressFor returns the progress entry for a step, or nil if none recorded.
func (d *WizardData) ProgressFor(stepID string) *ProgressEntry {
	if d == nil || d.Progress == nil {
		return nil
	}
	return d.Progress[stepID]
}

// SetProgress records a progress entry for a step, allocating the map on
// first use.
func (d *WizardData) SetProgress(stepID string, entry *ProgressEntry) {
	if d.Progress == nil {
		d.Progress = make(map[string]*ProgressEntry)
	}
	d.Progress[stepID] = entry
}

// ShouldPoll reports whether a client observing this wizard should keep
// re-fetching it. Polling is warranted only while the run step is in progress
// and generation has actually started (percentComplete > 0); it stops on any
// terminal status or while the percentage is still zero.
func (w *Wizard) ShouldPoll() bool {
	run := w.Data.ProgressFor(StepIDRun)
	if run == nil {
		return false
	}
	return run.Status == RunStatusInProgress && run.PercentComplete > 0
}
