package report

import (
	"context"
	"fmt"

	"sirius/internal/wizard"
)

// CorrectionsReport summarizes configured correction rules. It reads
// configuration rather than worker data and can legitimately find nothing:
// zero configuration rows short-circuit to an empty result set with no error,
// still reporting progress once.
type CorrectionsReport struct {
	source Source
}

// NewCorrectionsReport creates the report over the given data source.
func NewCorrectionsReport(source Source) *CorrectionsReport {
	return &CorrectionsReport{source: source}
}

func (r *CorrectionsReport) Name() string        { return "corrections" }
func (r *CorrectionsReport) DisplayName() string { return "Corrections Report" }
func (r *CorrectionsReport) Category() string    { return "data-quality" }

func (r *CorrectionsReport) Description() string {
	return "Configured correction rules and how many records each applied to"
}

func (r *CorrectionsReport) Columns() []wizard.Column {
	return []wizard.Column{
		{ID: "correctionId", Header: "Correction", Type: wizard.ColumnString, Width: 100},
		{ID: "fieldId", Header: "Field", Type: wizard.ColumnString},
		{ID: "oldValue", Header: "Old Value", Type: wizard.ColumnString},
		{ID: "newValue", Header: "New Value", Type: wizard.ColumnString},
		{ID: "appliedTo", Header: "Applied To", Type: wizard.ColumnNumber, Width: 80},
	}
}

func (r *CorrectionsReport) PrimaryKeyField() string { return "correctionId" }

func (r *CorrectionsReport) FetchRecords(ctx context.Context, _ wizard.Config, batchSize int, onProgress ProgressFunc) ([]Record, error) {
	configs, err := r.source.CorrectionConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading correction configs: %w", err)
	}

	if len(configs) == 0 {
		if onProgress != nil {
			onProgress(0, 0)
		}
		return []Record{}, nil
	}

	records := make([]Record, 0, len(configs))
	for _, c := range configs {
		records = append(records, Record{
			"correctionId": c.ID,
			"fieldId":      c.FieldID,
			"oldValue":     c.OldValue,
			"newValue":     c.NewValue,
			"appliedTo":    c.AppliedTo,
		})
	}

	if onProgress != nil {
		onProgress(len(configs), len(configs))
	}
	return records, nil
}
