package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"sirius/internal/wizard"
)

// DuplicateSSNReport finds SSN values shared by more than one worker record.
// Its natural grain is "one SSN value", so it keys by the SSN itself rather
// than a worker id: multiple workers collapse into a single output record.
type DuplicateSSNReport struct {
	source Source
}

// NewDuplicateSSNReport creates the report over the given data source.
func NewDuplicateSSNReport(source Source) *DuplicateSSNReport {
	return &DuplicateSSNReport{source: source}
}

func (r *DuplicateSSNReport) Name() string        { return "duplicate-ssn" }
func (r *DuplicateSSNReport) DisplayName() string { return "Duplicate SSN Report" }
func (r *DuplicateSSNReport) Category() string    { return "data-quality" }

func (r *DuplicateSSNReport) Description() string {
	return "Lists SSN values assigned to more than one worker record"
}

func (r *DuplicateSSNReport) Columns() []wizard.Column {
	return []wizard.Column{
		{ID: "ssn", Header: "SSN", Type: wizard.ColumnString, Width: 120},
		{ID: "workerCount", Header: "Workers", Type: wizard.ColumnNumber, Width: 80},
		{ID: "workerNames", Header: "Worker Names", Type: wizard.ColumnString},
		{ID: "workerIds", Header: "Worker IDs", Type: wizard.ColumnLink},
	}
}

func (r *DuplicateSSNReport) PrimaryKeyField() string { return "ssn" }

func (r *DuplicateSSNReport) FetchRecords(ctx context.Context, _ wizard.Config, batchSize int, onProgress ProgressFunc) ([]Record, error) {
	workers, err := r.source.Workers(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading workers: %w", err)
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	bySSN := make(map[string][]Worker)
	for i, w := range workers {
		if w.SSN != "" {
			bySSN[w.SSN] = append(bySSN[w.SSN], w)
		}
		if onProgress != nil && (i+1)%batchSize == 0 {
			onProgress(i+1, len(workers))
		}
	}

	ssns := make([]string, 0, len(bySSN))
	for ssn, group := range bySSN {
		if len(group) > 1 {
			ssns = append(ssns, ssn)
		}
	}
	sort.Strings(ssns)

	records := make([]Record, 0, len(ssns))
	for _, ssn := range ssns {
		group := bySSN[ssn]
		names := make([]string, 0, len(group))
		ids := make([]string, 0, len(group))
		for _, w := range group {
			names = append(names, strings.TrimSpace(w.FirstName+" "+w.LastName))
			ids = append(ids, w.ID)
		}
		records = append(records, Record{
			"ssn":         ssn,
			"workerCount": len(group),
			"workerNames": strings.Join(names, ", "),
			"workerIds":   strings.Join(ids, ","),
		})
	}

	if onProgress != nil {
		onProgress(len(workers), len(workers))
	}
	return records, nil
}
