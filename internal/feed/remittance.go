package feed

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"sirius/internal/exporter"
)

// ContributionRow is one worker's reported hours and contribution for a
// period, as read from the contribution ledger.
type ContributionRow struct {
	WorkerID     string
	WorkerName   string
	EmployerID   string
	Hours        float64
	Contribution float64
}

// RemittanceSource reads contribution rows for a reporting period.
type RemittanceSource interface {
	ContributionRows(ctx context.Context, year, month int) ([]ContributionRow, error)
}

// MonthlyRemittanceFeed produces the monthly remittance file: one row per
// worker with reported hours and contribution amounts for the period.
type MonthlyRemittanceFeed struct {
	source RemittanceSource
	writer *exporter.Writer
	now    func() time.Time
}

// NewMonthlyRemittanceFeed creates the feed over the given source and output
// writer.
func NewMonthlyRemittanceFeed(source RemittanceSource, writer *exporter.Writer) *MonthlyRemittanceFeed {
	return &MonthlyRemittanceFeed{source: source, writer: writer, now: time.Now}
}

// SetClock overrides the current-month fallback clock. Used by tests.
func (f *MonthlyRemittanceFeed) SetClock(now func() time.Time) {
	if now != nil {
		f.now = now
	}
}

func (f *MonthlyRemittanceFeed) Name() string { return "monthly-remittance" }

func (f *MonthlyRemittanceFeed) LaunchArguments() []Argument {
	now := f.now()
	return []Argument{
		{Name: "year", Type: "number", Required: false, Default: now.Year()},
		{Name: "month", Type: "number", Required: false, Default: int(now.Month())},
	}
}

func (f *MonthlyRemittanceFeed) GenerateFeed(ctx context.Context, data Data) (Result, error) {
	period := ResolvePeriod(data, f.now())

	records, err := f.GenerateRecords(ctx, period.Year, period.Month)
	if err != nil {
		return Result{}, fmt.Errorf("generating remittance records: %w", err)
	}

	fileName := OutputFileName(f.Name(), period, data.OutputFormat)
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			fmt.Sprint(rec["workerId"]),
			fmt.Sprint(rec["workerName"]),
			fmt.Sprint(rec["employerId"]),
			strconv.FormatFloat(rec["hours"].(float64), 'f', 2, 64),
			strconv.FormatFloat(rec["contribution"].(float64), 'f', 2, 64),
		})
	}
	if f.writer != nil {
		opts := exporter.WriteOptions{
			Headers: []string{"Worker ID", "Worker Name", "Employer ID", "Hours", "Contribution"},
			Records: rows,
		}
		if _, err := f.writer.Write(fileName, data.OutputFormat, opts); err != nil {
			return Result{}, fmt.Errorf("writing feed output: %w", err)
		}
	}

	return Result{
		RecordCount: len(records),
		GeneratedAt: f.now(),
		Filters:     period,
		FileName:    fileName,
	}, nil
}

func (f *MonthlyRemittanceFeed) GenerateRecords(ctx context.Context, year, month int) ([]Record, error) {
	rows, err := f.source.ContributionRows(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("loading contribution rows: %w", err)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].WorkerID < rows[j].WorkerID })

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, Record{
			"workerId":     row.WorkerID,
			"workerName":   row.WorkerName,
			"employerId":   row.EmployerID,
			"hours":        row.Hours,
			"contribution": row.Contribution,
		})
	}
	return records, nil
}
