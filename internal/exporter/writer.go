// Package exporter writes generated feed output to disk in CSV or XLSX form.
package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Writer writes feed output files under a configured export directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger}
}

// WriteOptions configures one output file.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM for Excel compatibility, CSV only
}

// Write writes the records in the given format and returns the full path of
// the file written. An empty format means CSV.
func (w *Writer) Write(fileName, format string, opts WriteOptions) (string, error) {
	fullPath := filepath.Join(w.dir, fileName)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	w.logger.Info("writing export file",
		slog.String("path", fullPath),
		slog.String("format", format),
		slog.Int("record_count", len(opts.Records)))

	switch format {
	case "", "csv":
		if err := w.writeCSV(fullPath, opts); err != nil {
			return "", err
		}
	case "xlsx":
		if err := w.writeXLSX(fullPath, opts); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
	return fullPath, nil
}

func (w *Writer) writeCSV(fullPath string, opts WriteOptions) error {
	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if opts.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("writing BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if len(opts.Headers) > 0 {
		if err := writer.Write(opts.Headers); err != nil {
			return fmt.Errorf("writing headers: %w", err)
		}
	}
	for i, record := range opts.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	return writer.Error()
}

func (w *Writer) writeXLSX(fullPath string, opts WriteOptions) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	rowNum := 1
	if len(opts.Headers) > 0 {
		cells := make([]any, len(opts.Headers))
		for i, h := range opts.Headers {
			cells[i] = h
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &cells); err != nil {
			return fmt.Errorf("writing header row: %w", err)
		}
		rowNum++
	}
	for _, record := range opts.Records {
		cells := make([]any, len(record))
		for i, v := range record {
			cells[i] = v
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", rowNum, err)
		}
		rowNum++
	}
	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
