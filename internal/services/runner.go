package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sirius/internal/infrastructure"
	"sirius/internal/report"
	"sirius/internal/wizard"
)

// Runner executes a report wizard's run step. The status protocol is
// two-phase: progress.run is marked in_progress before any work starts, then
// completed or failed afterward. There is no resume; a crash mid-run leaves
// the wizard in_progress until an operator re-triggers it.
type Runner struct {
	store     WizardStore
	reports   *report.Registry
	batchSize int
	logger    *slog.Logger
	metrics   *infrastructure.WizardMetrics
	now       func() time.Time
}

// NewRunner creates a runner over the given store and report registry.
func NewRunner(store WizardStore, reports *report.Registry, batchSize int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize <= 0 {
		batchSize = report.DefaultBatchSize
	}
	return &Runner{
		store:     store,
		reports:   reports,
		batchSize: batchSize,
		logger:    logger.With(slog.String("component", "runner")),
		now:       time.Now,
	}
}

// SetMetrics attaches run metrics instruments.
func (r *Runner) SetMetrics(m *infrastructure.WizardMetrics) {
	r.metrics = m
}

// Run executes the report bound to the wizard's type and persists the
// outcome. On failure the original fetch error always propagates; a failed
// status-patch write is logged and swallowed so it cannot mask the run error.
// A failed run never clears reportMeta or reportDataId from a prior success.
func (r *Runner) Run(ctx context.Context, wizardID string) error {
	w, err := r.store.GetWizard(ctx, wizardID)
	if err != nil {
		return err
	}
	engine, err := r.reports.Get(w.Type)
	if err != nil {
		return wizard.NewExecutionError(wizard.StepIDRun, err)
	}

	started := r.now()
	r.metrics.RecordStart(ctx, w.Type)
	if err := r.patchRun(ctx, wizardID, &wizard.ProgressEntry{
		Status: wizard.RunStatusInProgress,
	}); err != nil {
		return fmt.Errorf("marking run in progress: %w", err)
	}

	var cfg wizard.Config
	if w.Data.Config != nil {
		cfg = *w.Data.Config
	}

	onProgress := func(processed, total int) {
		percent := 100.0
		if total > 0 {
			percent = float64(processed) / float64(total) * 100
		}
		if patchErr := r.patchRun(ctx, wizardID, &wizard.ProgressEntry{
			Status:          wizard.RunStatusInProgress,
			PercentComplete: percent,
		}); patchErr != nil {
			r.logger.Warn("progress patch failed",
				slog.String("wizard_id", wizardID),
				slog.String("error", patchErr.Error()))
		}
	}

	records, runErr := engine.FetchRecords(ctx, cfg, r.batchSize, onProgress)
	duration := r.now().Sub(started)
	r.metrics.RecordRun(ctx, w.Type, duration, runErr != nil)

	if runErr != nil {
		r.logger.Error("report run failed",
			slog.String("wizard_id", wizardID),
			slog.String("wizard_type", w.Type),
			slog.String("error", runErr.Error()))
		if patchErr := r.patchRun(ctx, wizardID, &wizard.ProgressEntry{
			Status: wizard.RunStatusFailed,
			Error:  runErr.Error(),
		}); patchErr != nil {
			// The original error takes priority; the secondary failure is
			// logged and swallowed.
			r.logger.Error("failed to record run failure",
				slog.String("wizard_id", wizardID),
				slog.String("error", patchErr.Error()))
		}
		return runErr
	}

	dataID := uuid.NewString()
	retention := w.Data.Retention
	if retention == "" {
		retention = wizard.DefaultRetention
	}
	if err := r.store.SaveReportData(ctx, dataID, wizardID, retention, records); err != nil {
		saveErr := fmt.Errorf("saving report data: %w", err)
		if patchErr := r.patchRun(ctx, wizardID, &wizard.ProgressEntry{
			Status: wizard.RunStatusFailed,
			Error:  saveErr.Error(),
		}); patchErr != nil {
			r.logger.Error("failed to record run failure",
				slog.String("wizard_id", wizardID),
				slog.String("error", patchErr.Error()))
		}
		return saveErr
	}

	completedAt := r.now()
	meta := &wizard.ReportMeta{
		GeneratedAt:     completedAt,
		RecordCount:     len(records),
		Columns:         engine.Columns(),
		PrimaryKeyField: engine.PrimaryKeyField(),
	}
	if err := r.store.PatchData(ctx, wizardID, func(d *wizard.WizardData) {
		d.SetProgress(wizard.StepIDRun, &wizard.ProgressEntry{
			Status:          wizard.RunStatusCompleted,
			PercentComplete: 100,
			CompletedAt:     &completedAt,
		})
		d.ReportMeta = meta
		d.ReportDataID = dataID
	}); err != nil {
		return fmt.Errorf("recording run completion: %w", err)
	}

	r.logger.Info("report run completed",
		slog.String("wizard_id", wizardID),
		slog.String("wizard_type", w.Type),
		slog.Int("record_count", len(records)),
		slog.Duration("duration", duration))
	return nil
}

func (r *Runner) patchRun(ctx context.Context, wizardID string, entry *wizard.ProgressEntry) error {
	return r.store.PatchData(ctx, wizardID, func(d *wizard.WizardData) {
		d.SetProgress(wizard.StepIDRun, entry)
	})
}
