package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sirius/internal/report"
	"sirius/internal/wizard"
)

// WizardStore is the persistence surface the wizard service depends on.
type WizardStore interface {
	CreateWizard(ctx context.Context, w *wizard.Wizard) error
	GetWizard(ctx context.Context, id string) (*wizard.Wizard, error)
	ListWizards(ctx context.Context) ([]*wizard.Wizard, error)
	UpdateStatus(ctx context.Context, id string, status wizard.Status) error
	UpdateCurrentStep(ctx context.Context, id, stepID string) error
	PatchData(ctx context.Context, id string, mutate func(*wizard.WizardData)) error
	DeleteWizard(ctx context.Context, id string) error
	AddFile(ctx context.Context, wizardID string, f wizard.FileRef) error
	FilesFor(ctx context.Context, wizardID string) ([]wizard.FileRef, error)
	SaveReportData(ctx context.Context, dataID, wizardID string, retention wizard.Retention, records any) error
	GetReportData(ctx context.Context, dataID string) ([]map[string]any, error)
}

// WizardService orchestrates wizard lifecycle: creation, navigation gated by
// completion evaluators, data patching, and report run triggering.
type WizardService struct {
	store      WizardStore
	registry   *wizard.Registry
	navigator  *wizard.Navigator
	reports    *report.Registry
	runner     *Runner
	logger     *slog.Logger
	runTimeout time.Duration
}

// NewWizardService creates the wizard service.
func NewWizardService(store WizardStore, registry *wizard.Registry, reports *report.Registry, runner *Runner, runTimeout time.Duration, logger *slog.Logger) *WizardService {
	if logger == nil {
		logger = slog.Default()
	}
	if runTimeout <= 0 {
		runTimeout = 30 * time.Minute
	}
	return &WizardService{
		store:      store,
		registry:   registry,
		navigator:  wizard.NewNavigator(registry),
		reports:    reports,
		runner:     runner,
		logger:     logger.With(slog.String("service", "wizard")),
		runTimeout: runTimeout,
	}
}

// Registry exposes the step registry for catalog endpoints.
func (s *WizardService) Registry() *wizard.Registry {
	return s.registry
}

// Create starts a new wizard of the given type at the type's first step,
// applying the default retention tag when none is supplied.
func (s *WizardService) Create(ctx context.Context, wizardType, entityID string, cfg *wizard.Config, retention wizard.Retention) (*wizard.Wizard, error) {
	if !s.registry.Has(wizardType) {
		return nil, wizard.ErrUnknownType
	}
	if retention == "" {
		retention = wizard.DefaultRetention
	}
	if !retention.IsValid() {
		return nil, wizard.NewValidationError("", "invalid retention value: "+string(retention))
	}

	now := time.Now()
	w := &wizard.Wizard{
		ID:          uuid.NewString(),
		Type:        wizardType,
		Status:      wizard.StatusActive,
		CurrentStep: s.registry.FirstStep(wizardType),
		EntityID:    entityID,
		Data: wizard.WizardData{
			Config:    cfg,
			Retention: retention,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateWizard(ctx, w); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "wizard created",
		slog.String("wizard_id", w.ID),
		slog.String("wizard_type", wizardType),
		slog.String("current_step", w.CurrentStep))
	return w, nil
}

// Get fetches a wizard by id.
func (s *WizardService) Get(ctx context.Context, id string) (*wizard.Wizard, error) {
	return s.store.GetWizard(ctx, id)
}

// List returns all wizards.
func (s *WizardService) List(ctx context.Context) ([]*wizard.Wizard, error) {
	return s.store.ListWizards(ctx)
}

// Delete removes a wizard.
func (s *WizardService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteWizard(ctx, id)
}

// evalContext assembles the evaluator input for a wizard's active step.
func (s *WizardService) evalContext(ctx context.Context, w *wizard.Wizard) wizard.EvalContext {
	files, err := s.store.FilesFor(ctx, w.ID)
	if err != nil {
		// Evaluators fail closed; a files read error just means "no files".
		s.logger.WarnContext(ctx, "files lookup failed",
			slog.String("wizard_id", w.ID),
			slog.String("error", err.Error()))
		files = nil
	}
	return wizard.EvalContext{
		Wizard: w,
		Files:  files,
		Fields: FieldsFor(w.Type),
	}
}

// Next advances the wizard one step. Forward navigation is gated by the
// active step's completion evaluator unless preview is set; a preview move
// never mutates progress markers, so stepping back remains safe. At the last
// step Next is a no-op.
func (s *WizardService) Next(ctx context.Context, id string, preview bool) (*wizard.Wizard, error) {
	w, err := s.store.GetWizard(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.Status == wizard.StatusCompleted {
		return nil, wizard.ErrWizardCompleted
	}

	if !preview && !s.navigator.CanAdvance(w.Type, w.CurrentStep, s.evalContext(ctx, w)) {
		return nil, wizard.ErrStepIncomplete
	}

	next := s.navigator.Next(w.Type, w.CurrentStep)
	if next == w.CurrentStep {
		return w, nil
	}
	if err := s.store.UpdateCurrentStep(ctx, id, next); err != nil {
		return nil, err
	}
	w.CurrentStep = next
	return w, nil
}

// Previous moves the wizard one step back; a no-op at the first step.
func (s *WizardService) Previous(ctx context.Context, id string) (*wizard.Wizard, error) {
	w, err := s.store.GetWizard(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := s.navigator.Previous(w.Type, w.CurrentStep)
	if prev == w.CurrentStep {
		return w, nil
	}
	if err := s.store.UpdateCurrentStep(ctx, id, prev); err != nil {
		return nil, err
	}
	w.CurrentStep = prev
	return w, nil
}

// StepComplete reports whether the wizard's active step satisfies its
// completion evaluator.
func (s *WizardService) StepComplete(ctx context.Context, w *wizard.Wizard) bool {
	return s.navigator.CanAdvance(w.Type, w.CurrentStep, s.evalContext(ctx, w))
}

// PatchData merge-patches wizard data fields.
func (s *WizardService) PatchData(ctx context.Context, id string, mutate func(*wizard.WizardData)) (*wizard.Wizard, error) {
	if err := s.store.PatchData(ctx, id, mutate); err != nil {
		return nil, err
	}
	return s.store.GetWizard(ctx, id)
}

// Complete marks the wizard's lifecycle terminal.
func (s *WizardService) Complete(ctx context.Context, id string) error {
	return s.store.UpdateStatus(ctx, id, wizard.StatusCompleted)
}

// TriggerRun starts the report run asynchronously and returns immediately.
// The run is fire-and-forget: its outcome is observed by polling the wizard
// record, and there is no cancellation primitive — re-triggering simply
// overwrites progress.run and any prior reportDataId.
func (s *WizardService) TriggerRun(ctx context.Context, id string) error {
	w, err := s.store.GetWizard(ctx, id)
	if err != nil {
		return err
	}
	if !s.reports.Has(w.Type) {
		return wizard.NewValidationError(wizard.StepIDRun, "wizard type has no report engine: "+w.Type)
	}

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()
		if err := s.runner.Run(runCtx, id); err != nil {
			s.logger.Error("async report run failed",
				slog.String("wizard_id", id),
				slog.String("error", err.Error()))
		}
	}()
	return nil
}

// RunSync executes the run step synchronously. Used by tests and by callers
// that want the error surfaced on the request.
func (s *WizardService) RunSync(ctx context.Context, id string) error {
	return s.runner.Run(ctx, id)
}

// Result fetches the stored rows of a wizard's most recent successful run.
func (s *WizardService) Result(ctx context.Context, id string) ([]map[string]any, *wizard.ReportMeta, error) {
	w, err := s.store.GetWizard(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if w.Data.ReportDataID == "" {
		return nil, nil, wizard.NewValidationError(StepIDResults, "wizard has no report data")
	}
	rows, err := s.store.GetReportData(ctx, w.Data.ReportDataID)
	if err != nil {
		return nil, nil, err
	}
	return rows, w.Data.ReportMeta, nil
}

// AttachFile records an uploaded file and points the wizard's data at it.
func (s *WizardService) AttachFile(ctx context.Context, id string, f wizard.FileRef) (*wizard.Wizard, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if err := s.store.AddFile(ctx, id, f); err != nil {
		return nil, err
	}
	fileID := f.ID
	return s.PatchData(ctx, id, func(d *wizard.WizardData) {
		d.UploadedFileID = fileID
		d.FileCount++
	})
}
