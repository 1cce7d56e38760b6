package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sirius/internal/report"
	"sirius/internal/wizard"
)

func newTestService(t *testing.T) (*WizardService, *memStore) {
	t.Helper()
	store := newMemStore()
	reports := report.NewRegistry()
	require.NoError(t, reports.Register(&stubEngine{name: "stub-report", records: []report.Record{{"workerId": "w1"}}}))

	registry, err := BuildRegistry(reports)
	require.NoError(t, err)

	runner := NewRunner(store, reports, 0, nil)
	svc := NewWizardService(store, registry, reports, runner, time.Minute, nil)
	return svc, store
}

func TestCreateWizard(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, WizardTypeWorkerImport, "emp1", nil, "")
	require.NoError(t, err)
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, wizard.StatusActive, w.Status)
	assert.Equal(t, StepIDUpload, w.CurrentStep)
	assert.Equal(t, "emp1", w.EntityID)
	// No retention supplied: the default tag applies.
	assert.Equal(t, wizard.DefaultRetention, w.Data.Retention)
}

func TestCreateWizardUnknownType(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), "bogus", "", nil, "")
	assert.ErrorIs(t, err, wizard.ErrUnknownType)
}

func TestCreateWizardInvalidRetention(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), WizardTypeWorkerImport, "", nil, "forever")
	require.Error(t, err)
	assert.Equal(t, wizard.ErrorTypeValidation, wizard.GetErrorType(err))
}

func TestNextGatedByCompletion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, WizardTypeWorkerImport, "", nil, "")
	require.NoError(t, err)

	// Nothing uploaded: forward navigation is refused.
	_, err = svc.Next(ctx, w.ID, false)
	assert.ErrorIs(t, err, wizard.ErrStepIncomplete)

	// Attaching a file satisfies the upload evaluator.
	_, err = svc.AttachFile(ctx, w.ID, wizard.FileRef{Name: "workers.csv", Size: 100})
	require.NoError(t, err)

	moved, err := svc.Next(ctx, w.ID, false)
	require.NoError(t, err)
	assert.Equal(t, StepIDMap, moved.CurrentStep)
}

func TestNextPreviewBypassesGating(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, WizardTypeWorkerImport, "", nil, "")
	require.NoError(t, err)

	// Preview navigation skips the completion check and moves the step.
	moved, err := svc.Next(ctx, w.ID, true)
	require.NoError(t, err)
	assert.Equal(t, StepIDMap, moved.CurrentStep)

	// Stepping back is always allowed.
	back, err := svc.Previous(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, StepIDUpload, back.CurrentStep)
}

func TestNavigationBoundaryNoOps(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, WizardTypeWorkerImport, "", nil, "")
	require.NoError(t, err)

	// First step: Previous stays put.
	same, err := svc.Previous(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, StepIDUpload, same.CurrentStep)

	// Last step: Next stays put.
	store.wizards[w.ID].CurrentStep = StepIDReview
	same, err = svc.Next(ctx, w.ID, false)
	require.NoError(t, err)
	assert.Equal(t, StepIDReview, same.CurrentStep)
}

func TestNextOnCompletedWizard(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, WizardTypeWorkerImport, "", nil, "")
	require.NoError(t, err)
	store.wizards[w.ID].Status = wizard.StatusCompleted

	_, err = svc.Next(ctx, w.ID, false)
	assert.ErrorIs(t, err, wizard.ErrWizardCompleted)
}

func TestStepCompleteToleratesFilesError(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, WizardTypeWorkerImport, "", nil, "")
	require.NoError(t, err)
	store.wizards[w.ID].Data.UploadedFileID = "f1"
	store.filesErr = errors.New("files table locked")

	// A files read failure means "no files", which fails the upload check.
	got, err := svc.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.False(t, svc.StepComplete(ctx, got))
}

func TestTriggerRunRequiresEngine(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// The import wizard type has no report engine behind it.
	w, err := svc.Create(ctx, WizardTypeWorkerImport, "", nil, "")
	require.NoError(t, err)

	err = svc.TriggerRun(ctx, w.ID)
	require.Error(t, err)
	assert.Equal(t, wizard.ErrorTypeValidation, wizard.GetErrorType(err))
}

func TestRunSyncThenResult(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, "stub-report", "", nil, wizard.Retention7Days)
	require.NoError(t, err)

	// Before any run there is no result to fetch.
	_, _, err = svc.Result(ctx, w.ID)
	require.Error(t, err)

	require.NoError(t, svc.RunSync(ctx, w.ID))

	rows, meta, err := svc.Result(ctx, w.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "w1", rows[0]["workerId"])
	require.NotNil(t, meta)
	assert.Equal(t, 1, meta.RecordCount)

	// The run step now evaluates complete and the wizard can advance.
	got, err := svc.Get(ctx, w.ID)
	require.NoError(t, err)
	got.CurrentStep = wizard.StepIDRun
	assert.True(t, svc.StepComplete(ctx, got))
}

func TestPatchDataReturnsUpdatedWizard(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, WizardTypeWorkerImport, "", nil, "")
	require.NoError(t, err)

	got, err := svc.PatchData(ctx, w.ID, func(d *wizard.WizardData) {
		d.Mode = "update"
		d.ColumnMappings = map[string]string{"Column A": "ssn"}
	})
	require.NoError(t, err)
	assert.Equal(t, "update", got.Data.Mode)
	assert.Equal(t, "ssn", got.Data.ColumnMappings["Column A"])
}

func TestDeleteWizard(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, WizardTypeWorkerImport, "", nil, "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, w.ID))
	_, err = svc.Get(ctx, w.ID)
	assert.ErrorIs(t, err, wizard.ErrWizardNotFound)
}
