package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sirius/internal/report"
	"sirius/internal/wizard"
)

// memStore is an in-memory WizardStore for service tests.
type memStore struct {
	mu         sync.Mutex
	wizards    map[string]*wizard.Wizard
	files      map[string][]wizard.FileRef
	reportData map[string][]map[string]any
	retentions map[string]wizard.Retention

	saveErr  error
	patchErr error
	filesErr error
}

func newMemStore() *memStore {
	return &memStore{
		wizards:    make(map[string]*wizard.Wizard),
		files:      make(map[string][]wizard.FileRef),
		reportData: make(map[string][]map[string]any),
		retentions: make(map[string]wizard.Retention),
	}
}

func (m *memStore) CreateWizard(_ context.Context, w *wizard.Wizard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *w
	m.wizards[w.ID] = &cp
	return nil
}

func (m *memStore) GetWizard(_ context.Context, id string) (*wizard.Wizard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wizards[id]
	if !ok {
		return nil, wizard.ErrWizardNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memStore) ListWizards(_ context.Context) ([]*wizard.Wizard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*wizard.Wizard, 0, len(m.wizards))
	for _, w := range m.wizards {
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id string, status wizard.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wizards[id]
	if !ok {
		return wizard.ErrWizardNotFound
	}
	w.Status = status
	return nil
}

func (m *memStore) UpdateCurrentStep(_ context.Context, id, stepID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wizards[id]
	if !ok {
		return wizard.ErrWizardNotFound
	}
	w.CurrentStep = stepID
	return nil
}

func (m *memStore) PatchData(_ context.Context, id string, mutate func(*wizard.WizardData)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.patchErr != nil {
		return m.patchErr
	}
	w, ok := m.wizards[id]
	if !ok {
		return wizard.ErrWizardNotFound
	}
	mutate(&w.Data)
	return nil
}

func (m *memStore) DeleteWizard(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.wizards[id]; !ok {
		return wizard.ErrWizardNotFound
	}
	delete(m.wizards, id)
	return nil
}

func (m *memStore) AddFile(_ context.Context, wizardID string, f wizard.FileRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[wizardID] = append(m.files[wizardID], f)
	return nil
}

func (m *memStore) FilesFor(_ context.Context, wizardID string) ([]wizard.FileRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.filesErr != nil {
		return nil, m.filesErr
	}
	return m.files[wizardID], nil
}

func (m *memStore) SaveReportData(_ context.Context, dataID, _ string, retention wizard.Retention, records any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	rows, _ := records.([]report.Record)
	converted := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		converted = append(converted, map[string]any(r))
	}
	m.reportData[dataID] = converted
	m.retentions[dataID] = retention
	return nil
}

func (m *memStore) GetReportData(_ context.Context, dataID string) ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.reportData[dataID]
	if !ok {
		return nil, fmt.Errorf("report data %s not found", dataID)
	}
	return rows, nil
}

// stubEngine is a canned report engine for runner and service tests.
type stubEngine struct {
	name     string
	records  []report.Record
	err      error
	progress []int // processed values to report before returning
	total    int
}

func (e *stubEngine) Name() string        { return e.name }
func (e *stubEngine) DisplayName() string { return e.name }
func (e *stubEngine) Description() string { return "stub" }
func (e *stubEngine) Category() string    { return "test" }
func (e *stubEngine) Columns() []wizard.Column {
	return []wizard.Column{{ID: "workerId", Header: "Worker", Type: wizard.ColumnString}}
}
func (e *stubEngine) PrimaryKeyField() string { return report.DefaultPrimaryKeyField }

func (e *stubEngine) FetchRecords(_ context.Context, _ wizard.Config, _ int, onProgress report.ProgressFunc) ([]report.Record, error) {
	if e.err != nil {
		return nil, e.err
	}
	if onProgress != nil {
		for _, p := range e.progress {
			onProgress(p, e.total)
		}
		onProgress(len(e.records), len(e.records))
	}
	return e.records, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
}
