// Package report defines the contract every concrete report type implements
// and the registry the wizard runner resolves engines from. Engines are pure
// queries: FetchRecords reads, never mutates, and is safe to re-invoke.
package report

import (
	"context"
	"fmt"
	"sync"

	"sirius/internal/wizard"
)

// Record is one row of report output. The field named by the engine's
// PrimaryKeyField is always present.
type Record map[string]any

// ProgressFunc receives incremental progress during a fetch. Engines call it
// at least once on completion; large scans call it every batch.
type ProgressFunc func(processed, total int)

// Engine is the contract every concrete report type supplies. Identity
// methods are static metadata; FetchRecords is the only operation with real
// work.
type Engine interface {
	// Name is the registry key; report wizard types bind to it.
	Name() string
	DisplayName() string
	Description() string
	Category() string

	// Columns returns the fixed schema of the report's tabular output.
	Columns() []wizard.Column

	// PrimaryKeyField names the field that uniquely keys one output record.
	// Most reports key by worker id; reports whose natural grain differs
	// (e.g. SSN-keyed dedup) override it.
	PrimaryKeyField() string

	// FetchRecords produces the report's rows. It must be idempotent (same
	// inputs, same output set, no side effects beyond reads) and must invoke
	// onProgress at least once before returning, even for empty results.
	FetchRecords(ctx context.Context, cfg wizard.Config, batchSize int, onProgress ProgressFunc) ([]Record, error)
}

// DefaultPrimaryKeyField is the worker-id convention most reports key by.
const DefaultPrimaryKeyField = "workerId"

// DefaultBatchSize is the progress-reporting interval for large scans.
const DefaultBatchSize = 500

// Registry holds report engines keyed by name.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
	order   []string
}

// NewRegistry creates an empty engine registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

// Register adds an engine to the registry.
func (r *Registry) Register(e Engine) error {
	if e == nil {
		return fmt.Errorf("cannot register nil engine")
	}
	name := e.Name()
	if name == "" {
		return fmt.Errorf("engine name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[name]; exists {
		return fmt.Errorf("engine %s already registered", name)
	}
	r.engines[name] = e
	r.order = append(r.order, name)
	return nil
}

// Get retrieves an engine by name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("report engine %s not found", name)
	}
	return e, nil
}

// Has reports whether an engine is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.engines[name]
	return ok
}

// List returns all registered engines in registration order.
func (r *Registry) List() []Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Engine, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.engines[name])
	}
	return out
}

// Count returns the number of registered engines.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.engines)
}
