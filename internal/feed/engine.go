// Package feed defines the contract every concrete data-feed type implements:
// declared launch arguments, date-ranged record generation, and deterministic
// output naming.
package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"sirius/internal/wizard"
)

// Argument declares one user-supplied feed parameter.
type Argument struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // string, number, date, select, boolean
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
}

// Data is the stored wizard state a feed generation reads from: explicit
// launch arguments, a previously stored period, and the configured output
// format.
type Data struct {
	Args         map[string]any `json:"args,omitempty"`
	Period       *wizard.Period `json:"period,omitempty"`
	OutputFormat string         `json:"outputFormat,omitempty"`
}

// Result is the outcome of a feed generation.
type Result struct {
	RecordCount int           `json:"recordCount"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Filters     wizard.Period `json:"filters"`
	FileName    string        `json:"fileName"`
}

// Record is one produced feed row.
type Record map[string]any

// Engine is the contract every concrete feed type supplies.
type Engine interface {
	Name() string

	// LaunchArguments declares the user-supplied parameters, commonly
	// defaulting to the current month and year.
	LaunchArguments() []Argument

	// GenerateFeed resolves the effective period, produces the rows, writes
	// the output file and returns the resolved filters so a subsequent call
	// with them stored as Data.Period reproduces the identical range.
	GenerateFeed(ctx context.Context, data Data) (Result, error)

	// GenerateRecords is the feed-specific row production for one period.
	GenerateRecords(ctx context.Context, year, month int) ([]Record, error)
}

// DefaultOutputFormat applies when Data carries no explicit format.
const DefaultOutputFormat = "csv"

// ResolvePeriod resolves the effective reporting period, preferring explicit
// launch arguments over a stored period, falling back to the current month
// only when neither is present.
func ResolvePeriod(data Data, now time.Time) wizard.Period {
	year, yearOK := intArg(data.Args, "year")
	month, monthOK := intArg(data.Args, "month")
	if yearOK && monthOK {
		return wizard.Period{Year: year, Month: month}
	}
	if data.Period != nil && data.Period.Year != 0 && data.Period.Month != 0 {
		return *data.Period
	}
	return wizard.Period{Year: now.Year(), Month: int(now.Month())}
}

// OutputFileName derives the deterministic output name for a feed run:
// <type>_<year>_<month>.<format>.
func OutputFileName(feedType string, period wizard.Period, format string) string {
	if format == "" {
		format = DefaultOutputFormat
	}
	return fmt.Sprintf("%s_%d_%02d.%s", feedType, period.Year, period.Month, format)
}

func intArg(args map[string]any, name string) (int, bool) {
	v, ok := args[name]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// Registry holds feed engines keyed by name.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
	order   []string
}

// NewRegistry creates an empty feed registry.
func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]Engine)}
}

// Register adds a feed engine to the registry.
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

// Get retrieves a feed engine by name.
func (r *Registry) Get(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("feed engine %s not found", name)
	}
	return e, nil
}

// List returns all registered feed engines in registration order.
func (r *Registry) List() []Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Engine, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.engines[name])
	}
	return out
}
