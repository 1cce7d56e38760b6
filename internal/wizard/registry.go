package wizard

import (
	"fmt"
	"sync"
)

// EvalContext is the bag of inputs a completion evaluator may inspect. Any of
// the fields may be nil or zero; evaluators fail closed rather than panic.
type EvalContext struct {
	Wizard *Wizard
	Files  []FileRef
	Fields []FieldMeta
}

// Evaluator decides whether a step's prerequisites are satisfied. Evaluators
// are total and side-effect free: they never error and never mutate the
// context.
type Evaluator func(ctx EvalContext) bool

// StepController binds a step to its renderable component reference and its
// completion evaluator.
type StepController struct {
	Component          string
	EvaluateCompletion Evaluator
}

// Step declares one stage of a wizard type's sequence. Array position within
// the type's step list defines Previous/Next order; there is no explicit
// predecessor graph.
type Step struct {
	ID         string
	Name       string
	Controller StepController
}

// Registry maps (wizardType, stepID) to step controllers. Registration is
// static at startup; lookups return nil for unknown type/step so callers can
// treat a missing step as "unavailable" rather than fatal.
type Registry struct {
	mu    sync.RWMutex
	types map[string][]Step
	order []string // registration order of wizard types
}

// NewRegistry creates an empty step registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string][]Step)}
}

// RegisterType registers a wizard type with its ordered step list.
func (r *Registry) RegisterType(wizardType string, steps []Step) error {
	if wizardType == "" {
		return fmt.Errorf("wizard type cannot be empty")
	}
	if len(steps) == 0 {
		return fmt.Errorf("wizard type %s must declare at least one step", wizardType)
	}
	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		if s.ID == "" {
			return fmt.Errorf("wizard type %s has a step with empty id", wizardType)
		}
		if seen[s.ID] {
			return fmt.Errorf("wizard type %s declares duplicate step %s", wizardType, s.ID)
		}
		seen[s.ID] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[wizardType]; exists {
		return fmt.Errorf("wizard type %s already registered", wizardType)
	}
	r.types[wizardType] = steps
	r.order = append(r.order, wizardType)
	return nil
}

// Steps returns the ordered step list for a wizard type, or nil if the type
// is unknown.
func (r *Registry) Steps(wizardType string) []Step {
	r.mu.RLock()
	defer r.mu.RUnlock()

	steps, ok := r.types[wizardType]
	if !ok {
		return nil
	}
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// GetStep returns the step for (wizardType, stepID), or nil if either is
// unknown. A nil result means "step unavailable", not an error.
func (r *Registry) GetStep(wizardType, stepID string) *Step {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.types[wizardType] {
		if s.ID == stepID {
			step := s
			return &step
		}
	}
	return nil
}

// GetStepController returns the controller for (wizardType, stepID), or nil
// if either is unknown.
func (r *Registry) GetStepController(wizardType, stepID string) *StepController {
	step := r.GetStep(wizardType, stepID)
	if step == nil {
		return nil
	}
	ctrl := step.Controller
	return &ctrl
}

// GetStepComponent returns the component reference for (wizardType, stepID),
// or "" if either is unknown.
func (r *Registry) GetStepComponent(wizardType, stepID string) string {
	step := r.GetStep(wizardType, stepID)
	if step == nil {
		return ""
	}
	return step.Controller.Component
}

// Has reports whether a wizard type is registered.
func (r *Registry) Has(wizardType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.types[wizardType]
	return ok
}

// Types returns registered wizard types in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// FirstStep returns the id of a wizard type's first step, or "" if the type
// is unknown.
func (r *Registry) FirstStep(wizardType string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	steps := r.types[wizardType]
	if len(steps) == 0 {
		return ""
	}
	return steps[0].ID
}

// StepIndex returns the position of stepID within the type's step list, or -1
// if either is unknown.
func (r *Registry) StepIndex(wizardType, stepID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i, s := range r.types[wizardType] {
		if s.ID == stepID {
			return i
		}
	}
	return -1
}

// Validate checks that the registry is internally consistent: every type has
// at least one step, and every step carries both a component and an
// evaluator. Runtime lookups stay null-tolerant; this is the startup-time
// fail-fast counterpart.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, wizardType := range r.order {
		steps := r.types[wizardType]
		if len(steps) == 0 {
			return fmt.Errorf("wizard type %s has no steps", wizardType)
		}
		for _, s := range steps {
			if s.Controller.Component == "" {
				return fmt.Errorf("step %s/%s has no component", wizardType, s.ID)
			}
			if s.Controller.EvaluateCompletion == nil {
				return fmt.Errorf("step %s/%s has no completion evaluator", wizardType, s.ID)
			}
		}
	}
	return nil
}
