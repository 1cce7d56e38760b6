package wizard

// Navigator implements the step navigation state machine over a registry's
// ordered step lists. Navigation is pure mechanics: it never consults a
// completion evaluator. The caller is responsible for refusing to advance
// when the active step's evaluator returns false, which keeps preview
// navigation possible without mutating progress markers.
type Navigator struct {
	registry *Registry
}

// NewNavigator creates a navigator over the given registry.
func NewNavigator(registry *Registry) *Navigator {
	return &Navigator{registry: registry}
}

// Next returns the step id following current within the wizard type's ordered
// list. At the last step (or for an unknown type/step) it returns current
// unchanged: boundary navigation is a no-op, not an error.
func (n *Navigator) Next(wizardType, current string) string {
	steps := n.registry.Steps(wizardType)
	for i, s := range steps {
		if s.ID == current {
			if i+1 < len(steps) {
				return steps[i+1].ID
			}
			return current
		}
	}
	return current
}

// Previous returns the step id preceding current. At the first step (or for
// an unknown type/step) it returns current unchanged.
func (n *Navigator) Previous(wizardType, current string) string {
	steps := n.registry.Steps(wizardType)
	for i, s := range steps {
		if s.ID == current {
			if i > 0 {
				return steps[i-1].ID
			}
			return current
		}
	}
	return current
}

// CanAdvance reports whether the active step's completion evaluator allows
// forward navigation. Unknown steps evaluate as not complete.
func (n *Navigator) CanAdvance(wizardType, current string, ctx EvalContext) bool {
	ctrl := n.registry.GetStepController(wizardType, current)
	if ctrl == nil || ctrl.EvaluateCompletion == nil {
		return false
	}
	return ctrl.EvaluateCompletion(ctx)
}

// IsLast reports whether current is the final step of the wizard type.
func (n *Navigator) IsLast(wizardType, current string) bool {
	steps := n.registry.Steps(wizardType)
	return len(steps) > 0 && steps[len(steps)-1].ID == current
}

// IsFirst reports whether current is the initial step of the wizard type.
func (n *Navigator) IsFirst(wizardType, current string) bool {
	steps := n.registry.Steps(wizardType)
	return len(steps) > 0 && steps[0].ID == current
}
