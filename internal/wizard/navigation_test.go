package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func navRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.RegisterType("worker-import", testSteps()))
	return r
}

func TestNavigatorNext(t *testing.T) {
	nav := NewNavigator(navRegistry(t))

	assert.Equal(t, "map", nav.Next("worker-import", "upload"))
	assert.Equal(t, "review", nav.Next("worker-import", "map"))
}

func TestNavigatorPrevious(t *testing.T) {
	nav := NewNavigator(navRegistry(t))

	assert.Equal(t, "map", nav.Previous("worker-import", "review"))
	assert.Equal(t, "upload", nav.Previous("worker-import", "map"))
}

func TestNavigatorBoundariesAreNoOps(t *testing.T) {
	nav := NewNavigator(navRegistry(t))

	// Next at the last step and Previous at the first step leave the state
	// unchanged rather than erroring.
	assert.Equal(t, "review", nav.Next("worker-import", "review"))
	assert.Equal(t, "upload", nav.Previous("worker-import", "upload"))
}

func TestNavigatorUnknownTypeOrStep(t *testing.T) {
	nav := NewNavigator(navRegistry(t))

	assert.Equal(t, "upload", nav.Next("no-such-type", "upload"))
	assert.Equal(t, "bogus", nav.Next("worker-import", "bogus"))
	assert.Equal(t, "bogus", nav.Previous("worker-import", "bogus"))
}

func TestNavigatorFirstLast(t *testing.T) {
	nav := NewNavigator(navRegistry(t))

	assert.True(t, nav.IsFirst("worker-import", "upload"))
	assert.False(t, nav.IsFirst("worker-import", "map"))
	assert.True(t, nav.IsLast("worker-import", "review"))
	assert.False(t, nav.IsLast("worker-import", "upload"))
	assert.False(t, nav.IsLast("no-such-type", "upload"))
}

func TestNavigatorCanAdvanceIsPolicySeparate(t *testing.T) {
	nav := NewNavigator(navRegistry(t))

	incomplete := EvalContext{Wizard: wizardWithData(WizardData{})}
	complete := EvalContext{
		Wizard: wizardWithData(WizardData{UploadedFileID: "f1"}),
		Files:  []FileRef{{ID: "f1"}},
	}

	// The navigation primitives themselves never consult completion; only
	// CanAdvance does, so callers can preview-navigate freely.
	assert.False(t, nav.CanAdvance("worker-import", "upload", incomplete))
	assert.True(t, nav.CanAdvance("worker-import", "upload", complete))
	assert.Equal(t, "map", nav.Next("worker-import", "upload"))

	// Unknown steps evaluate as not complete.
	assert.False(t, nav.CanAdvance("worker-import", "bogus", complete))
	assert.False(t, nav.CanAdvance("no-such-type", "upload", complete))
}
