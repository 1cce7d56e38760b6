package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sirius/internal/report"
	"sirius/internal/wizard"
)

func TestBuildRegistry(t *testing.T) {
	reports := report.NewRegistry()
	require.NoError(t, reports.Register(&stubEngine{name: "stub-report"}))
	require.NoError(t, reports.Register(&stubEngine{name: "other-report"}))

	registry, err := BuildRegistry(reports)
	require.NoError(t, err)

	assert.Equal(t, []string{WizardTypeWorkerImport, "stub-report", "other-report"}, registry.Types())

	// The import wizard walks upload through review.
	steps := registry.Steps(WizardTypeWorkerImport)
	require.Len(t, steps, 4)
	assert.Equal(t, StepIDUpload, registry.FirstStep(WizardTypeWorkerImport))
	assert.Equal(t, StepIDReview, steps[3].ID)

	// Every report engine gets a configure/run/results wizard.
	reportSteps := registry.Steps("stub-report")
	require.Len(t, reportSteps, 3)
	assert.Equal(t, StepIDConfigure, reportSteps[0].ID)
	assert.Equal(t, wizard.StepIDRun, reportSteps[1].ID)
	assert.Equal(t, StepIDResults, reportSteps[2].ID)

	assert.NoError(t, registry.Validate())
}

func TestBuildRegistryEmptyReports(t *testing.T) {
	registry, err := BuildRegistry(report.NewRegistry())
	require.NoError(t, err)
	assert.Equal(t, []string{WizardTypeWorkerImport}, registry.Types())
}

func TestFieldsFor(t *testing.T) {
	fields := FieldsFor(WizardTypeWorkerImport)
	require.NotEmpty(t, fields)

	var alwaysRequired []string
	for _, f := range fields {
		if f.Required {
			alwaysRequired = append(alwaysRequired, f.ID)
		}
	}
	assert.Equal(t, []string{"ssn"}, alwaysRequired)

	assert.Nil(t, FieldsFor("stub-report"))
	assert.Nil(t, FieldsFor(""))
}
