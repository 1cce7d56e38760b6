package services

import (
	"fmt"

	"sirius/internal/report"
	"sirius/internal/wizard"
)

// Wizard type and step ids for the built-in catalog. Report wizard types share
// the report engine's name; the worker import feed wizard has its own type.
const (
	WizardTypeWorkerImport = "worker-import"

	StepIDUpload   = "upload"
	StepIDMap      = "map"
	StepIDValidate = "validate"
	StepIDReview   = "review"

	StepIDConfigure = "configure"
	StepIDResults   = "results"
)

// workerImportFields is the importable field set of the worker record type.
// The mode-conditional flags drive the map step's completion evaluator.
var workerImportFields = []wizard.FieldMeta{
	{ID: "ssn", Label: "SSN", Required: true},
	{ID: "firstName", Label: "First Name", RequiredForCreate: true},
	{ID: "lastName", Label: "Last Name", RequiredForCreate: true},
	{ID: "employerId", Label: "Employer", RequiredForCreate: true},
	{ID: "hireDate", Label: "Hire Date"},
	{ID: "hourlyRate", Label: "Hourly Rate", RequiredForUpdate: true},
}

// FieldsFor returns the importable field metadata for a wizard type, or nil
// when the type has no field set.
func FieldsFor(wizardType string) []wizard.FieldMeta {
	if wizardType == WizardTypeWorkerImport {
		return workerImportFields
	}
	return nil
}

// BuildRegistry assembles the step registry for the built-in wizard types: the
// worker import feed wizard plus one configure/run/results wizard per report
// engine. Validate runs before the registry is handed out so a wiring mistake
// fails startup.
func BuildRegistry(reports *report.Registry) (*wizard.Registry, error) {
	registry := wizard.NewRegistry()

	importSteps := []wizard.Step{
		{ID: StepIDUpload, Name: "Upload File", Controller: wizard.StepController{
			Component:          "wizard/upload",
			EvaluateCompletion: wizard.EvaluateUploadComplete,
		}},
		{ID: StepIDMap, Name: "Map Columns", Controller: wizard.StepController{
			Component:          "wizard/map-columns",
			EvaluateCompletion: wizard.EvaluateMapComplete,
		}},
		{ID: StepIDValidate, Name: "Validate Rows", Controller: wizard.StepController{
			Component:          "wizard/validate",
			EvaluateCompletion: wizard.EvaluateValidateComplete,
		}},
		{ID: StepIDReview, Name: "Review", Controller: wizard.StepController{
			Component:          "wizard/review",
			EvaluateCompletion: wizard.EvaluateAlwaysComplete,
		}},
	}
	if err := registry.RegisterType(WizardTypeWorkerImport, importSteps); err != nil {
		return nil, fmt.Errorf("registering %s steps: %w", WizardTypeWorkerImport, err)
	}

	for _, engine := range reports.List() {
		steps := []wizard.Step{
			{ID: StepIDConfigure, Name: "Configure", Controller: wizard.StepController{
				Component:          "report/configure",
				EvaluateCompletion: wizard.EvaluateAlwaysComplete,
			}},
			{ID: wizard.StepIDRun, Name: "Run Report", Controller: wizard.StepController{
				Component:          "report/run",
				EvaluateCompletion: wizard.EvaluateRunComplete,
			}},
			{ID: StepIDResults, Name: "Results", Controller: wizard.StepController{
				Component:          "report/results",
				EvaluateCompletion: wizard.EvaluateAlwaysComplete,
			}},
		}
		if err := registry.RegisterType(engine.Name(), steps); err != nil {
			return nil, fmt.Errorf("registering %s steps: %w", engine.Name(), err)
		}
	}

	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("step registry inconsistent: %w", err)
	}
	return registry, nil
}
