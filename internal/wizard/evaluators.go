package wizard

// Completion evaluators for the built-in step kinds. All of them fail closed:
// a missing or malformed context field counts as "not complete" rather than
// an error. The one documented exception is EvaluateMapComplete's
// zero-required-fields case, which is complete by convention.

// EvaluateUploadComplete is true iff the wizard references an uploaded file
// and at least one associated file record exists. Both conditions are
// required: a dangling file reference with zero files is incomplete.
func EvaluateUploadComplete(ctx EvalContext) bool {
	if ctx.Wizard == nil {
		return false
	}
	return ctx.Wizard.Data.UploadedFileID != "" && len(ctx.Files) > 0
}

// EvaluateMapComplete is true iff every required field id appears as a value
// in the wizard's column mappings. The required set is conditioned on the
// wizard's mode: Required always counts, RequiredForCreate only in create
// mode, RequiredForUpdate only in update mode. Zero required fields means the
// step is complete by convention. The Unmapped sentinel never satisfies a
// field.
func EvaluateMapComplete(ctx EvalContext) bool {
	if ctx.Wizard == nil {
		return false
	}

	mode := ctx.Wizard.Data.Mode
	var required []string
	for _, f := range ctx.Fields {
		switch {
		case f.Required:
			required = append(required, f.ID)
		case mode == "create" && f.RequiredForCreate:
			required = append(required, f.ID)
		case mode == "update" && f.RequiredForUpdate:
			required = append(required, f.ID)
		}
	}
	if len(required) == 0 {
		return true
	}

	mapped := make(map[string]bool)
	for _, fieldID := range ctx.Wizard.Data.ColumnMappings {
		if fieldID != Unmapped && fieldID != "" {
			mapped[fieldID] = true
		}
	}
	for _, id := range required {
		if !mapped[id] {
			return false
		}
	}
	return true
}

// EvaluateValidateComplete is true iff validation has run and found exactly
// zero invalid rows. A results object with a nonzero invalid count is
// incomplete; so is a missing results object.
func EvaluateValidateComplete(ctx EvalContext) bool {
	if ctx.Wizard == nil {
		return false
	}
	results := ctx.Wizard.Data.ValidationResults
	return results != nil && results.InvalidRows == 0
}

// EvaluateRunComplete is true iff the run step has reached its terminal
// completed status. Only the status matters here; percentComplete gates
// client polling, not completion.
func EvaluateRunComplete(ctx EvalContext) bool {
	if ctx.Wizard == nil {
		return false
	}
	run := ctx.Wizard.Data.ProgressFor(StepIDRun)
	return run != nil && run.Status == RunStatusCompleted
}

// EvaluateAlwaysComplete is trivially true; used for steps with no gating
// precondition, such as review and result display steps.
func EvaluateAlwaysComplete(EvalContext) bool {
	return true
}
