package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldRunID is the standardized structured logging key for stage-run correlation identifiers.
	FieldRunID = "run_id"
	// FieldFieldID is the standardized structured logging key for field identifiers.
	FieldFieldID = "field_id"
	// FieldChannel is the standardized structured logging key for sample channels (composite/luma/chroma).
	FieldChannel = "channel"
	// FieldSourceIndex is the standardized structured logging key for stacker source indexes.
	FieldSourceIndex = "source_index"
	// FieldEventType is the standardized structured logging key for machine-readable event tags.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized structured logging key for remediation hints on warnings.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized structured logging key for the user-facing consequence of a warning.
	FieldImpact = "impact"
)
