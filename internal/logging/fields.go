package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType is the standardized key classifying a warning or error.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized key for the suggested next step.
	FieldErrorHint = "error_hint"
	// FieldTrackID is the standardized key for catalog track identifiers.
	FieldTrackID = "track_id"
	// FieldCacheKey is the standardized key for lookup cache keys.
	FieldCacheKey = "cache_key"
	// FieldImpact is the standardized key for what a warning cost the run.
	FieldImpact = "impact"
	// FieldSessionID carries the per-run identifier added by New.
	FieldSessionID = "session_id"
)
