package logger

// Standard field names for consistent structured logging across BFD.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldActor    = "actor"
	FieldObjectID = "object_id"
	FieldTagPath  = "tagpath"
	FieldEventID  = "event_id"

	// Subsystem glyph (see package sym)
	FieldSymbol = "symbol"

	// Operations
	FieldOperation = "operation"
	FieldQuery     = "query"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts
	FieldCount   = "count"
	FieldMatched = "matched"
	FieldFailed  = "failed"
)
