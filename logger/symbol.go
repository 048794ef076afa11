package logger

import "github.com/openbfd/bfd/sym"

// Symbol-aware logging helpers. These log with the glyph as a structured
// field, not embedded in the message, so logs stay queryable by subsystem.
//
// Usage:
//
//	// Instead of:
//	logger.Infow(sym.DB + " Database opened", "path", p)
//
//	// Use:
//	logger.DBInfow("Database opened", "path", p)

// DBInfow logs an info message tagged with the storage glyph (▤)
func DBInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.DB}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// DBDebugw logs a debug message tagged with the storage glyph (▤)
func DBDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.DB}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}

// QueryInfow logs an info message tagged with the query glyph (⋈)
func QueryInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.Query}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}

// QueryDebugw logs a debug message tagged with the query glyph (⋈)
func QueryDebugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.Query}, keysAndValues...)
		Logger.Debugw(msg, fields...)
	}
}

// EventInfow logs an info message tagged with the event glyph (✦)
func EventInfow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		fields := append([]interface{}{FieldSymbol, sym.Event}, keysAndValues...)
		Logger.Infow(msg, fields...)
	}
}
