// Package sym defines canonical glyphs for BFD subsystems and system markers.
// These symbols are stable across CLI output, logs, and documentation.
package sym

// Subsystem glyphs, attached to structured log entries so logs are
// filterable by subsystem without parsing messages.
const (
	DB    = "▤" // db — storage engine operations
	Query = "⋈" // query — BFQL parse and evaluation
	Event = "✦" // event — append-only mutation log
	Perm  = "⊘" // perm — capability resolution
	Tag   = "⌗" // tag — namespace/tag registry
)

// names maps each glyph to its subsystem name.
var names = map[string]string{
	DB:    "db",
	Query: "query",
	Event: "event",
	Perm:  "perm",
	Tag:   "tag",
}

// Name returns the subsystem name for a glyph, or "" if unknown.
func Name(glyph string) string {
	return names[glyph]
}

// Known reports whether the glyph is a registered BFD symbol.
func Known(glyph string) bool {
	_, ok := names[glyph]
	return ok
}
