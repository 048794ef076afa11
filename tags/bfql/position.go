package bfql

// Position is a location in BFQL source text.
// 1-based line numbers, 0-based character offsets per LSP conventions.
type Position struct {
	Line      int `json:"line"`      // 1-based line number
	Character int `json:"character"` // 0-based character offset within line
	Offset    int `json:"offset"`    // 0-based byte offset in entire source
}

// Range is a source span from start to end position.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// positionTracker maintains line/character/offset state while the lexer
// consumes source text.
type positionTracker struct {
	line      int // 1-based
	character int // 0-based within line
	offset    int // 0-based byte offset
}

func newPositionTracker() *positionTracker {
	return &positionTracker{line: 1}
}

// advance updates position after consuming text, resetting the character
// column on newlines. Offsets count bytes so multi-byte runes advance by
// their encoded length.
func (pt *positionTracker) advance(text string) {
	for _, ch := range text {
		if ch == '\n' {
			pt.line++
			pt.character = 0
		} else {
			pt.character++
		}
		pt.offset += len(string(ch))
	}
}

func (pt *positionTracker) current() Position {
	return Position{Line: pt.line, Character: pt.character, Offset: pt.offset}
}
