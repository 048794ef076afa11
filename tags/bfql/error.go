package bfql

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/openbfd/bfd/errors"
)

// ErrorSeverity indicates the severity level of a parser error
type ErrorSeverity string

const (
	SeverityError   ErrorSeverity = "error"   // Errors that prevent parsing or execution
	SeverityWarning ErrorSeverity = "warning" // Best-effort parsing warnings
	SeverityHint    ErrorSeverity = "hint"    // Suggestions for improvement
)

// ErrorKind categorizes parser errors for programmatic handling
type ErrorKind string

const (
	ErrorKindSyntax     ErrorKind = "syntax"     // Malformed query text
	ErrorKindLiteral    ErrorKind = "literal"    // Literal fails its format's own rules
	ErrorKindConstraint ErrorKind = "constraint" // Well-formed query the engine refuses to run
)

// ErrorContext selects the output format for a rendered ParseError
type ErrorContext string

const (
	ErrorContextTerminal ErrorContext = "terminal" // Colored, multi-line
	ErrorContextPlain    ErrorContext = "plain"    // Single line for logs and APIs
)

// ParseError is a structured BFQL error with source position metadata
type ParseError struct {
	Err         error         // Underlying error, carries the taxonomy sentinel
	Kind        ErrorKind     // Error category
	Severity    ErrorSeverity // Error severity
	Message     string        // Human-readable message
	Position    *Position     // Source position where the error occurred (optional)
	Token       string        // Offending token text (optional)
	Suggestions []string      // Possible fixes
	Timestamp   time.Time     // When the error occurred
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return e.FormatError(ErrorContextPlain)
}

// FormatError generates a context-appropriate error message
func (e *ParseError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextTerminal {
		return e.formatTerminalError()
	}
	return e.formatPlainError()
}

// formatPlainError creates a concise single-line error for logs and APIs
func (e *ParseError) formatPlainError() string {
	msg := e.Message
	if e.Position != nil {
		msg += fmt.Sprintf(" (at offset %d)", e.Position.Offset)
	}
	if e.Token != "" {
		msg += fmt.Sprintf(" near '%s'", e.Token)
	}
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(". Suggestions: %s", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// formatTerminalError creates a rich colored error for terminal display
func (e *ParseError) formatTerminalError() string {
	var baseMsg string
	switch e.Severity {
	case SeverityError:
		baseMsg = pterm.Red(e.Message)
	case SeverityWarning:
		baseMsg = pterm.Yellow(e.Message)
	case SeverityHint:
		baseMsg = pterm.LightCyan(e.Message)
	default:
		baseMsg = e.Message
	}

	context := fmt.Sprintf("\n\n%s", pterm.LightCyan("Context:"))
	if e.Position != nil {
		context += fmt.Sprintf("\n  %s line %d, column %d (offset %d)",
			pterm.Yellow("Position:"), e.Position.Line, e.Position.Character, e.Position.Offset)
	}
	if e.Token != "" {
		context += fmt.Sprintf("\n  %s '%s'", pterm.Yellow("Token:"), e.Token)
	}

	if len(e.Suggestions) > 0 {
		context += fmt.Sprintf("\n\n%s", pterm.Green("Suggestions:"))
		for _, suggestion := range e.Suggestions {
			context += fmt.Sprintf("\n  - %s", suggestion)
		}
	}

	return fmt.Sprintf("%s%s", baseMsg, context)
}

// Unwrap for errors.Is/As compatibility
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a ParseError with the given kind and message.
// Constraint errors carry errors.ErrQueryConstraint so callers can match
// them with errors.Is without depending on this package's types.
func NewParseError(kind ErrorKind, message string) *ParseError {
	e := &ParseError{
		Kind:      kind,
		Severity:  SeverityError,
		Message:   message,
		Timestamp: time.Now(),
	}
	if kind == ErrorKindConstraint {
		e.Err = errors.ErrQueryConstraint
	}
	return e
}

// WithPosition sets the source position where the error occurred
func (e *ParseError) WithPosition(pos Position) *ParseError {
	e.Position = &pos
	return e
}

// WithToken sets the offending token text
func (e *ParseError) WithToken(token string) *ParseError {
	e.Token = token
	return e
}

// WithSeverity sets the error severity
func (e *ParseError) WithSeverity(sev ErrorSeverity) *ParseError {
	e.Severity = sev
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ParseError) WithSuggestion(suggestion string) *ParseError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithUnderlying sets the underlying error
func (e *ParseError) WithUnderlying(err error) *ParseError {
	e.Err = err
	return e
}

// IsSyntaxError reports whether err is a ParseError of syntax or literal kind.
func IsSyntaxError(err error) bool {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Kind == ErrorKindSyntax || pe.Kind == ErrorKindLiteral
}

// IsConstraintError reports whether err is a query constraint violation.
func IsConstraintError(err error) bool {
	return errors.Is(err, errors.ErrQueryConstraint)
}
