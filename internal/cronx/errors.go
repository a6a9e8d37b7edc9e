package cronx

import "fmt"

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	// KindStructural covers wrong field counts and unparseable
	// range/step/list syntax.
	KindStructural ErrorKind = iota

	// KindGrammar covers syntactically valid fields whose values fall
	// outside the grammar's accepted range (e.g. month 13).
	KindGrammar
)

func (k ErrorKind) String() string {
	switch k {
	case KindGrammar:
		return "grammar violation"
	default:
		return "structural error"
	}
}

// ParseError is returned for any invalid time expression. It carries the
// original raw text and, when the failure is local to one field, that
// field's name.
type ParseError struct {
	Kind  ErrorKind
	Field string // empty when the whole expression is malformed
	Text  string // original raw input, untrimmed
	Cause string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("cron %s in %s field: %s (expression %q)", e.Kind, e.Field, e.Cause, e.Text)
	}
	return fmt.Sprintf("cron %s: %s (expression %q)", e.Kind, e.Cause, e.Text)
}

func structuralErr(text, format string, args ...any) *ParseError {
	return &ParseError{Kind: KindStructural, Text: text, Cause: fmt.Sprintf(format, args...)}
}

func fieldErr(kind ErrorKind, field, text, format string, args ...any) *ParseError {
	return &ParseError{Kind: kind, Field: field, Text: text, Cause: fmt.Sprintf(format, args...)}
}
