package mapping

import (
	"errors"
	"fmt"
)

// ErrAmbiguousMapping is returned when a table or an override family would
// need two different target names for one identifier.
var ErrAmbiguousMapping = errors.New("ambiguous mapping")

// AmbiguityError names the identifier and the two targets that conflict.
type AmbiguityError struct {
	Subject string
	First   string
	Second  string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous mapping for %s: %q and %q", e.Subject, e.First, e.Second)
}

func (e *AmbiguityError) Unwrap() error { return ErrAmbiguousMapping }

// ParseError reports a line of a mapping file that could not be read.
type ParseError struct {
	Format string
	Line   int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s mappings line %d: %s", e.Format, e.Line, e.Msg)
}
