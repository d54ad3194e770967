package hierarchy

import (
	"errors"
	"fmt"
)

var (
	// ErrUnresolvedMember is returned when no class in the closure declares a
	// referenced member.
	ErrUnresolvedMember = errors.New("unresolved member")

	// ErrPartialHierarchy marks classes whose supertypes are not all present.
	ErrPartialHierarchy = errors.New("partial hierarchy")

	ErrDuplicateClass = errors.New("duplicate class")
	ErrFrozen         = errors.New("hierarchy builder already built")
)

// UnresolvedError describes a reference that could not be resolved. Partial
// is set when the lookup passed a class with missing supertypes, so the
// declaration may live in a class outside the closure.
type UnresolvedError struct {
	Owner      string
	Name       string
	Descriptor string
	Kind       MemberKind
	Partial    bool
}

func (e *UnresolvedError) Error() string {
	msg := fmt.Sprintf("%s %s.%s%s not found", e.Kind, e.Owner, e.Name, e.Descriptor)
	if e.Partial {
		msg += " (hierarchy is partial)"
	}
	return msg
}

func (e *UnresolvedError) Unwrap() error { return ErrUnresolvedMember }

// Warning reports a class with a supertype that is not in the closure.
type Warning struct {
	Class   string
	Missing string
}

func (w Warning) Error() string {
	return fmt.Sprintf("class %s: supertype %s is not in the closure", w.Class, w.Missing)
}

func (w Warning) Unwrap() error { return ErrPartialHierarchy }
