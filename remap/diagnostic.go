package remap

import (
	"cmp"
	"fmt"
)

// Kind classifies a diagnostic.
type Kind uint8

const (
	KindMalformedDescriptor Kind = iota + 1
	KindUnresolvedMember
	KindAmbiguousMapping
	KindPartialHierarchy
	KindMalformedAttribute
	KindPoolOverflow
	// KindLibraryMember marks a mapping entry for a member that overrides a
	// library method and therefore keeps its name.
	KindLibraryMember
)

var kindNames = map[Kind]string{
	KindMalformedDescriptor: "MalformedDescriptor",
	KindUnresolvedMember:    "UnresolvedMember",
	KindAmbiguousMapping:    "AmbiguousMapping",
	KindPartialHierarchy:    "PartialHierarchy",
	KindMalformedAttribute:  "MalformedAttribute",
	KindPoolOverflow:        "PoolOverflow",
	KindLibraryMember:       "LibraryMember",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic reports one problem found while remapping a class. Class is
// empty for problems of the remap plan.
type Diagnostic struct {
	Class    string
	Kind     Kind
	Severity Severity
	Detail   string
}

func (d Diagnostic) String() string {
	if d.Class == "" {
		return fmt.Sprintf("%s: %s: %s", d.Severity, d.Kind, d.Detail)
	}
	return fmt.Sprintf("%s: %s: %s: %s", d.Class, d.Severity, d.Kind, d.Detail)
}

// Compare orders diagnostics by class, kind and detail.
func Compare(a, b Diagnostic) int {
	return cmp.Or(
		cmp.Compare(a.Class, b.Class),
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Detail, b.Detail),
		cmp.Compare(a.Severity, b.Severity),
	)
}

// HasErrors reports whether any diagnostic is an error.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
