// Package hierarchy indexes the class closure being remapped and answers
// inheritance questions: which class declares a referenced member, which
// methods override each other, and which classes are subtypes of others.
//
// An Index is built once by a Builder and is read-only afterwards, so it may
// be queried from any number of goroutines.
package hierarchy

import (
	"strings"

	"github.com/dhamidi/sabre/classfile"
)

// ObjectClass is the root of every class hierarchy.
const ObjectClass = "java/lang/Object"

// DefaultLibraryPrefixes name the platform packages whose classes may be
// absent from the closure without making their subclasses partial.
var DefaultLibraryPrefixes = []string{"java/", "javax/", "jdk/", "sun/", "com/sun/"}

type MemberKind uint8

const (
	FieldMember MemberKind = iota + 1
	MethodMember
)

func (k MemberKind) String() string {
	if k == FieldMember {
		return "field"
	}
	return "method"
}

// ClassID identifies a class inside one Index.
type ClassID int32

// NoClass is the ClassID of an absent class.
const NoClass ClassID = -1

// NameAndType is a member name with its descriptor.
type NameAndType struct {
	Name       string
	Descriptor string
}

type Member struct {
	Kind       MemberKind
	Name       string
	Descriptor string
	Flags      classfile.AccessFlags
	// Signature is the generic signature, if the member has one.
	Signature string
	// BridgeTarget is the method a bridge method forwards to.
	BridgeTarget *NameAndType
}

// OverrideEligible reports whether the member can take part in overriding:
// a method that is neither private nor static nor an initializer.
func (m *Member) OverrideEligible() bool {
	if m.Kind != MethodMember || m.Flags.IsPrivate() || m.Flags.IsStatic() {
		return false
	}
	return m.Name != "<init>" && m.Name != "<clinit>"
}

// ClassDescriptor is the structural view of one class the index works on.
type ClassDescriptor struct {
	Name       string
	Super      string
	Interfaces []string
	Flags      classfile.AccessFlags
	Members    []Member
}

func (c *ClassDescriptor) IsInterface() bool {
	return c.Flags.IsInterface()
}

// MemberRef points at one member declaration in the index.
type MemberRef struct {
	Class ClassID
	Index int
}

// Resolution is the outcome of a member lookup. External resolutions are
// members that may be declared by a library class missing from the closure;
// they are left alone by the remapper.
type Resolution struct {
	Ref      MemberRef
	External bool
}

// FamilyID identifies a set of method declarations that must share a name.
type FamilyID int32

func isLibrary(prefixes []string, name string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
