// Package mapping holds the renaming table applied by the remapper and the
// readers and writers for the common mapping file formats.
package mapping

import "fmt"

type Kind uint8

const (
	KindClass Kind = iota + 1
	KindField
	KindMethod
	KindPackage
	KindModule
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	case KindPackage:
		return "package"
	case KindModule:
		return "module"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Entry maps one source identifier to a target name. Owner and Descriptor
// are only used by field and method entries; a field entry with an empty
// Descriptor matches the field of any type. Names are in internal form
// ("java/lang/String").
type Entry struct {
	Kind       Kind
	Owner      string
	Name       string
	Descriptor string
	Target     string
}

// Source renders the identifier being mapped.
func (e Entry) Source() string {
	switch {
	case e.Kind == KindMethod:
		return fmt.Sprintf("method %s.%s%s", e.Owner, e.Name, e.Descriptor)
	case e.Kind == KindField && e.Descriptor != "":
		return fmt.Sprintf("field %s.%s:%s", e.Owner, e.Name, e.Descriptor)
	case e.Kind == KindField:
		return fmt.Sprintf("field %s.%s", e.Owner, e.Name)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Name)
}

func (e Entry) String() string {
	return e.Source() + " -> " + e.Target
}

type memberKey struct {
	owner string
	name  string
	desc  string
}

func (e Entry) memberKey() memberKey {
	return memberKey{owner: e.Owner, name: e.Name, desc: e.Descriptor}
}
