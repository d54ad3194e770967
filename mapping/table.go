package mapping

import (
	"cmp"
	"iter"
	"slices"
	"strings"
)

// Table is an immutable renaming function. It is safe for concurrent use.
type Table struct {
	classes  map[string]string
	fields   map[memberKey]string
	methods  map[memberKey]string
	packages map[string]string
	modules  map[string]string
	entries  []Entry
}

// Empty returns a table that maps every name to itself.
func Empty() *Table {
	t, _ := NewBuilder().Build()
	return t
}

func (t *Table) Len() int { return len(t.entries) }

// All yields the entries ordered by kind, owner, name and descriptor.
func (t *Table) All() iter.Seq[Entry] {
	return slices.Values(t.entries)
}

// LookupClass returns the explicit target of a class, if any.
func (t *Table) LookupClass(name string) (string, bool) {
	to, ok := t.classes[name]
	return to, ok
}

// Class maps a class name. A nested class that has no entry of its own
// follows its outer class: with a/B -> c/D, a/B$1 becomes c/D$1.
func (t *Table) Class(name string) string {
	if to, ok := t.classes[name]; ok {
		return to
	}
	if i := strings.LastIndexByte(name, '$'); i > 0 && i < len(name)-1 {
		outer := t.Class(name[:i])
		if outer != name[:i] {
			return outer + name[i:]
		}
	}
	return name
}

func (t *Table) LookupField(owner, name, desc string) (string, bool) {
	if to, ok := t.fields[memberKey{owner, name, desc}]; ok {
		return to, true
	}
	if desc != "" {
		if to, ok := t.fields[memberKey{owner, name, ""}]; ok {
			return to, true
		}
	}
	return "", false
}

func (t *Table) Field(owner, name, desc string) string {
	if to, ok := t.LookupField(owner, name, desc); ok {
		return to
	}
	return name
}

func (t *Table) LookupMethod(owner, name, desc string) (string, bool) {
	to, ok := t.methods[memberKey{owner, name, desc}]
	return to, ok
}

func (t *Table) Method(owner, name, desc string) string {
	if to, ok := t.methods[memberKey{owner, name, desc}]; ok {
		return to
	}
	return name
}

// Package maps a package name in internal form ("a/b").
func (t *Table) Package(name string) string {
	if to, ok := t.packages[name]; ok {
		return to
	}
	return name
}

func (t *Table) Module(name string) string {
	if to, ok := t.modules[name]; ok {
		return to
	}
	return name
}

// HasMembers reports whether the table renames any field or method.
func (t *Table) HasMembers() bool {
	return len(t.fields) > 0 || len(t.methods) > 0
}

// Descriptor applies Class to every object type in a field or method
// descriptor. Input that is not a descriptor is returned with the class
// names that could be found rewritten; callers validate separately.
func (t *Table) Descriptor(desc string) string {
	if len(t.classes) == 0 || strings.IndexByte(desc, 'L') < 0 {
		return desc
	}
	var sb strings.Builder
	sb.Grow(len(desc) + 16)
	changed := false
	for i := 0; i < len(desc); i++ {
		c := desc[i]
		sb.WriteByte(c)
		if c != 'L' {
			continue
		}
		end := strings.IndexByte(desc[i+1:], ';')
		if end < 0 {
			sb.WriteString(desc[i+1:])
			break
		}
		name := desc[i+1 : i+1+end]
		mapped := t.Class(name)
		if mapped != name {
			changed = true
		}
		sb.WriteString(mapped)
		sb.WriteByte(';')
		i += end + 1
	}
	if !changed {
		return desc
	}
	return sb.String()
}

// Inverse returns the table mapping every target back to its source. Member
// owners and descriptors are translated into the target namespace.
func (t *Table) Inverse() (*Table, error) {
	b := NewBuilder()
	for _, e := range t.entries {
		switch e.Kind {
		case KindField, KindMethod:
			b.Add(Entry{
				Kind:       e.Kind,
				Owner:      t.Class(e.Owner),
				Name:       e.Target,
				Descriptor: t.Descriptor(e.Descriptor),
				Target:     e.Name,
			})
		default:
			b.Add(Entry{Kind: e.Kind, Name: e.Target, Target: e.Name})
		}
	}
	return b.Build()
}

func compareEntries(a, b Entry) int {
	return cmp.Or(
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Owner, b.Owner),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.Descriptor, b.Descriptor),
	)
}
