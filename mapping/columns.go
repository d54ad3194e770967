package mapping

import (
	"fmt"
	"slices"
)

// columnSet holds the rows of a mapping file with one name per namespace.
// Member owners and descriptors are always spelled in the first namespace.
type columnSet struct {
	format     string
	namespaces []string
	classes    [][]string
	packages   [][]string
	members    []memberRow
}

type memberRow struct {
	kind  Kind
	owner string
	desc  string
	names []string
}

func column(names []string, i int) string {
	if i < len(names) && names[i] != "" {
		return names[i]
	}
	return names[0]
}

func (cs *columnSet) namespaceIndex(ns string, fallback int) (int, error) {
	if ns == "" {
		if fallback >= len(cs.namespaces) {
			return 0, fmt.Errorf("%s mappings have %d namespaces", cs.format, len(cs.namespaces))
		}
		return fallback, nil
	}
	i := slices.Index(cs.namespaces, ns)
	if i < 0 {
		return 0, fmt.Errorf("%s mappings have no namespace %q (have %v)", cs.format, ns, cs.namespaces)
	}
	return i, nil
}

// table projects the rows onto the from and to namespaces. Empty namespace
// names select the first and second column.
func (cs *columnSet) table(from, to string) (*Table, error) {
	fi, err := cs.namespaceIndex(from, 0)
	if err != nil {
		return nil, err
	}
	ti, err := cs.namespaceIndex(to, 1)
	if err != nil {
		return nil, err
	}

	// owners and descriptors are translated from the first namespace
	toFrom := NewBuilder()
	if fi != 0 {
		for _, row := range cs.classes {
			if src, dst := row[0], column(row, fi); src != dst {
				toFrom.AddClass(src, dst)
			}
		}
	}
	first, err := toFrom.Build()
	if err != nil {
		return nil, err
	}

	b := NewBuilder()
	for _, row := range cs.classes {
		if src, dst := column(row, fi), column(row, ti); src != dst {
			b.AddClass(src, dst)
		}
	}
	for _, row := range cs.packages {
		if src, dst := column(row, fi), column(row, ti); src != dst {
			b.AddPackage(src, dst)
		}
	}
	for _, m := range cs.members {
		src, dst := column(m.names, fi), column(m.names, ti)
		if src == dst {
			continue
		}
		b.Add(Entry{
			Kind:       m.kind,
			Owner:      first.Class(m.owner),
			Name:       src,
			Descriptor: first.Descriptor(m.desc),
			Target:     dst,
		})
	}
	return b.Build()
}
