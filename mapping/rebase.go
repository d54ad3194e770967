package mapping

// Rebase combines two tables that share a source namespace X, a: X -> A and
// b: X -> B, into a table A -> B. Identifiers that only one side renames keep
// their X name on the other side.
func Rebase(a, b *Table) (*Table, error) {
	out := NewBuilder()
	seen := make(map[Entry]bool)
	typed := fieldDescriptors(b)
	add := func(e Entry) {
		key := e
		key.Target = ""
		if seen[key] {
			return
		}
		seen[key] = true

		switch e.Kind {
		case KindClass:
			out.AddClass(a.Class(e.Name), b.Class(e.Name))
		case KindPackage:
			out.AddPackage(a.Package(e.Name), b.Package(e.Name))
		case KindModule:
			out.AddModule(a.Module(e.Name), b.Module(e.Name))
		case KindField:
			desc := e.Descriptor
			if desc == "" {
				desc = typed[[2]string{e.Owner, e.Name}]
			}
			out.Add(Entry{
				Kind:       KindField,
				Owner:      a.Class(e.Owner),
				Name:       a.Field(e.Owner, e.Name, desc),
				Descriptor: a.Descriptor(desc),
				Target:     b.Field(e.Owner, e.Name, desc),
			})
		case KindMethod:
			out.Add(Entry{
				Kind:       KindMethod,
				Owner:      a.Class(e.Owner),
				Name:       a.Method(e.Owner, e.Name, e.Descriptor),
				Descriptor: a.Descriptor(e.Descriptor),
				Target:     b.Method(e.Owner, e.Name, e.Descriptor),
			})
		}
	}
	for e := range a.All() {
		add(e)
	}
	for e := range b.All() {
		add(e)
	}

	// identity pairs carry no information
	filtered := NewBuilder()
	for _, e := range out.entries {
		if e.Name != e.Target {
			filtered.Add(e)
		}
	}
	return filtered.Build()
}

// fieldDescriptors indexes the descriptors of typed field entries, for
// rebasing an untyped table onto a typed one.
func fieldDescriptors(t *Table) map[[2]string]string {
	out := make(map[[2]string]string)
	for k := range t.fields {
		if k.desc != "" {
			out[[2]string{k.owner, k.name}] = k.desc
		}
	}
	return out
}
