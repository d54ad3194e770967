package mapping

import (
	"iter"
	"slices"
)

// Builder collects entries for a Table. It is not safe for concurrent use.
type Builder struct {
	entries []Entry
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Add(e Entry) *Builder {
	b.entries = append(b.entries, e)
	return b
}

func (b *Builder) AddAll(entries iter.Seq[Entry]) *Builder {
	for e := range entries {
		b.entries = append(b.entries, e)
	}
	return b
}

func (b *Builder) AddClass(from, to string) *Builder {
	return b.Add(Entry{Kind: KindClass, Name: from, Target: to})
}

func (b *Builder) AddField(owner, name, desc, to string) *Builder {
	return b.Add(Entry{Kind: KindField, Owner: owner, Name: name, Descriptor: desc, Target: to})
}

func (b *Builder) AddMethod(owner, name, desc, to string) *Builder {
	return b.Add(Entry{Kind: KindMethod, Owner: owner, Name: name, Descriptor: desc, Target: to})
}

func (b *Builder) AddPackage(from, to string) *Builder {
	return b.Add(Entry{Kind: KindPackage, Name: from, Target: to})
}

func (b *Builder) AddModule(from, to string) *Builder {
	return b.Add(Entry{Kind: KindModule, Name: from, Target: to})
}

// Build validates the entries and freezes them. Repeated identical entries
// collapse into one; a source with two targets, or two classes with one
// target, fail with an *AmbiguityError.
func (b *Builder) Build() (*Table, error) {
	t := &Table{
		classes:  make(map[string]string),
		fields:   make(map[memberKey]string),
		methods:  make(map[memberKey]string),
		packages: make(map[string]string),
		modules:  make(map[string]string),
	}
	classTargets := make(map[string]string)

	for _, e := range b.entries {
		var err error
		switch e.Kind {
		case KindClass:
			if err = put(t.classes, e.Name, e.Target, e); err == nil {
				if prev, ok := classTargets[e.Target]; ok && prev != e.Name {
					err = &AmbiguityError{Subject: "class target " + e.Target, First: prev, Second: e.Name}
				}
				classTargets[e.Target] = e.Name
			}
		case KindField:
			err = put(t.fields, e.memberKey(), e.Target, e)
		case KindMethod:
			err = put(t.methods, e.memberKey(), e.Target, e)
		case KindPackage:
			err = put(t.packages, e.Name, e.Target, e)
		case KindModule:
			err = put(t.modules, e.Name, e.Target, e)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
	}

	t.entries = make([]Entry, 0, len(t.classes)+len(t.fields)+len(t.methods)+len(t.packages)+len(t.modules))
	for from, to := range t.classes {
		t.entries = append(t.entries, Entry{Kind: KindClass, Name: from, Target: to})
	}
	for k, to := range t.fields {
		t.entries = append(t.entries, Entry{Kind: KindField, Owner: k.owner, Name: k.name, Descriptor: k.desc, Target: to})
	}
	for k, to := range t.methods {
		t.entries = append(t.entries, Entry{Kind: KindMethod, Owner: k.owner, Name: k.name, Descriptor: k.desc, Target: to})
	}
	for from, to := range t.packages {
		t.entries = append(t.entries, Entry{Kind: KindPackage, Name: from, Target: to})
	}
	for from, to := range t.modules {
		t.entries = append(t.entries, Entry{Kind: KindModule, Name: from, Target: to})
	}
	slices.SortFunc(t.entries, compareEntries)
	return t, nil
}

func put[K comparable](m map[K]string, key K, to string, e Entry) error {
	if prev, ok := m[key]; ok && prev != to {
		return &AmbiguityError{Subject: e.Source(), First: prev, Second: to}
	}
	m[key] = to
	return nil
}
