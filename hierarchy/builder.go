package hierarchy

import (
	"fmt"

	"github.com/dhamidi/sabre/classfile"
)

type Option func(*Builder)

// WithLibraryPrefixes replaces DefaultLibraryPrefixes.
func WithLibraryPrefixes(prefixes ...string) Option {
	return func(b *Builder) {
		b.libraryPrefixes = prefixes
	}
}

// Builder collects class descriptors. Build may be called once; the builder
// has a single writer and is not safe for concurrent use.
type Builder struct {
	libraryPrefixes []string
	classes         []ClassDescriptor
	names           map[string]ClassID
	built           bool
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		libraryPrefixes: DefaultLibraryPrefixes,
		names:           make(map[string]ClassID),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Add registers a class. Adding a second class with the same name fails.
func (b *Builder) Add(cd ClassDescriptor) error {
	if b.built {
		return ErrFrozen
	}
	if _, ok := b.names[cd.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateClass, cd.Name)
	}
	b.names[cd.Name] = ClassID(len(b.classes))
	b.classes = append(b.classes, cd)
	return nil
}

// AddClassFile registers the descriptor of a decoded class.
func (b *Builder) AddClassFile(cf *classfile.ClassFile) error {
	return b.Add(Describe(cf))
}

// Build links every class to its supertypes, records partial classes and
// computes the override families.
func (b *Builder) Build() *Index {
	b.built = true
	builtin := false
	if _, ok := b.names[ObjectClass]; !ok {
		b.names[ObjectClass] = ClassID(len(b.classes))
		b.classes = append(b.classes, objectDescriptor())
		builtin = true
	}

	idx := &Index{
		libraryPrefixes: b.libraryPrefixes,
		names:           b.names,
		records:         make([]classRecord, len(b.classes)),
		object:          b.names[ObjectClass],
		builtinObject:   builtin,
	}
	offset := 0
	for i := range b.classes {
		cd := &b.classes[i]
		rec := &idx.records[i]
		rec.desc = cd
		rec.super = NoClass
		rec.memberBase = offset
		offset += len(cd.Members)
		rec.members = make(map[memberKey]int, len(cd.Members))
		for j := range cd.Members {
			m := &cd.Members[j]
			key := memberKey{m.Kind, m.Name, m.Descriptor}
			if _, dup := rec.members[key]; !dup {
				rec.members[key] = j
			}
		}

		if cd.Super != "" {
			rec.super = idx.link(rec, cd.Super)
		}
		rec.interfaces = make([]ClassID, 0, len(cd.Interfaces))
		for _, iface := range cd.Interfaces {
			if id := idx.link(rec, iface); id != NoClass {
				rec.interfaces = append(rec.interfaces, id)
			}
		}
		if rec.super != NoClass {
			rec.supers = append(rec.supers, rec.super)
		}
		rec.supers = append(rec.supers, rec.interfaces...)
	}
	idx.memberCount = offset
	idx.propagateMissing()
	idx.buildFamilies()
	return idx
}

// link resolves a supertype name, recording it as missing when absent.
func (idx *Index) link(rec *classRecord, name string) ClassID {
	if id, ok := idx.names[name]; ok {
		return id
	}
	if isLibrary(idx.libraryPrefixes, name) {
		rec.opaque = true
	} else {
		rec.partial = true
		idx.warnings = append(idx.warnings, Warning{Class: rec.desc.Name, Missing: name})
	}
	return NoClass
}

// propagateMissing marks the subtypes of partial and opaque classes.
func (idx *Index) propagateMissing() {
	state := make([]uint8, len(idx.records))
	var visit func(id ClassID)
	visit = func(id ClassID) {
		if state[id] != 0 {
			return
		}
		state[id] = 1
		rec := &idx.records[id]
		for _, sup := range rec.supertypes() {
			visit(sup)
			rec.partial = rec.partial || idx.records[sup].partial
			rec.opaque = rec.opaque || idx.records[sup].opaque
		}
		state[id] = 2
	}
	for id := range idx.records {
		visit(ClassID(id))
	}
}

func objectDescriptor() ClassDescriptor {
	pub := classfile.AccPublic
	method := func(flags classfile.AccessFlags, name, desc string) Member {
		return Member{Kind: MethodMember, Name: name, Descriptor: desc, Flags: flags}
	}
	return ClassDescriptor{
		Name:  ObjectClass,
		Flags: pub | classfile.AccSuper,
		Members: []Member{
			method(pub, "<init>", "()V"),
			method(pub|classfile.AccFinal|classfile.AccNative, "getClass", "()Ljava/lang/Class;"),
			method(pub|classfile.AccNative, "hashCode", "()I"),
			method(pub, "equals", "(Ljava/lang/Object;)Z"),
			method(classfile.AccProtected|classfile.AccNative, "clone", "()Ljava/lang/Object;"),
			method(pub, "toString", "()Ljava/lang/String;"),
			method(pub|classfile.AccFinal|classfile.AccNative, "notify", "()V"),
			method(pub|classfile.AccFinal|classfile.AccNative, "notifyAll", "()V"),
			method(pub|classfile.AccFinal, "wait", "()V"),
			method(pub|classfile.AccFinal|classfile.AccNative, "wait", "(J)V"),
			method(pub|classfile.AccFinal, "wait", "(JI)V"),
			method(classfile.AccProtected, "finalize", "()V"),
		},
	}
}
