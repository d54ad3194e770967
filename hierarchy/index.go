package hierarchy

type memberKey struct {
	kind MemberKind
	name string
	desc string
}

type classRecord struct {
	desc       *ClassDescriptor
	super      ClassID
	interfaces []ClassID
	// supers is super followed by interfaces
	supers     []ClassID
	memberBase int
	members    map[memberKey]int
	partial    bool
	opaque     bool
}

func (r *classRecord) supertypes() []ClassID { return r.supers }

func (r *classRecord) find(kind MemberKind, name, desc string) (int, bool) {
	i, ok := r.members[memberKey{kind, name, desc}]
	return i, ok
}

// Index is the frozen class hierarchy of one closure.
type Index struct {
	libraryPrefixes []string
	names           map[string]ClassID
	records         []classRecord
	memberCount     int
	warnings        []Warning
	object          ClassID
	builtinObject   bool

	// family[g] is the family of the member with global index g
	family        []FamilyID
	familyMembers [][]MemberRef
}

// Lookup returns the id of a class in the closure.
func (idx *Index) Lookup(name string) (ClassID, bool) {
	id, ok := idx.names[name]
	return id, ok
}

func (idx *Index) Class(id ClassID) *ClassDescriptor {
	return idx.records[id].desc
}

func (idx *Index) Name(id ClassID) string {
	return idx.records[id].desc.Name
}

// Len returns the number of classes, including the built-in object root.
func (idx *Index) Len() int { return len(idx.records) }

func (idx *Index) Member(ref MemberRef) *Member {
	return &idx.records[ref.Class].desc.Members[ref.Index]
}

// Super returns the superclass of id, or NoClass when it is absent.
func (idx *Index) Super(id ClassID) ClassID { return idx.records[id].super }

// Interfaces returns the direct superinterfaces of id that are in the closure.
func (idx *Index) Interfaces(id ClassID) []ClassID { return idx.records[id].interfaces }

// Partial reports whether a non-library supertype of id, direct or
// inherited, is missing from the closure.
func (idx *Index) Partial(id ClassID) bool { return idx.records[id].partial }

// Opaque reports whether a library supertype of id is missing from the
// closure.
func (idx *Index) Opaque(id ClassID) bool { return idx.records[id].opaque }

// IsLibrary reports whether name belongs to a library package.
func (idx *Index) IsLibrary(name string) bool {
	return isLibrary(idx.libraryPrefixes, name)
}

// Warnings lists every class with a missing non-library supertype.
func (idx *Index) Warnings() []Warning { return idx.warnings }

// IsSubtypeOf reports whether a is b or inherits from it.
func (idx *Index) IsSubtypeOf(a, b ClassID) bool {
	if a == b {
		return true
	}
	seen := make(map[ClassID]bool)
	stack := []ClassID{a}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, sup := range idx.records[id].supers {
			if sup == b {
				return true
			}
			if !seen[sup] {
				seen[sup] = true
				stack = append(stack, sup)
			}
		}
	}
	return false
}

// IsOverrideOf reports whether child overrides parent: both are
// override-eligible methods with the same name and descriptor, and the class
// of child is a proper subtype of the class of parent.
func (idx *Index) IsOverrideOf(child, parent MemberRef) bool {
	if child.Class == parent.Class {
		return false
	}
	c, p := idx.Member(child), idx.Member(parent)
	if !c.OverrideEligible() || !p.OverrideEligible() {
		return false
	}
	if c.Name != p.Name || c.Descriptor != p.Descriptor {
		return false
	}
	return idx.IsSubtypeOf(child.Class, parent.Class)
}

// Ancestors calls fn for id and each of its supertypes in the closure,
// superclass before interfaces, each class once. Returning false stops the
// walk.
func (idx *Index) Ancestors(id ClassID, fn func(ClassID) bool) {
	seen := map[ClassID]bool{id: true}
	queue := []ClassID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if !fn(cur) {
			return
		}
		for _, sup := range idx.records[cur].supers {
			if !seen[sup] {
				seen[sup] = true
				queue = append(queue, sup)
			}
		}
	}
}
