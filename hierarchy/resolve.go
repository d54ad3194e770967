package hierarchy

// DeclaringClassOf finds the declaration a reference to owner.name:desc
// binds to. Array owners resolve against java/lang/Object. References that
// may be declared by a library class missing from the closure resolve as
// External.
func (idx *Index) DeclaringClassOf(owner, name, desc string, kind MemberKind) (Resolution, error) {
	if len(owner) > 0 && owner[0] == '[' {
		owner = ObjectClass
	}
	id, ok := idx.names[owner]
	if !ok {
		if idx.IsLibrary(owner) {
			return Resolution{External: true}, nil
		}
		return Resolution{}, &UnresolvedError{Owner: owner, Name: name, Descriptor: desc, Kind: kind}
	}
	if kind == FieldMember {
		return idx.declaringField(id, name, desc)
	}
	return idx.declaringMethod(id, name, desc)
}

func (idx *Index) declaringMethod(id ClassID, name, desc string) (Resolution, error) {
	rec := &idx.records[id]
	if j, ok := rec.find(MethodMember, name, desc); ok {
		return Resolution{Ref: MemberRef{id, j}}, nil
	}

	// superclass chain; interfaces only see the public methods of Object
	iface := rec.desc.IsInterface()
	seen := map[ClassID]bool{id: true}
	for sup := rec.super; sup != NoClass && !seen[sup]; sup = idx.records[sup].super {
		seen[sup] = true
		if j, ok := idx.records[sup].find(MethodMember, name, desc); ok {
			m := &idx.records[sup].desc.Members[j]
			if m.Flags.IsPrivate() || (iface && !m.Flags.IsPublic()) {
				continue
			}
			return Resolution{Ref: MemberRef{sup, j}}, nil
		}
	}

	if ref, ok := idx.maximallySpecific(id, name, desc); ok {
		return Resolution{Ref: ref}, nil
	}
	return idx.miss(id, name, desc, MethodMember)
}

// maximallySpecific searches the superinterfaces of id in breadth order.
// Candidates that another candidate's interface overrides are dropped, and
// default methods win over abstract ones.
func (idx *Index) maximallySpecific(id ClassID, name, desc string) (MemberRef, bool) {
	var queue []ClassID
	seen := make(map[ClassID]bool)
	push := func(ids []ClassID) {
		for _, i := range ids {
			if !seen[i] {
				seen[i] = true
				queue = append(queue, i)
			}
		}
	}
	chain := map[ClassID]bool{}
	for c := id; c != NoClass && !chain[c]; c = idx.records[c].super {
		chain[c] = true
		push(idx.records[c].interfaces)
	}

	var candidates []MemberRef
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		rec := &idx.records[cur]
		if j, ok := rec.find(MethodMember, name, desc); ok {
			m := &rec.desc.Members[j]
			if !m.Flags.IsPrivate() && !m.Flags.IsStatic() {
				candidates = append(candidates, MemberRef{cur, j})
			}
		}
		push(rec.interfaces)
	}
	if len(candidates) == 0 {
		return MemberRef{}, false
	}

	specific := candidates[:0:0]
	for _, c := range candidates {
		shadowed := false
		for _, o := range candidates {
			if o.Class != c.Class && idx.IsSubtypeOf(o.Class, c.Class) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			specific = append(specific, c)
		}
	}
	for _, c := range specific {
		if !idx.Member(c).Flags.IsAbstract() {
			return c, true
		}
	}
	return specific[0], true
}

// declaringField follows JVMS 5.4.3.2: the class, its superinterfaces
// recursively, then its superclass.
func (idx *Index) declaringField(id ClassID, name, desc string) (Resolution, error) {
	seen := make(map[ClassID]bool)
	var lookup func(c ClassID, top bool) (MemberRef, bool)
	lookup = func(c ClassID, top bool) (MemberRef, bool) {
		if seen[c] {
			return MemberRef{}, false
		}
		seen[c] = true
		rec := &idx.records[c]
		if j, ok := rec.find(FieldMember, name, desc); ok {
			if top || !rec.desc.Members[j].Flags.IsPrivate() {
				return MemberRef{c, j}, true
			}
		}
		for _, i := range rec.interfaces {
			if ref, ok := lookup(i, false); ok {
				return ref, true
			}
		}
		if rec.super != NoClass {
			return lookup(rec.super, false)
		}
		return MemberRef{}, false
	}
	if ref, ok := lookup(id, true); ok {
		return Resolution{Ref: ref}, nil
	}
	return idx.miss(id, name, desc, FieldMember)
}

// miss classifies a failed lookup. An opaque ancestor could declare the
// member, so the reference is external; a partial ancestor makes the miss
// unresolved but flagged as partial.
func (idx *Index) miss(id ClassID, name, desc string, kind MemberKind) (Resolution, error) {
	rec := &idx.records[id]
	if rec.opaque || (idx.builtinObject && id == idx.object) {
		return Resolution{External: true}, nil
	}
	return Resolution{}, &UnresolvedError{
		Owner:      rec.desc.Name,
		Name:       name,
		Descriptor: desc,
		Kind:       kind,
		Partial:    rec.partial,
	}
}
