package hierarchy

// NoFamily is the family of members that cannot be overridden.
const NoFamily FamilyID = -1

type unionFind struct {
	parent []int32
	rank   []uint8
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{parent: make([]int32, n), rank: make([]uint8, n)}
	for i := range u.parent {
		u.parent[i] = int32(i)
	}
	return u
}

func (u *unionFind) find(x int32) int32 {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int32) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	switch {
	case u.rank[ra] < u.rank[rb]:
		u.parent[ra] = rb
	case u.rank[ra] > u.rank[rb]:
		u.parent[rb] = ra
	default:
		u.parent[rb] = ra
		u.rank[ra]++
	}
}

func (idx *Index) global(ref MemberRef) int32 {
	return int32(idx.records[ref.Class].memberBase + ref.Index)
}

// buildFamilies joins every override-eligible method visible from a class
// with the methods of the same name and descriptor in its other ancestors,
// and every bridge with the method it forwards to.
func (idx *Index) buildFamilies() {
	uf := newUnionFind(idx.memberCount)
	first := make(map[NameAndType]int32)
	for id := range idx.records {
		clear(first)
		idx.Ancestors(ClassID(id), func(anc ClassID) bool {
			rec := &idx.records[anc]
			for j := range rec.desc.Members {
				m := &rec.desc.Members[j]
				if !m.OverrideEligible() {
					continue
				}
				key := NameAndType{m.Name, m.Descriptor}
				g := int32(rec.memberBase + j)
				if f, ok := first[key]; ok {
					uf.union(f, g)
				} else {
					first[key] = g
				}
			}
			return true
		})
	}

	for id := range idx.records {
		rec := &idx.records[id]
		for j := range rec.desc.Members {
			m := &rec.desc.Members[j]
			if m.BridgeTarget == nil || !m.OverrideEligible() {
				continue
			}
			res, err := idx.declaringMethod(ClassID(id), m.BridgeTarget.Name, m.BridgeTarget.Descriptor)
			if err != nil || res.External || !idx.Member(res.Ref).OverrideEligible() {
				continue
			}
			uf.union(int32(rec.memberBase+j), idx.global(res.Ref))
		}
	}

	idx.family = make([]FamilyID, idx.memberCount)
	ids := make(map[int32]FamilyID)
	for id := range idx.records {
		rec := &idx.records[id]
		for j := range rec.desc.Members {
			g := rec.memberBase + j
			if !rec.desc.Members[j].OverrideEligible() {
				idx.family[g] = NoFamily
				continue
			}
			root := uf.find(int32(g))
			fid, ok := ids[root]
			if !ok {
				fid = FamilyID(len(idx.familyMembers))
				ids[root] = fid
				idx.familyMembers = append(idx.familyMembers, nil)
			}
			idx.family[g] = fid
			idx.familyMembers[fid] = append(idx.familyMembers[fid], MemberRef{Class: ClassID(id), Index: j})
		}
	}
}

// Family returns the override family of a method, or NoFamily for members
// that cannot be overridden.
func (idx *Index) Family(ref MemberRef) FamilyID {
	return idx.family[idx.global(ref)]
}

// FamilyMembers lists the declarations of a family in class order.
func (idx *Index) FamilyMembers(id FamilyID) []MemberRef {
	if id < 0 || int(id) >= len(idx.familyMembers) {
		return nil
	}
	return idx.familyMembers[id]
}

// Families returns the number of override families.
func (idx *Index) Families() int { return len(idx.familyMembers) }
