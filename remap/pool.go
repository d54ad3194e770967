package remap

import "github.com/dhamidi/sabre/classfile"

// pool appends the strings and name-and-type pairs a rewrite needs to a
// constant pool, reusing existing entries when their content matches.
// Existing entries are never changed, since other entries or raw attribute
// bodies may share them.
type pool struct {
	cp   *classfile.ConstantPool
	utf8 map[string]uint16
	nats map[[2]uint16]uint16
}

func newPool() *pool {
	return &pool{
		utf8: make(map[string]uint16),
		nats: make(map[[2]uint16]uint16),
	}
}

func (p *pool) reset(cp *classfile.ConstantPool) {
	p.cp = cp
	clear(p.utf8)
	clear(p.nats)
	for i, e := range *cp {
		index := uint16(i + 1)
		switch e := e.(type) {
		case *classfile.ConstantUtf8Info:
			if _, ok := p.utf8[e.Value]; !ok {
				p.utf8[e.Value] = index
			}
		case *classfile.ConstantNameAndTypeInfo:
			key := [2]uint16{e.NameIndex, e.DescriptorIndex}
			if _, ok := p.nats[key]; !ok {
				p.nats[key] = index
			}
		}
	}
}

func (p *pool) add(e classfile.ConstantPoolEntry) uint16 {
	*p.cp = append(*p.cp, e)
	// indices past 65535 wrap; the caller checks the pool size afterwards
	return uint16(len(*p.cp))
}

// str returns an index holding s, preferring current when it already does.
func (p *pool) str(s string, current uint16) uint16 {
	if current != 0 && p.cp.GetUtf8(current) == s {
		if _, ok := p.cp.Entry(current).(*classfile.ConstantUtf8Info); ok {
			return current
		}
	}
	if i, ok := p.utf8[s]; ok {
		return i
	}
	i := p.add(&classfile.ConstantUtf8Info{Value: s})
	p.utf8[s] = i
	return i
}

// nameAndType returns an index of the pair name:desc, preferring current.
func (p *pool) nameAndType(name, desc string, current uint16) uint16 {
	if current != 0 {
		if n, d := p.cp.GetNameAndType(current); n == name && d == desc {
			return current
		}
	}
	key := [2]uint16{p.str(name, 0), p.str(desc, 0)}
	if i, ok := p.nats[key]; ok {
		return i
	}
	i := p.add(&classfile.ConstantNameAndTypeInfo{NameIndex: key[0], DescriptorIndex: key[1]})
	p.nats[key] = i
	return i
}
