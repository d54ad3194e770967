package remap

import (
	"strings"

	"github.com/dhamidi/sabre/classfile"
	"github.com/dhamidi/sabre/hierarchy"
)

func (v *Visitor) annotations(anns []classfile.Annotation) bool {
	changed := false
	for i := range anns {
		changed = v.annotation(&anns[i]) || changed
	}
	return changed
}

// annotation maps the annotation type and its element names, which are the
// names of the annotation interface's methods.
func (v *Visitor) annotation(a *classfile.Annotation) bool {
	typeDesc := v.src.GetUtf8(a.TypeIndex)
	changed := v.setStr(&a.TypeIndex, v.descriptor(typeDesc))
	owner := descriptorClass(typeDesc)
	for i := range a.ElementValuePairs {
		p := &a.ElementValuePairs[i]
		name := v.src.GetUtf8(p.ElementNameIndex)
		changed = v.setStr(&p.ElementNameIndex, v.elementName(owner, name)) || changed
		changed = v.elementValue(&p.Value) || changed
	}
	return changed
}

func (v *Visitor) elementName(owner, name string) string {
	id, ok := v.r.idx.Lookup(owner)
	if !ok {
		return name
	}
	for i, m := range v.r.idx.Class(id).Members {
		if m.Kind == hierarchy.MethodMember && m.Name == name && strings.HasPrefix(m.Descriptor, "()") {
			return v.r.MemberName(hierarchy.MemberRef{Class: id, Index: i})
		}
	}
	return name
}

func (v *Visitor) elementValue(ev *classfile.ElementValue) bool {
	switch ev.Tag {
	case 'c':
		desc := v.src.GetUtf8(ev.ConstIndex)
		if desc == "V" {
			// void.class
			return false
		}
		return v.setStr(&ev.ConstIndex, v.descriptor(desc))
	case 'e':
		typeDesc := v.src.GetUtf8(ev.Enum.TypeNameIndex)
		constName := v.src.GetUtf8(ev.Enum.ConstNameIndex)
		changed := v.setStr(&ev.Enum.ConstNameIndex, v.reference(descriptorClass(typeDesc), constName, typeDesc, hierarchy.FieldMember))
		return v.setStr(&ev.Enum.TypeNameIndex, v.descriptor(typeDesc)) || changed
	case '@':
		if ev.Annotation != nil {
			return v.annotation(ev.Annotation)
		}
	case '[':
		changed := false
		for i := range ev.Array {
			changed = v.elementValue(&ev.Array[i]) || changed
		}
		return changed
	}
	return false
}

// descriptorClass returns the class named by an object type descriptor.
func descriptorClass(desc string) string {
	if len(desc) > 2 && desc[0] == 'L' && desc[len(desc)-1] == ';' {
		return desc[1 : len(desc)-1]
	}
	return ""
}
