package remap

import (
	"strings"

	"github.com/dhamidi/sabre/classfile"
	"github.com/dhamidi/sabre/hierarchy"
)

// scope tells which signature grammar a Signature attribute follows.
type scope uint8

const (
	classScope scope = iota
	methodScope
	fieldScope
)

// setStr points index at s and reports whether it moved.
func (v *Visitor) setStr(index *uint16, s string) bool {
	i := v.pool.str(s, *index)
	moved := i != *index
	*index = i
	return moved
}

// attributes rewrites typed attribute values and re-encodes the bodies that
// changed. Attributes the codec does not decode only hold indices of Class,
// Module and Package entries, which were rewritten with the pool.
func (v *Visitor) attributes(attrs []classfile.AttributeInfo, sc scope) bool {
	changed := false
	for i := range attrs {
		a := &attrs[i]
		if a.ParseErr != nil {
			v.report(KindMalformedAttribute, SeverityWarning, "%s: %v", v.src.GetUtf8(a.NameIndex), a.ParseErr)
			continue
		}
		body, ok := a.Parsed.(classfile.Body)
		if !ok {
			continue
		}
		if v.attribute(body, sc) {
			a.Set(body)
			changed = true
		}
	}
	return changed
}

func (v *Visitor) attribute(body classfile.Body, sc scope) bool {
	switch a := body.(type) {
	case *classfile.SignatureAttribute:
		return v.setStr(&a.SignatureIndex, v.signature(v.src.GetUtf8(a.SignatureIndex), sc))
	case *classfile.CodeAttribute:
		return v.attributes(a.Attributes, fieldScope)
	case *classfile.LocalVariableTableAttribute:
		changed := false
		for i := range a.LocalVariableTable {
			lv := &a.LocalVariableTable[i]
			changed = v.setStr(&lv.DescriptorIndex, v.descriptor(v.src.GetUtf8(lv.DescriptorIndex))) || changed
		}
		return changed
	case *classfile.LocalVariableTypeTableAttribute:
		changed := false
		for i := range a.LocalVariableTypeTable {
			lv := &a.LocalVariableTypeTable[i]
			changed = v.setStr(&lv.DescriptorIndex, v.signature(v.src.GetUtf8(lv.DescriptorIndex), fieldScope)) || changed
		}
		return changed
	case *classfile.RecordAttribute:
		changed := false
		for i := range a.Components {
			rc := &a.Components[i]
			name, desc := v.src.GetUtf8(rc.NameIndex), v.src.GetUtf8(rc.DescriptorIndex)
			changed = v.setStr(&rc.NameIndex, v.declaredName(name, desc, hierarchy.FieldMember)) || changed
			changed = v.setStr(&rc.DescriptorIndex, v.descriptor(desc)) || changed
			changed = v.attributes(rc.Attributes, fieldScope) || changed
		}
		return changed
	case *classfile.InnerClassesAttribute:
		return v.innerClasses(a)
	case *classfile.EnclosingMethodAttribute:
		if a.MethodIndex == 0 {
			return false
		}
		owner := v.src.GetClassName(a.ClassIndex)
		name, desc := v.src.GetNameAndType(a.MethodIndex)
		i := v.pool.nameAndType(v.reference(owner, name, desc, hierarchy.MethodMember), v.descriptor(desc), a.MethodIndex)
		moved := i != a.MethodIndex
		a.MethodIndex = i
		return moved
	case *classfile.SourceFileAttribute:
		if !v.r.sourceNames {
			return false
		}
		mapped := v.r.table.Class(v.class)
		if mapped == v.class {
			return false
		}
		return v.setStr(&a.SourceFileIndex, sourceFileName(mapped, v.src.GetUtf8(a.SourceFileIndex)))
	case *classfile.AnnotationsAttribute:
		return v.annotations(a.Annotations)
	case *classfile.ParameterAnnotationsAttribute:
		changed := false
		for _, anns := range a.ParameterAnnotations {
			changed = v.annotations(anns) || changed
		}
		return changed
	case *classfile.TypeAnnotationsAttribute:
		changed := false
		for i := range a.Annotations {
			changed = v.annotation(&a.Annotations[i].Annotation) || changed
		}
		return changed
	case *classfile.AnnotationDefaultAttribute:
		return v.elementValue(&a.DefaultValue)
	}
	return false
}

func (v *Visitor) signature(sig string, sc scope) string {
	var (
		mapped string
		err    error
	)
	switch sc {
	case classScope:
		mapped, err = v.r.table.ClassSignature(sig)
	case methodScope:
		mapped, err = v.r.table.MethodSignature(sig)
	default:
		mapped, err = v.r.table.FieldSignature(sig)
	}
	if err != nil {
		v.report(KindMalformedDescriptor, SeverityWarning, "%v", err)
		return sig
	}
	return mapped
}

// innerClasses renames the simple names of member and local classes whose
// binary name changed.
func (v *Visitor) innerClasses(a *classfile.InnerClassesAttribute) bool {
	changed := false
	for i := range a.Classes {
		ic := &a.Classes[i]
		if ic.InnerNameIndex == 0 || ic.InnerClassInfoIndex == 0 {
			continue
		}
		inner := v.src.GetClassName(ic.InnerClassInfoIndex)
		mapped := v.r.table.Class(inner)
		if mapped == inner {
			continue
		}
		outer := ""
		if ic.OuterClassInfoIndex != 0 {
			outer = v.r.table.Class(v.src.GetClassName(ic.OuterClassInfoIndex))
		}
		changed = v.setStr(&ic.InnerNameIndex, innerSimpleName(mapped, outer)) || changed
	}
	return changed
}

func innerSimpleName(binary, outer string) string {
	if outer != "" && strings.HasPrefix(binary, outer+"$") {
		return binary[len(outer)+1:]
	}
	simple := binary[strings.LastIndexByte(binary, '/')+1:]
	if i := strings.LastIndexByte(simple, '$'); i >= 0 {
		simple = simple[i+1:]
	}
	if outer == "" {
		// local classes are named Outer$1Local
		if trimmed := strings.TrimLeft(simple, "0123456789"); trimmed != "" {
			simple = trimmed
		}
	}
	return simple
}
