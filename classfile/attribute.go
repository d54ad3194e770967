package classfile

import "fmt"

// AttributeInfo is one attribute. Info always holds the body bytes that are
// written back; Parsed holds the typed value for attributes the codec knows.
// ParseErr is set when a known attribute could not be decoded; Info is then
// still the original body.
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
	Parsed    any
	ParseErr  error
}

// As returns the typed value of an attribute, or nil.
func As[T any](a *AttributeInfo) *T {
	if a == nil {
		return nil
	}
	v, _ := a.Parsed.(*T)
	return v
}

func (a *AttributeInfo) AsCode() *CodeAttribute {
	return As[CodeAttribute](a)
}

func (a *AttributeInfo) AsSignature() *SignatureAttribute {
	return As[SignatureAttribute](a)
}

type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []AttributeInfo
}

type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

type InnerClassesAttribute struct {
	Classes []InnerClassEntry
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

type EnclosingMethodAttribute struct {
	ClassIndex  uint16
	MethodIndex uint16
}

type SignatureAttribute struct {
	SignatureIndex uint16
}

type BootstrapMethodsAttribute struct {
	BootstrapMethods []BootstrapMethod
}

type BootstrapMethod struct {
	BootstrapMethodRef uint16
	BootstrapArguments []uint16
}

type LocalVariableTableAttribute struct {
	LocalVariableTable []LocalVariableEntry
}

// LocalVariableEntry is shared by LocalVariableTable and
// LocalVariableTypeTable; DescriptorIndex holds the signature for the latter.
type LocalVariableEntry struct {
	StartPC         uint16
	Length          uint16
	NameIndex       uint16
	DescriptorIndex uint16
	Index           uint16
}

type LocalVariableTypeTableAttribute struct {
	LocalVariableTypeTable []LocalVariableEntry
}

type NestHostAttribute struct {
	HostClassIndex uint16
}

type NestMembersAttribute struct {
	Classes []uint16
}

type PermittedSubclassesAttribute struct {
	Classes []uint16
}

type RecordAttribute struct {
	Components []RecordComponentInfo
}

type RecordComponentInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

type Annotation struct {
	// TypeIndex is a Utf8 field descriptor of the annotation interface.
	TypeIndex         uint16
	ElementValuePairs []ElementValuePair
}

type ElementValuePair struct {
	ElementNameIndex uint16
	Value            ElementValue
}

// ElementValue is a tagged annotation element value. ConstIndex is used by
// the primitive tags, 's' and 'c' (a Utf8 return descriptor); Enum by 'e';
// Annotation by '@'; Array by '['.
type ElementValue struct {
	Tag        byte
	ConstIndex uint16
	Enum       EnumConstValue
	Annotation *Annotation
	Array      []ElementValue
}

type EnumConstValue struct {
	TypeNameIndex  uint16
	ConstNameIndex uint16
}

type AnnotationsAttribute struct {
	Visible     bool
	Annotations []Annotation
}

type ParameterAnnotationsAttribute struct {
	Visible              bool
	ParameterAnnotations [][]Annotation
}

type TypeAnnotation struct {
	TargetType uint8
	TargetInfo []byte
	TargetPath []TypePathEntry
	Annotation
}

type TypePathEntry struct {
	TypePathKind      uint8
	TypeArgumentIndex uint8
}

type TypeAnnotationsAttribute struct {
	Visible     bool
	Annotations []TypeAnnotation
}

type AnnotationDefaultAttribute struct {
	DefaultValue ElementValue
}

func readAttributes(c *cursor, cp ConstantPool) []AttributeInfo {
	count := c.u2()
	if c.err != nil {
		return nil
	}
	attrs := make([]AttributeInfo, 0, count)
	for i := uint16(0); i < count && c.err == nil; i++ {
		nameIndex := c.u2()
		length := c.u4()
		info := c.bytes(int(length))
		if c.err != nil {
			break
		}
		attr := AttributeInfo{NameIndex: nameIndex, Info: info}
		attr.Parsed, attr.ParseErr = decodeAttribute(cp.GetUtf8(nameIndex), info, cp)
		attrs = append(attrs, attr)
	}
	return attrs
}

// decodeAttribute decodes the bodies the remapper needs to look into. Other
// attributes only reference Class, Module or Package entries by index and are
// carried as raw bytes.
func decodeAttribute(name string, info []byte, cp ConstantPool) (any, error) {
	c := &cursor{b: info}
	var v any
	switch name {
	case AttrCode:
		v = decodeCode(c, cp)
	case AttrSourceFile:
		v = &SourceFileAttribute{SourceFileIndex: c.u2()}
	case AttrConstantValue:
		v = &ConstantValueAttribute{ConstantValueIndex: c.u2()}
	case AttrExceptions:
		v = &ExceptionsAttribute{ExceptionIndexTable: c.u2s(int(c.u2()))}
	case AttrInnerClasses:
		v = decodeInnerClasses(c)
	case AttrEnclosingMethod:
		v = &EnclosingMethodAttribute{ClassIndex: c.u2(), MethodIndex: c.u2()}
	case AttrSignature:
		v = &SignatureAttribute{SignatureIndex: c.u2()}
	case AttrBootstrapMethods:
		v = decodeBootstrapMethods(c)
	case AttrLocalVariableTable:
		v = &LocalVariableTableAttribute{LocalVariableTable: decodeLocalVariables(c)}
	case AttrLocalVariableTypeTable:
		v = &LocalVariableTypeTableAttribute{LocalVariableTypeTable: decodeLocalVariables(c)}
	case AttrNestHost:
		v = &NestHostAttribute{HostClassIndex: c.u2()}
	case AttrNestMembers:
		v = &NestMembersAttribute{Classes: c.u2s(int(c.u2()))}
	case AttrPermittedSubclasses:
		v = &PermittedSubclassesAttribute{Classes: c.u2s(int(c.u2()))}
	case AttrRecord:
		v = decodeRecord(c, cp)
	case AttrRuntimeVisibleAnnotations, AttrRuntimeInvisibleAnnotations:
		v = &AnnotationsAttribute{
			Visible:     name == AttrRuntimeVisibleAnnotations,
			Annotations: decodeAnnotations(c),
		}
	case AttrRuntimeVisibleParameterAnnotations, AttrRuntimeInvisibleParameterAnnotations:
		pa := &ParameterAnnotationsAttribute{Visible: name == AttrRuntimeVisibleParameterAnnotations}
		n := int(c.u1())
		for i := 0; i < n && c.err == nil; i++ {
			pa.ParameterAnnotations = append(pa.ParameterAnnotations, decodeAnnotations(c))
		}
		v = pa
	case AttrRuntimeVisibleTypeAnnotations, AttrRuntimeInvisibleTypeAnnotations:
		v = decodeTypeAnnotations(c, name == AttrRuntimeVisibleTypeAnnotations)
	case AttrAnnotationDefault:
		v = &AnnotationDefaultAttribute{DefaultValue: decodeElementValue(c, 0)}
	default:
		return nil, nil
	}
	if c.err == nil && c.off != len(info) {
		c.err = fmt.Errorf("%d trailing bytes", len(info)-c.off)
	}
	if c.err != nil {
		return nil, fmt.Errorf("decode %s attribute: %w", name, c.err)
	}
	return v, nil
}

func decodeCode(c *cursor, cp ConstantPool) *CodeAttribute {
	code := &CodeAttribute{
		MaxStack:  c.u2(),
		MaxLocals: c.u2(),
	}
	code.Code = c.bytes(int(c.u4()))
	n := int(c.u2())
	if c.err != nil {
		return nil
	}
	code.ExceptionTable = make([]ExceptionTableEntry, 0, n)
	for i := 0; i < n && c.err == nil; i++ {
		code.ExceptionTable = append(code.ExceptionTable, ExceptionTableEntry{
			StartPC:   c.u2(),
			EndPC:     c.u2(),
			HandlerPC: c.u2(),
			CatchType: c.u2(),
		})
	}
	code.Attributes = readAttributes(c, cp)
	return code
}

func decodeInnerClasses(c *cursor) *InnerClassesAttribute {
	n := int(c.u2())
	ic := &InnerClassesAttribute{}
	for i := 0; i < n && c.err == nil; i++ {
		ic.Classes = append(ic.Classes, InnerClassEntry{
			InnerClassInfoIndex:   c.u2(),
			OuterClassInfoIndex:   c.u2(),
			InnerNameIndex:        c.u2(),
			InnerClassAccessFlags: AccessFlags(c.u2()),
		})
	}
	return ic
}

func decodeBootstrapMethods(c *cursor) *BootstrapMethodsAttribute {
	n := int(c.u2())
	bm := &BootstrapMethodsAttribute{}
	for i := 0; i < n && c.err == nil; i++ {
		ref := c.u2()
		args := c.u2s(int(c.u2()))
		bm.BootstrapMethods = append(bm.BootstrapMethods, BootstrapMethod{
			BootstrapMethodRef: ref,
			BootstrapArguments: args,
		})
	}
	return bm
}

func decodeLocalVariables(c *cursor) []LocalVariableEntry {
	n := int(c.u2())
	entries := make([]LocalVariableEntry, 0, n)
	for i := 0; i < n && c.err == nil; i++ {
		entries = append(entries, LocalVariableEntry{
			StartPC:         c.u2(),
			Length:          c.u2(),
			NameIndex:       c.u2(),
			DescriptorIndex: c.u2(),
			Index:           c.u2(),
		})
	}
	return entries
}

func decodeRecord(c *cursor, cp ConstantPool) *RecordAttribute {
	n := int(c.u2())
	rec := &RecordAttribute{}
	for i := 0; i < n && c.err == nil; i++ {
		comp := RecordComponentInfo{
			NameIndex:       c.u2(),
			DescriptorIndex: c.u2(),
		}
		comp.Attributes = readAttributes(c, cp)
		rec.Components = append(rec.Components, comp)
	}
	return rec
}

func decodeAnnotations(c *cursor) []Annotation {
	n := int(c.u2())
	anns := make([]Annotation, 0, n)
	for i := 0; i < n && c.err == nil; i++ {
		anns = append(anns, decodeAnnotation(c, 0))
	}
	return anns
}

// maxElementDepth bounds nesting of annotation values in hostile input.
const maxElementDepth = 64

func decodeAnnotation(c *cursor, depth int) Annotation {
	ann := Annotation{TypeIndex: c.u2()}
	n := int(c.u2())
	for i := 0; i < n && c.err == nil; i++ {
		pair := ElementValuePair{ElementNameIndex: c.u2()}
		pair.Value = decodeElementValue(c, depth+1)
		ann.ElementValuePairs = append(ann.ElementValuePairs, pair)
	}
	return ann
}

func decodeElementValue(c *cursor, depth int) ElementValue {
	if depth > maxElementDepth {
		c.fail(fmt.Errorf("element values nested deeper than %d", maxElementDepth))
		return ElementValue{}
	}
	ev := ElementValue{Tag: c.u1()}
	switch ev.Tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's', 'c':
		ev.ConstIndex = c.u2()
	case 'e':
		ev.Enum = EnumConstValue{TypeNameIndex: c.u2(), ConstNameIndex: c.u2()}
	case '@':
		ann := decodeAnnotation(c, depth)
		ev.Annotation = &ann
	case '[':
		n := int(c.u2())
		for i := 0; i < n && c.err == nil; i++ {
			ev.Array = append(ev.Array, decodeElementValue(c, depth+1))
		}
	default:
		c.fail(fmt.Errorf("unknown element value tag %q", ev.Tag))
	}
	return ev
}

func decodeTypeAnnotations(c *cursor, visible bool) *TypeAnnotationsAttribute {
	n := int(c.u2())
	ta := &TypeAnnotationsAttribute{Visible: visible}
	for i := 0; i < n && c.err == nil; i++ {
		ta.Annotations = append(ta.Annotations, decodeTypeAnnotation(c))
	}
	return ta
}

func decodeTypeAnnotation(c *cursor) TypeAnnotation {
	ta := TypeAnnotation{TargetType: c.u1()}
	start := c.off
	switch ta.TargetType {
	case 0x00, 0x01, 0x16:
		c.skip(1)
	case 0x10, 0x11, 0x12, 0x17, 0x42, 0x43, 0x44, 0x45, 0x46:
		c.skip(2)
	case 0x13, 0x14, 0x15:
	case 0x40, 0x41:
		c.skip(int(c.u2()) * 6)
	case 0x47, 0x48, 0x49, 0x4A, 0x4B:
		c.skip(3)
	default:
		c.fail(fmt.Errorf("unknown type annotation target 0x%02X", ta.TargetType))
		return ta
	}
	if c.err != nil {
		return ta
	}
	ta.TargetInfo = c.b[start:c.off]
	n := int(c.u1())
	for i := 0; i < n && c.err == nil; i++ {
		ta.TargetPath = append(ta.TargetPath, TypePathEntry{
			TypePathKind:      c.u1(),
			TypeArgumentIndex: c.u1(),
		})
	}
	ta.Annotation = decodeAnnotation(c, 0)
	return ta
}
