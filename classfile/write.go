package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Body is a typed attribute value that can serialize itself.
type Body interface {
	AppendBody(dst []byte) []byte
}

// Set replaces the typed value of an attribute and re-encodes its body.
func (a *AttributeInfo) Set(body Body) {
	a.Parsed = body
	a.Info = body.AppendBody(nil)
	a.ParseErr = nil
}

func appendU1(dst []byte, v uint8) []byte { return append(dst, v) }

func appendU2(dst []byte, v uint16) []byte { return binary.BigEndian.AppendUint16(dst, v) }

func appendU4(dst []byte, v uint32) []byte { return binary.BigEndian.AppendUint32(dst, v) }

func appendU2s(dst []byte, vs []uint16) []byte {
	dst = appendU2(dst, uint16(len(vs)))
	for _, v := range vs {
		dst = appendU2(dst, v)
	}
	return dst
}

// Write encodes cf to w.
func Write(w io.Writer, cf *ClassFile) error {
	data, err := cf.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Encode serializes the class file. It fails when the constant pool holds
// more than 65535 slots or a Utf8 entry does not fit its length field.
func (cf *ClassFile) Encode() ([]byte, error) {
	if cf.ConstantPool.Count() > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d entries", ErrPoolOverflow, cf.ConstantPool.Count())
	}
	dst := make([]byte, 0, 1024)
	dst = appendU4(dst, Magic)
	dst = appendU2(dst, cf.MinorVersion)
	dst = appendU2(dst, cf.MajorVersion)

	var err error
	if dst, err = appendConstantPool(dst, cf.ConstantPool); err != nil {
		return nil, err
	}

	dst = appendU2(dst, uint16(cf.AccessFlags))
	dst = appendU2(dst, cf.ThisClass)
	dst = appendU2(dst, cf.SuperClass)
	dst = appendU2s(dst, cf.Interfaces)

	dst = appendU2(dst, uint16(len(cf.Fields)))
	for i := range cf.Fields {
		f := &cf.Fields[i]
		dst = appendMember(dst, f.AccessFlags, f.NameIndex, f.DescriptorIndex, f.Attributes)
	}
	dst = appendU2(dst, uint16(len(cf.Methods)))
	for i := range cf.Methods {
		m := &cf.Methods[i]
		dst = appendMember(dst, m.AccessFlags, m.NameIndex, m.DescriptorIndex, m.Attributes)
	}
	dst = appendAttributes(dst, cf.Attributes)
	return dst, nil
}

func appendMember(dst []byte, flags AccessFlags, name, desc uint16, attrs []AttributeInfo) []byte {
	dst = appendU2(dst, uint16(flags))
	dst = appendU2(dst, name)
	dst = appendU2(dst, desc)
	return appendAttributes(dst, attrs)
}

func appendAttributes(dst []byte, attrs []AttributeInfo) []byte {
	dst = appendU2(dst, uint16(len(attrs)))
	for i := range attrs {
		dst = appendU2(dst, attrs[i].NameIndex)
		dst = appendU4(dst, uint32(len(attrs[i].Info)))
		dst = append(dst, attrs[i].Info...)
	}
	return dst
}

func appendConstantPool(dst []byte, cp ConstantPool) ([]byte, error) {
	dst = appendU2(dst, uint16(cp.Count()))
	for i, e := range cp {
		if e == nil {
			// second slot of a Long or Double
			continue
		}
		dst = appendU1(dst, uint8(e.Tag()))
		switch e := e.(type) {
		case *ConstantUtf8Info:
			if e.raw != nil && e.Value == e.decoded {
				dst = appendU2(dst, uint16(len(e.raw)))
				dst = append(dst, e.raw...)
				continue
			}
			n := modifiedUtf8Len(e.Value)
			if n > math.MaxUint16 {
				return nil, fmt.Errorf("constant pool entry %d: Utf8 of %d bytes is too long", i+1, n)
			}
			dst = appendU2(dst, uint16(n))
			dst = appendModifiedUtf8(dst, e.Value)
		case *ConstantIntegerInfo:
			dst = appendU4(dst, uint32(e.Value))
		case *ConstantFloatInfo:
			dst = appendU4(dst, e.Bits)
		case *ConstantLongInfo:
			dst = binary.BigEndian.AppendUint64(dst, uint64(e.Value))
		case *ConstantDoubleInfo:
			dst = binary.BigEndian.AppendUint64(dst, e.Bits)
		case *ConstantClassInfo:
			dst = appendU2(dst, e.NameIndex)
		case *ConstantStringInfo:
			dst = appendU2(dst, e.StringIndex)
		case *ConstantRefInfo:
			dst = appendU2(dst, e.ClassIndex)
			dst = appendU2(dst, e.NameAndTypeIndex)
		case *ConstantNameAndTypeInfo:
			dst = appendU2(dst, e.NameIndex)
			dst = appendU2(dst, e.DescriptorIndex)
		case *ConstantMethodHandleInfo:
			dst = appendU1(dst, uint8(e.ReferenceKind))
			dst = appendU2(dst, e.ReferenceIndex)
		case *ConstantMethodTypeInfo:
			dst = appendU2(dst, e.DescriptorIndex)
		case *ConstantDynamicInfo:
			dst = appendU2(dst, e.BootstrapMethodAttrIndex)
			dst = appendU2(dst, e.NameAndTypeIndex)
		case *ConstantModuleInfo:
			dst = appendU2(dst, e.NameIndex)
		case *ConstantPackageInfo:
			dst = appendU2(dst, e.NameIndex)
		default:
			return nil, fmt.Errorf("constant pool entry %d: unknown type %T", i+1, e)
		}
	}
	return dst, nil
}

func (a *CodeAttribute) AppendBody(dst []byte) []byte {
	dst = appendU2(dst, a.MaxStack)
	dst = appendU2(dst, a.MaxLocals)
	dst = appendU4(dst, uint32(len(a.Code)))
	dst = append(dst, a.Code...)
	dst = appendU2(dst, uint16(len(a.ExceptionTable)))
	for _, e := range a.ExceptionTable {
		dst = appendU2(dst, e.StartPC)
		dst = appendU2(dst, e.EndPC)
		dst = appendU2(dst, e.HandlerPC)
		dst = appendU2(dst, e.CatchType)
	}
	return appendAttributes(dst, a.Attributes)
}

func (a *SourceFileAttribute) AppendBody(dst []byte) []byte {
	return appendU2(dst, a.SourceFileIndex)
}

func (a *ConstantValueAttribute) AppendBody(dst []byte) []byte {
	return appendU2(dst, a.ConstantValueIndex)
}

func (a *ExceptionsAttribute) AppendBody(dst []byte) []byte {
	return appendU2s(dst, a.ExceptionIndexTable)
}

func (a *InnerClassesAttribute) AppendBody(dst []byte) []byte {
	dst = appendU2(dst, uint16(len(a.Classes)))
	for _, c := range a.Classes {
		dst = appendU2(dst, c.InnerClassInfoIndex)
		dst = appendU2(dst, c.OuterClassInfoIndex)
		dst = appendU2(dst, c.InnerNameIndex)
		dst = appendU2(dst, uint16(c.InnerClassAccessFlags))
	}
	return dst
}

func (a *EnclosingMethodAttribute) AppendBody(dst []byte) []byte {
	dst = appendU2(dst, a.ClassIndex)
	return appendU2(dst, a.MethodIndex)
}

func (a *SignatureAttribute) AppendBody(dst []byte) []byte {
	return appendU2(dst, a.SignatureIndex)
}

func (a *BootstrapMethodsAttribute) AppendBody(dst []byte) []byte {
	dst = appendU2(dst, uint16(len(a.BootstrapMethods)))
	for _, bm := range a.BootstrapMethods {
		dst = appendU2(dst, bm.BootstrapMethodRef)
		dst = appendU2s(dst, bm.BootstrapArguments)
	}
	return dst
}

func appendLocalVariables(dst []byte, entries []LocalVariableEntry) []byte {
	dst = appendU2(dst, uint16(len(entries)))
	for _, e := range entries {
		dst = appendU2(dst, e.StartPC)
		dst = appendU2(dst, e.Length)
		dst = appendU2(dst, e.NameIndex)
		dst = appendU2(dst, e.DescriptorIndex)
		dst = appendU2(dst, e.Index)
	}
	return dst
}

func (a *LocalVariableTableAttribute) AppendBody(dst []byte) []byte {
	return appendLocalVariables(dst, a.LocalVariableTable)
}

func (a *LocalVariableTypeTableAttribute) AppendBody(dst []byte) []byte {
	return appendLocalVariables(dst, a.LocalVariableTypeTable)
}

func (a *NestHostAttribute) AppendBody(dst []byte) []byte {
	return appendU2(dst, a.HostClassIndex)
}

func (a *NestMembersAttribute) AppendBody(dst []byte) []byte {
	return appendU2s(dst, a.Classes)
}

func (a *PermittedSubclassesAttribute) AppendBody(dst []byte) []byte {
	return appendU2s(dst, a.Classes)
}

func (a *RecordAttribute) AppendBody(dst []byte) []byte {
	dst = appendU2(dst, uint16(len(a.Components)))
	for _, c := range a.Components {
		dst = appendU2(dst, c.NameIndex)
		dst = appendU2(dst, c.DescriptorIndex)
		dst = appendAttributes(dst, c.Attributes)
	}
	return dst
}

func appendAnnotation(dst []byte, ann *Annotation) []byte {
	dst = appendU2(dst, ann.TypeIndex)
	dst = appendU2(dst, uint16(len(ann.ElementValuePairs)))
	for i := range ann.ElementValuePairs {
		dst = appendU2(dst, ann.ElementValuePairs[i].ElementNameIndex)
		dst = appendElementValue(dst, &ann.ElementValuePairs[i].Value)
	}
	return dst
}

func appendAnnotations(dst []byte, anns []Annotation) []byte {
	dst = appendU2(dst, uint16(len(anns)))
	for i := range anns {
		dst = appendAnnotation(dst, &anns[i])
	}
	return dst
}

func appendElementValue(dst []byte, ev *ElementValue) []byte {
	dst = appendU1(dst, ev.Tag)
	switch ev.Tag {
	case 'e':
		dst = appendU2(dst, ev.Enum.TypeNameIndex)
		dst = appendU2(dst, ev.Enum.ConstNameIndex)
	case '@':
		dst = appendAnnotation(dst, ev.Annotation)
	case '[':
		dst = appendU2(dst, uint16(len(ev.Array)))
		for i := range ev.Array {
			dst = appendElementValue(dst, &ev.Array[i])
		}
	default:
		dst = appendU2(dst, ev.ConstIndex)
	}
	return dst
}

func (a *AnnotationsAttribute) AppendBody(dst []byte) []byte {
	return appendAnnotations(dst, a.Annotations)
}

func (a *ParameterAnnotationsAttribute) AppendBody(dst []byte) []byte {
	dst = appendU1(dst, uint8(len(a.ParameterAnnotations)))
	for _, anns := range a.ParameterAnnotations {
		dst = appendAnnotations(dst, anns)
	}
	return dst
}

func (a *TypeAnnotationsAttribute) AppendBody(dst []byte) []byte {
	dst = appendU2(dst, uint16(len(a.Annotations)))
	for i := range a.Annotations {
		ta := &a.Annotations[i]
		dst = appendU1(dst, ta.TargetType)
		dst = append(dst, ta.TargetInfo...)
		dst = appendU1(dst, uint8(len(ta.TargetPath)))
		for _, p := range ta.TargetPath {
			dst = appendU1(dst, p.TypePathKind)
			dst = appendU1(dst, p.TypeArgumentIndex)
		}
		dst = appendAnnotation(dst, &ta.Annotation)
	}
	return dst
}

func (a *AnnotationDefaultAttribute) AppendBody(dst []byte) []byte {
	return appendElementValue(dst, &a.DefaultValue)
}
