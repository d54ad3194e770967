// Package classtest builds class files in memory for tests.
package classtest

import (
	"encoding/binary"

	"github.com/dhamidi/sabre/classfile"
)

// Class accumulates a class file. Pool entries are interned, so asking for
// the same constant twice returns the same index.
type Class struct {
	cf      *classfile.ClassFile
	utf8    map[string]uint16
	classes map[string]uint16
	nts     map[[2]string]uint16
	refs    map[[4]string]uint16
}

// New starts a public class. An empty super makes a root class.
func New(name, super string, interfaces ...string) *Class {
	c := &Class{
		cf: &classfile.ClassFile{
			MajorVersion: 61,
			AccessFlags:  classfile.AccPublic | classfile.AccSuper,
		},
		utf8:    map[string]uint16{},
		classes: map[string]uint16{},
		nts:     map[[2]string]uint16{},
		refs:    map[[4]string]uint16{},
	}
	c.cf.ThisClass = c.ClassRef(name)
	if super != "" {
		c.cf.SuperClass = c.ClassRef(super)
	}
	for _, iface := range interfaces {
		c.cf.Interfaces = append(c.cf.Interfaces, c.ClassRef(iface))
	}
	return c
}

// Interface starts a public abstract interface.
func Interface(name string, supers ...string) *Class {
	c := New(name, "java/lang/Object", supers...)
	c.cf.AccessFlags = classfile.AccPublic | classfile.AccInterface | classfile.AccAbstract
	return c
}

func (c *Class) Flags(flags classfile.AccessFlags) *Class {
	c.cf.AccessFlags = flags
	return c
}

func (c *Class) add(e classfile.ConstantPoolEntry) uint16 {
	c.cf.ConstantPool = append(c.cf.ConstantPool, e)
	return uint16(len(c.cf.ConstantPool))
}

func (c *Class) Utf8(s string) uint16 {
	if i, ok := c.utf8[s]; ok {
		return i
	}
	i := c.add(&classfile.ConstantUtf8Info{Value: s})
	c.utf8[s] = i
	return i
}

func (c *Class) ClassRef(name string) uint16 {
	if i, ok := c.classes[name]; ok {
		return i
	}
	i := c.add(&classfile.ConstantClassInfo{NameIndex: c.Utf8(name)})
	c.classes[name] = i
	return i
}

func (c *Class) NameAndType(name, desc string) uint16 {
	key := [2]string{name, desc}
	if i, ok := c.nts[key]; ok {
		return i
	}
	i := c.add(&classfile.ConstantNameAndTypeInfo{NameIndex: c.Utf8(name), DescriptorIndex: c.Utf8(desc)})
	c.nts[key] = i
	return i
}

func (c *Class) ref(tag classfile.ConstantTag, owner, name, desc string) uint16 {
	key := [4]string{string(rune(tag)), owner, name, desc}
	if i, ok := c.refs[key]; ok {
		return i
	}
	i := c.add(&classfile.ConstantRefInfo{
		RefTag:           tag,
		ClassIndex:       c.ClassRef(owner),
		NameAndTypeIndex: c.NameAndType(name, desc),
	})
	c.refs[key] = i
	return i
}

func (c *Class) FieldRef(owner, name, desc string) uint16 {
	return c.ref(classfile.ConstantFieldref, owner, name, desc)
}

func (c *Class) MethodRef(owner, name, desc string) uint16 {
	return c.ref(classfile.ConstantMethodref, owner, name, desc)
}

func (c *Class) InterfaceMethodRef(owner, name, desc string) uint16 {
	return c.ref(classfile.ConstantInterfaceMethodref, owner, name, desc)
}

func (c *Class) String(s string) uint16 {
	return c.add(&classfile.ConstantStringInfo{StringIndex: c.Utf8(s)})
}

func (c *Class) Long(v int64) uint16 {
	i := c.add(&classfile.ConstantLongInfo{Value: v})
	c.cf.ConstantPool = append(c.cf.ConstantPool, nil)
	return i
}

func (c *Class) MethodType(desc string) uint16 {
	return c.add(&classfile.ConstantMethodTypeInfo{DescriptorIndex: c.Utf8(desc)})
}

func (c *Class) MethodHandle(kind classfile.MethodHandleKind, ref uint16) uint16 {
	return c.add(&classfile.ConstantMethodHandleInfo{ReferenceKind: kind, ReferenceIndex: ref})
}

func (c *Class) InvokeDynamic(bootstrap uint16, name, desc string) uint16 {
	return c.add(&classfile.ConstantDynamicInfo{
		DynTag:                   classfile.ConstantInvokeDynamic,
		BootstrapMethodAttrIndex: bootstrap,
		NameAndTypeIndex:         c.NameAndType(name, desc),
	})
}

// Attr wraps a typed body into an attribute.
func (c *Class) Attr(name string, body classfile.Body) classfile.AttributeInfo {
	a := classfile.AttributeInfo{NameIndex: c.Utf8(name)}
	a.Set(body)
	return a
}

// Code wraps bytecode into a Code attribute.
func (c *Class) Code(code []byte, attrs ...classfile.AttributeInfo) classfile.AttributeInfo {
	return c.Attr(classfile.AttrCode, &classfile.CodeAttribute{
		MaxStack:   4,
		MaxLocals:  4,
		Code:       code,
		Attributes: attrs,
	})
}

// Signature builds a Signature attribute.
func (c *Class) Signature(sig string) classfile.AttributeInfo {
	return c.Attr(classfile.AttrSignature, &classfile.SignatureAttribute{SignatureIndex: c.Utf8(sig)})
}

func (c *Class) Field(flags classfile.AccessFlags, name, desc string, attrs ...classfile.AttributeInfo) *Class {
	c.cf.Fields = append(c.cf.Fields, classfile.FieldInfo{
		AccessFlags:     flags,
		NameIndex:       c.Utf8(name),
		DescriptorIndex: c.Utf8(desc),
		Attributes:      attrs,
	})
	return c
}

func (c *Class) Method(flags classfile.AccessFlags, name, desc string, attrs ...classfile.AttributeInfo) *Class {
	c.cf.Methods = append(c.cf.Methods, classfile.MethodInfo{
		AccessFlags:     flags,
		NameIndex:       c.Utf8(name),
		DescriptorIndex: c.Utf8(desc),
		Attributes:      attrs,
	})
	return c
}

// ClassAttr appends a class-level attribute.
func (c *Class) ClassAttr(a classfile.AttributeInfo) *Class {
	c.cf.Attributes = append(c.cf.Attributes, a)
	return c
}

// Build returns the class as parsed from its own encoding, so typed
// attribute values and bodies agree exactly.
func (c *Class) Build() *classfile.ClassFile {
	cf, err := classfile.ParseBytes(c.Bytes())
	if err != nil {
		panic("classtest: " + err.Error())
	}
	return cf
}

func (c *Class) Bytes() []byte {
	data, err := c.cf.Encode()
	if err != nil {
		panic("classtest: " + err.Error())
	}
	return data
}

// Invoke encodes one invoke instruction.
func Invoke(op byte, index uint16) []byte {
	b := []byte{op, 0, 0}
	binary.BigEndian.PutUint16(b[1:], index)
	if op == classfile.OpInvokeInterface {
		b = append(b, 1, 0)
	}
	return b
}

// Ops concatenates instructions.
func Ops(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

const (
	OpAload0  = 0x2a
	OpReturn  = 0xb1
	OpAreturn = 0xb0
	OpPop     = 0x57
)
