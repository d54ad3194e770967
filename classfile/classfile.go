package classfile

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

// IsInterface is true for interfaces and annotation interfaces.
func (cf *ClassFile) IsInterface() bool {
	return cf.AccessFlags.IsInterface()
}

func (cf *ClassFile) IsModule() bool {
	return cf.AccessFlags.IsModule()
}

// GetField finds a field by name and, when descriptor is not empty, by
// descriptor.
func (cf *ClassFile) GetField(name, descriptor string) *FieldInfo {
	for i := range cf.Fields {
		if cf.Fields[i].Name(cf.ConstantPool) == name {
			if descriptor == "" || cf.Fields[i].Descriptor(cf.ConstantPool) == descriptor {
				return &cf.Fields[i]
			}
		}
	}
	return nil
}

func (cf *ClassFile) GetMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name(cf.ConstantPool) == name {
			if descriptor == "" || cf.Methods[i].Descriptor(cf.ConstantPool) == descriptor {
				return &cf.Methods[i]
			}
		}
	}
	return nil
}

func (cf *ClassFile) GetAttribute(name string) *AttributeInfo {
	for i := range cf.Attributes {
		if cf.ConstantPool.GetUtf8(cf.Attributes[i].NameIndex) == name {
			return &cf.Attributes[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the class. Typed attribute values are decoded
// again from the copied bodies so nothing is shared with the receiver.
func (cf *ClassFile) Clone() *ClassFile {
	out := *cf
	out.ConstantPool = cf.ConstantPool.Clone()
	out.Interfaces = append([]uint16(nil), cf.Interfaces...)
	out.Fields = make([]FieldInfo, len(cf.Fields))
	for i, f := range cf.Fields {
		f.Attributes = cloneAttributes(f.Attributes, out.ConstantPool)
		out.Fields[i] = f
	}
	out.Methods = make([]MethodInfo, len(cf.Methods))
	for i, m := range cf.Methods {
		m.Attributes = cloneAttributes(m.Attributes, out.ConstantPool)
		out.Methods[i] = m
	}
	out.Attributes = cloneAttributes(cf.Attributes, out.ConstantPool)
	return &out
}

func cloneAttributes(attrs []AttributeInfo, cp ConstantPool) []AttributeInfo {
	if attrs == nil {
		return nil
	}
	out := make([]AttributeInfo, len(attrs))
	for i, a := range attrs {
		info := append([]byte(nil), a.Info...)
		parsed, err := decodeAttribute(cp.GetUtf8(a.NameIndex), info, cp)
		out[i] = AttributeInfo{NameIndex: a.NameIndex, Info: info, Parsed: parsed, ParseErr: err}
	}
	return out
}
