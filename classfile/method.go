package classfile

// MethodInfo has the same layout as FieldInfo.
type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (m *MethodInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *MethodInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (m *MethodInfo) GetAttribute(cp ConstantPool, name string) *AttributeInfo {
	for i := range m.Attributes {
		if cp.GetUtf8(m.Attributes[i].NameIndex) == name {
			return &m.Attributes[i]
		}
	}
	return nil
}

func (m *MethodInfo) GetCodeAttribute(cp ConstantPool) *CodeAttribute {
	return m.GetAttribute(cp, AttrCode).AsCode()
}

func (m *MethodInfo) IsPrivate() bool  { return m.AccessFlags.IsPrivate() }
func (m *MethodInfo) IsStatic() bool   { return m.AccessFlags.IsStatic() }
func (m *MethodInfo) IsBridge() bool   { return m.AccessFlags.IsBridge() }
func (m *MethodInfo) IsAbstract() bool { return m.AccessFlags.IsAbstract() }

// IsInitializer reports "<init>" and "<clinit>", which are never renamed.
func (m *MethodInfo) IsInitializer(cp ConstantPool) bool {
	name := m.Name(cp)
	return name == "<init>" || name == "<clinit>"
}

func (m *MethodInfo) ParsedDescriptor(cp ConstantPool) (MethodDescriptor, error) {
	return ParseMethodDescriptor(m.Descriptor(cp))
}
