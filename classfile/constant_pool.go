package classfile

// ConstantPoolEntry is one tagged constant pool entry. Callers switch on
// the concrete type; every tag in ConstantTag has exactly one entry type.
type ConstantPoolEntry interface {
	Tag() ConstantTag
}

type ConstantUtf8Info struct {
	Value string

	// bytes as read, written back while Value still equals decoded
	raw     []byte
	decoded string
}

func (c *ConstantUtf8Info) Tag() ConstantTag { return ConstantUtf8 }

type ConstantIntegerInfo struct {
	Value int32
}

func (c *ConstantIntegerInfo) Tag() ConstantTag { return ConstantInteger }

type ConstantFloatInfo struct {
	Bits uint32
}

func (c *ConstantFloatInfo) Tag() ConstantTag { return ConstantFloat }

type ConstantLongInfo struct {
	Value int64
}

func (c *ConstantLongInfo) Tag() ConstantTag { return ConstantLong }

// ConstantDoubleInfo keeps the raw bits so NaN payloads survive a round trip.
type ConstantDoubleInfo struct {
	Bits uint64
}

func (c *ConstantDoubleInfo) Tag() ConstantTag { return ConstantDouble }

type ConstantClassInfo struct {
	NameIndex uint16
}

func (c *ConstantClassInfo) Tag() ConstantTag { return ConstantClass }

type ConstantStringInfo struct {
	StringIndex uint16
}

func (c *ConstantStringInfo) Tag() ConstantTag { return ConstantString }

// ConstantRefInfo is a Fieldref, Methodref or InterfaceMethodref; RefTag
// tells which.
type ConstantRefInfo struct {
	RefTag           ConstantTag
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantRefInfo) Tag() ConstantTag { return c.RefTag }

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndTypeInfo) Tag() ConstantTag { return ConstantNameAndType }

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

func (c *ConstantMethodTypeInfo) Tag() ConstantTag { return ConstantMethodType }

// ConstantDynamicInfo is a Dynamic or InvokeDynamic entry.
type ConstantDynamicInfo struct {
	DynTag                   ConstantTag
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

func (c *ConstantDynamicInfo) Tag() ConstantTag { return c.DynTag }

type ConstantModuleInfo struct {
	NameIndex uint16
}

func (c *ConstantModuleInfo) Tag() ConstantTag { return ConstantModule }

type ConstantPackageInfo struct {
	NameIndex uint16
}

func (c *ConstantPackageInfo) Tag() ConstantTag { return ConstantPackage }

// ConstantPool holds entries 1..count-1 at positions 0..count-2. The slot
// after a Long or Double is nil.
type ConstantPool []ConstantPoolEntry

func entryAt[T ConstantPoolEntry](cp ConstantPool, index uint16) (T, bool) {
	var zero T
	if index == 0 || int(index) > len(cp) {
		return zero, false
	}
	e, ok := cp[index-1].(T)
	return e, ok
}

// Entry returns the entry at a 1-based index, or nil.
func (cp ConstantPool) Entry(index uint16) ConstantPoolEntry {
	if index == 0 || int(index) > len(cp) {
		return nil
	}
	return cp[index-1]
}

// Count is the constant_pool_count written to the class file.
func (cp ConstantPool) Count() int {
	return len(cp) + 1
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	if e, ok := entryAt[*ConstantUtf8Info](cp, index); ok {
		return e.Value
	}
	return ""
}

func (cp ConstantPool) GetClassName(index uint16) string {
	if e, ok := entryAt[*ConstantClassInfo](cp, index); ok {
		return cp.GetUtf8(e.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if e, ok := entryAt[*ConstantNameAndTypeInfo](cp, index); ok {
		return cp.GetUtf8(e.NameIndex), cp.GetUtf8(e.DescriptorIndex)
	}
	return "", ""
}

func (cp ConstantPool) GetString(index uint16) string {
	if e, ok := entryAt[*ConstantStringInfo](cp, index); ok {
		return cp.GetUtf8(e.StringIndex)
	}
	return ""
}

func (cp ConstantPool) GetModuleName(index uint16) string {
	if e, ok := entryAt[*ConstantModuleInfo](cp, index); ok {
		return cp.GetUtf8(e.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetPackageName(index uint16) string {
	if e, ok := entryAt[*ConstantPackageInfo](cp, index); ok {
		return cp.GetUtf8(e.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetInteger(index uint16) (int32, bool) {
	if e, ok := entryAt[*ConstantIntegerInfo](cp, index); ok {
		return e.Value, true
	}
	return 0, false
}

func (cp ConstantPool) GetLong(index uint16) (int64, bool) {
	if e, ok := entryAt[*ConstantLongInfo](cp, index); ok {
		return e.Value, true
	}
	return 0, false
}

// GetRef returns the owner, name and descriptor of a Fieldref, Methodref or
// InterfaceMethodref entry.
func (cp ConstantPool) GetRef(index uint16) (ref *ConstantRefInfo, className, name, descriptor string) {
	e, ok := entryAt[*ConstantRefInfo](cp, index)
	if !ok {
		return nil, "", "", ""
	}
	name, descriptor = cp.GetNameAndType(e.NameAndTypeIndex)
	return e, cp.GetClassName(e.ClassIndex), name, descriptor
}

func (cp ConstantPool) GetMethodHandle(index uint16) *ConstantMethodHandleInfo {
	e, _ := entryAt[*ConstantMethodHandleInfo](cp, index)
	return e
}

func (cp ConstantPool) GetMethodType(index uint16) string {
	if e, ok := entryAt[*ConstantMethodTypeInfo](cp, index); ok {
		return cp.GetUtf8(e.DescriptorIndex)
	}
	return ""
}

func (cp ConstantPool) GetDynamic(index uint16) *ConstantDynamicInfo {
	e, _ := entryAt[*ConstantDynamicInfo](cp, index)
	return e
}

// Clone returns a deep copy: entries are pointers and must not be shared
// between an input class and its rewritten copy.
func (cp ConstantPool) Clone() ConstantPool {
	out := make(ConstantPool, len(cp), len(cp)+len(cp)/4)
	for i, e := range cp {
		switch e := e.(type) {
		case nil:
		case *ConstantUtf8Info:
			c := *e
			out[i] = &c
		case *ConstantIntegerInfo:
			c := *e
			out[i] = &c
		case *ConstantFloatInfo:
			c := *e
			out[i] = &c
		case *ConstantLongInfo:
			c := *e
			out[i] = &c
		case *ConstantDoubleInfo:
			c := *e
			out[i] = &c
		case *ConstantClassInfo:
			c := *e
			out[i] = &c
		case *ConstantStringInfo:
			c := *e
			out[i] = &c
		case *ConstantRefInfo:
			c := *e
			out[i] = &c
		case *ConstantNameAndTypeInfo:
			c := *e
			out[i] = &c
		case *ConstantMethodHandleInfo:
			c := *e
			out[i] = &c
		case *ConstantMethodTypeInfo:
			c := *e
			out[i] = &c
		case *ConstantDynamicInfo:
			c := *e
			out[i] = &c
		case *ConstantModuleInfo:
			c := *e
			out[i] = &c
		case *ConstantPackageInfo:
			c := *e
			out[i] = &c
		default:
			panic("classfile: unknown constant pool entry type")
		}
	}
	return out
}
