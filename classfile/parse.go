package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var errTruncated = errors.New("unexpected end of class file")

// cursor reads big-endian values from an in-memory class file. The first
// failure sticks; later reads return zero values.
type cursor struct {
	b   []byte
	off int
	err error
}

func (c *cursor) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *cursor) need(n int) bool {
	if c.err != nil {
		return false
	}
	if n < 0 || len(c.b)-c.off < n {
		c.fail(errTruncated)
		return false
	}
	return true
}

func (c *cursor) u1() uint8 {
	if !c.need(1) {
		return 0
	}
	v := c.b[c.off]
	c.off++
	return v
}

func (c *cursor) u2() uint16 {
	if !c.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(c.b[c.off:])
	c.off += 2
	return v
}

func (c *cursor) u4() uint32 {
	if !c.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(c.b[c.off:])
	c.off += 4
	return v
}

func (c *cursor) u8() uint64 {
	if !c.need(8) {
		return 0
	}
	v := binary.BigEndian.Uint64(c.b[c.off:])
	c.off += 8
	return v
}

// bytes returns a copy so the caller may keep it after the input is reused.
func (c *cursor) bytes(n int) []byte {
	if !c.need(n) {
		return nil
	}
	out := make([]byte, n)
	copy(out, c.b[c.off:])
	c.off += n
	return out
}

func (c *cursor) skip(n int) {
	if c.need(n) {
		c.off += n
	}
}

func (c *cursor) u2s(n int) []uint16 {
	if !c.need(n * 2) {
		return nil
	}
	out := make([]uint16, n)
	for i := range out {
		out[i] = c.u2()
	}
	return out
}

func ParseFile(path string) (*ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return ParseBytes(data)
}

func Parse(rd io.Reader) (*ClassFile, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes decodes a complete class file. Trailing bytes after the last
// attribute are an error.
func ParseBytes(data []byte) (*ClassFile, error) {
	c := &cursor{b: data}

	magic := c.u4()
	if c.err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", c.err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)
	}

	cf := &ClassFile{
		MinorVersion: c.u2(),
		MajorVersion: c.u2(),
	}

	cp, err := readConstantPool(c)
	if err != nil {
		return nil, err
	}
	cf.ConstantPool = cp

	cf.AccessFlags = AccessFlags(c.u2())
	cf.ThisClass = c.u2()
	cf.SuperClass = c.u2()
	cf.Interfaces = c.u2s(int(c.u2()))
	if c.err != nil {
		return nil, fmt.Errorf("failed to read class header: %w", c.err)
	}
	if _, ok := entryAt[*ConstantClassInfo](cp, cf.ThisClass); !ok {
		return nil, fmt.Errorf("this_class #%d is not a Class entry", cf.ThisClass)
	}

	cf.Fields = readFields(c, cp)
	if c.err != nil {
		return nil, fmt.Errorf("failed to read fields: %w", c.err)
	}
	cf.Methods = readMethods(c, cp)
	if c.err != nil {
		return nil, fmt.Errorf("failed to read methods: %w", c.err)
	}
	cf.Attributes = readAttributes(c, cp)
	if c.err != nil {
		return nil, fmt.Errorf("failed to read class attributes: %w", c.err)
	}
	if c.off != len(data) {
		return nil, fmt.Errorf("%d trailing bytes after class file", len(data)-c.off)
	}
	return cf, nil
}

func readConstantPool(c *cursor) (ConstantPool, error) {
	count := int(c.u2())
	if c.err != nil {
		return nil, fmt.Errorf("failed to read constant pool count: %w", c.err)
	}
	if count == 0 {
		return nil, errors.New("constant pool count is zero")
	}
	cp := make(ConstantPool, count-1)
	for i := 1; i < count; i++ {
		tag := ConstantTag(c.u1())
		var entry ConstantPoolEntry
		switch tag {
		case ConstantUtf8:
			raw := c.bytes(int(c.u2()))
			v := decodeModifiedUtf8(raw)
			entry = &ConstantUtf8Info{Value: v, raw: raw, decoded: v}
		case ConstantInteger:
			entry = &ConstantIntegerInfo{Value: int32(c.u4())}
		case ConstantFloat:
			entry = &ConstantFloatInfo{Bits: c.u4()}
		case ConstantLong:
			entry = &ConstantLongInfo{Value: int64(c.u8())}
		case ConstantDouble:
			entry = &ConstantDoubleInfo{Bits: c.u8()}
		case ConstantClass:
			entry = &ConstantClassInfo{NameIndex: c.u2()}
		case ConstantString:
			entry = &ConstantStringInfo{StringIndex: c.u2()}
		case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref:
			entry = &ConstantRefInfo{RefTag: tag, ClassIndex: c.u2(), NameAndTypeIndex: c.u2()}
		case ConstantNameAndType:
			entry = &ConstantNameAndTypeInfo{NameIndex: c.u2(), DescriptorIndex: c.u2()}
		case ConstantMethodHandle:
			entry = &ConstantMethodHandleInfo{ReferenceKind: MethodHandleKind(c.u1()), ReferenceIndex: c.u2()}
		case ConstantMethodType:
			entry = &ConstantMethodTypeInfo{DescriptorIndex: c.u2()}
		case ConstantDynamic, ConstantInvokeDynamic:
			entry = &ConstantDynamicInfo{DynTag: tag, BootstrapMethodAttrIndex: c.u2(), NameAndTypeIndex: c.u2()}
		case ConstantModule:
			entry = &ConstantModuleInfo{NameIndex: c.u2()}
		case ConstantPackage:
			entry = &ConstantPackageInfo{NameIndex: c.u2()}
		default:
			if c.err == nil {
				return nil, fmt.Errorf("unknown constant pool tag %d at index %d", tag, i)
			}
		}
		if c.err != nil {
			return nil, fmt.Errorf("failed to read constant pool entry %d: %w", i, c.err)
		}
		cp[i-1] = entry
		if tag == ConstantLong || tag == ConstantDouble {
			i++
		}
	}
	return cp, nil
}

func readFields(c *cursor, cp ConstantPool) []FieldInfo {
	count := int(c.u2())
	if c.err != nil {
		return nil
	}
	out := make([]FieldInfo, 0, count)
	for i := 0; i < count && c.err == nil; i++ {
		f := FieldInfo{
			AccessFlags:     AccessFlags(c.u2()),
			NameIndex:       c.u2(),
			DescriptorIndex: c.u2(),
		}
		f.Attributes = readAttributes(c, cp)
		out = append(out, f)
	}
	return out
}

// readMethods shares the member layout with fields.
func readMethods(c *cursor, cp ConstantPool) []MethodInfo {
	fields := readFields(c, cp)
	out := make([]MethodInfo, len(fields))
	for i, f := range fields {
		out[i] = MethodInfo(f)
	}
	return out
}
