package classfile

import "strings"

// maxArrayDepth is the JVM limit on array dimensions in a descriptor.
const maxArrayDepth = 255

// FieldType is a parsed field descriptor. Exactly one of BaseType and
// ClassName is set.
type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

var baseTypeNames = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

var baseTypeCodes = map[string]byte{
	"byte":    'B',
	"char":    'C',
	"double":  'D',
	"float":   'F',
	"int":     'I',
	"long":    'J',
	"short":   'S',
	"boolean": 'Z',
}

// String renders the type the way Java source spells it.
func (ft *FieldType) String() string {
	var sb strings.Builder
	if ft.BaseType != "" {
		sb.WriteString(ft.BaseType)
	} else {
		sb.WriteString(InternalToSourceName(ft.ClassName))
	}
	for i := 0; i < ft.ArrayDepth; i++ {
		sb.WriteString("[]")
	}
	return sb.String()
}

// Descriptor formats the type back to its canonical descriptor string.
func (ft *FieldType) Descriptor() string {
	var sb strings.Builder
	ft.appendDescriptor(&sb)
	return sb.String()
}

func (ft *FieldType) appendDescriptor(sb *strings.Builder) {
	for i := 0; i < ft.ArrayDepth; i++ {
		sb.WriteByte('[')
	}
	if ft.BaseType != "" {
		sb.WriteByte(baseTypeCodes[ft.BaseType])
		return
	}
	sb.WriteByte('L')
	sb.WriteString(ft.ClassName)
	sb.WriteByte(';')
}

func (ft *FieldType) IsArray() bool {
	return ft.ArrayDepth > 0
}

func (ft *FieldType) IsPrimitive() bool {
	return ft.BaseType != "" && ft.ArrayDepth == 0
}

func (ft *FieldType) IsReference() bool {
	return ft.ClassName != "" || ft.ArrayDepth > 0
}

// MethodDescriptor is a parsed method descriptor. ReturnType is nil for void.
type MethodDescriptor struct {
	Parameters []FieldType
	ReturnType *FieldType
}

func (md *MethodDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, p := range md.Parameters {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteString(")")
	if md.ReturnType != nil {
		sb.WriteString(" ")
		sb.WriteString(md.ReturnType.String())
	} else {
		sb.WriteString(" void")
	}
	return sb.String()
}

func (md *MethodDescriptor) Descriptor() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := range md.Parameters {
		md.Parameters[i].appendDescriptor(&sb)
	}
	sb.WriteByte(')')
	if md.ReturnType == nil {
		sb.WriteByte('V')
	} else {
		md.ReturnType.appendDescriptor(&sb)
	}
	return sb.String()
}

// ParseFieldDescriptor parses a field descriptor such as "[Ljava/lang/String;".
func ParseFieldDescriptor(desc string) (FieldType, error) {
	ft, n, err := parseFieldType(desc, 0)
	if err != nil {
		return FieldType{}, err
	}
	if n != len(desc) {
		return FieldType{}, descriptorError(desc, n, "trailing characters")
	}
	return ft, nil
}

// ParseMethodDescriptor parses a method descriptor such as "(IJ)V".
func ParseMethodDescriptor(desc string) (MethodDescriptor, error) {
	if len(desc) == 0 || desc[0] != '(' {
		return MethodDescriptor{}, descriptorError(desc, 0, "expected '('")
	}

	var md MethodDescriptor
	i := 1
	for i < len(desc) && desc[i] != ')' {
		ft, next, err := parseFieldType(desc, i)
		if err != nil {
			return MethodDescriptor{}, err
		}
		md.Parameters = append(md.Parameters, ft)
		i = next
	}
	if i >= len(desc) {
		return MethodDescriptor{}, descriptorError(desc, i, "missing ')'")
	}
	i++

	if i < len(desc) && desc[i] == 'V' {
		i++
	} else {
		ft, next, err := parseFieldType(desc, i)
		if err != nil {
			return MethodDescriptor{}, err
		}
		md.ReturnType = &ft
		i = next
	}
	if i != len(desc) {
		return MethodDescriptor{}, descriptorError(desc, i, "trailing characters")
	}
	return md, nil
}

// IsMethodDescriptor reports whether desc is syntactically a method descriptor.
func IsMethodDescriptor(desc string) bool {
	return len(desc) > 0 && desc[0] == '('
}

func parseFieldType(desc string, start int) (FieldType, int, error) {
	var ft FieldType
	i := start
	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}
	if ft.ArrayDepth > maxArrayDepth {
		return FieldType{}, 0, descriptorError(desc, start, "too many array dimensions")
	}
	if i >= len(desc) {
		if ft.ArrayDepth > 0 {
			return FieldType{}, 0, descriptorError(desc, i, "array without element type")
		}
		return FieldType{}, 0, descriptorError(desc, i, "unexpected end")
	}

	c := desc[i]
	if name, ok := baseTypeNames[c]; ok {
		ft.BaseType = name
		return ft, i + 1, nil
	}
	if c != 'L' {
		return FieldType{}, 0, descriptorError(desc, i, "unknown type code "+string(c))
	}
	end := strings.IndexByte(desc[i+1:], ';')
	if end < 0 {
		return FieldType{}, 0, descriptorError(desc, i, "missing ';'")
	}
	if end == 0 {
		return FieldType{}, 0, descriptorError(desc, i, "empty class name")
	}
	ft.ClassName = desc[i+1 : i+1+end]
	if strings.ContainsAny(ft.ClassName, ".[") {
		return FieldType{}, 0, descriptorError(desc, i+1, "illegal character in class name")
	}
	return ft, i + end + 2, nil
}

func descriptorError(input string, offset int, reason string) error {
	return &DescriptorError{Input: input, Offset: offset, Reason: reason}
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
