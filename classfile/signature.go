package classfile

import "strings"

// TypeSignatureKind discriminates the variants of TypeSignature.
type TypeSignatureKind uint8

const (
	BaseTypeSignature TypeSignatureKind = iota + 1
	ClassTypeSignatureKind
	TypeVariableSignature
	ArrayTypeSignature
)

// TypeSignature is a JavaTypeSignature: a base type, a class type, a type
// variable or an array of one of those.
type TypeSignature struct {
	Kind    TypeSignatureKind
	Base    byte
	Class   *ClassTypeSignature
	TypeVar string
	Elem    *TypeSignature
}

// ClassTypeSignature is "Lpkg/Outer<args>.Inner<args>;". Name is the
// internal name of the outermost class; Inner holds the '.'-separated
// suffixes, whose names are simple names relative to the enclosing class.
type ClassTypeSignature struct {
	Name  string
	Args  []TypeArgument
	Inner []SimpleClassTypeSignature
}

type SimpleClassTypeSignature struct {
	Name string
	Args []TypeArgument
}

// TypeArgument is a type argument. Wildcard is 0 for an exact type, '+' or '-'
// for bounded wildcards and '*' for the unbounded wildcard (Type is nil).
type TypeArgument struct {
	Wildcard byte
	Type     *TypeSignature
}

type TypeParameter struct {
	Name            string
	ClassBound      *TypeSignature
	InterfaceBounds []TypeSignature
}

type ClassSignature struct {
	TypeParams []TypeParameter
	Super      ClassTypeSignature
	Interfaces []ClassTypeSignature
}

type MethodSignature struct {
	TypeParams []TypeParameter
	Params     []TypeSignature
	// Return is nil for void.
	Return *TypeSignature
	Throws []TypeSignature
}

// ParseClassSignature parses the Signature attribute of a class.
func ParseClassSignature(s string) (ClassSignature, error) {
	p := &sigParser{s: s}
	var cs ClassSignature
	if p.peek() == '<' {
		cs.TypeParams = p.typeParams()
	}
	cs.Super = p.classType()
	for p.err == nil && p.pos < len(s) {
		cs.Interfaces = append(cs.Interfaces, p.classType())
	}
	if err := p.finish(); err != nil {
		return ClassSignature{}, err
	}
	return cs, nil
}

// ParseMethodSignature parses the Signature attribute of a method.
func ParseMethodSignature(s string) (MethodSignature, error) {
	p := &sigParser{s: s}
	var ms MethodSignature
	if p.peek() == '<' {
		ms.TypeParams = p.typeParams()
	}
	p.expect('(')
	for p.err == nil && p.peek() != ')' {
		t := p.javaType()
		ms.Params = append(ms.Params, t)
	}
	p.expect(')')
	if p.peek() == 'V' {
		p.pos++
	} else {
		t := p.javaType()
		ms.Return = &t
	}
	for p.err == nil && p.peek() == '^' {
		p.pos++
		ms.Throws = append(ms.Throws, p.referenceType())
	}
	if err := p.finish(); err != nil {
		return MethodSignature{}, err
	}
	return ms, nil
}

// ParseFieldSignature parses a field or local variable signature.
func ParseFieldSignature(s string) (TypeSignature, error) {
	p := &sigParser{s: s}
	t := p.referenceType()
	if err := p.finish(); err != nil {
		return TypeSignature{}, err
	}
	return t, nil
}

// IsMethodSignature reports whether s has the shape of a method signature.
func IsMethodSignature(s string) bool {
	if strings.HasPrefix(s, "(") {
		return true
	}
	if !strings.HasPrefix(s, "<") {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth == 0 {
				return i+1 < len(s) && s[i+1] == '('
			}
		}
	}
	return false
}

type sigParser struct {
	s   string
	pos int
	err error
}

func (p *sigParser) fail(reason string) {
	if p.err == nil {
		p.err = &DescriptorError{Input: p.s, Offset: p.pos, Reason: reason, Signature: true}
	}
}

func (p *sigParser) finish() error {
	if p.err == nil && p.pos != len(p.s) {
		p.fail("trailing characters")
	}
	return p.err
}

func (p *sigParser) peek() byte {
	if p.err != nil || p.pos >= len(p.s) {
		return 0
	}
	return p.s[p.pos]
}

func (p *sigParser) expect(c byte) {
	if p.peek() != c {
		p.fail("expected '" + string(c) + "'")
		return
	}
	p.pos++
}

func (p *sigParser) identifier(stop string) string {
	start := p.pos
	for p.err == nil && p.pos < len(p.s) && !strings.ContainsRune(stop, rune(p.s[p.pos])) {
		p.pos++
	}
	if p.pos == start {
		p.fail("empty identifier")
	}
	return p.s[start:p.pos]
}

func (p *sigParser) typeParams() []TypeParameter {
	p.expect('<')
	var params []TypeParameter
	for p.err == nil && p.peek() != '>' {
		tp := TypeParameter{Name: p.identifier(":;<>./[")}
		p.expect(':')
		if c := p.peek(); c == 'L' || c == 'T' || c == '[' {
			t := p.referenceType()
			tp.ClassBound = &t
		}
		for p.err == nil && p.peek() == ':' {
			p.pos++
			tp.InterfaceBounds = append(tp.InterfaceBounds, p.referenceType())
		}
		params = append(params, tp)
	}
	if len(params) == 0 {
		p.fail("empty type parameter list")
	}
	p.expect('>')
	return params
}

func (p *sigParser) javaType() TypeSignature {
	c := p.peek()
	if _, ok := baseTypeNames[c]; ok {
		p.pos++
		return TypeSignature{Kind: BaseTypeSignature, Base: c}
	}
	return p.referenceType()
}

func (p *sigParser) referenceType() TypeSignature {
	switch p.peek() {
	case 'L':
		ct := p.classType()
		return TypeSignature{Kind: ClassTypeSignatureKind, Class: &ct}
	case 'T':
		p.pos++
		name := p.identifier(";<>./[:")
		p.expect(';')
		return TypeSignature{Kind: TypeVariableSignature, TypeVar: name}
	case '[':
		p.pos++
		elem := p.javaType()
		return TypeSignature{Kind: ArrayTypeSignature, Elem: &elem}
	default:
		p.fail("expected reference type")
		return TypeSignature{}
	}
}

func (p *sigParser) classType() ClassTypeSignature {
	var ct ClassTypeSignature
	p.expect('L')
	ct.Name = p.identifier(";<>.[:")
	if p.peek() == '<' {
		ct.Args = p.typeArgs()
	}
	for p.err == nil && p.peek() == '.' {
		p.pos++
		inner := SimpleClassTypeSignature{Name: p.identifier(";<>./[:")}
		if p.peek() == '<' {
			inner.Args = p.typeArgs()
		}
		ct.Inner = append(ct.Inner, inner)
	}
	p.expect(';')
	return ct
}

func (p *sigParser) typeArgs() []TypeArgument {
	p.expect('<')
	var args []TypeArgument
	for p.err == nil && p.peek() != '>' {
		switch c := p.peek(); c {
		case '*':
			p.pos++
			args = append(args, TypeArgument{Wildcard: '*'})
		case '+', '-':
			p.pos++
			t := p.referenceType()
			args = append(args, TypeArgument{Wildcard: c, Type: &t})
		default:
			t := p.referenceType()
			args = append(args, TypeArgument{Type: &t})
		}
	}
	if len(args) == 0 {
		p.fail("empty type argument list")
	}
	p.expect('>')
	return args
}

func (cs *ClassSignature) Format() string {
	var sb strings.Builder
	formatTypeParams(&sb, cs.TypeParams)
	cs.Super.format(&sb)
	for i := range cs.Interfaces {
		cs.Interfaces[i].format(&sb)
	}
	return sb.String()
}

func (ms *MethodSignature) Format() string {
	var sb strings.Builder
	formatTypeParams(&sb, ms.TypeParams)
	sb.WriteByte('(')
	for i := range ms.Params {
		ms.Params[i].format(&sb)
	}
	sb.WriteByte(')')
	if ms.Return == nil {
		sb.WriteByte('V')
	} else {
		ms.Return.format(&sb)
	}
	for i := range ms.Throws {
		sb.WriteByte('^')
		ms.Throws[i].format(&sb)
	}
	return sb.String()
}

func (t *TypeSignature) Format() string {
	var sb strings.Builder
	t.format(&sb)
	return sb.String()
}

func (t *TypeSignature) format(sb *strings.Builder) {
	switch t.Kind {
	case BaseTypeSignature:
		sb.WriteByte(t.Base)
	case ClassTypeSignatureKind:
		t.Class.format(sb)
	case TypeVariableSignature:
		sb.WriteByte('T')
		sb.WriteString(t.TypeVar)
		sb.WriteByte(';')
	case ArrayTypeSignature:
		sb.WriteByte('[')
		t.Elem.format(sb)
	}
}

func (ct *ClassTypeSignature) format(sb *strings.Builder) {
	sb.WriteByte('L')
	sb.WriteString(ct.Name)
	formatTypeArgs(sb, ct.Args)
	for _, inner := range ct.Inner {
		sb.WriteByte('.')
		sb.WriteString(inner.Name)
		formatTypeArgs(sb, inner.Args)
	}
	sb.WriteByte(';')
}

func formatTypeParams(sb *strings.Builder, params []TypeParameter) {
	if len(params) == 0 {
		return
	}
	sb.WriteByte('<')
	for _, tp := range params {
		sb.WriteString(tp.Name)
		sb.WriteByte(':')
		if tp.ClassBound != nil {
			tp.ClassBound.format(sb)
		}
		for i := range tp.InterfaceBounds {
			sb.WriteByte(':')
			tp.InterfaceBounds[i].format(sb)
		}
	}
	sb.WriteByte('>')
}

func formatTypeArgs(sb *strings.Builder, args []TypeArgument) {
	if len(args) == 0 {
		return
	}
	sb.WriteByte('<')
	for _, a := range args {
		if a.Wildcard != 0 {
			sb.WriteByte(a.Wildcard)
		}
		if a.Type != nil {
			a.Type.format(sb)
		}
	}
	sb.WriteByte('>')
}
