package mapping

import (
	"strings"

	"github.com/dhamidi/sabre/classfile"
)

// Signature applies Class to every class named in a generic signature of a
// class, method, field or local variable. The shape is detected from the
// string; a signature that does not parse is returned unchanged with an
// error wrapping classfile.ErrMalformedSignature.
func (t *Table) Signature(sig string) (string, error) {
	if classfile.IsMethodSignature(sig) {
		return t.MethodSignature(sig)
	}
	if !strings.HasPrefix(sig, "<") {
		if ts, err := classfile.ParseFieldSignature(sig); err == nil {
			t.mapType(&ts)
			return ts.Format(), nil
		}
	}
	return t.ClassSignature(sig)
}

func (t *Table) ClassSignature(sig string) (string, error) {
	cs, err := classfile.ParseClassSignature(sig)
	if err != nil {
		return sig, err
	}
	t.mapTypeParams(cs.TypeParams)
	t.mapClassType(&cs.Super)
	for i := range cs.Interfaces {
		t.mapClassType(&cs.Interfaces[i])
	}
	return cs.Format(), nil
}

func (t *Table) MethodSignature(sig string) (string, error) {
	ms, err := classfile.ParseMethodSignature(sig)
	if err != nil {
		return sig, err
	}
	t.mapTypeParams(ms.TypeParams)
	for i := range ms.Params {
		t.mapType(&ms.Params[i])
	}
	if ms.Return != nil {
		t.mapType(ms.Return)
	}
	for i := range ms.Throws {
		t.mapType(&ms.Throws[i])
	}
	return ms.Format(), nil
}

func (t *Table) FieldSignature(sig string) (string, error) {
	ts, err := classfile.ParseFieldSignature(sig)
	if err != nil {
		return sig, err
	}
	t.mapType(&ts)
	return ts.Format(), nil
}

func (t *Table) mapTypeParams(params []classfile.TypeParameter) {
	for i := range params {
		if params[i].ClassBound != nil {
			t.mapType(params[i].ClassBound)
		}
		for j := range params[i].InterfaceBounds {
			t.mapType(&params[i].InterfaceBounds[j])
		}
	}
}

func (t *Table) mapType(ts *classfile.TypeSignature) {
	switch ts.Kind {
	case classfile.ClassTypeSignatureKind:
		t.mapClassType(ts.Class)
	case classfile.ArrayTypeSignature:
		t.mapType(ts.Elem)
	}
}

// mapClassType rewrites the outer name and each inner suffix. Inner suffixes
// are simple names, so the binary name Outer$Inner is mapped and the part
// after the mapped outer name is kept.
func (t *Table) mapClassType(ct *classfile.ClassTypeSignature) {
	binary := ct.Name
	mappedOuter := t.Class(binary)
	ct.Name = mappedOuter
	t.mapArgs(ct.Args)
	for i := range ct.Inner {
		inner := &ct.Inner[i]
		binary = binary + "$" + inner.Name
		mapped := t.Class(binary)
		if rest, ok := strings.CutPrefix(mapped, mappedOuter+"$"); ok {
			inner.Name = rest
		} else if j := strings.LastIndexByte(mapped, '$'); j >= 0 {
			inner.Name = mapped[j+1:]
		} else {
			inner.Name = mapped[strings.LastIndexByte(mapped, '/')+1:]
		}
		mappedOuter = mapped
		t.mapArgs(inner.Args)
	}
}

func (t *Table) mapArgs(args []classfile.TypeArgument) {
	for i := range args {
		if args[i].Type != nil {
			t.mapType(args[i].Type)
		}
	}
}
