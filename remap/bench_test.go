package remap_test

import (
	"fmt"
	"testing"

	"github.com/dhamidi/sabre/classfile"
	"github.com/dhamidi/sabre/classfile/classtest"
	"github.com/dhamidi/sabre/hierarchy"
	"github.com/dhamidi/sabre/mapping"
	"github.com/dhamidi/sabre/remap"
)

// chain builds n classes, each extending the previous one, overriding its
// methods and calling them through the superclass.
func chain(n, methods int) ([]*classfile.ClassFile, *mapping.Table) {
	b := mapping.NewBuilder()
	var classes []*classfile.ClassFile
	super := hierarchy.ObjectClass
	for i := range n {
		name := fmt.Sprintf("p/C%d", i)
		c := classtest.New(name, super)
		b.AddClass(name, fmt.Sprintf("q/K%d", i))
		for j := range methods {
			desc := fmt.Sprintf("(Lp/C%d;I)Ljava/lang/String;", i)
			var code []byte
			if super != hierarchy.ObjectClass {
				ref := c.MethodRef(super, fmt.Sprintf("m%d", j), fmt.Sprintf("(Lp/C%d;I)Ljava/lang/String;", i-1))
				code = classtest.Ops([]byte{classtest.OpAload0}, classtest.Invoke(classfile.OpInvokeVirtual, ref), []byte{classtest.OpAreturn})
			} else {
				code = []byte{classtest.OpAload0, classtest.OpAreturn}
			}
			c.Method(classfile.AccPublic, fmt.Sprintf("m%d", j), desc, c.Code(code))
			b.AddMethod(name, fmt.Sprintf("m%d", j), desc, fmt.Sprintf("r%d_%d", i, j))
		}
		c.Field(classfile.AccPrivate, "next", "Lp/C0;", c.Signature("Ljava/util/List<Lp/C0;>;"))
		classes = append(classes, c.Build())
		super = name
	}
	tbl, err := b.Build()
	if err != nil {
		panic(err)
	}
	return classes, tbl
}

func BenchmarkVisitorRemap(b *testing.B) {
	classes, tbl := chain(200, 8)
	r, err := remap.New(index(b, classes...), tbl)
	if err != nil {
		b.Fatal(err)
	}
	v := r.NewVisitor()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, cf := range classes {
			if out, _ := v.Remap(cf); out == nil {
				b.Fatal("remap failed")
			}
		}
	}
}

func BenchmarkPlan(b *testing.B) {
	classes, tbl := chain(200, 8)
	idx := index(b, classes...)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := remap.New(idx, tbl); err != nil {
			b.Fatal(err)
		}
	}
}
