package classfile_test

import (
	"bytes"
	"testing"

	"github.com/dhamidi/sabre/classfile"
	"github.com/dhamidi/sabre/classfile/classtest"
)

func sampleClass() *classtest.Class {
	c := classtest.New("pkg/Sample", "java/lang/Object", "java/lang/Runnable")
	toString := c.MethodRef("java/lang/Object", "toString", "()Ljava/lang/String;")
	c.Long(42)
	c.String("hello")
	c.Field(classfile.AccPrivate, "count", "I")
	c.Field(classfile.AccPublic, "items", "Ljava/util/List;", c.Signature("Ljava/util/List<Ljava/lang/String;>;"))
	c.Method(classfile.AccPublic, "run", "()V",
		c.Code(classtest.Ops(
			[]byte{classtest.OpAload0},
			classtest.Invoke(classfile.OpInvokeVirtual, toString),
			[]byte{classtest.OpPop, classtest.OpReturn},
		),
			c.Attr(classfile.AttrLocalVariableTable, &classfile.LocalVariableTableAttribute{
				LocalVariableTable: []classfile.LocalVariableEntry{
					{StartPC: 0, Length: 6, NameIndex: c.Utf8("this"), DescriptorIndex: c.Utf8("Lpkg/Sample;"), Index: 0},
				},
			}),
		),
	)
	c.ClassAttr(c.Attr(classfile.AttrSourceFile, &classfile.SourceFileAttribute{SourceFileIndex: c.Utf8("Sample.java")}))
	c.ClassAttr(c.Attr(classfile.AttrRuntimeVisibleAnnotations, &classfile.AnnotationsAttribute{
		Visible: true,
		Annotations: []classfile.Annotation{{
			TypeIndex: c.Utf8("Lpkg/Marker;"),
			ElementValuePairs: []classfile.ElementValuePair{
				{ElementNameIndex: c.Utf8("value"), Value: classfile.ElementValue{Tag: 'c', ConstIndex: c.Utf8("Lpkg/Other;")}},
				{ElementNameIndex: c.Utf8("mode"), Value: classfile.ElementValue{Tag: 'e', Enum: classfile.EnumConstValue{
					TypeNameIndex: c.Utf8("Lpkg/Mode;"), ConstNameIndex: c.Utf8("FAST"),
				}}},
				{ElementNameIndex: c.Utf8("tags"), Value: classfile.ElementValue{Tag: '[', Array: []classfile.ElementValue{
					{Tag: 's', ConstIndex: c.Utf8("a")},
					{Tag: '@', Annotation: &classfile.Annotation{TypeIndex: c.Utf8("Lpkg/Inner;")}},
				}}},
			},
		}},
	}))
	return c
}

func TestParseClassFile(t *testing.T) {
	cf := sampleClass().Build()

	t.Run("class name", func(t *testing.T) {
		if got := cf.ClassName(); got != "pkg/Sample" {
			t.Errorf("ClassName() = %q, want %q", got, "pkg/Sample")
		}
		if got := cf.SuperClassName(); got != "java/lang/Object" {
			t.Errorf("SuperClassName() = %q, want %q", got, "java/lang/Object")
		}
	})

	t.Run("interfaces", func(t *testing.T) {
		interfaces := cf.InterfaceNames()
		if len(interfaces) != 1 || interfaces[0] != "java/lang/Runnable" {
			t.Errorf("InterfaceNames() = %v", interfaces)
		}
	})

	t.Run("fields", func(t *testing.T) {
		f := cf.GetField("count", "I")
		if f == nil {
			t.Fatal("field count not found")
		}
		if !f.IsPrivate() {
			t.Error("expected count to be private")
		}
		items := cf.GetField("items", "")
		if items == nil {
			t.Fatal("field items not found")
		}
		sig := items.GetAttribute(cf.ConstantPool, classfile.AttrSignature).AsSignature()
		if sig == nil {
			t.Fatal("Signature attribute not decoded")
		}
		if got := cf.ConstantPool.GetUtf8(sig.SignatureIndex); got != "Ljava/util/List<Ljava/lang/String;>;" {
			t.Errorf("signature = %q", got)
		}
	})

	t.Run("method code attribute", func(t *testing.T) {
		m := cf.GetMethod("run", "()V")
		if m == nil {
			t.Fatal("method run not found")
		}
		code := m.GetCodeAttribute(cf.ConstantPool)
		if code == nil {
			t.Fatal("Code attribute not decoded")
		}
		if len(code.Code) != 6 {
			t.Errorf("len(Code) = %d, want 6", len(code.Code))
		}
		if len(code.Attributes) != 1 {
			t.Fatalf("len(code.Attributes) = %d, want 1", len(code.Attributes))
		}
		lvt := classfile.As[classfile.LocalVariableTableAttribute](&code.Attributes[0])
		if lvt == nil || len(lvt.LocalVariableTable) != 1 {
			t.Fatalf("LocalVariableTable = %+v", lvt)
		}
		if got := cf.ConstantPool.GetUtf8(lvt.LocalVariableTable[0].DescriptorIndex); got != "Lpkg/Sample;" {
			t.Errorf("local descriptor = %q", got)
		}
	})

	t.Run("annotations", func(t *testing.T) {
		ann := classfile.As[classfile.AnnotationsAttribute](cf.GetAttribute(classfile.AttrRuntimeVisibleAnnotations))
		if ann == nil || !ann.Visible || len(ann.Annotations) != 1 {
			t.Fatalf("annotations = %+v", ann)
		}
		pairs := ann.Annotations[0].ElementValuePairs
		if len(pairs) != 3 {
			t.Fatalf("len(pairs) = %d, want 3", len(pairs))
		}
		if pairs[2].Value.Array[1].Annotation == nil {
			t.Error("nested annotation not decoded")
		}
	})

	t.Run("constant pool", func(t *testing.T) {
		var longs int
		for i := 1; i < cf.ConstantPool.Count(); i++ {
			if e, ok := cf.ConstantPool.Entry(uint16(i)).(*classfile.ConstantLongInfo); ok {
				longs++
				if e.Value != 42 {
					t.Errorf("long = %d, want 42", e.Value)
				}
				if cf.ConstantPool.Entry(uint16(i+1)) != nil {
					t.Error("slot after a Long must be empty")
				}
			}
		}
		if longs != 1 {
			t.Errorf("found %d longs, want 1", longs)
		}
	})
}

func TestEncodeRoundTrip(t *testing.T) {
	data := sampleClass().Bytes()
	cf, err := classfile.ParseBytes(data)
	if err != nil {
		t.Fatalf("ParseBytes error: %v", err)
	}
	again, err := cf.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("re-encoded class differs from its input")
	}

	clone := cf.Clone()
	cloned, err := clone.Encode()
	if err != nil {
		t.Fatalf("Encode clone error: %v", err)
	}
	if !bytes.Equal(data, cloned) {
		t.Error("clone encodes differently")
	}
	clone.ConstantPool[0].(*classfile.ConstantUtf8Info).Value = "changed"
	if cf.ConstantPool.GetUtf8(1) == "changed" {
		t.Error("clone shares constant pool entries with its source")
	}
}

func TestEncodeKeepsUnpairedStrings(t *testing.T) {
	c := classtest.New("pkg/Strings", "java/lang/Object")
	c.String("QQQ")
	c.String("WWWW")
	data := c.Bytes()
	// a lone surrogate, then a four byte sequence the JVM never writes
	data = bytes.Replace(data, []byte("QQQ"), []byte{0xED, 0xA0, 0x80}, 1)
	data = bytes.Replace(data, []byte("WWWW"), []byte{0xF0, 0x9F, 0x98, 0x80}, 1)

	cf, err := classfile.ParseBytes(data)
	if err != nil {
		t.Fatalf("ParseBytes error: %v", err)
	}
	again, err := cf.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("re-encoded class differs from its input")
	}
	cloned, err := cf.Clone().Encode()
	if err != nil {
		t.Fatalf("Encode clone error: %v", err)
	}
	if !bytes.Equal(data, cloned) {
		t.Error("clone encodes differently")
	}
}

func TestParseErrors(t *testing.T) {
	data := sampleClass().Bytes()
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", []byte{0xCA, 0xFE, 0xBA, 0xBF, 0, 0, 0, 61}},
		{"truncated", data[:len(data)/2]},
		{"trailing", append(append([]byte(nil), data...), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := classfile.ParseBytes(tt.data); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestMalformedAttributeKeepsBody(t *testing.T) {
	c := classtest.New("pkg/Broken", "java/lang/Object")
	broken := classfile.AttributeInfo{NameIndex: c.Utf8(classfile.AttrSignature), Info: []byte{0, 1, 2}}
	c.ClassAttr(broken)
	cf := c.Build()
	attr := cf.GetAttribute(classfile.AttrSignature)
	if attr.ParseErr == nil {
		t.Error("expected ParseErr for a three byte Signature body")
	}
	if attr.Parsed != nil {
		t.Error("Parsed must be nil when decoding fails")
	}
	if !bytes.Equal(attr.Info, []byte{0, 1, 2}) {
		t.Errorf("Info = % X", attr.Info)
	}
}

func TestPoolOverflow(t *testing.T) {
	cf := classtest.New("pkg/Big", "java/lang/Object").Build()
	for cf.ConstantPool.Count() <= 65535 {
		cf.ConstantPool = append(cf.ConstantPool, &classfile.ConstantIntegerInfo{Value: 1})
	}
	if _, err := cf.Encode(); err == nil {
		t.Error("expected pool overflow error")
	}
}
