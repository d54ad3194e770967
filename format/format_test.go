package format

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/dhamidi/sabre/classfile"
	"github.com/dhamidi/sabre/hierarchy"
	"github.com/dhamidi/sabre/remap"
)

func sample() *Class {
	return &Class{
		ClassDescriptor: hierarchy.ClassDescriptor{
			Name:       "p/Impl",
			Super:      "p/Base",
			Interfaces: []string{"java/lang/Runnable"},
			Flags:      classfile.AccPublic | classfile.AccFinal,
			Members: []hierarchy.Member{
				{Kind: hierarchy.FieldMember, Name: "count", Descriptor: "I", Flags: classfile.AccPrivate | classfile.AccStatic},
				{Kind: hierarchy.MethodMember, Name: "run", Descriptor: "()V", Flags: classfile.AccPublic},
				{
					Kind:         hierarchy.MethodMember,
					Name:         "get",
					Descriptor:   "()Ljava/lang/Object;",
					Flags:        classfile.AccPublic | classfile.AccBridge | classfile.AccSynthetic,
					BridgeTarget: &hierarchy.NameAndType{Name: "get", Descriptor: "()Ljava/lang/String;"},
				},
			},
		},
		Partial: true,
		Renamed: map[int]string{1: "execute"},
	}
}

func TestLineEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewLineEncoder(&buf).Encode(sample()); err != nil {
		t.Fatal(err)
	}
	want := "class\tp/Impl\tpublic,final,partial\n" +
		"extends\tp/Base\n" +
		"implements\tjava/lang/Runnable\n" +
		"field\tcount\tI\tprivate\tstatic\n" +
		"method\trun\t()V\tpublic\t-\t-> execute\n" +
		"method\tget\t()Ljava/lang/Object;\tpublic\tbridge,synthetic\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	enc, err := New("json", &buf)
	if err != nil {
		t.Fatal(err)
	}
	if err := enc.Encode(sample()); err != nil {
		t.Fatal(err)
	}
	var got jsonClass
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Kind != "class" || got.SuperClass != "p/Base" {
		t.Errorf("class = %+v", got)
	}
	if len(got.Fields) != 1 || len(got.Methods) != 2 {
		t.Fatalf("fields %d, methods %d", len(got.Fields), len(got.Methods))
	}
	if got.Methods[0].RenamedTo != "execute" {
		t.Errorf("renamedTo = %q", got.Methods[0].RenamedTo)
	}
	if got.Methods[1].BridgeTarget != "get()Ljava/lang/String;" {
		t.Errorf("bridgeTarget = %q", got.Methods[1].BridgeTarget)
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := New("xml", &bytes.Buffer{}); err == nil {
		t.Error("expected an error")
	}
}

func TestClassKinds(t *testing.T) {
	tests := []struct {
		flags classfile.AccessFlags
		want  string
	}{
		{classfile.AccPublic, "class"},
		{classfile.AccInterface | classfile.AccAbstract, "interface"},
		{classfile.AccInterface | classfile.AccAbstract | classfile.AccAnnotation, "annotation"},
		{classfile.AccFinal | classfile.AccEnum, "enum"},
	}
	for _, tt := range tests {
		c := &Class{ClassDescriptor: hierarchy.ClassDescriptor{Flags: tt.flags}}
		if got := classKind(c); got != tt.want {
			t.Errorf("classKind(%#x) = %s, want %s", tt.flags, got, tt.want)
		}
	}
}

func TestWriteDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDiagnostics(&buf, []remap.Diagnostic{
		{Kind: remap.KindLibraryMember, Detail: "toString keeps its name"},
		{Class: "p/A", Kind: remap.KindUnresolvedMember, Severity: remap.SeverityError, Detail: "x/Y.z()V"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "warning\tLibraryMember\t-\ttoString keeps its name\n" +
		"error\tUnresolvedMember\tp/A\tx/Y.z()V\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
