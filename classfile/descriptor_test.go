package classfile

import (
	"errors"
	"testing"
)

func TestParseFieldDescriptor(t *testing.T) {
	tests := []struct {
		desc       string
		baseType   string
		className  string
		arrayDepth int
	}{
		{"I", "int", "", 0},
		{"Z", "boolean", "", 0},
		{"Ljava/lang/String;", "", "java/lang/String", 0},
		{"[I", "int", "", 1},
		{"[[D", "double", "", 2},
		{"[Ljava/lang/Object;", "", "java/lang/Object", 1},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			ft, err := ParseFieldDescriptor(tt.desc)
			if err != nil {
				t.Fatalf("ParseFieldDescriptor(%q) error: %v", tt.desc, err)
			}
			if ft.BaseType != tt.baseType {
				t.Errorf("BaseType = %q, want %q", ft.BaseType, tt.baseType)
			}
			if ft.ClassName != tt.className {
				t.Errorf("ClassName = %q, want %q", ft.ClassName, tt.className)
			}
			if ft.ArrayDepth != tt.arrayDepth {
				t.Errorf("ArrayDepth = %d, want %d", ft.ArrayDepth, tt.arrayDepth)
			}
			if got := ft.Descriptor(); got != tt.desc {
				t.Errorf("Descriptor() = %q, want %q", got, tt.desc)
			}
		})
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	tests := []struct {
		desc       string
		params     int
		returnType string
		source     string
	}{
		{"()V", 0, "", "() void"},
		{"(I)I", 1, "int", "(int) int"},
		{"(Ljava/lang/String;[IJ)Ljava/lang/Object;", 3, "java.lang.Object", "(java.lang.String, int[], long) java.lang.Object"},
		{"([[Lpkg/A;)[Lpkg/B;", 1, "pkg.B[]", "(pkg.A[][]) pkg.B[]"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			md, err := ParseMethodDescriptor(tt.desc)
			if err != nil {
				t.Fatalf("ParseMethodDescriptor(%q) error: %v", tt.desc, err)
			}
			if len(md.Parameters) != tt.params {
				t.Errorf("len(Parameters) = %d, want %d", len(md.Parameters), tt.params)
			}
			if tt.returnType == "" && md.ReturnType != nil {
				t.Errorf("ReturnType = %v, want void", md.ReturnType)
			}
			if tt.returnType != "" && (md.ReturnType == nil || md.ReturnType.String() != tt.returnType) {
				t.Errorf("ReturnType = %v, want %s", md.ReturnType, tt.returnType)
			}
			if got := md.String(); got != tt.source {
				t.Errorf("String() = %q, want %q", got, tt.source)
			}
			if got := md.Descriptor(); got != tt.desc {
				t.Errorf("Descriptor() = %q, want %q", got, tt.desc)
			}
		})
	}
}

func TestMalformedDescriptors(t *testing.T) {
	deep := "["
	for i := 0; i < 256; i++ {
		deep += "["
	}
	tests := []struct {
		name   string
		desc   string
		method bool
	}{
		{"empty", "", false},
		{"unknown code", "X", false},
		{"missing semicolon", "Ljava/lang/String", false},
		{"array without element", "[[", false},
		{"empty class name", "L;", false},
		{"trailing", "II", false},
		{"dotted name", "Ljava.lang.String;", false},
		{"too deep", deep + "I", false},
		{"void parameter", "(V)V", true},
		{"void field", "V", false},
		{"missing paren", "(I", true},
		{"no return", "()", true},
		{"trailing after return", "()VV", true},
		{"not a method", "I", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.method {
				_, err = ParseMethodDescriptor(tt.desc)
			} else {
				_, err = ParseFieldDescriptor(tt.desc)
			}
			if !errors.Is(err, ErrMalformedDescriptor) {
				t.Fatalf("error = %v, want ErrMalformedDescriptor", err)
			}
			var de *DescriptorError
			if !errors.As(err, &de) {
				t.Fatalf("error %T is not a *DescriptorError", err)
			}
			if de.Input != tt.desc {
				t.Errorf("Input = %q, want %q", de.Input, tt.desc)
			}
		})
	}
}

func TestSourceNames(t *testing.T) {
	if got := InternalToSourceName("java/util/Map$Entry"); got != "java.util.Map$Entry" {
		t.Errorf("InternalToSourceName = %q", got)
	}
	if got := SourceToInternalName("java.util.List"); got != "java/util/List" {
		t.Errorf("SourceToInternalName = %q", got)
	}
}
