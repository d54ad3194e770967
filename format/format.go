// Package format prints hierarchy classes and remap diagnostics for the
// command line.
package format

import (
	"encoding"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/sabre/classfile"
	"github.com/dhamidi/sabre/hierarchy"
)

// Class is a class as the index sees it.
type Class struct {
	hierarchy.ClassDescriptor
	Partial bool
	Opaque  bool
	// Renamed holds new member names by member index.
	Renamed map[int]string
}

type Encoder interface {
	encoding.TextMarshaler
	Encode(class *Class) error
}

// New returns the encoder for name, either "line" or "json".
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "", "line":
		return NewLineEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format: %s (expected line or json)", name)
}

func classKind(c *Class) string {
	switch {
	case c.Flags.IsAnnotation():
		return "annotation"
	case c.Flags.IsInterface():
		return "interface"
	case c.Flags.IsEnum():
		return "enum"
	case c.Flags.IsModule():
		return "module"
	default:
		return "class"
	}
}

func visibility(f classfile.AccessFlags) string {
	switch {
	case f.IsPublic():
		return "public"
	case f.IsProtected():
		return "protected"
	case f.IsPrivate():
		return "private"
	}
	return "package"
}

func classModifiers(c *Class) []string {
	var mods []string
	if c.Flags.IsFinal() {
		mods = append(mods, "final")
	}
	if c.Flags.IsAbstract() && !c.Flags.IsInterface() {
		mods = append(mods, "abstract")
	}
	if c.Flags.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	if c.Partial {
		mods = append(mods, "partial")
	}
	if c.Opaque {
		mods = append(mods, "opaque")
	}
	return mods
}

func memberModifiers(m *hierarchy.Member) []string {
	var mods []string
	f := m.Flags
	if f.IsStatic() {
		mods = append(mods, "static")
	}
	if f.IsFinal() {
		mods = append(mods, "final")
	}
	if m.Kind == hierarchy.MethodMember {
		if f.IsAbstract() {
			mods = append(mods, "abstract")
		}
		if f.IsBridge() {
			mods = append(mods, "bridge")
		}
		if f.IsNative() {
			mods = append(mods, "native")
		}
	} else if f.IsEnum() {
		mods = append(mods, "enum")
	}
	if f.IsSynthetic() {
		mods = append(mods, "synthetic")
	}
	return mods
}

func joinOrDash(mods []string) string {
	if len(mods) == 0 {
		return "-"
	}
	return strings.Join(mods, ",")
}
