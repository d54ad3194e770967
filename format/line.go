package format

import (
	"cmp"
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/sabre/remap"
)

type LineEncoder struct {
	w     io.Writer
	class *Class
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(class *Class) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	c := e.class

	mods := append([]string{visibility(c.Flags)}, classModifiers(c)...)
	fmt.Fprintf(&sb, "%s\t%s\t%s\n", classKind(c), c.Name, strings.Join(mods, ","))
	if c.Super != "" {
		fmt.Fprintf(&sb, "extends\t%s\n", c.Super)
	}
	for _, iface := range c.Interfaces {
		fmt.Fprintf(&sb, "implements\t%s\n", iface)
	}

	for i := range c.Members {
		m := &c.Members[i]
		fmt.Fprintf(&sb, "%s\t%s\t%s\t%s\t%s",
			m.Kind,
			m.Name,
			m.Descriptor,
			visibility(m.Flags),
			joinOrDash(memberModifiers(m)),
		)
		if to, ok := c.Renamed[i]; ok {
			fmt.Fprintf(&sb, "\t-> %s", to)
		}
		sb.WriteByte('\n')
	}

	return []byte(sb.String()), nil
}

// WriteDiagnostics prints one diagnostic per line.
func WriteDiagnostics(w io.Writer, diags []remap.Diagnostic) error {
	for _, d := range diags {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Severity, d.Kind, cmp.Or(d.Class, "-"), d.Detail); err != nil {
			return err
		}
	}
	return nil
}
