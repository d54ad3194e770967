package mapping

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"
)

// ReadEnigma reads a single Enigma mapping file.
func ReadEnigma(r io.Reader) (*Table, error) {
	b := NewBuilder()
	if err := readEnigmaInto(b, r, "enigma"); err != nil {
		return nil, err
	}
	return b.Build()
}

// ReadEnigmaDir reads every *.mapping file below the root of fsys.
func ReadEnigmaDir(fsys fs.FS) (*Table, error) {
	b := NewBuilder()
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".mapping" {
			return nil
		}
		f, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()
		return readEnigmaInto(b, f, p)
	})
	if err != nil {
		return nil, err
	}
	return b.Build()
}

type enigmaClass struct {
	from string
	to   string
}

func readEnigmaInto(b *Builder, r io.Reader, name string) error {
	sc := newScanner(r)
	// stack[d] is the class declared at indentation d
	var stack []enigmaClass
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		trimmed := strings.TrimLeft(text, "\t")
		depth := len(text) - len(trimmed)
		if i := strings.Index(trimmed, "#"); i >= 0 {
			trimmed = trimmed[:i]
		}
		parts := strings.Fields(trimmed)
		if len(parts) == 0 {
			continue
		}
		parts = dropAccessModifiers(parts)
		fail := func(msg string) error {
			return &ParseError{Format: "enigma " + name, Line: line, Msg: msg}
		}

		switch parts[0] {
		case "CLASS":
			if len(parts) < 2 || depth > len(stack) {
				return fail("malformed CLASS line")
			}
			stack = stack[:depth]
			c := enigmaClass{from: parts[1], to: parts[1]}
			if len(parts) >= 3 {
				c.to = parts[2]
			}
			if depth > 0 {
				outer := stack[depth-1]
				c.from = outer.from + "$" + c.from
				c.to = outer.to + "$" + c.to
			}
			stack = append(stack, c)
			if c.from != c.to {
				b.AddClass(c.from, c.to)
			}
		case "FIELD", "METHOD":
			if depth == 0 || depth > len(stack) {
				return fail(parts[0] + " outside of a class")
			}
			owner := stack[depth-1].from
			// "FIELD a desc" and "METHOD a desc" declare without renaming
			if len(parts) < 4 || strings.HasPrefix(parts[1], "<") {
				continue
			}
			if parts[0] == "FIELD" {
				b.AddField(owner, parts[1], parts[3], parts[2])
			} else {
				b.AddMethod(owner, parts[1], parts[3], parts[2])
			}
		case "ARG", "COMMENT":
		default:
			if depth == 0 {
				return fail(fmt.Sprintf("unknown line %q", parts[0]))
			}
		}
	}
	return sc.Err()
}

func dropAccessModifiers(parts []string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if !strings.HasPrefix(p, "ACC:") {
			out = append(out, p)
		}
	}
	return out
}
