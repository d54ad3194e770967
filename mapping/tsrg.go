package mapping

import (
	"io"
	"strings"
)

// ReadTSRG reads tsrg v1 or tsrg2 mappings. tsrg v1 has exactly two
// namespaces, so from and to are ignored for it, and no descriptors on
// fields: its field entries match any field type. Package lines ("a/ b/")
// become package entries.
func ReadTSRG(r io.Reader, from, to string) (*Table, error) {
	sc := newScanner(r)
	cs := &columnSet{format: "tsrg", namespaces: []string{"left", "right"}}
	v2 := false
	var owner string
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if line == 1 && strings.HasPrefix(text, "tsrg2 ") {
			cs.namespaces = strings.Fields(text)[1:]
			v2 = true
			continue
		}
		trimmed := strings.TrimLeft(text, "\t ")
		if trimmed == "" || trimmed[0] == '#' {
			continue
		}
		depth := len(text) - len(trimmed)
		if !v2 && depth > 0 {
			depth = 1
		}
		parts := strings.Fields(trimmed)
		n := len(cs.namespaces)

		switch depth {
		case 0:
			if len(parts) < n {
				return nil, &ParseError{Format: "tsrg", Line: line, Msg: "short class line"}
			}
			if strings.HasSuffix(parts[0], "/") {
				names := make([]string, n)
				for i, p := range parts[:n] {
					names[i] = strings.TrimSuffix(p, "/")
				}
				cs.packages = append(cs.packages, names)
				owner = ""
				continue
			}
			cs.classes = append(cs.classes, parts[:n])
			owner = parts[0]
		case 1:
			if owner == "" {
				return nil, &ParseError{Format: "tsrg", Line: line, Msg: "member outside of a class"}
			}
			row, ok := tsrgMember(parts, n)
			if !ok {
				return nil, &ParseError{Format: "tsrg", Line: line, Msg: "malformed member line"}
			}
			row.owner = owner
			cs.members = append(cs.members, row)
		}
		// deeper lines hold parameter names and the static marker
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !v2 {
		from, to = "", ""
	}
	return cs.table(from, to)
}

// tsrgMember reads "name desc name..." for methods and fields with types,
// or "name name..." for fields without.
func tsrgMember(parts []string, n int) (memberRow, bool) {
	switch {
	case len(parts) == n+1 && strings.HasPrefix(parts[1], "("):
		return memberRow{kind: KindMethod, desc: parts[1], names: append([]string{parts[0]}, parts[2:]...)}, true
	case len(parts) == n+1:
		return memberRow{kind: KindField, desc: parts[1], names: append([]string{parts[0]}, parts[2:]...)}, true
	case len(parts) == n:
		return memberRow{kind: KindField, names: parts}, true
	}
	return memberRow{}, false
}
