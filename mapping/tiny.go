package mapping

import (
	"bufio"
	"io"
	"strings"
)

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return sc
}

// ReadTiny reads tiny v1 or tiny v2 mappings and projects them onto the
// from and to namespaces. Empty namespaces select the first two columns.
func ReadTiny(r io.Reader, from, to string) (*Table, error) {
	cs, err := readTinyColumns(r)
	if err != nil {
		return nil, err
	}
	return cs.table(from, to)
}

func readTinyColumns(r io.Reader) (*columnSet, error) {
	sc := newScanner(r)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, &ParseError{Format: "tiny", Line: 1, Msg: "missing header"}
	}
	header := strings.Split(sc.Text(), "\t")
	switch {
	case len(header) >= 3 && header[0] == "v1":
		return readTinyV1(sc, header[1:])
	case len(header) >= 5 && header[0] == "tiny" && header[1] == "2":
		return readTinyV2(sc, header[3:])
	}
	return nil, &ParseError{Format: "tiny", Line: 1, Msg: "unknown header " + sc.Text()}
}

func readTinyV1(sc *bufio.Scanner, namespaces []string) (*columnSet, error) {
	cs := &columnSet{format: "tiny", namespaces: namespaces}
	n := len(namespaces)
	line := 1
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" || text[0] == '#' {
			continue
		}
		parts := strings.Split(text, "\t")
		switch parts[0] {
		case "CLASS":
			if len(parts) < 1+n {
				return nil, &ParseError{Format: "tiny", Line: line, Msg: "short CLASS line"}
			}
			cs.classes = append(cs.classes, parts[1:1+n])
		case "FIELD", "METHOD":
			if len(parts) < 3+n {
				return nil, &ParseError{Format: "tiny", Line: line, Msg: "short " + parts[0] + " line"}
			}
			kind := KindField
			if parts[0] == "METHOD" {
				kind = KindMethod
			}
			cs.members = append(cs.members, memberRow{kind: kind, owner: parts[1], desc: parts[2], names: parts[3 : 3+n]})
		default:
			return nil, &ParseError{Format: "tiny", Line: line, Msg: "unknown line kind " + parts[0]}
		}
	}
	return cs, sc.Err()
}

func readTinyV2(sc *bufio.Scanner, namespaces []string) (*columnSet, error) {
	cs := &columnSet{format: "tiny", namespaces: namespaces}
	n := len(namespaces)
	escaped := false
	var owner string
	inClass := false
	line := 1
	for sc.Scan() {
		line++
		text := sc.Text()
		depth := 0
		for depth < len(text) && text[depth] == '\t' {
			depth++
		}
		parts := strings.Split(text[depth:], "\t")
		if escaped {
			for i := range parts {
				parts[i] = unescapeTiny(parts[i])
			}
		}
		switch {
		case depth == 0 && parts[0] == "c":
			if len(parts) < 1+n {
				return nil, &ParseError{Format: "tiny", Line: line, Msg: "short class line"}
			}
			cs.classes = append(cs.classes, parts[1:1+n])
			owner = parts[1]
			inClass = true
		case depth == 1 && !inClass:
			if parts[0] == "escaped-names" {
				escaped = true
			}
		case depth == 1 && (parts[0] == "f" || parts[0] == "m"):
			if len(parts) < 2+n {
				return nil, &ParseError{Format: "tiny", Line: line, Msg: "short member line"}
			}
			kind := KindField
			if parts[0] == "m" {
				kind = KindMethod
			}
			cs.members = append(cs.members, memberRow{kind: kind, owner: owner, desc: parts[1], names: parts[2 : 2+n]})
		case depth == 0 && text != "":
			return nil, &ParseError{Format: "tiny", Line: line, Msg: "unknown line kind " + parts[0]}
		}
		// parameters, locals and comments carry no symbol mappings
	}
	return cs, sc.Err()
}

var tinyEscapes = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\r`, "\r", `\t`, "\t", `\0`, "\x00")

func unescapeTiny(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	return tinyEscapes.Replace(s)
}
