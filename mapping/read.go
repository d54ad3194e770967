package mapping

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatAuto   Format = "auto"
	FormatTiny   Format = "tiny"
	FormatTSRG   Format = "tsrg"
	FormatEnigma Format = "enigma"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatTiny, FormatTSRG, FormatEnigma:
		return f, nil
	}
	return "", fmt.Errorf("unknown mapping format %q", s)
}

// ReadFile reads mappings from a file, or from a directory of Enigma files.
// With FormatAuto the format is taken from the extension or the first line.
func ReadFile(path string, format Format, from, to string) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		if format != FormatAuto && format != FormatEnigma {
			return nil, fmt.Errorf("%s: directories hold enigma mappings, not %s", path, format)
		}
		return ReadEnigmaDir(os.DirFS(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	br := bufio.NewReader(f)
	if format == FormatAuto {
		head, _ := br.Peek(64)
		format = sniff(filepath.Ext(path), head)
	}

	var t *Table
	switch format {
	case FormatTiny:
		t, err = ReadTiny(br, from, to)
	case FormatTSRG:
		t, err = ReadTSRG(br, from, to)
	case FormatEnigma:
		t, err = ReadEnigma(br)
	default:
		return nil, fmt.Errorf("unknown mapping format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func sniff(ext string, head []byte) Format {
	switch strings.ToLower(ext) {
	case ".tiny":
		return FormatTiny
	case ".tsrg", ".srg":
		return FormatTSRG
	case ".mapping", ".mappings":
		return FormatEnigma
	}
	switch {
	case bytes.HasPrefix(head, []byte("v1\t")), bytes.HasPrefix(head, []byte("tiny\t")):
		return FormatTiny
	case bytes.HasPrefix(head, []byte("CLASS ")):
		return FormatEnigma
	}
	return FormatTSRG
}
