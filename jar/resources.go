package jar

import (
	"bufio"
	"bytes"
	"path"
	"strings"

	"github.com/dhamidi/sabre/mapping"
)

const servicesPrefix = "META-INF/services/"

// manifest attributes holding a binary class name
var classAttributes = map[string]bool{
	"Main-Class":           true,
	"Premain-Class":        true,
	"Agent-Class":          true,
	"Launcher-Agent-Class": true,
}

// MapResources adjusts the resources that name classes to a remapped jar.
// Signature files and manifest digests no longer match the rewritten
// classes and are dropped; class names in the manifest and in service
// provider files are mapped.
func MapResources(resources []Resource, table *mapping.Table) []Resource {
	out := make([]Resource, 0, len(resources))
	for _, r := range resources {
		switch {
		case isSignatureFile(r.Name):
			continue
		case r.Name == manifestName:
			r.Data = mapManifest(r.Data, table)
		case strings.HasPrefix(r.Name, servicesPrefix) && !strings.Contains(r.Name[len(servicesPrefix):], "/"):
			r.Name = servicesPrefix + binaryName(table, r.Name[len(servicesPrefix):])
			r.Data = mapServices(r.Data, table)
		}
		out = append(out, r)
	}
	return out
}

func isSignatureFile(name string) bool {
	dir, base := path.Split(name)
	if dir != "META-INF/" {
		return false
	}
	if strings.HasPrefix(base, "SIG-") {
		return true
	}
	switch path.Ext(base) {
	case ".SF", ".RSA", ".DSA", ".EC":
		return true
	}
	return false
}

// binaryName maps a dotted class name.
func binaryName(table *mapping.Table, name string) string {
	internal := strings.ReplaceAll(name, ".", "/")
	return strings.ReplaceAll(table.Class(internal), "/", ".")
}

func mapServices(data []byte, table *mapping.Table) []byte {
	var buf bytes.Buffer
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := sc.Text()
		provider, comment, _ := strings.Cut(line, "#")
		if name := strings.TrimSpace(provider); name != "" {
			line = binaryName(table, name)
			if comment != "" {
				line += " #" + comment
			}
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

type attribute struct{ key, value string }

// parseManifest splits a manifest into sections of attributes, joining
// continuation lines.
func parseManifest(data []byte) [][]attribute {
	var sections [][]attribute
	var cur []attribute
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		switch {
		case line == "":
			if cur != nil {
				sections = append(sections, cur)
				cur = nil
			}
		case line[0] == ' ' && len(cur) > 0:
			cur[len(cur)-1].value += line[1:]
		default:
			key, value, _ := strings.Cut(line, ":")
			cur = append(cur, attribute{key: key, value: strings.TrimPrefix(value, " ")})
		}
	}
	if cur != nil {
		sections = append(sections, cur)
	}
	return sections
}

func mapManifest(data []byte, table *mapping.Table) []byte {
	sections := parseManifest(data)
	var buf bytes.Buffer
	for i, attrs := range sections {
		kept := attrs[:0]
		for _, a := range attrs {
			if strings.HasSuffix(a.key, "-Digest") {
				continue
			}
			if i == 0 && classAttributes[a.key] {
				a.value = binaryName(table, a.value)
			}
			kept = append(kept, a)
		}
		// an entry section with only its Name left carried digests
		if i > 0 && len(kept) == 1 && kept[0].key == "Name" {
			continue
		}
		for _, a := range kept {
			writeManifestLine(&buf, a.key+": "+a.value)
		}
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

// writeManifestLine wraps at 72 bytes with continuation lines.
func writeManifestLine(buf *bytes.Buffer, line string) {
	width := 72
	for len(line) > width {
		buf.WriteString(line[:width])
		buf.WriteString("\r\n ")
		line = line[width:]
		width = 71
	}
	buf.WriteString(line)
	buf.WriteString("\r\n")
}
