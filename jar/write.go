package jar

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/dhamidi/sabre/classfile"
)

const manifestName = "META-INF/MANIFEST.MF"

type file struct {
	name     string
	data     []byte
	modified time.Time
}

// files encodes the classes and orders everything by name, with the
// manifest first as jar readers expect.
func files(classes []*classfile.ClassFile, resources []Resource) ([]file, error) {
	out := make([]file, 0, len(classes)+len(resources))
	for _, cf := range classes {
		data, err := cf.Encode()
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", cf.ClassName(), err)
		}
		out = append(out, file{name: cf.ClassName() + ".class", data: data})
	}
	for _, r := range resources {
		out = append(out, file{name: r.Name, data: r.Data, modified: r.Modified})
	}
	slices.SortFunc(out, func(a, b file) int {
		switch {
		case a.name == b.name:
			return 0
		case a.name == manifestName:
			return -1
		case b.name == manifestName:
			return 1
		}
		return cmp.Compare(a.name, b.name)
	})
	return out, nil
}

// Write writes a jar holding classes and resources.
func Write(w io.Writer, classes []*classfile.ClassFile, resources []Resource) error {
	entries, err := files(classes, resources)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(w)
	for _, f := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.name,
			Method:   zip.Deflate,
			Modified: f.modified,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", f.name, err)
		}
		if _, err := fw.Write(f.data); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	return zw.Close()
}

// WriteDir writes classes and resources as files below dir.
func WriteDir(dir string, classes []*classfile.ClassFile, resources []Resource) error {
	entries, err := files(classes, resources)
	if err != nil {
		return err
	}
	for _, f := range entries {
		target := filepath.Join(dir, filepath.FromSlash(f.name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, f.data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// Create writes a jar when name ends in .jar or .zip and a directory
// otherwise.
func Create(name string, classes []*classfile.ClassFile, resources []Resource) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jar", ".zip":
	default:
		return WriteDir(name, classes, resources)
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := Write(f, classes, resources); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
