// Package jar reads and writes the containers classes travel in: jar and
// zip archives, class directories and single class files.
package jar

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/dhamidi/sabre/classfile"
)

const versionsPrefix = "META-INF/versions/"

// Resource is a non-class entry, carried through a remap as is.
type Resource struct {
	Name     string
	Data     []byte
	Modified time.Time
}

// Archive is the decoded content of one or more inputs. Classes below
// META-INF/versions/ are kept as resources, so every class name appears at
// most once.
type Archive struct {
	Classes   []*classfile.ClassFile
	Resources []Resource
}

// Merge appends the content of other.
func (a *Archive) Merge(other *Archive) {
	a.Classes = append(a.Classes, other.Classes...)
	a.Resources = append(a.Resources, other.Resources...)
}

// Open reads a jar or zip archive, a directory tree or a single class file.
func Open(name string) (*Archive, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return ReadFS(os.DirFS(name))
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".class":
		cf, err := classfile.ParseFile(name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		return &Archive{Classes: []*classfile.ClassFile{cf}}, nil
	case ".jar", ".zip":
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		a, err := Read(f, info.Size())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return a, nil
	}
	return nil, fmt.Errorf("%s: not a jar, zip, class file or directory", name)
}

// OpenAll opens every input and merges them in order.
func OpenAll(names ...string) (*Archive, error) {
	all := &Archive{}
	for _, name := range names {
		a, err := Open(name)
		if err != nil {
			return nil, err
		}
		all.Merge(a)
	}
	return all, nil
}

// Read decodes a zip archive.
func Read(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	a := &Archive{}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		if err := a.add(f.Name, data, f.Modified); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// ReadBytes decodes a zip archive held in memory.
func ReadBytes(data []byte) (*Archive, error) {
	return Read(bytes.NewReader(data), int64(len(data)))
}

// ReadFS decodes every file below the root of fsys.
func ReadFS(fsys fs.FS) (*Archive, error) {
	a := &Archive{}
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		var modified time.Time
		if info, err := d.Info(); err == nil {
			modified = info.ModTime()
		}
		return a.add(name, data, modified)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) add(name string, data []byte, modified time.Time) error {
	if path.Ext(name) != ".class" || strings.HasPrefix(name, versionsPrefix) {
		a.Resources = append(a.Resources, Resource{Name: name, Data: data, Modified: modified})
		return nil
	}
	cf, err := classfile.ParseBytes(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	a.Classes = append(a.Classes, cf)
	return nil
}
