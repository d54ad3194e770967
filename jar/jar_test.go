package jar_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/sabre/classfile"
	"github.com/dhamidi/sabre/classfile/classtest"
	"github.com/dhamidi/sabre/hierarchy"
	"github.com/dhamidi/sabre/jar"
	"github.com/dhamidi/sabre/mapping"
)

func classes() []*classfile.ClassFile {
	a := classtest.New("p/A", hierarchy.ObjectClass)
	a.Method(classfile.AccPublic, "run", "()V")
	b := classtest.New("p/sub/B", "p/A")
	return []*classfile.ClassFile{a.Build(), b.Build()}
}

func names(a *jar.Archive) []string {
	var out []string
	for _, cf := range a.Classes {
		out = append(out, cf.ClassName())
	}
	for _, r := range a.Resources {
		out = append(out, r.Name)
	}
	return out
}

func TestWriteAndRead(t *testing.T) {
	resources := []jar.Resource{
		{Name: "config/app.properties", Data: []byte("a=b\n")},
		{Name: "META-INF/MANIFEST.MF", Data: []byte("Manifest-Version: 1.0\r\n\r\n")},
	}
	var buf bytes.Buffer
	require.NoError(t, jar.Write(&buf, classes(), resources))

	a, err := jar.ReadBytes(buf.Bytes())
	require.NoError(t, err)
	// the manifest is written first, the rest in name order
	assert.Equal(t, []string{"p/A", "p/sub/B", "META-INF/MANIFEST.MF", "config/app.properties"}, names(a))
	assert.Equal(t, "p/A", a.Classes[1].SuperClassName())
	assert.Equal(t, "a=b\n", string(a.Resources[1].Data))
}

func TestVersionedClassesAreResources(t *testing.T) {
	data, err := classes()[0].Encode()
	require.NoError(t, err)
	fsys := fstest.MapFS{
		"p/A.class":                        {Data: data},
		"META-INF/versions/11/p/A.class":   {Data: data},
		"META-INF/services/p.spi.Provider": {Data: []byte("p.A\n")},
	}
	a, err := jar.ReadFS(fsys)
	require.NoError(t, err)
	require.Len(t, a.Classes, 1)
	assert.Equal(t, "p/A", a.Classes[0].ClassName())
	assert.ElementsMatch(t, []string{"META-INF/versions/11/p/A.class", "META-INF/services/p.spi.Provider"},
		names(a)[1:])
}

func TestReadRejectsBrokenClasses(t *testing.T) {
	_, err := jar.ReadFS(fstest.MapFS{"p/A.class": {Data: []byte{0xca, 0xfe}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p/A.class")
}

func TestCreateDirectoryAndOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, jar.Create(dir, classes(), []jar.Resource{{Name: "x.txt", Data: []byte("x")}}))

	_, err := os.Stat(filepath.Join(dir, "p", "sub", "B.class"))
	require.NoError(t, err)

	a, err := jar.Open(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p/A", "p/sub/B", "x.txt"}, names(a))

	single, err := jar.Open(filepath.Join(dir, "p", "A.class"))
	require.NoError(t, err)
	assert.Equal(t, []string{"p/A"}, names(single))
}

func TestCreateJarAndOpenAll(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.jar")
	require.NoError(t, jar.Create(first, classes()[:1], nil))
	second := filepath.Join(dir, "second.zip")
	require.NoError(t, jar.Create(second, classes()[1:], nil))

	a, err := jar.OpenAll(first, second)
	require.NoError(t, err)
	assert.Equal(t, []string{"p/A", "p/sub/B"}, names(a))

	_, err = jar.Open(filepath.Join(dir, "missing.jar"))
	assert.Error(t, err)
}

func TestMapResources(t *testing.T) {
	b := mapping.NewBuilder()
	b.AddClass("p/Main", "q/Entry")
	b.AddClass("p/spi/Provider", "q/spi/Service")
	b.AddClass("p/Impl", "q/ServiceImpl")
	tbl, err := b.Build()
	require.NoError(t, err)

	manifest := "Manifest-Version: 1.0\r\n" +
		"Main-Class: p.Main\r\n" +
		"Implementation-Title: demo\r\n" +
		"\r\n" +
		"Name: p/Main.class\r\n" +
		"SHA-256-Digest: abc=\r\n" +
		"\r\n" +
		"Name: p/Impl.class\r\n" +
		"Sealed: true\r\n" +
		"SHA-256-Digest: def=\r\n" +
		"\r\n"
	resources := []jar.Resource{
		{Name: "META-INF/MANIFEST.MF", Data: []byte(manifest)},
		{Name: "META-INF/SIGNER.SF", Data: []byte("sig")},
		{Name: "META-INF/SIGNER.RSA", Data: []byte("sig")},
		{Name: "META-INF/services/p.spi.Provider", Data: []byte("# providers\np.Impl # default\n")},
		{Name: "assets/p.spi.Provider", Data: []byte("p.Impl\n")},
	}

	out := jar.MapResources(resources, tbl)
	require.Len(t, out, 3)

	assert.Equal(t, "Manifest-Version: 1.0\r\n"+
		"Main-Class: q.Entry\r\n"+
		"Implementation-Title: demo\r\n"+
		"\r\n"+
		"Name: p/Impl.class\r\n"+
		"Sealed: true\r\n"+
		"\r\n", string(out[0].Data))

	assert.Equal(t, "META-INF/services/q.spi.Service", out[1].Name)
	assert.Equal(t, "# providers\nq.ServiceImpl # default\n", string(out[1].Data))

	assert.Equal(t, "assets/p.spi.Provider", out[2].Name)
	assert.Equal(t, "p.Impl\n", string(out[2].Data))
}

func TestLongManifestValuesWrap(t *testing.T) {
	b := mapping.NewBuilder()
	long := "p/" + strings.Repeat("x", 100)
	b.AddClass("p/Main", long)
	tbl, err := b.Build()
	require.NoError(t, err)

	out := jar.MapResources([]jar.Resource{{Name: "META-INF/MANIFEST.MF", Data: []byte("Main-Class: p.Main\r\n\r\n")}}, tbl)
	lines := strings.Split(strings.TrimSuffix(string(out[0].Data), "\r\n\r\n"), "\r\n")
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], 72)
	assert.True(t, strings.HasPrefix(lines[1], " "))
	assert.Equal(t, "Main-Class: "+strings.ReplaceAll(long, "/", "."), lines[0]+lines[1][1:])
}
