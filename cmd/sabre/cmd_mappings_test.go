package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/sabre/mapping"
)

func TestWriteTinyFile(t *testing.T) {
	tbl, err := mapping.NewBuilder().
		AddClass("a/A", "x/Alpha").
		AddMethod("a/A", "run", "()V", "execute").
		Build()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.tiny")
	require.NoError(t, writeTiny(path, tbl, "named", "obf"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1\tnamed\tobf\n", string(data[:len("v1\tnamed\tobf\n")]))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	back, err := mapping.ReadTiny(f, "named", "obf")
	require.NoError(t, err)
	assert.Equal(t, "x/Alpha", back.Class("a/A"))
}

func TestWriteTinyReportsCreateErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.tiny")
	assert.Error(t, writeTiny(path, mapping.Empty(), "named", "obf"))
}

func TestWriteTinyReportsWriteErrors(t *testing.T) {
	tbl, err := mapping.NewBuilder().AddField("a/A", "count", "", "n").Build()
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "out.tiny")
	assert.ErrorContains(t, writeTiny(path, tbl, "named", "obf"), "no descriptor")
}
