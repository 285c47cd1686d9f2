package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/nehe/engine/core"
)

func writeFile(t *testing.T, root, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestKindOf(t *testing.T) {
	tests := map[string]Kind{
		"Data/Crate.bmp":           KindImage,
		"Data/NeHe.PNG":            KindImage,
		"Data/Font.fnt":            KindFont,
		"Shaders/lesson2.vert.spv": KindShader,
		"README":                   KindNone,
	}
	for name, want := range tests {
		assert.Equal(t, want, KindOf(name), name)
	}
}

func TestIndexResolve(t *testing.T) {
	root := t.TempDir()
	crate := writeFile(t, root, "Data/Crate.bmp", []byte("BM"))
	writeFile(t, root, "Data/Font.fnt", []byte("info"))
	writeFile(t, root, "notes.txt", []byte("x"))

	ix, err := NewIndex(root)
	require.NoError(t, err)
	defer ix.Close()

	assert.Equal(t, 3, ix.Len())
	path, err := ix.Resolve("Data/Crate.bmp")
	require.NoError(t, err)
	assert.Equal(t, crate, path)

	path, err = ix.Resolve("./Data/../Data/Crate.bmp")
	require.NoError(t, err)
	assert.Equal(t, crate, path)

	_, err = ix.Resolve("Data/Missing.bmp")
	var ioErr *core.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	e, ok := ix.Lookup("Data/Crate.bmp")
	require.True(t, ok)
	assert.Equal(t, KindImage, e.Kind)
	assert.Equal(t, int64(2), e.Size)

	images := ix.Entries(KindImage)
	require.Len(t, images, 1)
	assert.Equal(t, "Data/Crate.bmp", images[0].Name)
	all := ix.Entries(KindNone)
	assert.Equal(t, []string{"Data/Crate.bmp", "Data/Font.fnt", "notes.txt"},
		[]string{all[0].Name, all[1].Name, all[2].Name})
}

func TestIndexFollowsChanges(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Data/Old.bmp", []byte("BM"))

	ix, err := NewIndex(root)
	require.NoError(t, err)
	defer ix.Close()

	writeFile(t, root, "Data/New.bmp", []byte("BM"))
	assert.Eventually(t, func() bool {
		_, ok := ix.Lookup("Data/New.bmp")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	// Files created inside a new directory are found whether they land
	// before or after the directory is watched.
	writeFile(t, root, "Extra/Star.bmp", []byte("BM"))
	assert.Eventually(t, func() bool {
		_, ok := ix.Lookup("Extra/Star.bmp")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(root, "Data", "Old.bmp")))
	assert.Eventually(t, func() bool {
		_, ok := ix.Lookup("Data/Old.bmp")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestIndexClose(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.png", []byte{1})
	ix, err := NewIndex(root)
	require.NoError(t, err)

	require.NoError(t, ix.Close())
	require.NoError(t, ix.Close())
	_, err = ix.Resolve("a.png")
	assert.NoError(t, err)
}

func TestIndexRootErrors(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "file.bmp", []byte("BM"))

	_, err := NewIndex(filepath.Join(root, "missing"))
	var ioErr *core.IOError
	assert.ErrorAs(t, err, &ioErr)

	_, err = NewIndex(file)
	assert.ErrorAs(t, err, &ioErr)
}
