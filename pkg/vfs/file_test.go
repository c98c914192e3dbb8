package vfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	p := NewMemoryProvider()
	require.NoError(t, p.WriteFile("/a.sav", nil, 0644))

	ok, err := Exists(p, "/a.sav")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(p, "/b.sav")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCopyFile_OverwritesDestination(t *testing.T) {
	p := NewMemoryProvider()
	require.NoError(t, p.WriteFile("/src.sav", []byte("short"), 0600))
	require.NoError(t, p.WriteFile("/dst.sav", []byte("much longer previous bytes"), 0644))

	n, err := CopyFile(p, "/src.sav", "/dst.sav")
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	data, err := p.ReadFile("/dst.sav")
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))
}

func TestCopyFile_MissingSource(t *testing.T) {
	p := NewMemoryProvider()
	_, err := CopyFile(p, "/missing.sav", "/dst.sav")
	require.ErrorIs(t, err, ErrOpenSource)

	ok, err := Exists(p, "/dst.sav")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCopyFile_SourceIsDirectory(t *testing.T) {
	p := NewMemoryProvider()
	require.NoError(t, p.Mkdir("/dir", 0755))
	_, err := CopyFile(p, "/dir", "/dst.sav")
	require.ErrorIs(t, err, ErrOpenSource)
}

func TestCopyFile_DestinationDirMissing(t *testing.T) {
	p := NewMemoryProvider()
	require.NoError(t, p.WriteFile("/src.sav", []byte("x"), 0644))
	_, err := CopyFile(p, "/src.sav", "/nope/dst.sav")
	require.ErrorIs(t, err, ErrOpenDest)
}

func TestReadWriteFile(t *testing.T) {
	p := NewMemoryProvider()
	require.NoError(t, WriteFile(p, "/a.sav", []byte("first"), 0644))
	require.NoError(t, WriteFile(p, "/a.sav", []byte("2"), 0644))

	data, err := ReadFile(p, "/a.sav")
	require.NoError(t, err)
	assert.Equal(t, "2", string(data))

	_, err = ReadFile(p, "/b.sav")
	require.ErrorIs(t, err, ErrReadFile)
}

func TestRequireDir(t *testing.T) {
	p := NewMemoryProvider()
	require.NoError(t, p.Mkdir("/root", 0755))
	require.NoError(t, p.WriteFile("/file", nil, 0644))

	require.NoError(t, RequireDir(p, "/root"))
	require.ErrorIs(t, RequireDir(p, "/file"), ErrNotDir)
	require.Error(t, RequireDir(p, "/missing"))
}
