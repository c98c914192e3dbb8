package allowlist

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/savemirror/pkg/vfs"
)

func TestParse_CommentStripping(t *testing.T) {
	tests := []struct {
		name string
		text string
		want List
	}{
		{"entry with trailing comment", "  foo.sav   # comment", List{"foo.sav"}},
		{"fully commented", "# foo.sav", nil},
		{"blank line", "", nil},
		{"whitespace only", " \t ", nil},
		{"comment marker without space", "foo.sav#bar", List{"foo.sav"}},
		{"crlf endings", "a.sav\r\nb.sav\r\n", List{"a.sav", "b.sav"}},
		{"bare cr endings", "a.sav\rb.sav", List{"a.sav", "b.sav"}},
		{"duplicates kept", "a.sav\na.sav", List{"a.sav", "a.sav"}},
		{"order preserved", "z.sav\na.sav\nm.sav", List{"z.sav", "a.sav", "m.sav"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text))
		})
	}
}

func TestParse_Idempotent(t *testing.T) {
	text := "bf3game01.sav # quick\r\n\n  bf3game01.tmb\n# bf3game02.sav\n"
	assert.Equal(t, Parse(text), Parse(text))
}

func TestParse_DefaultTemplateIsEmpty(t *testing.T) {
	assert.Empty(t, Parse(DefaultTemplate))
}

func TestList_Contains(t *testing.T) {
	list := List{"game01.sav", "bf3system00.sav"}

	assert.True(t, list.Contains("save:/game01.sav"))
	assert.True(t, list.Contains("save:/bf3game01.sav"), "substring match is intended")
	assert.True(t, list.Contains("save:/sub/dir/bf3system00.sav"))
	assert.False(t, list.Contains("save:/game01.tmb"))
	assert.False(t, List(nil).Contains("save:/game01.sav"))
}

func TestStore_LoadCreatesDefaultTemplate(t *testing.T) {
	fs := vfs.NewMemoryProvider()
	require.NoError(t, fs.Mkdir("/xc3-saves", 0755))

	var logs bytes.Buffer
	store := &Store{FS: fs, Path: "/xc3-saves/allow-list.txt", Logger: slog.New(slog.NewTextHandler(&logs, nil))}

	list, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	data, err := fs.ReadFile("/xc3-saves/allow-list.txt")
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplate, string(data))
	assert.Contains(t, logs.String(), "creating default")
}

func TestStore_LoadParsesExisting(t *testing.T) {
	fs := vfs.NewMemoryProvider()
	require.NoError(t, fs.WriteFile("/xc3-saves/allow-list.txt", []byte("bf3game01.sav # quick\nbf3game01.tmb\n"), 0644))

	var logs bytes.Buffer
	store := &Store{FS: fs, Path: "/xc3-saves/allow-list.txt", Logger: slog.New(slog.NewTextHandler(&logs, nil))}

	list, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, List{"bf3game01.sav", "bf3game01.tmb"}, list)
	assert.Contains(t, logs.String(), "entry=bf3game01.sav")
	assert.Contains(t, logs.String(), "entry=bf3game01.tmb")
}

func TestStore_LoadFailsWhenTemplateUnwritable(t *testing.T) {
	fs := vfs.NewMemoryProvider()
	store := &Store{FS: fs, Path: "/missing-dir/allow-list.txt"}

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrCreateDefault)
}

type failingStat struct {
	vfs.Provider
}

func (failingStat) Stat(string) (vfs.FileInfo, error) {
	return vfs.FileInfo{}, os.ErrPermission
}

func TestStore_LoadFailsOnStatError(t *testing.T) {
	store := &Store{FS: failingStat{vfs.NewMemoryProvider()}, Path: "/allow-list.txt"}

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrStatAllowList)
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestStore_LoadFailsWhenUnreadable(t *testing.T) {
	fs := vfs.NewMemoryProvider()
	require.NoError(t, fs.Mkdir("/allow-list.txt", 0755))
	store := &Store{FS: fs, Path: "/allow-list.txt"}

	_, err := store.Load(context.Background())
	require.ErrorIs(t, err, ErrReadAllowList)
}
