package vfs

import (
	"io"
	"io/fs"
	"os"
	"time"
)

// Provider is a storage namespace the mirror can read and write. Paths are
// slash-separated and rooted at "/".
type Provider interface {
	Stat(path string) (FileInfo, error)
	Open(path string, flags int, mode os.FileMode) (Handle, error)
	Mkdir(path string, mode os.FileMode) error
}

type Handle interface {
	io.ReadWriteCloser
	Stat() (FileInfo, error)
}

type FileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (fi FileInfo) Name() string       { return fi.name }
func (fi FileInfo) Size() int64        { return fi.size }
func (fi FileInfo) Mode() os.FileMode  { return fi.mode }
func (fi FileInfo) ModTime() time.Time { return fi.modTime }
func (fi FileInfo) IsDir() bool        { return fi.isDir }
func (fi FileInfo) Sys() any           { return nil }

func NewFileInfo(name string, size int64, mode os.FileMode, modTime time.Time, isDir bool) FileInfo {
	return FileInfo{
		name:    name,
		size:    size,
		mode:    mode,
		modTime: modTime,
		isDir:   isDir,
	}
}

func fileInfoFromOS(info fs.FileInfo) FileInfo {
	return NewFileInfo(info.Name(), info.Size(), info.Mode(), info.ModTime(), info.IsDir())
}
