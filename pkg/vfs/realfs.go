package vfs

import (
	"os"
	"path/filepath"
)

// RealFSProvider serves a host directory. Every path is resolved beneath
// root, so "/game01.sav" maps to root/game01.sav.
type RealFSProvider struct {
	root string
}

func NewRealFSProvider(root string) *RealFSProvider {
	return &RealFSProvider{root: root}
}

func (p *RealFSProvider) realPath(path string) string {
	return filepath.Join(p.root, filepath.FromSlash(cleanPath(path)))
}

func (p *RealFSProvider) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(p.realPath(path))
	if err != nil {
		return FileInfo{}, err
	}
	return fileInfoFromOS(info), nil
}

func (p *RealFSProvider) Open(path string, flags int, mode os.FileMode) (Handle, error) {
	f, err := os.OpenFile(p.realPath(path), flags, mode)
	if err != nil {
		return nil, err
	}
	return &realHandle{file: f}, nil
}

func (p *RealFSProvider) Mkdir(path string, mode os.FileMode) error {
	return os.Mkdir(p.realPath(path), mode)
}

type realHandle struct {
	file *os.File
}

func (h *realHandle) Read(p []byte) (int, error)  { return h.file.Read(p) }
func (h *realHandle) Write(p []byte) (int, error) { return h.file.Write(p) }
func (h *realHandle) Close() error                { return h.file.Close() }

func (h *realHandle) Stat() (FileInfo, error) {
	info, err := h.file.Stat()
	if err != nil {
		return FileInfo{}, err
	}
	return fileInfoFromOS(info), nil
}
