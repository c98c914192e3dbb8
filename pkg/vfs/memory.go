package vfs

import (
	"bytes"
	"io"
	"os"
	"path"
	"sync"
	"syscall"
	"time"
)

// MemoryProvider is an in-process Provider. It backs tests and dry runs.
type MemoryProvider struct {
	mu       sync.RWMutex
	files    map[string]*memFile
	dirs     map[string]bool
	dirModes map[string]os.FileMode
}

type memFile struct {
	mu      sync.RWMutex
	data    []byte
	mode    os.FileMode
	modTime time.Time
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		files:    make(map[string]*memFile),
		dirs:     map[string]bool{"/": true},
		dirModes: map[string]os.FileMode{"/": 0755},
	}
}

func (p *MemoryProvider) Stat(name string) (FileInfo, error) {
	name = cleanPath(name)
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.dirs[name] {
		mode := p.dirModes[name]
		if mode == 0 {
			mode = 0755
		}
		return NewFileInfo(path.Base(name), 0, os.ModeDir|mode, time.Now(), true), nil
	}

	f, ok := p.files[name]
	if !ok {
		return FileInfo{}, syscall.ENOENT
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return NewFileInfo(path.Base(name), int64(len(f.data)), f.mode, f.modTime, false), nil
}

func (p *MemoryProvider) Open(name string, flags int, mode os.FileMode) (Handle, error) {
	name = cleanPath(name)

	p.mu.Lock()
	if p.dirs[name] {
		p.mu.Unlock()
		if flags&(os.O_WRONLY|os.O_RDWR) != 0 {
			return nil, syscall.EISDIR
		}
		return &memHandle{dir: true, flags: flags}, nil
	}

	f, exists := p.files[name]
	switch {
	case exists && flags&os.O_CREATE != 0 && flags&os.O_EXCL != 0:
		p.mu.Unlock()
		return nil, syscall.EEXIST
	case !exists && flags&os.O_CREATE == 0:
		p.mu.Unlock()
		return nil, syscall.ENOENT
	case !exists:
		if !p.dirs[path.Dir(name)] {
			p.mu.Unlock()
			return nil, syscall.ENOENT
		}
		f = &memFile{data: []byte{}, mode: mode, modTime: time.Now()}
		p.files[name] = f
	}
	p.mu.Unlock()

	if flags&os.O_TRUNC != 0 && flags&(os.O_WRONLY|os.O_RDWR) != 0 {
		f.mu.Lock()
		f.data = f.data[:0]
		f.modTime = time.Now()
		f.mu.Unlock()
	}

	return &memHandle{file: f, flags: flags}, nil
}

func (p *MemoryProvider) Mkdir(name string, mode os.FileMode) error {
	name = cleanPath(name)
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.dirs[path.Dir(name)] {
		return syscall.ENOENT
	}
	if _, ok := p.files[name]; ok || p.dirs[name] {
		return syscall.EEXIST
	}

	p.dirs[name] = true
	p.dirModes[name] = mode
	return nil
}

// WriteFile seeds a file, creating missing parent directories.
func (p *MemoryProvider) WriteFile(name string, data []byte, mode os.FileMode) error {
	name = cleanPath(name)
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dirs[name] {
		return syscall.EISDIR
	}
	for dir := path.Dir(name); !p.dirs[dir]; dir = path.Dir(dir) {
		p.dirs[dir] = true
		p.dirModes[dir] = 0755
	}

	p.files[name] = &memFile{
		data:    bytes.Clone(data),
		mode:    mode,
		modTime: time.Now(),
	}
	return nil
}

func (p *MemoryProvider) ReadFile(name string) ([]byte, error) {
	name = cleanPath(name)
	p.mu.RLock()
	defer p.mu.RUnlock()

	f, ok := p.files[name]
	if !ok {
		return nil, syscall.ENOENT
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return bytes.Clone(f.data), nil
}

type memHandle struct {
	file   *memFile
	dir    bool
	flags  int
	offset int64
}

func (h *memHandle) readable() bool { return h.flags&os.O_WRONLY == 0 }
func (h *memHandle) writable() bool { return h.flags&(os.O_WRONLY|os.O_RDWR) != 0 }

func (h *memHandle) Read(p []byte) (int, error) {
	if h.dir {
		return 0, syscall.EISDIR
	}
	if !h.readable() {
		return 0, syscall.EBADF
	}

	h.file.mu.RLock()
	defer h.file.mu.RUnlock()

	if h.offset >= int64(len(h.file.data)) {
		return 0, io.EOF
	}
	n := copy(p, h.file.data[h.offset:])
	h.offset += int64(n)
	return n, nil
}

func (h *memHandle) Write(p []byte) (int, error) {
	if h.dir || !h.writable() {
		return 0, syscall.EBADF
	}

	h.file.mu.Lock()
	defer h.file.mu.Unlock()

	if h.flags&os.O_APPEND != 0 {
		h.offset = int64(len(h.file.data))
	}
	end := h.offset + int64(len(p))
	if end > int64(len(h.file.data)) {
		grown := make([]byte, end)
		copy(grown, h.file.data)
		h.file.data = grown
	}

	n := copy(h.file.data[h.offset:], p)
	h.offset += int64(n)
	h.file.modTime = time.Now()
	return n, nil
}

func (h *memHandle) Stat() (FileInfo, error) {
	if h.dir {
		return NewFileInfo("", 0, os.ModeDir|0755, time.Now(), true), nil
	}
	h.file.mu.RLock()
	defer h.file.mu.RUnlock()
	return NewFileInfo("", int64(len(h.file.data)), h.file.mode, h.file.modTime, false), nil
}

func (h *memHandle) Close() error {
	return nil
}
