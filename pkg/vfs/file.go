package vfs

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/jingkaihe/savemirror/internal/errx"
)

// Exists reports whether name exists. Lookup failures other than "not
// found" are returned.
func Exists(p Provider, name string) (bool, error) {
	_, err := p.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func ReadFile(p Provider, name string) ([]byte, error) {
	h, err := p.Open(name, os.O_RDONLY, 0)
	if err != nil {
		return nil, errx.Wrap(ErrReadFile, err)
	}
	defer h.Close()

	data, err := io.ReadAll(h)
	if err != nil {
		return nil, errx.Wrap(ErrReadFile, err)
	}
	return data, nil
}

// WriteFile creates or truncates name and writes data in full.
func WriteFile(p Provider, name string, data []byte, mode os.FileMode) error {
	h, err := p.Open(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return errx.Wrap(ErrWriteFile, err)
	}
	if _, err := h.Write(data); err != nil {
		_ = h.Close()
		return errx.Wrap(ErrWriteFile, err)
	}
	if err := h.Close(); err != nil {
		return errx.Wrap(ErrWriteFile, err)
	}
	return nil
}

// CopyFile overwrites dst with the bytes of src and returns the number of
// bytes copied. src and dst may live under different schemes of a router.
func CopyFile(p Provider, src, dst string) (int64, error) {
	in, err := p.Open(src, os.O_RDONLY, 0)
	if err != nil {
		return 0, errx.Wrap(ErrOpenSource, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, errx.Wrap(ErrOpenSource, err)
	}
	if info.IsDir() {
		return 0, errx.With(ErrOpenSource, ": %s: %w", src, fs.ErrInvalid)
	}

	mode := info.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := p.Open(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, errx.Wrap(ErrOpenDest, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		_ = out.Close()
		return n, errx.Wrap(ErrCopyData, err)
	}
	if err := out.Close(); err != nil {
		return n, errx.Wrap(ErrCloseDest, err)
	}
	return n, nil
}

// RequireDir fails unless name exists and is a directory.
func RequireDir(p Provider, name string) error {
	info, err := p.Stat(name)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return errx.With(ErrNotDir, ": %s", name)
	}
	return nil
}
