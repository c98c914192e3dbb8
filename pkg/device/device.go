// Package device makes external storage available before it is used.
package device

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/jingkaihe/savemirror/internal/errx"
)

// Device is a removable storage medium. Mount returns ErrAlreadyMounted
// when the medium is already attached; callers treat that as success.
type Device interface {
	Mount(ctx context.Context) error
}

// Func adapts a function into Device.
type Func func(ctx context.Context) error

func (f Func) Mount(ctx context.Context) error {
	if f == nil {
		return nil
	}
	return f(ctx)
}

// Info describes an attached directory.
type Info struct {
	MountPath string
	// DeviceID is the st_dev of MountPath.
	DeviceID   string
	MountPoint bool
}

// Local is a directory on the host filesystem standing in for the external
// medium. With RequireMountPoint set, the directory must be the root of its
// own filesystem, as an SD card or USB drive mount would be.
type Local struct {
	Path              string
	RequireMountPoint bool

	mu      sync.Mutex
	mounted bool
	info    Info
}

func NewLocal(path string, requireMountPoint bool) *Local {
	return &Local{Path: path, RequireMountPoint: requireMountPoint}
}

func (d *Local) Mount(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mounted {
		return ErrAlreadyMounted
	}

	info, err := Inspect(d.Path)
	if err != nil {
		return err
	}
	if d.RequireMountPoint && !info.MountPoint {
		return errx.With(ErrNotMountPoint, ": %s", d.Path)
	}
	d.info = info
	d.mounted = true
	return nil
}

// Info returns what the last successful Mount saw.
func (d *Local) Info() (Info, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.info, d.mounted
}

// Inspect stats path and reports whether it is a mount point, i.e. its
// device differs from its parent's or it is the filesystem root.
func Inspect(path string) (Info, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Info{}, errx.Wrap(ErrStatDevice, err)
	}

	var st unix.Stat_t
	if err := unix.Stat(abs, &st); err != nil {
		if err == unix.ENOENT {
			return Info{}, errx.With(ErrDeviceNotFound, ": %s", abs)
		}
		return Info{}, errx.With(ErrStatDevice, ": %s: %w", abs, err)
	}
	if st.Mode&unix.S_IFMT != unix.S_IFDIR {
		return Info{}, errx.With(ErrNotDirectory, ": %s", abs)
	}

	var parent unix.Stat_t
	if err := unix.Stat(filepath.Dir(abs), &parent); err != nil {
		return Info{}, errx.With(ErrStatDevice, ": %s: %w", filepath.Dir(abs), err)
	}

	return Info{
		MountPath:  abs,
		DeviceID:   fmt.Sprintf("%d", st.Dev),
		MountPoint: st.Dev != parent.Dev || st.Ino == parent.Ino,
	}, nil
}
