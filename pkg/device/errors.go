package device

import "errors"

var (
	ErrAlreadyMounted = errors.New("device already mounted")
	ErrDeviceNotFound = errors.New("device path not found")
	ErrNotDirectory   = errors.New("device path is not a directory")
	ErrNotMountPoint  = errors.New("device path is not a mount point")
	ErrStatDevice     = errors.New("stat device path")
)
