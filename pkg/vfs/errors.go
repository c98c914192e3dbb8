package vfs

import "errors"

var (
	ErrUnknownScheme = errors.New("unknown storage scheme")
	ErrMissingScheme = errors.New("path has no storage scheme")
	ErrNotDir        = errors.New("not a directory")
	ErrOpenSource    = errors.New("open copy source")
	ErrOpenDest      = errors.New("open copy destination")
	ErrCopyData      = errors.New("copy file data")
	ErrCloseDest     = errors.New("close copy destination")
	ErrReadFile      = errors.New("read file")
	ErrWriteFile     = errors.New("write file")
)
