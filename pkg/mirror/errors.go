package mirror

import "errors"

var (
	ErrForeignPath = errors.New("path is outside the host save scheme")
	ErrCopyIn      = errors.New("copy external save in")
	ErrCopyOut     = errors.New("copy save out to external storage")
	ErrMirrorFile  = errors.New("mirror external save")
)
