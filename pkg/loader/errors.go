package loader

import "errors"

var (
	ErrAlreadyInitialized = errors.New("loader already initialized")
	ErrMountDevice        = errors.New("mount external storage")
	ErrOpenRoot           = errors.New("open external root")
	ErrCreateRoot         = errors.New("create external root")
	ErrOpenLog            = errors.New("open external log")
	ErrLoadAllowList      = errors.New("load allow list")
)
