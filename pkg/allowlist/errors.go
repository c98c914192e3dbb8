package allowlist

import "errors"

var (
	ErrStatAllowList = errors.New("stat allow list")
	ErrCreateDefault = errors.New("create default allow list")
	ErrReadAllowList = errors.New("read allow list")
)
