package api

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrParseConfig   = errors.New("parse configuration")
)
