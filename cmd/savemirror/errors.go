package main

import "errors"

// Config errors
var (
	ErrReadConfig = errors.New("read config file")
)

// Command errors
var (
	ErrReadInput       = errors.New("read save input")
	ErrWriteOutput     = errors.New("write output")
	ErrJournalDisabled = errors.New("transfer journal is disabled, set --journal")
	ErrNotReady        = errors.New("external storage is not ready")
)
