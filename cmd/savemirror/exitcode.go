package main

// exitCodeError ends the process with a specific status without printing,
// after deferred cleanup has run.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return ""
}

func (e *exitCodeError) ExitCode() int {
	return e.code
}
