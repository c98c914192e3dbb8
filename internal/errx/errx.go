// Package errx wraps package sentinel errors with call-site detail while
// keeping both the sentinel and the cause reachable through errors.Is.
package errx

import "fmt"

// Wrap returns an error that matches both sentinel and err.
func Wrap(sentinel, err error) error {
	if err == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// With formats extra context after sentinel. format may itself use %w.
func With(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w"+format, append([]any{sentinel}, args...)...)
}
