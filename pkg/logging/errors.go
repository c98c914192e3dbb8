package logging

import "errors"

var ErrOpenLogFile = errors.New("open log file")
