package journal

import "errors"

var (
	ErrOpenJournal   = errors.New("open transfer journal")
	ErrRecordEntry   = errors.New("record transfer")
	ErrListEntries   = errors.New("list transfers")
	ErrInvalidFilter = errors.New("invalid transfer filter")
)
