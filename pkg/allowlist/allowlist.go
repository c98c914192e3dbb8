// Package allowlist loads the operator-curated list of save file names that
// take part in redirection.
//
// The file format is one name per line. Anything after the first '#' is a
// comment, surrounding whitespace is ignored, and blank lines are skipped.
package allowlist

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jingkaihe/savemirror/internal/errx"
	"github.com/jingkaihe/savemirror/pkg/vfs"
)

// List is the ordered set of allow-list entries. Duplicates are kept.
type List []string

// Contains reports whether any entry is a substring of p. A short entry can
// match several distinct file names; that is intended.
func (l List) Contains(p string) bool {
	for _, entry := range l {
		if strings.Contains(p, entry) {
			return true
		}
	}
	return false
}

// Parse extracts entries from allow-list text.
func Parse(text string) List {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var list List
	for _, line := range strings.Split(text, "\n") {
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		entry := strings.TrimSpace(line)
		if entry == "" {
			continue
		}
		list = append(list, entry)
	}
	return list
}

// Store reads the allow list from a provider, seeding DefaultTemplate the
// first time.
type Store struct {
	FS     vfs.Provider
	Path   string
	Logger *slog.Logger
}

func (s *Store) Load(ctx context.Context) (List, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	exists, err := vfs.Exists(s.FS, s.Path)
	if err != nil {
		return nil, errx.With(ErrStatAllowList, ": %s: %w", s.Path, err)
	}
	if !exists {
		logger.InfoContext(ctx, "allow list does not exist, creating default", "path", s.Path)
		if err := vfs.WriteFile(s.FS, s.Path, []byte(DefaultTemplate), 0644); err != nil {
			return nil, errx.With(ErrCreateDefault, ": %s: %w", s.Path, err)
		}
	}

	data, err := vfs.ReadFile(s.FS, s.Path)
	if err != nil {
		return nil, errx.With(ErrReadAllowList, ": %s: %w", s.Path, err)
	}

	list := Parse(string(data))
	for _, entry := range list {
		logger.InfoContext(ctx, "adding to allow list", "entry", entry)
	}
	return list, nil
}
