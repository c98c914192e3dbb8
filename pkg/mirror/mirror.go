// Package mirror copies save files between the host's save scheme and the
// external storage root.
//
// Every method returns its failure to the caller after logging it. Callers
// on the host's save path are expected to drop the error.
package mirror

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jingkaihe/savemirror/internal/errx"
	"github.com/jingkaihe/savemirror/pkg/allowlist"
	"github.com/jingkaihe/savemirror/pkg/journal"
	"github.com/jingkaihe/savemirror/pkg/telemetry"
	"github.com/jingkaihe/savemirror/pkg/vfs"
)

const (
	DefaultHostScheme   = "save"
	DefaultExternalRoot = "sd:/xc3-saves"
)

// Journal records copy attempts.
type Journal interface {
	Record(ctx context.Context, e journal.Entry) (journal.Entry, error)
}

type Options struct {
	HostScheme   string
	ExternalRoot string
	Logger       *slog.Logger
	Journal      Journal
	Metrics      *telemetry.Recorder
}

type Mirror struct {
	fs           vfs.Provider
	hostPrefix   string
	externalRoot string
	logger       *slog.Logger
	journal      Journal
	metrics      *telemetry.Recorder
}

func New(fs vfs.Provider, opts Options) *Mirror {
	if opts.HostScheme == "" {
		opts.HostScheme = DefaultHostScheme
	}
	if opts.ExternalRoot == "" {
		opts.ExternalRoot = DefaultExternalRoot
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Mirror{
		fs:           fs,
		hostPrefix:   opts.HostScheme + ":",
		externalRoot: strings.TrimSuffix(opts.ExternalRoot, "/"),
		logger:       opts.Logger,
		journal:      opts.Journal,
		metrics:      opts.Metrics,
	}
}

// ExternalPath swaps the leading host scheme of savePath for the external
// root. It reports false for paths outside the host scheme.
func (m *Mirror) ExternalPath(savePath string) (string, bool) {
	rest, ok := strings.CutPrefix(savePath, m.hostPrefix)
	if !ok {
		return "", false
	}
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return m.externalRoot + rest, true
}

// ExternalEntryPath is where an allow-list entry lives on external storage.
func (m *Mirror) ExternalEntryPath(entry string) string {
	return m.externalRoot + "/" + strings.TrimPrefix(entry, "/")
}

// HostEntryPath is where an allow-list entry lives in the host save scheme.
func (m *Mirror) HostEntryPath(entry string) string {
	return m.hostPrefix + "/" + strings.TrimPrefix(entry, "/")
}

// CopyIn overwrites savePath with its external counterpart. A missing
// external file is not an error and leaves savePath untouched.
func (m *Mirror) CopyIn(ctx context.Context, savePath string) error {
	ext, ok := m.ExternalPath(savePath)
	if !ok {
		return errx.With(ErrCopyIn, ": %s: %w", savePath, ErrForeignPath)
	}

	exists, err := vfs.Exists(m.fs, ext)
	if err != nil {
		m.logger.Warn("failed to check external save", "path", ext, "error", err)
		return errx.With(ErrCopyIn, ": %s: %w", ext, err)
	}
	if !exists {
		return nil
	}

	m.logger.Info("overriding save", "path", savePath, "source", ext)
	n, err := vfs.CopyFile(m.fs, ext, savePath)
	m.record(ctx, journal.DirectionIn, ext, savePath, n, err)
	if err != nil {
		return errx.With(ErrCopyIn, ": %s: %w", savePath, err)
	}
	return nil
}

// CopyOut writes data, the exact bytes the host saved to savePath, to the
// external counterpart of savePath.
func (m *Mirror) CopyOut(ctx context.Context, savePath string, data []byte) error {
	ext, ok := m.ExternalPath(savePath)
	if !ok {
		return errx.With(ErrCopyOut, ": %s: %w", savePath, ErrForeignPath)
	}

	m.logger.Info("mirroring save", "path", savePath, "dest", ext)
	err := vfs.WriteFile(m.fs, ext, data, 0644)
	m.record(ctx, journal.DirectionOut, savePath, ext, int64(len(data)), err)
	if err != nil {
		return errx.With(ErrCopyOut, ": %s: %w", ext, err)
	}
	return nil
}

// MirrorAll copies every listed entry present on external storage into the
// host save scheme. It keeps going past failures and returns them joined.
func (m *Mirror) MirrorAll(ctx context.Context, list allowlist.List) error {
	var errs []error
	for _, entry := range list {
		src := m.ExternalEntryPath(entry)
		dst := m.HostEntryPath(entry)

		exists, err := vfs.Exists(m.fs, src)
		if err != nil {
			m.logger.Warn("failed to check external save", "path", src, "error", err)
			errs = append(errs, errx.With(ErrMirrorFile, ": %s: %w", src, err))
			continue
		}
		if !exists {
			continue
		}

		m.logger.Info("copying save", "source", src, "dest", dst)
		n, err := vfs.CopyFile(m.fs, src, dst)
		m.record(ctx, journal.DirectionMirror, src, dst, n, err)
		if err != nil {
			errs = append(errs, errx.With(ErrMirrorFile, ": %s: %w", src, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Mirror) record(ctx context.Context, dir journal.Direction, src, dst string, n int64, err error) {
	if err != nil {
		m.logger.Warn("failed to copy file", "source", src, "dest", dst, "error", err)
	}
	m.metrics.RecordCopy(ctx, string(dir), n, err)

	if m.journal == nil {
		return
	}
	entry := journal.Entry{Direction: dir, Source: src, Dest: dst, Bytes: n}
	if err != nil {
		entry.Error = err.Error()
	}
	if _, jerr := m.journal.Record(ctx, entry); jerr != nil {
		m.logger.Warn("failed to record transfer", "source", src, "dest", dst, "error", jerr)
	}
}
