// Package loader owns the redirection state and wires it into the host's
// load, save and mount operations.
//
// A Loader starts non-ready. Init mounts external storage, makes sure the
// external root exists, opens the external log and loads the allow list;
// only when every step succeeds does the Loader become ready. Until then,
// and forever if Init fails, every On* call is a plain passthrough.
package loader

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/jingkaihe/savemirror/internal/errx"
	"github.com/jingkaihe/savemirror/pkg/allowlist"
	"github.com/jingkaihe/savemirror/pkg/device"
	"github.com/jingkaihe/savemirror/pkg/intercept"
	"github.com/jingkaihe/savemirror/pkg/logging"
	"github.com/jingkaihe/savemirror/pkg/mirror"
	"github.com/jingkaihe/savemirror/pkg/policy"
	"github.com/jingkaihe/savemirror/pkg/telemetry"
	"github.com/jingkaihe/savemirror/pkg/vfs"
)

type Options struct {
	// FS must resolve both the host scheme and the scheme of ExternalRoot.
	FS     vfs.Provider
	Device device.Device

	HostScheme   string
	ExternalRoot string
	// AllowListPath and LogPath default to files under ExternalRoot.
	AllowListPath string
	LogPath       string

	// Logger receives every line, before and after the external log opens.
	Logger *slog.Logger
	// LogLevel filters the external log file.
	LogLevel slog.Level
	LogTag   string

	Journal mirror.Journal
	Metrics *telemetry.Recorder
}

type Loader struct {
	opts   Options
	policy *policy.Engine
	engine *intercept.Engine
	mirror *mirror.Mirror

	logger      *slog.Logger
	logFile     io.Closer
	initialized bool
}

func New(opts Options) *Loader {
	if opts.HostScheme == "" {
		opts.HostScheme = mirror.DefaultHostScheme
	}
	if opts.ExternalRoot == "" {
		opts.ExternalRoot = mirror.DefaultExternalRoot
	}
	if opts.AllowListPath == "" {
		opts.AllowListPath = strings.TrimSuffix(opts.ExternalRoot, "/") + "/allow-list.txt"
	}
	if opts.LogPath == "" {
		opts.LogPath = strings.TrimSuffix(opts.ExternalRoot, "/") + "/log.txt"
	}
	if opts.Device == nil {
		opts.Device = device.Func(nil)
	}

	l := &Loader{
		opts:   opts,
		policy: policy.NewEngine(),
		engine: intercept.NewEngine(),
		logger: logging.OrDiscard(opts.Logger),
	}
	l.registerHooks()
	return l
}

// Init runs the readiness gate. It is not retried: a failed Init leaves
// the Loader a passthrough for the rest of its life.
func (l *Loader) Init(ctx context.Context) error {
	if l.initialized {
		return ErrAlreadyInitialized
	}
	l.initialized = true

	err := l.init(ctx)
	l.opts.Metrics.RecordInit(ctx, err)
	if err != nil {
		l.logger.Error("initialization failed, running as passthrough", "error", err)
	}
	return err
}

func (l *Loader) init(ctx context.Context) error {
	if err := l.opts.Device.Mount(ctx); err != nil && !errors.Is(err, device.ErrAlreadyMounted) {
		return errx.Wrap(ErrMountDevice, err)
	}

	if err := l.ensureRoot(); err != nil {
		return err
	}

	if err := l.openLog(); err != nil {
		return err
	}

	l.logger.Info("mod initialized")
	store := allowlist.Store{
		FS:     l.opts.FS,
		Path:   l.opts.AllowListPath,
		Logger: l.logger,
	}
	l.logger.Info("loading allow list", "path", store.Path)
	list, err := store.Load(ctx)
	if err != nil {
		return errx.Wrap(ErrLoadAllowList, err)
	}

	l.mirror = mirror.New(l.opts.FS, mirror.Options{
		HostScheme:   l.opts.HostScheme,
		ExternalRoot: l.opts.ExternalRoot,
		Logger:       l.logger,
		Journal:      l.opts.Journal,
		Metrics:      l.opts.Metrics,
	})
	l.policy.Publish(list)
	l.logger.Info("ready", "entries", len(list))
	return nil
}

func (l *Loader) ensureRoot() error {
	root := l.opts.ExternalRoot
	err := vfs.RequireDir(l.opts.FS, root)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return errx.With(ErrOpenRoot, ": %s: %w", root, err)
	}
	if err := l.opts.FS.Mkdir(root, 0755); err != nil {
		return errx.With(ErrCreateRoot, ": %s: %w", root, err)
	}
	if err := vfs.RequireDir(l.opts.FS, root); err != nil {
		return errx.With(ErrOpenRoot, ": %s: %w", root, err)
	}
	return nil
}

func (l *Loader) openLog() error {
	w, err := logging.OpenFile(l.opts.FS, l.opts.LogPath)
	if err != nil {
		return errx.Wrap(ErrOpenLog, err)
	}
	l.logFile = w
	file := logging.NewLineHandler(w, l.opts.LogTag, &slog.HandlerOptions{Level: l.opts.LogLevel})
	l.logger = slog.New(logging.Multi{l.logger.Handler(), file})
	return nil
}

func (l *Loader) Ready() bool { return l.policy.Ready() }

// AllowList is the published allow list, nil until ready.
func (l *Loader) AllowList() allowlist.List { return l.policy.List() }

func (l *Loader) IsAllowed(savePath string) bool { return l.policy.IsAllowed(savePath) }

func (l *Loader) Logger() *slog.Logger { return l.logger }

func (l *Loader) Close() error {
	if l.logFile == nil {
		return nil
	}
	err := l.logFile.Close()
	l.logFile = nil
	return err
}
