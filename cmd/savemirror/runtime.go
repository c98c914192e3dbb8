package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jingkaihe/savemirror/pkg/api"
	"github.com/jingkaihe/savemirror/pkg/device"
	"github.com/jingkaihe/savemirror/pkg/journal"
	"github.com/jingkaihe/savemirror/pkg/loader"
	"github.com/jingkaihe/savemirror/pkg/logging"
	"github.com/jingkaihe/savemirror/pkg/telemetry"
	"github.com/jingkaihe/savemirror/pkg/vfs"
)

// runtime is one process worth of savemirror state built from a Config.
type runtime struct {
	cfg     *api.Config
	fs      *vfs.SchemeRouter
	logger  *slog.Logger
	journal *journal.Journal
	device  *device.Local
	loader  *loader.Loader
}

func newRuntime(ctx context.Context, cfg *api.Config) (*runtime, error) {
	logCfg := cfg.GetLog()
	logger := logging.New(logging.OpenConsole(logCfg.Output), logging.Config{
		Level:  logCfg.Level,
		Format: logCfg.Format,
	})

	rt := &runtime{
		cfg:    cfg,
		logger: logger,
		fs: vfs.NewSchemeRouter(map[string]vfs.Provider{
			cfg.HostScheme:     vfs.NewRealFSProvider(cfg.SaveDir),
			cfg.ExternalScheme: vfs.NewRealFSProvider(cfg.ExternalDir),
		}),
		device: device.NewLocal(cfg.ExternalDir, cfg.RequireMountPoint),
	}

	// The external log keeps at least info lines whatever the console level.
	opts := loader.Options{
		FS:            rt.fs,
		Device:        rt.device,
		HostScheme:    cfg.HostScheme,
		ExternalRoot:  cfg.ExternalRoot,
		AllowListPath: cfg.AllowListPath(),
		LogPath:       cfg.LogPath(),
		Logger:        logger,
		LogLevel:      min(logging.ParseLevel(logCfg.Level), slog.LevelInfo),
		Metrics:       telemetry.NewRecorder(nil),
	}
	if cfg.JournalPath != "" {
		j, err := journal.Open(ctx, cfg.JournalPath)
		if err != nil {
			return nil, err
		}
		rt.journal = j
		opts.Journal = j
	}
	rt.loader = loader.New(opts)
	return rt, nil
}

// init runs the readiness gate. A failure is logged by the loader; the
// runtime stays usable as a passthrough.
func (rt *runtime) init(ctx context.Context) error {
	return rt.loader.Init(ctx)
}

// hostPath turns a bare save name into a host scheme path. Scheme paths
// pass through.
func (rt *runtime) hostPath(name string) string {
	if _, _, ok := vfs.SplitScheme(name); ok {
		return name
	}
	return vfs.JoinScheme(rt.cfg.HostScheme, name)
}

func (rt *runtime) Close() error {
	return errors.Join(rt.loader.Close(), rt.journal.Close())
}
