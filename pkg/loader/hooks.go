package loader

import (
	"context"
	"errors"

	"github.com/jingkaihe/savemirror/pkg/intercept"
	"github.com/jingkaihe/savemirror/pkg/mirror"
)

const (
	hookCopyIn    = "copy-in"
	hookCopyOut   = "copy-out"
	hookMirrorAll = "mirror-all"
)

// LoadFunc, SaveFunc and MountFunc are the host's own operations.
type (
	LoadFunc  func(ctx context.Context, savePath string) error
	SaveFunc  func(ctx context.Context, savePath string, data []byte) error
	MountFunc func(ctx context.Context) error
)

func (l *Loader) registerHooks() {
	l.engine.Register(intercept.Hook{
		Name:    hookCopyIn,
		Phase:   intercept.PhaseBefore,
		Matcher: intercept.All(intercept.OpMatcher{Ops: []intercept.Op{intercept.OpLoadFile}}, l.policy),
		Before: intercept.BeforeFunc(func(ctx context.Context, req intercept.Request) error {
			return l.mirror.CopyIn(ctx, req.Path)
		}),
	})
	l.engine.Register(intercept.Hook{
		Name:    hookCopyOut,
		Phase:   intercept.PhaseAfter,
		Matcher: intercept.All(intercept.OpMatcher{Ops: []intercept.Op{intercept.OpSaveFile}}, l.policy),
		After: intercept.AfterFunc(func(ctx context.Context, req intercept.Request, _ intercept.Result) error {
			return l.mirror.CopyOut(ctx, req.Path, req.Data)
		}),
	})
	l.engine.Register(intercept.Hook{
		Name:    hookMirrorAll,
		Phase:   intercept.PhaseAfter,
		Matcher: intercept.All(intercept.OpMatcher{Ops: []intercept.Op{intercept.OpMountSaveData}}, l.policy.ReadyMatcher()),
		After: intercept.AfterFunc(func(ctx context.Context, _ intercept.Request, _ intercept.Result) error {
			l.logger.Info("game has mounted save data, copying files")
			err := l.mirror.MirrorAll(ctx, l.policy.List())
			l.logger.Info("done copying files")
			return err
		}),
	})

	l.engine.SetErrorFunc(l.reportHookError)
	l.engine.SetEventFunc(func(ctx context.Context, req intercept.Request, result intercept.Result) {
		l.opts.Metrics.RecordIntercept(ctx, string(req.Op), result.Err)
	})
}

// reportHookError logs a failed hook. Mirror failures were already logged
// where they happened.
func (l *Loader) reportHookError(err *intercept.HookError) {
	if errors.Is(err, mirror.ErrCopyIn) || errors.Is(err, mirror.ErrCopyOut) || errors.Is(err, mirror.ErrMirrorFile) {
		l.logger.Debug("hook failed", "hook", err.Hook, "op", err.Op, "path", err.Path, "error", err.Err)
		return
	}
	l.logger.Warn("hook failed", "hook", err.Hook, "op", err.Op, "path", err.Path, "error", err.Err)
}

// OnLoad copies the external save over savePath when allowed, then runs
// load exactly once.
func (l *Loader) OnLoad(ctx context.Context, savePath string, load LoadFunc) error {
	req := intercept.Request{Op: intercept.OpLoadFile, Path: savePath}
	return l.engine.Invoke(ctx, req, func(ctx context.Context, req intercept.Request) error {
		if load == nil {
			return nil
		}
		return load(ctx, req.Path)
	})
}

// OnSave runs save exactly once, then mirrors data to external storage when
// allowed and the save succeeded.
func (l *Loader) OnSave(ctx context.Context, savePath string, data []byte, save SaveFunc) error {
	req := intercept.Request{Op: intercept.OpSaveFile, Path: savePath, Data: data}
	return l.engine.Invoke(ctx, req, func(ctx context.Context, req intercept.Request) error {
		if save == nil {
			return nil
		}
		return save(ctx, req.Path, req.Data)
	})
}

// OnMount runs mount exactly once, then copies every allow-listed external
// save into the host save scheme.
func (l *Loader) OnMount(ctx context.Context, mount MountFunc) error {
	req := intercept.Request{Op: intercept.OpMountSaveData}
	return l.engine.Invoke(ctx, req, func(ctx context.Context, _ intercept.Request) error {
		if mount == nil {
			return nil
		}
		return mount(ctx)
	})
}
