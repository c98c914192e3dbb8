// Package intercept runs before/after hooks around a named host operation.
//
// The engine never decides whether the original operation runs: Invoke
// always calls it exactly once and hands its error back untouched. Hook
// failures (returned errors and panics) are reported through the error
// func and otherwise dropped.
package intercept

import (
	"context"
	"fmt"
	"path"
	"strings"
)

type Op string

const (
	OpLoadFile      Op = "load_file"
	OpSaveFile      Op = "save_file"
	OpMountSaveData Op = "mount_save_data"
)

type Phase string

const (
	PhaseBefore Phase = "before"
	PhaseAfter  Phase = "after"
)

// Request carries the host's arguments for one intercepted call. Hooks
// receive copies; the original always sees the arguments the host passed.
type Request struct {
	Op   Op
	Path string
	Data []byte
}

type Result struct {
	Err error
}

// Original is the unmodified host operation.
type Original func(ctx context.Context, req Request) error

// Matcher decides whether a hook should apply for a request.
type Matcher interface {
	Match(req Request) bool
}

// MatcherFunc adapts a function into Matcher.
type MatcherFunc func(req Request) bool

func (f MatcherFunc) Match(req Request) bool {
	if f == nil {
		return true
	}
	return f(req)
}

// OpMatcher matches by operation and slash-style glob on the path.
type OpMatcher struct {
	Ops         []Op
	PathPattern string
}

func (m OpMatcher) Match(req Request) bool {
	if len(m.Ops) > 0 {
		matched := false
		for _, op := range m.Ops {
			if op == req.Op {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if m.PathPattern == "" {
		return true
	}
	matched, err := path.Match(m.PathPattern, req.Path)
	return err == nil && matched
}

// All matches when every matcher matches.
func All(matchers ...Matcher) Matcher {
	return MatcherFunc(func(req Request) bool {
		for _, m := range matchers {
			if m != nil && !m.Match(req) {
				return false
			}
		}
		return true
	})
}

// BeforeCallback runs inline before the original operation.
type BeforeCallback interface {
	Before(ctx context.Context, req Request) error
}

// BeforeFunc adapts a function into BeforeCallback.
type BeforeFunc func(ctx context.Context, req Request) error

func (f BeforeFunc) Before(ctx context.Context, req Request) error {
	if f == nil {
		return nil
	}
	return f(ctx, req)
}

// AfterCallback runs inline after the original operation.
type AfterCallback interface {
	After(ctx context.Context, req Request, result Result) error
}

// AfterFunc adapts a function into AfterCallback.
type AfterFunc func(ctx context.Context, req Request, result Result) error

func (f AfterFunc) After(ctx context.Context, req Request, result Result) error {
	if f == nil {
		return nil
	}
	return f(ctx, req, result)
}

// Hook is a callback bound to one phase of matching operations.
type Hook struct {
	Name    string
	Phase   Phase
	Matcher Matcher

	Before BeforeCallback
	After  AfterCallback
}

// HookError describes a hook that failed or panicked.
type HookError struct {
	Hook  string
	Phase Phase
	Op    Op
	Path  string
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook %q (%s %s %s): %v", e.Hook, e.Phase, e.Op, e.Path, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

type Engine struct {
	hooks   []Hook
	eventFn func(ctx context.Context, req Request, result Result)
	errFn   func(err *HookError)
}

func NewEngine(hooks ...Hook) *Engine {
	e := &Engine{}
	for _, hook := range hooks {
		e.Register(hook)
	}
	return e
}

// Register appends a hook. Hooks without a callback for their phase are
// ignored.
func (e *Engine) Register(hook Hook) {
	hook.Phase = normalizePhase(hook.Phase)
	if hook.Matcher == nil {
		hook.Matcher = MatcherFunc(nil)
	}
	if hook.Phase == PhaseBefore && hook.Before == nil {
		return
	}
	if hook.Phase == PhaseAfter && hook.After == nil {
		return
	}
	e.hooks = append(e.hooks, hook)
}

// SetEventFunc installs a callback invoked once per intercepted call after
// all hooks have run.
func (e *Engine) SetEventFunc(fn func(ctx context.Context, req Request, result Result)) {
	if e == nil {
		return
	}
	e.eventFn = fn
}

// SetErrorFunc installs the sink for hook failures.
func (e *Engine) SetErrorFunc(fn func(err *HookError)) {
	if e == nil {
		return
	}
	e.errFn = fn
}

// Invoke runs before hooks, the original exactly once, then after hooks.
func (e *Engine) Invoke(ctx context.Context, req Request, original Original) error {
	if e == nil {
		return callOriginal(ctx, req, original)
	}

	e.Before(ctx, req)
	err := callOriginal(ctx, req, original)
	e.After(ctx, req, Result{Err: err})
	return err
}

func (e *Engine) Before(ctx context.Context, req Request) {
	if e == nil {
		return
	}
	for _, hook := range e.hooks {
		if hook.Phase != PhaseBefore || !hook.Matcher.Match(req) {
			continue
		}
		e.run(hook, req, func() error {
			return hook.Before.Before(ctx, cloneRequest(req))
		})
	}
}

func (e *Engine) After(ctx context.Context, req Request, result Result) {
	if e == nil {
		return
	}
	for _, hook := range e.hooks {
		if hook.Phase != PhaseAfter || !hook.Matcher.Match(req) {
			continue
		}
		e.run(hook, req, func() error {
			return hook.After.After(ctx, cloneRequest(req), result)
		})
	}
	if e.eventFn != nil {
		e.eventFn(ctx, cloneRequest(req), result)
	}
}

func (e *Engine) run(hook Hook, req Request, fn func() error) {
	err := safeCall(fn)
	if err == nil || e.errFn == nil {
		return
	}
	e.errFn(&HookError{
		Hook:  hook.Name,
		Phase: hook.Phase,
		Op:    req.Op,
		Path:  req.Path,
		Err:   err,
	})
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func callOriginal(ctx context.Context, req Request, original Original) error {
	if original == nil {
		return nil
	}
	return original(ctx, req)
}

func cloneRequest(req Request) Request {
	if req.Data != nil {
		req.Data = append([]byte(nil), req.Data...)
	}
	return req
}

func normalizePhase(phase Phase) Phase {
	switch strings.ToLower(string(phase)) {
	case string(PhaseAfter):
		return PhaseAfter
	default:
		return PhaseBefore
	}
}
