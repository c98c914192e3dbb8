// Package policy decides which save paths take part in redirection.
package policy

import (
	"sync"
	"sync/atomic"

	"github.com/jingkaihe/savemirror/pkg/allowlist"
	"github.com/jingkaihe/savemirror/pkg/intercept"
)

// Engine holds the readiness flag and the allow list. Both are published
// together, once, by Publish; until then every path is denied.
type Engine struct {
	ready atomic.Bool
	once  sync.Once
	list  allowlist.List
}

func NewEngine() *Engine {
	return &Engine{}
}

// Publish installs the allow list and marks the engine ready. Only the
// first call has any effect; it reports whether this call published.
func (e *Engine) Publish(list allowlist.List) bool {
	published := false
	e.once.Do(func() {
		e.list = append(allowlist.List(nil), list...)
		e.ready.Store(true)
		published = true
	})
	return published
}

func (e *Engine) Ready() bool {
	return e != nil && e.ready.Load()
}

// List returns a copy of the published allow list.
func (e *Engine) List() allowlist.List {
	if !e.Ready() {
		return nil
	}
	return append(allowlist.List(nil), e.list...)
}

// IsAllowed is false while not ready; otherwise true iff some entry is a
// substring of p.
func (e *Engine) IsAllowed(p string) bool {
	if !e.Ready() {
		return false
	}
	return e.list.Contains(p)
}

// Match lets the engine gate interception hooks.
func (e *Engine) Match(req intercept.Request) bool {
	return e.IsAllowed(req.Path)
}

// ReadyMatcher matches any request once the engine is ready.
func (e *Engine) ReadyMatcher() intercept.Matcher {
	return intercept.MatcherFunc(func(intercept.Request) bool {
		return e.Ready()
	})
}
