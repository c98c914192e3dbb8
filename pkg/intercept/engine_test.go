package intercept

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_InvokeOrdersBeforeOriginalAfter(t *testing.T) {
	var calls []string
	engine := NewEngine(
		Hook{
			Name:  "after",
			Phase: PhaseAfter,
			After: AfterFunc(func(ctx context.Context, req Request, result Result) error {
				calls = append(calls, "after")
				return nil
			}),
		},
		Hook{
			Name:  "before",
			Phase: PhaseBefore,
			Before: BeforeFunc(func(ctx context.Context, req Request) error {
				calls = append(calls, "before")
				return nil
			}),
		},
	)

	err := engine.Invoke(context.Background(), Request{Op: OpLoadFile, Path: "save:/a.sav"}, func(ctx context.Context, req Request) error {
		calls = append(calls, "original")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"before", "original", "after"}, calls)
}

func TestEngine_HookErrorsNeverSuppressOriginal(t *testing.T) {
	var reported []*HookError
	boom := errors.New("boom")
	engine := NewEngine(
		Hook{
			Name:   "failing-before",
			Phase:  PhaseBefore,
			Before: BeforeFunc(func(ctx context.Context, req Request) error { return boom }),
		},
		Hook{
			Name:   "panicking-before",
			Phase:  PhaseBefore,
			Before: BeforeFunc(func(ctx context.Context, req Request) error { panic("bad hook") }),
		},
		Hook{
			Name:  "failing-after",
			Phase: PhaseAfter,
			After: AfterFunc(func(ctx context.Context, req Request, result Result) error { return boom }),
		},
	)
	engine.SetErrorFunc(func(err *HookError) { reported = append(reported, err) })

	originalCalls := 0
	err := engine.Invoke(context.Background(), Request{Op: OpSaveFile, Path: "save:/a.sav"}, func(ctx context.Context, req Request) error {
		originalCalls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, originalCalls)

	require.Len(t, reported, 3)
	assert.Equal(t, "failing-before", reported[0].Hook)
	assert.ErrorIs(t, reported[0], boom)
	assert.Equal(t, "panicking-before", reported[1].Hook)
	assert.Contains(t, reported[1].Error(), "bad hook")
	assert.Equal(t, PhaseAfter, reported[2].Phase)
	assert.Equal(t, OpSaveFile, reported[2].Op)
}

func TestEngine_OriginalErrorReturnedAndVisibleToAfterHooks(t *testing.T) {
	hostErr := errors.New("host save failed")
	var seen error
	engine := NewEngine(Hook{
		Phase: PhaseAfter,
		After: AfterFunc(func(ctx context.Context, req Request, result Result) error {
			seen = result.Err
			return nil
		}),
	})

	err := engine.Invoke(context.Background(), Request{Op: OpSaveFile}, func(ctx context.Context, req Request) error {
		return hostErr
	})
	assert.Equal(t, hostErr, err)
	assert.Equal(t, hostErr, seen)
}

func TestEngine_MatcherFiltersHooks(t *testing.T) {
	var fired []string
	record := func(name string) BeforeFunc {
		return func(ctx context.Context, req Request) error {
			fired = append(fired, name)
			return nil
		}
	}
	engine := NewEngine(
		Hook{Name: "loads", Matcher: OpMatcher{Ops: []Op{OpLoadFile}}, Before: record("loads")},
		Hook{Name: "saves", Matcher: OpMatcher{Ops: []Op{OpSaveFile}}, Before: record("saves")},
		Hook{Name: "sav-glob", Matcher: OpMatcher{PathPattern: "save:/*.sav"}, Before: record("sav-glob")},
		Hook{Name: "never", Matcher: MatcherFunc(func(Request) bool { return false }), Before: record("never")},
	)

	_ = engine.Invoke(context.Background(), Request{Op: OpLoadFile, Path: "save:/game01.sav"}, nil)
	assert.Equal(t, []string{"loads", "sav-glob"}, fired)

	fired = nil
	_ = engine.Invoke(context.Background(), Request{Op: OpSaveFile, Path: "save:/game01.tmb"}, nil)
	assert.Equal(t, []string{"saves"}, fired)
}

func TestEngine_HooksCannotAlterOriginalArguments(t *testing.T) {
	engine := NewEngine(Hook{
		Phase: PhaseBefore,
		Before: BeforeFunc(func(ctx context.Context, req Request) error {
			req.Data[0] = 'Z'
			return nil
		}),
	})

	data := []byte("abc")
	var got []byte
	err := engine.Invoke(context.Background(), Request{Op: OpSaveFile, Path: "save:/a.sav", Data: data}, func(ctx context.Context, req Request) error {
		got = req.Data
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
	assert.Equal(t, "abc", string(data))
}

func TestEngine_EmitsEventPerInvoke(t *testing.T) {
	engine := NewEngine()
	var events []Request
	engine.SetEventFunc(func(_ context.Context, req Request, result Result) { events = append(events, req) })

	_ = engine.Invoke(context.Background(), Request{Op: OpMountSaveData}, nil)
	_ = engine.Invoke(context.Background(), Request{Op: OpLoadFile, Path: "save:/a.sav"}, nil)

	require.Len(t, events, 2)
	assert.Equal(t, OpMountSaveData, events[0].Op)
	assert.Equal(t, "save:/a.sav", events[1].Path)
}

func TestEngine_NilEnginePassesThrough(t *testing.T) {
	var engine *Engine
	called := false
	err := engine.Invoke(context.Background(), Request{Op: OpLoadFile}, func(ctx context.Context, req Request) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestEngine_RegisterDropsHooksWithoutCallback(t *testing.T) {
	engine := NewEngine(
		Hook{Name: "no-before", Phase: PhaseBefore},
		Hook{Name: "after-without-after", Phase: "AFTER", Before: BeforeFunc(func(context.Context, Request) error { return nil })},
	)
	assert.Empty(t, engine.hooks)
}

func TestAll(t *testing.T) {
	m := All(OpMatcher{Ops: []Op{OpLoadFile}}, MatcherFunc(func(req Request) bool { return req.Path != "" }), nil)
	assert.True(t, m.Match(Request{Op: OpLoadFile, Path: "save:/a"}))
	assert.False(t, m.Match(Request{Op: OpLoadFile}))
	assert.False(t, m.Match(Request{Op: OpSaveFile, Path: "save:/a"}))
}
