package loader

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/savemirror/pkg/allowlist"
	"github.com/jingkaihe/savemirror/pkg/device"
	"github.com/jingkaihe/savemirror/pkg/vfs"
)

type fixture struct {
	host   *vfs.MemoryProvider
	sd     *vfs.MemoryProvider
	logs   *bytes.Buffer
	mounts int
	loader *Loader
}

func newFixture(t *testing.T, mountErr error) *fixture {
	t.Helper()
	f := &fixture{
		host: vfs.NewMemoryProvider(),
		sd:   vfs.NewMemoryProvider(),
		logs: &bytes.Buffer{},
	}
	f.loader = New(Options{
		FS: vfs.NewSchemeRouter(map[string]vfs.Provider{"save": f.host, "sd": f.sd}),
		Device: device.Func(func(context.Context) error {
			f.mounts++
			return mountErr
		}),
		Logger: slog.New(slog.NewTextHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	t.Cleanup(func() { _ = f.loader.Close() })
	return f
}

func (f *fixture) writeAllowList(t *testing.T, text string) {
	t.Helper()
	require.NoError(t, f.sd.WriteFile("/xc3-saves/allow-list.txt", []byte(text), 0644))
}

func (f *fixture) externalLog(t *testing.T) string {
	t.Helper()
	data, err := f.sd.ReadFile("/xc3-saves/log.txt")
	require.NoError(t, err)
	return string(data)
}

func TestLoader_InitCreatesRootAndDefaultAllowList(t *testing.T) {
	f := newFixture(t, nil)

	require.NoError(t, f.loader.Init(context.Background()))
	assert.True(t, f.loader.Ready())
	assert.Empty(t, f.loader.AllowList())
	assert.Equal(t, 1, f.mounts)

	info, err := f.sd.Stat("/xc3-saves")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	tmpl, err := f.sd.ReadFile("/xc3-saves/allow-list.txt")
	require.NoError(t, err)
	assert.Equal(t, allowlist.DefaultTemplate, string(tmpl))

	log := f.externalLog(t)
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \[savemirror\] mod initialized\n`, log)
	assert.Contains(t, log, "loading allow list path=sd:/xc3-saves/allow-list.txt")
	assert.Contains(t, log, "creating default")
	assert.Contains(t, log, "ready entries=0")
}

func TestLoader_InitLoadsExistingAllowList(t *testing.T) {
	f := newFixture(t, device.ErrAlreadyMounted)
	f.writeAllowList(t, "bf3game01.sav # quick save\r\n# bf3game02.sav\r\n\r\n  bf3system00.sav  \n")

	require.NoError(t, f.loader.Init(context.Background()))
	assert.Equal(t, allowlist.List{"bf3game01.sav", "bf3system00.sav"}, f.loader.AllowList())
	assert.True(t, f.loader.IsAllowed("save:/bf3game01.sav"))
	assert.False(t, f.loader.IsAllowed("save:/bf3game02.sav"))
	assert.Contains(t, f.externalLog(t), "adding to allow list entry=bf3system00.sav")
}

func TestLoader_InitAppendsToExistingLog(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.sd.WriteFile("/xc3-saves/log.txt", []byte("previous run\n"), 0644))

	require.NoError(t, f.loader.Init(context.Background()))
	assert.Regexp(t, `^previous run\n\[`, f.externalLog(t))
}

func TestLoader_InitFailures(t *testing.T) {
	tests := []struct {
		name     string
		mountErr error
		setup    func(t *testing.T, f *fixture)
		want     error
	}{
		{
			name:     "mount fails",
			mountErr: errors.New("no card inserted"),
			want:     ErrMountDevice,
		},
		{
			name: "root is a file",
			setup: func(t *testing.T, f *fixture) {
				require.NoError(t, f.sd.WriteFile("/xc3-saves", []byte("x"), 0644))
			},
			want: ErrOpenRoot,
		},
		{
			name: "allow list unreadable",
			setup: func(t *testing.T, f *fixture) {
				require.NoError(t, f.sd.WriteFile("/xc3-saves/allow-list.txt/x", nil, 0644))
			},
			want: ErrLoadAllowList,
		},
		{
			name: "log unopenable",
			setup: func(t *testing.T, f *fixture) {
				require.NoError(t, f.sd.WriteFile("/xc3-saves/log.txt/x", nil, 0644))
			},
			want: ErrOpenLog,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.mountErr)
			if tt.setup != nil {
				tt.setup(t, f)
			}

			err := f.loader.Init(context.Background())
			require.ErrorIs(t, err, tt.want)
			assert.False(t, f.loader.Ready())
			assert.Nil(t, f.loader.AllowList())
			assert.Contains(t, f.logs.String(), "initialization failed")
		})
	}
}

func TestLoader_InitCreateRootFails(t *testing.T) {
	f := newFixture(t, nil)
	f.loader.opts.ExternalRoot = "sd:/missing-parent/xc3-saves"

	err := f.loader.Init(context.Background())
	require.ErrorIs(t, err, ErrCreateRoot)
	assert.False(t, f.loader.Ready())
}

func TestLoader_InitOnlyOnce(t *testing.T) {
	f := newFixture(t, errors.New("no card"))
	require.ErrorIs(t, f.loader.Init(context.Background()), ErrMountDevice)
	require.ErrorIs(t, f.loader.Init(context.Background()), ErrAlreadyInitialized)
	assert.Equal(t, 1, f.mounts)
}

func TestLoader_MountFailureLeavesStorageUntouched(t *testing.T) {
	f := newFixture(t, errors.New("no card"))
	require.Error(t, f.loader.Init(context.Background()))

	_, err := f.sd.Stat("/xc3-saves")
	assert.Error(t, err)
}
