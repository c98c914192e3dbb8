package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.SaveDir = "/var/lib/game/save"
	cfg.ExternalDir = "/media/sd"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "save", cfg.HostScheme)
	assert.Equal(t, "sd", cfg.ExternalScheme)
	assert.Equal(t, "sd:/xc3-saves/allow-list.txt", cfg.AllowListPath())
	assert.Equal(t, "sd:/xc3-saves/log.txt", cfg.LogPath())
	assert.Equal(t, "info", cfg.GetLog().Level)
}

func TestConfig_Merge(t *testing.T) {
	base := DefaultConfig()
	merged := base.Merge(&Config{
		SaveDir:      "/save",
		ExternalRoot: "sd:/mirror/",
		JournalPath:  "/tmp/journal.db",
		Log:          &LogConfig{Level: "debug"},
	})

	assert.Equal(t, "/save", merged.SaveDir)
	assert.Equal(t, "sd:/mirror/", merged.ExternalRoot)
	assert.Equal(t, "sd:/mirror/allow-list.txt", merged.AllowListPath())
	assert.Equal(t, "/tmp/journal.db", merged.JournalPath)
	assert.Equal(t, "debug", merged.GetLog().Level)
	assert.Equal(t, "line", merged.GetLog().Format)

	// base is untouched
	assert.Equal(t, "info", base.GetLog().Level)
	assert.Empty(t, base.SaveDir)
	assert.Same(t, base, base.Merge(nil))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"missing save dir", func(c *Config) { c.SaveDir = "" }, false},
		{"missing external dir", func(c *Config) { c.ExternalDir = "" }, false},
		{"empty host scheme", func(c *Config) { c.HostScheme = "" }, false},
		{"scheme with colon", func(c *Config) { c.ExternalScheme = "sd:" }, false},
		{"same schemes", func(c *Config) { c.HostScheme = "SD" }, false},
		{"root outside external scheme", func(c *Config) { c.ExternalRoot = "save:/x" }, false},
		{"root without scheme", func(c *Config) { c.ExternalRoot = "/xc3-saves" }, false},
		{"nested allow list", func(c *Config) { c.AllowListFile = "dir/list.txt" }, false},
		{"dot log file", func(c *Config) { c.LogFile = ".." }, false},
		{"custom root", func(c *Config) { c.ExternalRoot = "sd:/other" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"save_dir":"/s","external_dir":"/e","log":{"format":"json"}}`))
	require.NoError(t, err)
	assert.Equal(t, "/s", cfg.SaveDir)
	assert.Equal(t, "json", cfg.GetLog().Format)

	_, err = ParseConfig([]byte(`{`))
	assert.ErrorIs(t, err, ErrParseConfig)
}
