package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jingkaihe/savemirror/internal/errx"
	"github.com/jingkaihe/savemirror/pkg/api"
)

// resolveConfig layers flags, SAVEMIRROR_* environment and the optional
// config file over the defaults.
func resolveConfig() (*api.Config, error) {
	base := api.DefaultConfig()
	if path := viper.GetString("config"); path != "" {
		fileCfg, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		base = base.Merge(fileCfg)
	}

	overlay := &api.Config{
		SaveDir:           viper.GetString("save_dir"),
		ExternalDir:       viper.GetString("external_dir"),
		RequireMountPoint: viper.GetBool("require_mount_point"),
		HostScheme:        viper.GetString("host_scheme"),
		ExternalScheme:    viper.GetString("external_scheme"),
		ExternalRoot:      viper.GetString("external_root"),
		AllowListFile:     viper.GetString("allow_list_file"),
		LogFile:           viper.GetString("log_file"),
		JournalPath:       viper.GetString("journal_path"),
		Log: &api.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
			Output: viper.GetString("log.output"),
		},
	}

	cfg := base.Merge(overlay)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readConfigFile parses JSON files as an api.Config. Other formats are
// loaded into viper and surface through the flag keys, so nil is returned.
func readConfigFile(path string) (*api.Config, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errx.With(ErrReadConfig, ": %s: %w", path, err)
		}
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errx.With(ErrReadConfig, ": %s: %w", path, err)
	}
	cfg, err := api.ParseConfig(data)
	if err != nil {
		return nil, errx.With(ErrReadConfig, ": %s: %w", path, err)
	}
	return cfg, nil
}
