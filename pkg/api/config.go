package api

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/jingkaihe/savemirror/internal/errx"
	"github.com/jingkaihe/savemirror/pkg/vfs"
)

const (
	DefaultHostScheme     = "save"
	DefaultExternalScheme = "sd"
	DefaultExternalRoot   = "sd:/xc3-saves"
	DefaultAllowListFile  = "allow-list.txt"
	DefaultLogFile        = "log.txt"
)

type Config struct {
	// SaveDir backs the host save scheme on disk.
	SaveDir string `json:"save_dir,omitempty" mapstructure:"save_dir"`
	// ExternalDir is where the external medium is attached.
	ExternalDir       string `json:"external_dir,omitempty" mapstructure:"external_dir"`
	RequireMountPoint bool   `json:"require_mount_point,omitempty" mapstructure:"require_mount_point"`

	HostScheme     string `json:"host_scheme,omitempty" mapstructure:"host_scheme"`
	ExternalScheme string `json:"external_scheme,omitempty" mapstructure:"external_scheme"`
	// ExternalRoot is the mirror directory, addressed in ExternalScheme.
	ExternalRoot  string `json:"external_root,omitempty" mapstructure:"external_root"`
	AllowListFile string `json:"allow_list_file,omitempty" mapstructure:"allow_list_file"`
	LogFile       string `json:"log_file,omitempty" mapstructure:"log_file"`

	// JournalPath is a host path for the transfer journal; empty disables it.
	JournalPath string     `json:"journal_path,omitempty" mapstructure:"journal_path"`
	Log         *LogConfig `json:"log,omitempty" mapstructure:"log"`
}

type LogConfig struct {
	Level  string `json:"level,omitempty" mapstructure:"level"`
	Format string `json:"format,omitempty" mapstructure:"format"`
	Output string `json:"output,omitempty" mapstructure:"output"`
}

func DefaultConfig() *Config {
	return &Config{
		HostScheme:     DefaultHostScheme,
		ExternalScheme: DefaultExternalScheme,
		ExternalRoot:   DefaultExternalRoot,
		AllowListFile:  DefaultAllowListFile,
		LogFile:        DefaultLogFile,
		Log: &LogConfig{
			Level:  "info",
			Format: "line",
			Output: "stderr",
		},
	}
}

// Merge overlays the non-zero fields of other onto a copy of c.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c
	if other.SaveDir != "" {
		result.SaveDir = other.SaveDir
	}
	if other.ExternalDir != "" {
		result.ExternalDir = other.ExternalDir
	}
	if other.RequireMountPoint {
		result.RequireMountPoint = true
	}
	if other.HostScheme != "" {
		result.HostScheme = other.HostScheme
	}
	if other.ExternalScheme != "" {
		result.ExternalScheme = other.ExternalScheme
	}
	if other.ExternalRoot != "" {
		result.ExternalRoot = other.ExternalRoot
	}
	if other.AllowListFile != "" {
		result.AllowListFile = other.AllowListFile
	}
	if other.LogFile != "" {
		result.LogFile = other.LogFile
	}
	if other.JournalPath != "" {
		result.JournalPath = other.JournalPath
	}
	if other.Log != nil {
		log := LogConfig{}
		if result.Log != nil {
			log = *result.Log
		}
		if other.Log.Level != "" {
			log.Level = other.Log.Level
		}
		if other.Log.Format != "" {
			log.Format = other.Log.Format
		}
		if other.Log.Output != "" {
			log.Output = other.Log.Output
		}
		result.Log = &log
	}
	return &result
}

// Validate checks the scheme layout. Directories are not touched.
func (c *Config) Validate() error {
	if c.SaveDir == "" {
		return errx.With(ErrInvalidConfig, ": save_dir is required")
	}
	if c.ExternalDir == "" {
		return errx.With(ErrInvalidConfig, ": external_dir is required")
	}
	if err := validateScheme("host_scheme", c.HostScheme); err != nil {
		return err
	}
	if err := validateScheme("external_scheme", c.ExternalScheme); err != nil {
		return err
	}
	if strings.EqualFold(c.HostScheme, c.ExternalScheme) {
		return errx.With(ErrInvalidConfig, ": host and external schemes must differ, both %q", c.HostScheme)
	}

	scheme, _, ok := vfs.SplitScheme(c.ExternalRoot)
	if !ok || !strings.EqualFold(scheme, c.ExternalScheme) {
		return errx.With(ErrInvalidConfig, ": external_root %q must be under scheme %q", c.ExternalRoot, c.ExternalScheme)
	}
	if err := validateFileName("allow_list_file", c.AllowListFile); err != nil {
		return err
	}
	return validateFileName("log_file", c.LogFile)
}

// AllowListPath is the allow-list location on external storage.
func (c *Config) AllowListPath() string {
	return joinRoot(c.ExternalRoot, c.AllowListFile)
}

// LogPath is the log file location on external storage.
func (c *Config) LogPath() string {
	return joinRoot(c.ExternalRoot, c.LogFile)
}

func (c *Config) GetLog() LogConfig {
	if c.Log == nil {
		return LogConfig{}
	}
	return *c.Log
}

func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errx.Wrap(ErrParseConfig, err)
	}
	return &cfg, nil
}

func joinRoot(root, name string) string {
	return strings.TrimSuffix(root, "/") + "/" + name
}

func validateScheme(field, scheme string) error {
	if scheme == "" || strings.ContainsAny(scheme, ":/\\") {
		return errx.With(ErrInvalidConfig, ": %s %q is not a valid scheme name", field, scheme)
	}
	return nil
}

func validateFileName(field, name string) error {
	if name == "" || name == "." || name == ".." || path.Base(name) != name || strings.Contains(name, "\\") {
		return errx.With(ErrInvalidConfig, ": %s %q must be a bare file name", field, name)
	}
	return nil
}
