package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "savemirror",
	Short: "Mirror selected save files to and from external storage",
	Long: `savemirror redirects an allow-listed subset of a host's save files to an
external storage root. External copies are loaded in before a load, written
out after a save and pushed into the save scheme when a save session mounts.

The load, save and mount commands stand in for the host: they perform the
host's own file operation on the save directory and run the mirror around it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Config file (json, yaml or toml)")
	pf.String("save-dir", "", "Directory backing the host save scheme")
	pf.String("external-dir", "", "Directory where the external medium is attached")
	pf.Bool("require-mount-point", false, "Refuse an external directory that is not a mount point")
	pf.String("host-scheme", "", "Host save scheme name (default save)")
	pf.String("external-scheme", "", "External storage scheme name (default sd)")
	pf.String("external-root", "", "Mirror root in the external scheme (default sd:/xc3-saves)")
	pf.String("allow-list-file", "", "Allow-list file name under the mirror root")
	pf.String("log-file", "", "Log file name under the mirror root")
	pf.String("journal", "", "Transfer journal database path (empty disables)")
	pf.String("log-level", "", "Console log level: debug, info, warn, error")
	pf.String("log-format", "", "Console log format: line, text, json")

	viper.BindPFlag("config", pf.Lookup("config"))
	viper.BindPFlag("save_dir", pf.Lookup("save-dir"))
	viper.BindPFlag("external_dir", pf.Lookup("external-dir"))
	viper.BindPFlag("require_mount_point", pf.Lookup("require-mount-point"))
	viper.BindPFlag("host_scheme", pf.Lookup("host-scheme"))
	viper.BindPFlag("external_scheme", pf.Lookup("external-scheme"))
	viper.BindPFlag("external_root", pf.Lookup("external-root"))
	viper.BindPFlag("allow_list_file", pf.Lookup("allow-list-file"))
	viper.BindPFlag("log_file", pf.Lookup("log-file"))
	viper.BindPFlag("journal_path", pf.Lookup("journal"))
	viper.BindPFlag("log.level", pf.Lookup("log-level"))
	viper.BindPFlag("log.format", pf.Lookup("log-format"))

	configureEnv()
}

// configureEnv maps keys like log.level to SAVEMIRROR_LOG_LEVEL.
func configureEnv() {
	viper.SetEnvPrefix("SAVEMIRROR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
