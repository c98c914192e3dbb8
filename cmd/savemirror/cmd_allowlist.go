package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/savemirror/internal/errx"
)

var allowlistCmd = &cobra.Command{
	Use:     "allowlist",
	Aliases: []string{"allow-list"},
	Short:   "Print the effective allow list, creating the default template if missing",
	Args:    cobra.NoArgs,
	RunE:    runAllowlist,
}

func init() {
	allowlistCmd.Flags().Bool("json", false, "Print entries as a JSON array")
	viper.BindPFlag("allowlist.json", allowlistCmd.Flags().Lookup("json"))

	rootCmd.AddCommand(allowlistCmd)
}

func runAllowlist(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	return printAllowList(cmd.Context(), rt, cmd.OutOrStdout(), viper.GetBool("allowlist.json"))
}

func printAllowList(ctx context.Context, rt *runtime, w io.Writer, asJSON bool) error {
	if err := rt.init(ctx); err != nil {
		return errx.Wrap(ErrNotReady, err)
	}

	entries := rt.loader.AllowList()
	if asJSON {
		if entries == nil {
			entries = []string{}
		}
		data, err := json.Marshal(entries)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(w, e)
	}
	return nil
}
