package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/savemirror/pkg/vfs"
)

var mountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Open the save session and copy every allow-listed external save in",
	Args:  cobra.NoArgs,
	RunE:  runMount,
}

func init() {
	rootCmd.AddCommand(mountCmd)
}

func runMount(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	_ = rt.init(cmd.Context())

	return mountSaves(cmd.Context(), rt)
}

// mountSaves stands in for the host mounting its save data: the save
// directory must exist.
func mountSaves(ctx context.Context, rt *runtime) error {
	return rt.loader.OnMount(ctx, func(context.Context) error {
		return vfs.RequireDir(rt.fs, vfs.JoinScheme(rt.cfg.HostScheme))
	})
}
