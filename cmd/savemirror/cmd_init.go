package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Mount external storage, create the mirror root and load the allow list",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	return initAndReport(cmd.Context(), rt, cmd.OutOrStdout())
}

func initAndReport(ctx context.Context, rt *runtime, w io.Writer) error {
	if err := rt.init(ctx); err != nil {
		fmt.Fprintf(w, "Not ready: %v\n", err)
		return &exitCodeError{code: 1}
	}
	fmt.Fprintf(w, "Ready\n")
	if info, ok := rt.device.Info(); ok {
		kind := "directory"
		if info.MountPoint {
			kind = "mount point"
		}
		fmt.Fprintf(w, "Device:      %s (dev %s, %s)\n", info.MountPath, info.DeviceID, kind)
	}
	fmt.Fprintf(w, "Mirror root: %s\n", rt.cfg.ExternalRoot)
	fmt.Fprintf(w, "Allow list:  %s (%d entries)\n", rt.cfg.AllowListPath(), len(rt.loader.AllowList()))
	fmt.Fprintf(w, "Log file:    %s\n", rt.cfg.LogPath())
	return nil
}
