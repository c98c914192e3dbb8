package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/savemirror/internal/errx"
	"github.com/jingkaihe/savemirror/pkg/vfs"
)

var saveCmd = &cobra.Command{
	Use:   "save <save>",
	Short: "Save the way the host would, then mirror the bytes to external storage",
	Long: `Save writes stdin (or --from) to <save> in the host save scheme. When the
save is allow-listed, the same bytes are then written to external storage.`,
	Args: cobra.ExactArgs(1),
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringP("from", "f", "", "Read the save bytes from this file instead of stdin")
	viper.BindPFlag("save.from", saveCmd.Flags().Lookup("from"))

	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if path := viper.GetString("save.from"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return errx.Wrap(ErrReadInput, err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return errx.Wrap(ErrReadInput, err)
	}

	rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer rt.Close()
	_ = rt.init(cmd.Context())

	return writeSave(cmd.Context(), rt, args[0], data)
}

func writeSave(ctx context.Context, rt *runtime, name string, data []byte) error {
	return rt.loader.OnSave(ctx, rt.hostPath(name), data, func(_ context.Context, savePath string, data []byte) error {
		return vfs.WriteFile(rt.fs, savePath, data, 0644)
	})
}
