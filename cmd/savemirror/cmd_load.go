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

var loadCmd = &cobra.Command{
	Use:   "load <save>",
	Short: "Load a save the way the host would, copying the external save in first",
	Long: `Load reads <save> from the host save scheme and writes it to stdout (or
--out). When the save is allow-listed and present on external storage, the
external copy replaces the host save before it is read.`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringP("out", "o", "", "Write the loaded bytes to this file instead of stdout")
	viper.BindPFlag("load.out", loadCmd.Flags().Lookup("out"))

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
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

	return loadToOutput(cmd.Context(), rt, args[0], viper.GetString("load.out"), cmd.OutOrStdout())
}

// loadToOutput writes the loaded bytes to outPath, or to stdout when
// outPath is empty. Nothing is written when the load fails.
func loadToOutput(ctx context.Context, rt *runtime, name, outPath string, stdout io.Writer) error {
	data, err := loadSave(ctx, rt, name)
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, data, 0644); err != nil {
			return errx.Wrap(ErrWriteOutput, err)
		}
		return nil
	}
	if _, err := stdout.Write(data); err != nil {
		return errx.Wrap(ErrWriteOutput, err)
	}
	return nil
}

// loadSave runs the host's load of name and returns the bytes it read.
func loadSave(ctx context.Context, rt *runtime, name string) ([]byte, error) {
	var data []byte
	err := rt.loader.OnLoad(ctx, rt.hostPath(name), func(_ context.Context, savePath string) error {
		var err error
		data, err = vfs.ReadFile(rt.fs, savePath)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
