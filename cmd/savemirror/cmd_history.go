package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/jingkaihe/savemirror/pkg/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded mirror transfers, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of transfers (0 for all)")
	historyCmd.Flags().String("direction", "", "Only show one direction: in, out, mirror")
	historyCmd.Flags().Bool("failed", false, "Only show failed transfers")
	historyCmd.Flags().Bool("json", false, "Print JSON lines even on a terminal")
	viper.BindPFlag("history.limit", historyCmd.Flags().Lookup("limit"))
	viper.BindPFlag("history.direction", historyCmd.Flags().Lookup("direction"))
	viper.BindPFlag("history.failed", historyCmd.Flags().Lookup("failed"))
	viper.BindPFlag("history.json", historyCmd.Flags().Lookup("json"))

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	if cfg.JournalPath == "" {
		return ErrJournalDisabled
	}

	j, err := journal.Open(cmd.Context(), cfg.JournalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.List(cmd.Context(), journal.ListOptions{
		Limit:      viper.GetInt("history.limit"),
		Direction:  journal.Direction(viper.GetString("history.direction")),
		FailedOnly: viper.GetBool("history.failed"),
	})
	if err != nil {
		return err
	}

	asJSON := viper.GetBool("history.json") || !term.IsTerminal(int(os.Stdout.Fd()))
	return renderHistory(cmd.OutOrStdout(), entries, asJSON)
}

func renderHistory(w io.Writer, entries []journal.Entry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		for _, e := range entries {
			if err := enc.Encode(e); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tDIRECTION\tSOURCE\tDEST\tBYTES\tSTATUS")
	for _, e := range entries {
		status := "ok"
		if e.Failed() {
			status = e.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.Time.Local().Format("2006-01-02 15:04:05"), e.Direction, e.Source, e.Dest, e.Bytes, status)
	}
	return tw.Flush()
}
