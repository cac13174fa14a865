package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"trustie-admin/application/ports"
)

var (
	listLimit  int
	replayKeep bool
)

var fanoutCmd = &cobra.Command{
	Use:   "fanout",
	Short: "Inspect and replay failed feed fanouts",
}

var fanoutListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dead-lettered fanout tasks",
	Long: `List shows fanout tasks that stopped before every user received the
feed pointer, newest first.

Example:
  trustie-ops fanout list
  trustie-ops fanout list --limit 5 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		letters, err := container.DeadLetters.List(cmd.Context(), listLimit)
		if err != nil {
			return fmt.Errorf("list dead letters: %w", err)
		}
		return printDeadLetters(cmd.OutOrStdout(), letters, jsonOutput)
	},
}

var fanoutReplayCmd = &cobra.Command{
	Use:   "replay <dead-letter-id>",
	Short: "Resume a failed fanout from its recorded cursor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		letter, err := container.DeadLetters.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get dead letter %s: %w", args[0], err)
		}

		start := time.Now()
		result, err := container.Fanout.Replay(ctx, *letter)
		if err != nil {
			return fmt.Errorf("replay %s: %w", letter.ID, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "replayed %s: %d pointers in %d batches (%s)\n",
			letter.ID, result.Delivered, result.Batches, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	fanoutListCmd.Flags().IntVar(&listLimit, "limit", 20, "maximum number of dead letters")

	fanoutCmd.AddCommand(fanoutListCmd)
	fanoutCmd.AddCommand(fanoutReplayCmd)
}

func printDeadLetters(w io.Writer, letters []ports.DeadLetter, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(letters)
	}
	if len(letters) == 0 {
		fmt.Fprintln(w, "no failed fanouts")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCHAT\tDELIVERED\tFAILED AT\tREASON")
	for _, l := range letters {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			l.ID, l.Task.ChatID, l.Delivered, l.FailedAt.Format(time.RFC3339), truncate(l.Reason, 60))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
