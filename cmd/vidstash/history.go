package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/vidstash/internal/download"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past transfers",
	Args:  cobra.NoArgs,
	RunE:  runHistoryCmd,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <transfer-id>",
	Short: "Show one transfer",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShowCmd,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <transfer-id>...",
	Short: "Remove transfer records",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistoryRmCmd,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Number of transfers to show")
	historyCmd.Flags().String("status", "", "Filter by status (downloading, completed, failed)")
	historyCmd.Flags().String("video", "", "Filter by video ID")
}

// openHistory opens the app and fails if history is disabled.
func openHistory(cmd *cobra.Command) (*app, error) {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if a.history == nil {
		_ = a.Close()
		return nil, errors.New("transfer history is disabled (download.history = false)")
	}
	return a, nil
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	status, _ := cmd.Flags().GetString("status")
	videoID, _ := cmd.Flags().GetString("video")

	filter := download.Filter{Limit: limit}
	if status != "" {
		s := download.Status(status)
		switch s {
		case download.StatusDownloading, download.StatusCompleted, download.StatusFailed:
		default:
			return fmt.Errorf("unknown status %q", status)
		}
		filter.Status = &s
	}
	if videoID != "" {
		filter.AssetID = &videoID
	}

	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	transfers, err := a.history.List(filter)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, transfers)
	}

	if len(transfers) == 0 {
		fmt.Fprintln(w, "No transfers")
		return nil
	}

	fmt.Fprintf(w, "  %-36s %-10s %-4s %-24s %-12s %-10s %s\n",
		"TRANSFER", "STARTED", "ID", "FILE", "STATUS", "SIZE", "ERROR")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 116))
	for _, t := range transfers {
		fmt.Fprintf(w, "  %-36s %-10s %-4s %-24s %-12s %-10s %s\n",
			t.ID, formatTimeAgo(t.StartedAt), t.AssetID, truncate(t.FileName, 24), t.Status,
			formatBytes(t.BytesWritten), t.Error)
	}
	return nil
}

func runHistoryShowCmd(cmd *cobra.Command, args []string) error {
	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	t, err := a.history.Get(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, t)
	}
	printTransfer(w, t)
	return nil
}

func printTransfer(w io.Writer, t *download.Transfer) {
	fmt.Fprintf(w, "Transfer: %s\n", t.ID)
	fmt.Fprintf(w, "Video:    %s\n", t.AssetID)
	fmt.Fprintf(w, "File:     %s\n", t.FileName)
	fmt.Fprintf(w, "URL:      %s\n", t.URL)
	fmt.Fprintf(w, "Status:   %s\n", t.Status)
	fmt.Fprintf(w, "Size:     %s of %s\n", formatBytes(t.BytesWritten), formatBytes(t.BytesExpected))
	fmt.Fprintf(w, "Started:  %s\n", formatTimeAgo(t.StartedAt))
	if t.Status.IsTerminal() && t.FinishedAt != nil {
		fmt.Fprintf(w, "Took:     %s\n", t.FinishedAt.Sub(t.StartedAt).Round(time.Millisecond))
	}
	if t.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", t.Error)
	}
}

func runHistoryRmCmd(cmd *cobra.Command, args []string) error {
	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	w := cmd.OutOrStdout()
	for _, id := range args {
		if err := a.history.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(w, "removed %s\n", id)
	}
	return nil
}
