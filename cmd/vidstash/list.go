package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/vidstash/internal/asset"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List videos in the catalog",
	Args:  cobra.NoArgs,
	RunE:  runListCmd,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

// videoRow is the JSON shape for list and search output.
type videoRow struct {
	asset.Descriptor
	State asset.DownloadState `json:"state"`
}

func runListCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	list, err := a.loadCatalog(cmd.Context())
	if err != nil {
		return err
	}
	view := list.Snapshot()
	if view.Offline {
		fmt.Fprintln(cmd.ErrOrStderr(), "catalog unreachable, showing cached copy")
	}
	return printVideos(cmd.OutOrStdout(), a, view.Videos)
}

func printVideos(w io.Writer, a *app, videos asset.List) error {
	rows := make([]videoRow, len(videos))
	for i, v := range videos {
		rows[i] = videoRow{Descriptor: v, State: a.manager.State(v)}
	}

	if jsonOutput {
		return printJSON(w, rows)
	}

	if len(rows) == 0 {
		fmt.Fprintln(w, "No videos")
		return nil
	}

	fmt.Fprintf(w, "  %-4s %-40s %-8s %-20s %s\n", "ID", "TITLE", "LENGTH", "AUTHOR", "STATE")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 90))
	for _, r := range rows {
		fmt.Fprintf(w, "  %-4s %-40s %-8s %-20s %s\n",
			r.ID, truncate(r.Title, 40), r.Duration, truncate(r.Author, 20), r.State.Label())
	}
	return nil
}
