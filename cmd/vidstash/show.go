package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/vidstash/internal/player"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a video's details, download state and playback source",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowCmd,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	d, err := a.findVideo(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	session := player.NewSession(a.remote, a.assets, a.manager, a.log)
	session.SetVideo(d)
	src, err := session.Source()
	if err != nil {
		return err
	}
	view := session.Snapshot()

	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, map[string]any{
			"video":  d,
			"state":  view.State,
			"source": src,
		})
	}

	fmt.Fprintf(w, "%s\n\n", d.Title)
	fmt.Fprintf(w, "  ID:          %s\n", d.ID)
	fmt.Fprintf(w, "  Author:      %s (%s)\n", d.Author, d.Subscriber)
	fmt.Fprintf(w, "  Length:      %s\n", d.Duration)
	fmt.Fprintf(w, "  Uploaded:    %s\n", d.UploadTime)
	fmt.Fprintf(w, "  Views:       %s\n", d.Views)
	if d.IsLive {
		fmt.Fprintf(w, "  Live:        yes\n")
	}
	fmt.Fprintf(w, "  State:       %s\n", view.State.Label())
	fmt.Fprintf(w, "  Source:      %s\n", src)
	if d.Description != "" {
		fmt.Fprintf(w, "\n%s\n", d.Description)
	}
	return nil
}
