package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vmunix/vidstash/internal/asset"
	"github.com/vmunix/vidstash/internal/player"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a video's local copy",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteCmd,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
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
	if session.Snapshot().State != asset.Downloaded {
		fmt.Fprintf(cmd.OutOrStdout(), "%s is not downloaded\n", d.Title)
		return nil
	}
	if err := session.Delete(cmd.Context()); err != nil {
		return fmt.Errorf("%s: %w", player.AlertDeleteFailed, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted local copy of %s\n", d.Title)
	return nil
}
