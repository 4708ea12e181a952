package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find videos by title",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearchCmd,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	list, err := a.loadCatalog(cmd.Context())
	if err != nil {
		return err
	}
	return printVideos(cmd.OutOrStdout(), a, list.Search(strings.Join(args, " ")))
}
