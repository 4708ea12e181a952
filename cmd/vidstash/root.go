package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	configPath string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "vidstash",
	Short: "Browse, download and cache videos for offline playback",
	Long: `vidstash - browse a video catalog and keep local copies

Videos are fetched from the catalog endpoint, downloaded one at a time
into the storage directory, and played from disk once present.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: discovered)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("vidstash {{.Version}}\n")
}
