package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/vmunix/vidstash/internal/fetch"
	"github.com/vmunix/vidstash/internal/respcache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the response cache and stored videos",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache size and stored videos",
	Args:  cobra.NoArgs,
	RunE:  runCacheStatsCmd,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove expired cache entries and old events",
	Args:  cobra.NoArgs,
	RunE:  runCachePruneCmd,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the cached catalog so offline listing has nothing to show",
	Args:  cobra.NoArgs,
	RunE:  runCacheClearCmd,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePruneCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheStatsCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	entries, size, err := a.cache.Stats(cmd.Context())
	if err != nil {
		return err
	}
	files, err := a.assets.Files()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, map[string]any{"entries": entries, "bytes": size, "videos": files})
	}
	fmt.Fprintf(w, "%d entries, %s\n", entries, formatBytes(size))
	fmt.Fprintf(w, "%d stored videos in %s\n", len(files), a.assets.Dir())
	for _, name := range files {
		fmt.Fprintf(w, "  %s\n", name)
	}
	return nil
}

func runCachePruneCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	report := a.runner.Maintain(cmd.Context())

	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, report)
	}
	fmt.Fprintf(w, "removed %d cache entries, %d events\n", report.CacheEntries, report.Events)
	return nil
}

func runCacheClearCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	u, ok := fetch.Endpoint(a.cfg.Catalog.Endpoint).URL()
	if !ok {
		return fmt.Errorf("invalid catalog endpoint %q", a.cfg.Catalog.Endpoint)
	}
	key := respcache.KeyFor(http.MethodGet, u.String())
	if err := a.cache.Delete(cmd.Context(), key); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "cleared cached catalog")
	return nil
}
