package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/vidstash/internal/asset"
	"github.com/vmunix/vidstash/internal/player"
)

var downloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download a video for offline playback",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownloadCmd,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}

func runDownloadCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	d, err := a.findVideo(ctx, args[0])
	if err != nil {
		return err
	}

	session := player.NewSession(a.remote, a.assets, a.manager, a.log)
	a.runner.Add(session)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- a.runner.Run(runCtx) }()
	defer func() {
		cancel()
		<-done
	}()

	select {
	case <-a.runner.Ready():
	case <-ctx.Done():
		return ctx.Err()
	}

	session.SetVideo(d)
	w := cmd.OutOrStdout()
	if session.Snapshot().State == asset.Downloaded {
		fmt.Fprintf(w, "%s is already downloaded\n", d.Title)
		return nil
	}
	if err := session.Download(); err != nil {
		return err
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	last := -1
	for {
		select {
		case <-ctx.Done():
			return errors.New("download interrupted")
		case err := <-done:
			done <- err
			return fmt.Errorf("stopped: %w", err)
		case <-ticker.C:
		}

		view := session.Snapshot()
		_, busy := a.manager.Active()
		switch {
		case view.Alert != nil:
			return fmt.Errorf("%s: %s", view.Alert.Title, view.Alert.Message)
		case view.State == asset.Downloaded, !busy && a.assets.Exists(d):
			path, _ := a.assets.PathFor(d)
			fmt.Fprintf(w, "downloaded %s to %s\n", d.Title, path)
			return nil
		case view.Percent != last && !jsonOutput:
			last = view.Percent
			fmt.Fprintf(cmd.ErrOrStderr(), "\r%3d%%", view.Percent)
		}
	}
}
