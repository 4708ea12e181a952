package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/vidstash/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent events",
	Args:  cobra.NoArgs,
	RunE:  runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	eventsCmd.Flags().Duration("since", 0, "Only events from this far back (e.g. 1h)")
	eventsCmd.Flags().String("video", "", "Only events for this video ID")
}

func runEventsCmd(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	since, _ := cmd.Flags().GetDuration("since")
	videoID, _ := cmd.Flags().GetString("video")

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	recent, err := queryEvents(a.eventLog, limit, since, videoID)
	if err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(w, recent)
	}

	if len(recent) == 0 {
		fmt.Fprintln(w, "No events")
		return nil
	}

	fmt.Fprintf(w, "Recent Events (%d):\n\n", len(recent))
	fmt.Fprintf(w, "  %-16s %-22s %-12s %s\n", "TIME", "TYPE", "ENTITY", "DETAIL")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 72))

	registry := events.DefaultRegistry()
	for _, e := range recent {
		entity := fmt.Sprintf("%s/%s", e.EntityType, e.EntityID)
		fmt.Fprintf(w, "  %-16s %-22s %-12s %s\n",
			formatTimeAgo(e.OccurredAt), e.EventType, entity, eventDetail(registry, e))
	}

	return nil
}

// queryEvents returns up to limit events, newest first.
func queryEvents(log *events.EventLog, limit int, since time.Duration, videoID string) ([]events.RawEvent, error) {
	if since <= 0 && videoID == "" {
		return log.Recent(limit)
	}

	var found []events.RawEvent
	var err error
	cutoff := time.Now().Add(-since)
	if videoID != "" {
		found, err = log.ForEntity(events.EntityAsset, videoID)
	} else {
		found, err = log.Since(cutoff)
	}
	if err != nil {
		return nil, err
	}

	// Both queries are oldest first.
	var out []events.RawEvent
	for i := len(found) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if since > 0 && found[i].OccurredAt.Before(cutoff) {
			continue
		}
		out = append(out, found[i])
	}
	return out, nil
}

// eventDetail decodes a persisted payload into a one-line summary.
func eventDetail(registry *events.Registry, raw events.RawEvent) string {
	e, err := registry.Unmarshal(raw)
	if err != nil {
		return "-"
	}
	switch ev := e.(type) {
	case *events.DownloadProgressed:
		return fmt.Sprintf("%.0f%% (%s)", ev.Fraction*100, formatBytes(ev.BytesWritten))
	case *events.DownloadFailed:
		return fmt.Sprintf("%s: %s", ev.Op, truncate(ev.Message, 40))
	case *events.AssetDeleted:
		return ev.FileName
	}
	return "-"
}
