package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/top5/internal/tasks"
)

// Summary renders the end-of-run report for result.
func Summary(result *tasks.BuildResult, dryRun bool) string {
	var b strings.Builder

	if dryRun {
		b.WriteString(styles.Title("Dry run: no playlist was changed") + "\n")
		switch result.State {
		case tasks.Found:
			fmt.Fprintf(&b, "Would clear and refill %s (ID: %s)\n", result.Playlist.Name, result.Playlist.ID)
		default:
			b.WriteString("Would create a new playlist\n")
		}
		for i, t := range result.Tracks {
			fmt.Fprintf(&b, "%3d. %s - %s\n", i+1, t.Artist, t.Name)
		}
	} else if result.Playlist != nil {
		verb := "Created"
		if result.State == tasks.Cleared {
			verb = "Refilled"
		}
		b.WriteString(styles.OK(fmt.Sprintf("✓ %s %s", verb, result.Playlist.Name)) + "\n")
		fmt.Fprintf(&b, "  ID: %s\n", result.Playlist.ID)
		if result.Removed > 0 {
			fmt.Fprintf(&b, "  Removed: %d\n", result.Removed)
		}
		fmt.Fprintf(&b, "  Tracks: %d (%d batches)\n", len(result.Tracks), result.AddBatches)
	}

	if result.CoverErr != nil {
		b.WriteString(styles.Warn(fmt.Sprintf("⚠ Cover not updated: %v", result.CoverErr)) + "\n")
	}

	if len(result.Misses) > 0 {
		b.WriteString(styles.Warn(fmt.Sprintf("⚠ %d artists skipped:", len(result.Misses))) + "\n")
		for _, m := range result.Misses {
			fmt.Fprintf(&b, "  - %s: %v\n", m.Query, m.Reason)
		}
	}

	return b.String()
}
