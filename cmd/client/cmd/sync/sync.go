package sync

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Civic-3-io/citizen-connect-ind/internal/app/client"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/queue"
)

var (
	syncID         string
	syncStatus     bool
	syncPurgeOlder time.Duration
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Submit queued reports to the authority",
	Long: `Submits all pending reports to the municipal authority, oldest first.
Reports that fail with a temporary error are retried with backoff on later
runs; rejected reports stay on the device until deleted.

Use --id to push a single report immediately, --status to check
connectivity and queue counts without submitting anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := client.FromContext(cmd.Context())
		if !ok {
			return fmt.Errorf("application not initialized")
		}

		switch {
		case syncStatus:
			return runStatus(cmd, app)
		case syncPurgeOlder > 0:
			return runPurge(cmd, app)
		case syncID != "":
			return runSingle(cmd, app)
		default:
			return runBatch(cmd, app)
		}
	},
}

func runBatch(cmd *cobra.Command, app *client.App) error {
	fmt.Println("Syncing queued reports...")

	res, err := app.Queue().SyncAll(cmd.Context())
	if err != nil {
		if errors.Is(err, queue.ErrBatchInProgress) {
			return fmt.Errorf("a sync is already running")
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	if res.Selected == 0 {
		if res.StoppedEarly {
			fmt.Println(color.YellowString("Offline — nothing was submitted."))
		} else {
			fmt.Println("Nothing to sync.")
		}
		return nil
	}

	fmt.Printf("\nSelected: %d\n", res.Selected)
	fmt.Printf("Synced:   %s\n", color.GreenString("%d", res.Synced))
	if res.Failed > 0 {
		fmt.Printf("Failed:   %s\n", color.RedString("%d", res.Failed))
	}
	if res.StoppedEarly {
		fmt.Println(color.YellowString("Sync stopped early: connection lost."))
	}
	for _, be := range res.Errors {
		fmt.Printf("  %s: %s\n", be.LocalID, be.Error)
	}
	fmt.Printf("Done in %s\n", res.Duration.Round(time.Millisecond))

	return nil
}

func runSingle(cmd *cobra.Command, app *client.App) error {
	rec, err := app.Queue().SyncNow(cmd.Context(), syncID)
	if err != nil {
		switch {
		case errors.Is(err, queue.ErrNotFound):
			return fmt.Errorf("no report with id %s", syncID)
		case errors.Is(err, queue.ErrSyncInProgress):
			return fmt.Errorf("report is already being submitted")
		default:
			return fmt.Errorf("sync failed: %w", err)
		}
	}

	switch rec.State {
	case queue.StateSynced:
		fmt.Printf("%s Tracking ID: %s\n", color.GreenString("Report submitted."), rec.RemoteID)
	case queue.StateFailed:
		fmt.Printf("%s %s\n", color.RedString("Submission failed:"), rec.LastError)
		fmt.Printf("Attempts so far: %d\n", rec.AttemptCount)
	default:
		fmt.Printf("Report is now %s\n", rec.State.DisplayName())
	}

	return nil
}

func runStatus(cmd *cobra.Command, app *client.App) error {
	online := app.Monitor().Probe(cmd.Context())
	if online {
		fmt.Printf("Server:   %s\n", color.GreenString("reachable"))
	} else {
		fmt.Printf("Server:   %s\n", color.RedString("unreachable"))
	}

	recs, err := app.Queue().List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}

	counts := map[queue.State]int{}
	for _, rec := range recs {
		counts[rec.State]++
	}

	fmt.Printf("Queue:    %d reports\n", len(recs))
	fmt.Printf("  pending: %d  syncing: %d  synced: %d  failed: %d\n",
		counts[queue.StatePending],
		counts[queue.StateSyncing],
		counts[queue.StateSynced],
		counts[queue.StateFailed],
	)

	return nil
}

func runPurge(cmd *cobra.Command, app *client.App) error {
	n, err := app.Queue().PurgeSynced(cmd.Context(), syncPurgeOlder)
	if err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	fmt.Printf("Removed %d synced reports older than %s.\n", n, syncPurgeOlder)
	return nil
}

func init() {
	SyncCmd.Flags().StringVar(&syncID, "id", "", "sync a single report by local id")
	SyncCmd.Flags().BoolVar(&syncStatus, "status", false, "show connectivity and queue counts")
	SyncCmd.Flags().DurationVar(&syncPurgeOlder, "purge-older", 0, "remove synced reports older than this (e.g. 720h)")
}
