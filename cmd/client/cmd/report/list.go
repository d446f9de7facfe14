package report

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Civic-3-io/citizen-connect-ind/internal/app/client"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/queue"
)

var (
	listFormat string
	listState  string
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued reports",
	Long: `Shows every report on this device, oldest first, with its sync state.

Pending reports wait for the next sync; failed reports show the last error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := client.FromContext(cmd.Context())
		if !ok {
			return fmt.Errorf("application not initialized")
		}

		recs, err := app.Queue().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list reports: %w", err)
		}

		if listState != "" {
			filtered := recs[:0]
			for _, rec := range recs {
				if rec.State == queue.State(listState) {
					filtered = append(filtered, rec)
				}
			}
			recs = filtered
		}

		switch listFormat {
		case "json":
			return printReportsJSON(recs)
		case "table":
			return printReportsTable(recs)
		default:
			return printReportsSimple(recs)
		}
	},
}

func printReportsSimple(recs []*queue.QueuedReport) error {
	if len(recs) == 0 {
		fmt.Println("No reports found")
		return nil
	}

	fmt.Printf("Reports: %d\n\n", len(recs))

	for i, rec := range recs {
		fmt.Printf("%d. %s [%s]\n", i+1, rec.Payload.Title, stateBadge(rec.State))
		fmt.Printf("   ID: %s | %s | created %s\n",
			rec.LocalID,
			rec.Payload.Category.DisplayName(),
			rec.CreatedAt.Format("2006-01-02 15:04"))
		if rec.RemoteID != "" {
			fmt.Printf("   Tracking: %s\n", rec.RemoteID)
		}
		if rec.State == queue.StateFailed {
			fmt.Printf("   Last error (attempt %d): %s\n", rec.AttemptCount, rec.LastError)
		}
		fmt.Println()
	}

	return nil
}

func printReportsTable(recs []*queue.QueuedReport) error {
	if len(recs) == 0 {
		fmt.Println("No reports found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tTitle\tCategory\tState\tAttempts\tTracking\tCreated\t\n")
	fmt.Fprintf(w, "---\t---\t---\t---\t---\t---\t---\t\n")

	for _, rec := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t\n",
			shortID(rec.LocalID),
			truncate(rec.Payload.Title, 30),
			rec.Payload.Category,
			rec.State,
			rec.AttemptCount,
			rec.RemoteID,
			rec.CreatedAt.Format("2006-01-02"),
		)
	}

	w.Flush()
	fmt.Printf("\nTotal reports: %d\n", len(recs))
	return nil
}

func printReportsJSON(recs []*queue.QueuedReport) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(recs)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func init() {
	ListCmd.Flags().StringVarP(&listFormat, "format", "f", "simple", "output format (simple, table, json)")
	ListCmd.Flags().StringVarP(&listState, "state", "s", "", "filter by state (pending, syncing, synced, failed)")
}
