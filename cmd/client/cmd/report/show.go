package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Civic-3-io/citizen-connect-ind/internal/app/client"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/queue"
)

var showJSON bool

var ShowCmd = &cobra.Command{
	Use:   "show <local-id>",
	Short: "Show one report in detail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := client.FromContext(cmd.Context())
		if !ok {
			return fmt.Errorf("application not initialized")
		}

		rec, err := app.Queue().Get(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, queue.ErrNotFound) {
				return fmt.Errorf("no report with id %s", args[0])
			}
			return fmt.Errorf("failed to load report: %w", err)
		}

		if showJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(rec)
		}

		fmt.Printf("Title:       %s\n", rec.Payload.Title)
		fmt.Printf("Category:    %s\n", rec.Payload.Category.DisplayName())
		fmt.Printf("Priority:    %s\n", rec.Payload.Priority.DisplayName())
		fmt.Printf("State:       %s\n", stateBadge(rec.State))
		fmt.Printf("Local ID:    %s\n", rec.LocalID)
		fmt.Printf("Created:     %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05"))
		if rec.Payload.Location != "" {
			fmt.Printf("Location:    %s\n", rec.Payload.Location)
		}
		if rec.Payload.Latitude != nil && rec.Payload.Longitude != nil {
			fmt.Printf("Coordinates: %.6f, %.6f\n", *rec.Payload.Latitude, *rec.Payload.Longitude)
		}
		fmt.Printf("\n%s\n", rec.Payload.Description)

		if len(rec.Attachments) > 0 {
			fmt.Printf("\nAttachments (%d):\n", len(rec.Attachments))
			for _, a := range rec.Attachments {
				fmt.Printf("  %s (%d bytes)\n", a.Path, a.Size)
			}
		}

		fmt.Println()
		switch rec.State {
		case queue.StateSynced:
			fmt.Printf("Tracking ID: %s (synced %s)\n",
				rec.RemoteID, rec.SyncedAt.Format("2006-01-02 15:04:05"))
		case queue.StateFailed:
			fmt.Printf("Attempts:    %d\n", rec.AttemptCount)
			fmt.Printf("Last error:  %s (%s)\n", rec.LastError, rec.LastErrorKind)
		default:
			fmt.Printf("Attempts:    %d\n", rec.AttemptCount)
		}

		return nil
	},
}

func init() {
	ShowCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
}
