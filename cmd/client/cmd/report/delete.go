package report

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Civic-3-io/citizen-connect-ind/internal/app/client"
	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/queue"
)

var DeleteCmd = &cobra.Command{
	Use:   "delete <local-id>",
	Short: "Delete a queued report",
	Long: `Removes a report from the local queue. A report that is currently
being submitted cannot be deleted; wait for the attempt to finish.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := client.FromContext(cmd.Context())
		if !ok {
			return fmt.Errorf("application not initialized")
		}

		err := app.Queue().Delete(cmd.Context(), args[0])
		if err != nil {
			switch {
			case errors.Is(err, queue.ErrNotFound):
				return fmt.Errorf("no report with id %s", args[0])
			case errors.Is(err, queue.ErrNotDeletable):
				return fmt.Errorf("report is being submitted right now, try again in a moment")
			default:
				return fmt.Errorf("failed to delete report: %w", err)
			}
		}

		fmt.Printf("Report %s deleted.\n", args[0])
		return nil
	},
}
