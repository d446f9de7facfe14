package report

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Civic-3-io/citizen-connect-ind/internal/domain/queue"
)

var ReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Manage civic issue reports",
	Long: `Create, list and delete civic issue reports.

New reports are queued locally and submitted to the municipal authority the
next time a sync runs. Use 'citizenconnect sync' to push them immediately.`,
}

// stateBadge renders a colored state label for terminal output.
func stateBadge(s queue.State) string {
	switch s {
	case queue.StatePending:
		return color.YellowString(s.DisplayName())
	case queue.StateSyncing:
		return color.CyanString(s.DisplayName())
	case queue.StateSynced:
		return color.GreenString(s.DisplayName())
	case queue.StateFailed:
		return color.RedString(s.DisplayName())
	default:
		return s.DisplayName()
	}
}
