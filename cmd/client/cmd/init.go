package cmd

import (
	"github.com/spf13/cobra"

	reportcmd "github.com/Civic-3-io/citizen-connect-ind/cmd/client/cmd/report"
	synccmd "github.com/Civic-3-io/citizen-connect-ind/cmd/client/cmd/sync"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the background sync agent",
	Long: `Starts the connectivity monitor and the periodic sync loop and keeps
them running until interrupted. Queued reports are submitted automatically
whenever the server is reachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer app.Shutdown()
		return app.Run()
	},
}

func init() {
	rootCmd.AddCommand(reportcmd.ReportCmd)
	reportcmd.ReportCmd.AddCommand(reportcmd.CreateCmd)
	reportcmd.ReportCmd.AddCommand(reportcmd.ListCmd)
	reportcmd.ReportCmd.AddCommand(reportcmd.ShowCmd)
	reportcmd.ReportCmd.AddCommand(reportcmd.DeleteCmd)

	rootCmd.AddCommand(synccmd.SyncCmd)
	rootCmd.AddCommand(runCmd)
}
