package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/Civic-3-io/citizen-connect-ind/internal/app/client"
	"github.com/Civic-3-io/citizen-connect-ind/internal/app/client/config"
	"github.com/Civic-3-io/citizen-connect-ind/internal/utils/logger"
)

var (
	cfg       *config.Config
	log       *slog.Logger
	app       *client.App
	serverURL string
)

var rootCmd = &cobra.Command{
	Use:   "citizenconnect",
	Short: "CitizenConnect - report civic issues, online or offline",
	Long: `CitizenConnect is a client for reporting civic issues (potholes, water
leaks, broken streetlights and more) to the municipal authority.

Reports are stored locally first and synced to the server whenever a
connection is available, so nothing is lost when the network drops.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg = config.MustLoad()

	if serverURL != "" {
		cfg.ServerAddress = serverURL
	}

	log = logger.New(cfg.Env)

	var err error
	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	cmd.SetContext(context.WithValue(cmd.Context(), client.CtxKey, app))
	return nil
}

func init() {
	cobra.OnInitialize()

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "address of the CitizenConnect server")
}
