package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"IncidentScanner/internal/app"
	"IncidentScanner/internal/config"
	"IncidentScanner/internal/logging"
)

var (
	configFile string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "incidentscanner",
	Short: "Collects security incident reports from Nigerian news feeds",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
			log.Printf("cannot load %s: %v", envFile, err)
		}
		if configFile != "" {
			os.Setenv("INCIDENT_SCANNER_CONFIG", configFile)
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		application, err := build(ctx)
		if err != nil {
			return err
		}
		defer application.Close()

		stats, err := application.RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("fetched=%d relevant=%d classified=%d persisted=%d duplicates=%d errors=%d\n",
			stats.Fetched, stats.Relevant, stats.Classified, stats.Persisted, stats.Duplicates, stats.Errors)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline on a schedule and expose the ops HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		application, err := build(ctx)
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Serve(ctx)
	},
}

func build(ctx context.Context) (*app.Application, error) {
	cfg := config.Load()
	logger := logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format)
	return app.New(ctx, cfg, logger)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML config (overrides INCIDENT_SCANNER_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to dotenv file")
	rootCmd.AddCommand(runCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
