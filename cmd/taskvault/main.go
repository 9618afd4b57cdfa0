package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/kutbudev/taskvault/api"
	"github.com/kutbudev/taskvault/api/handlers"
	"github.com/kutbudev/taskvault/config"
	"github.com/kutbudev/taskvault/internal/storage"
	"github.com/kutbudev/taskvault/repository"
	"github.com/spf13/cobra"
)

var debug bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskvault",
		Short: "Task tracking service with tags and file attachments",
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			log := newLogger()

			db, err := repository.NewDatabase(cfg, debug)
			if err != nil {
				return err
			}
			defer db.Close()

			store := storage.New(cfg.Storage.UploadDir, cfg.Storage.MaxUploadBytes, log)
			h := handlers.New(
				repository.NewTaskRepository(db.DB),
				repository.NewFileRepository(db.DB),
				store,
				log,
			)

			log.Info("starting server", "addr", cfg.Addr(), "upload_dir", cfg.Storage.UploadDir)
			return api.NewRouter(h).Run(cfg.Addr())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// NewDatabase migrates on connect.
			db, err := repository.NewDatabase(cfg, debug)
			if err != nil {
				return err
			}
			defer db.Close()

			newLogger().Info("schema migrated", "database", cfg.Database.Name)
			return nil
		},
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
