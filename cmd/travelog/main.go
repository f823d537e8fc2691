package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fallincloud/travelog/internal/config"
	"github.com/fallincloud/travelog/internal/db"
	"github.com/fallincloud/travelog/internal/imagestore/local"
	"github.com/fallincloud/travelog/internal/logging"
	"github.com/fallincloud/travelog/internal/service"
	"github.com/fallincloud/travelog/internal/store"
	"github.com/fallincloud/travelog/internal/web"
	"github.com/fallincloud/travelog/internal/web/templates"
)

func main() {
	root := &cobra.Command{
		Use:          "travelog",
		Short:        "Travel blog with itineraries and departure countdowns",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newInitAdminCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDatabase(database, logger)

	images, err := local.NewLocalImageStore(cfg.UploadPath)
	if err != nil {
		logger.Error("failed to initialize image store", "error", err)
		return err
	}

	travelService := service.NewTravelService(
		store.NewTravelStore(database),
		store.NewItineraryStore(database),
		images,
		logger,
	)
	authService := service.NewAuthService(store.NewUserStore(database), logger)

	server := web.NewServer(travelService, authService, images, templates.FS, cfg.SessionSecret, logger)
	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

func newInitAdminCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "init-admin",
		Short: "Create the admin account if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitAdmin(cmd.Context(), username, email, password)
		},
	}
	cmd.Flags().StringVar(&username, "username", "admin", "admin username")
	cmd.Flags().StringVar(&email, "email", "admin@example.com", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password (required)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func runInitAdmin(ctx context.Context, username, email, password string) error {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer closeDatabase(database, logger)

	created, err := service.NewAuthService(store.NewUserStore(database), logger).
		EnsureAdmin(ctx, username, email, password)
	if err != nil {
		return fmt.Errorf("init admin: %w", err)
	}
	if created {
		fmt.Printf("admin account %q created\n", username)
	} else {
		fmt.Println("an admin account already exists, nothing to do")
	}
	return nil
}

func openDatabase(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, err
	}
	return database, nil
}

func closeDatabase(database *sql.DB, logger *slog.Logger) {
	if err := database.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
	}
}
