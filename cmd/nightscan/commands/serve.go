package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantoak/nightscan/internal/api"
	"github.com/quantoak/nightscan/internal/api/handlers"
	"github.com/quantoak/nightscan/internal/report"
	"github.com/quantoak/nightscan/internal/store"
	"github.com/quantoak/nightscan/pkg/config"
	"github.com/quantoak/nightscan/pkg/database"
	"github.com/quantoak/nightscan/pkg/logger"
)

// serveCmd exposes the report artifacts over HTTP for the dashboard.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report artifacts over HTTP",
	Long: `Starts the artifact server. The dashboard reads the report through it;
the server never runs scans itself.

Endpoints:
  GET /healthz                - Health check
  GET /api/v1/report/latest   - Latest cycle report JSON
  GET /api/v1/cycles          - Persisted cycle history (requires DATABASE_URL)

Example:
  go run ./cmd/nightscan serve
  go run ./cmd/nightscan serve --port 8080`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP port (default from PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	var cycles *store.Store
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		cycles = store.New(db, log)
	}

	latest := filepath.Join(cfg.ReportDir, report.LatestFile)
	handler := handlers.NewReportHandler(latest, cycles, log)
	server := api.New(cfg, log, api.NewRouter(handler, log))

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("serving reports on http://localhost:%s\n", cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
