package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mourafe/radarb3/internal/api"
	"github.com/mourafe/radarb3/internal/api/handlers"
	"github.com/mourafe/radarb3/internal/scheduler"
	"github.com/mourafe/radarb3/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Inicia o servidor da API REST",
	Long: `Inicia o servidor HTTP da API.

Endpoints:
  GET  /health           - Health check
  GET  /api/scan         - Executa o scan (JSON)
  GET  /api/scan/csv     - Executa o scan (download CSV)
  GET  /api/universe     - Universo resolvido
  POST /api/refresh      - Limpa os caches

Example:
  go run ./cmd/radar api
  go run ./cmd/radar api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "porta do servidor (default: config)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	scanHandler := handlers.NewScanHandler(a.pipeline, a.cfg.DefaultScanParams(), a.log)
	router := api.NewRouter(scanHandler, a.log)
	server := api.New(a.cfg, a.log, router)

	// Optional nightly scan to keep the cache warm
	var sched *scheduler.Scheduler
	if a.cfg.Scheduler.Enabled {
		sched = scheduler.New(a.log)
		if err := sched.AddJob(jobs.NewScanJob(a.pipeline, a.cfg, a.log)); err != nil {
			return fmt.Errorf("add scan job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	go func() {
		if err := server.Start(); err != nil {
			a.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	a.log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/scan")
	fmt.Println("  GET  /api/scan/csv")
	fmt.Println("  GET  /api/universe")
	fmt.Println("  POST /api/refresh")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	a.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
