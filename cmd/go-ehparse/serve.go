package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/toozej/go-ehparse/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the parse API server",
	Long:  `Start the HTTP server exposing the parse and classify operations for the go-ehparse application`,
	Run:   runServeCommand,
}

func runServeCommand(cmd *cobra.Command, args []string) {
	if debug {
		conf.Logging.Level = "debug"
	}

	// Create server instance
	srv := server.NewServer(&conf)
	logger := srv.Logger()

	// Start server in a goroutine
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Stop(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
