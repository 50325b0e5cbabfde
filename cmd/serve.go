package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ngocvo/rollcall/internal/config"
	"github.com/ngocvo/rollcall/internal/store"
	"github.com/ngocvo/rollcall/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the rollcall web server. The server exposes attendance
analysis, async reconciliation tasks with SSE progress, report downloads,
and persisted run history.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// portFromEnv parses a WEB_PORT override, keeping the flag value when the
// variable is unset or not a usable port number.
func portFromEnv(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 || n > 65535 {
		fmt.Printf("Warning: ignoring invalid WEB_PORT %q\n", value)
		return fallback
	}
	return n
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	port := portFromEnv(os.Getenv("WEB_PORT"), mustGetInt(cmd, "port"))
	host := mustGetString(cmd, "host")
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}

	runs, err := store.Open(cfg.Database.Path)
	if err != nil {
		fmt.Printf("Warning: run history disabled: %v\n", err)
		runs = nil
	} else {
		defer runs.Close()
	}

	server := web.NewServer(cfg, port, host, runs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting rollcall on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
