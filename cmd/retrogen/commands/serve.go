package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Malifforas/music/pkg/api"
)

var (
	flagAddr            string
	flagShutdownTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the composition API over HTTP using the library and store of the
selected context.

Examples:
  retrogen serve --addr :8080
  curl -X POST localhost:8080/compositions -d '{"scale":"major","seed":42}'
  curl -o tune.mid localhost:8080/compositions/<id>/midi`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().DurationVar(&flagShutdownTimeout, "shutdown-timeout", 5*time.Second, "graceful shutdown timeout")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, closeStudio, err := openStudio(ctx)
	if err != nil {
		return err
	}
	defer closeStudio()

	srv := &http.Server{
		Addr:              flagAddr,
		Handler:           api.NewHandler(s, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", flagAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), flagShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
