package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yt-clipper/infrastructure/httpapi"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve video info and clip downloads over HTTP",
	Long: `Start the HTTP server.

Endpoints:
  GET /video-info?videoId=<id>
  GET /download-audio?videoId=<id>&start=<seconds>&end=<seconds>
  GET /download-cookie
  GET /healthz

The same endpoints are also served under /api.

Example:
  yt-clipper serve --addr :8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newServices(ctx, cfg, logger)
	if err != nil {
		return err
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := svc.encoder.VerifyInstalled(verifyCtx); err != nil {
		return fmt.Errorf("ffmpeg verification failed: %w", err)
	}

	svc.loadCookies(ctx, logger)
	go svc.cookies.Run(ctx, cfg.Cookies.RefreshInterval.Duration)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           httpapi.New(svc.metadata, svc.extract, svc.refresher(), logger),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Server.Addr).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("could not listen on %s: %w", cfg.Server.Addr, err)
		}
	case <-ctx.Done():
	}
	logger.Info("Server is shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Server exited gracefully")
	return nil
}
