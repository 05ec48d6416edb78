package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"yt-clipper/infrastructure/config"

	"github.com/spf13/cobra"
)

// CookieRefresher pulls a fresh credential artifact
type CookieRefresher interface {
	Refresh(ctx context.Context) error
}

var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Manage the session cookie file",
}

var cookiesRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Download the cookie file from the configured source",
	Long: `Download the cookie export from cookies.source (http or drive) and store it
at cookies.path for the server and the clip command.

Example:
  BLOB_URL=https://store.example.com/cookies.json yt-clipper cookies refresh`,
	Args: cobra.NoArgs,
	RunE: runCookiesRefresh,
}

func init() {
	rootCmd.AddCommand(cookiesCmd)
	cookiesCmd.AddCommand(cookiesRefreshCmd)
}

func runCookiesRefresh(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg.Cookies.Source == config.CookieSourceNone {
		return fmt.Errorf("no cookie source configured; set cookies.source to http or drive")
	}

	svc, err := newServices(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	return RunCookiesRefreshWithDependencies(cmd.Context(), svc.cookies, cfg.Cookies.Path, os.Stdout)
}

// RunCookiesRefreshWithDependencies runs the refresh with injected dependencies (for testing)
func RunCookiesRefreshWithDependencies(ctx context.Context, refresher CookieRefresher, path string, out io.Writer) error {
	fmt.Fprintln(out, "Downloading cookie file...")
	if err := refresher.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Cookie file saved to %s\n", path)
	return nil
}
