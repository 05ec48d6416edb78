package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"yt-clipper/application/clip"
	"yt-clipper/domain/video"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var infoJSON bool

var (
	infoTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	infoLabelStyle = lipgloss.NewStyle().Faint(true).Width(11)
	infoBoxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// MetadataProvider looks up video metadata
type MetadataProvider interface {
	VideoInfo(ctx context.Context, id string) (*clip.VideoInfo, error)
}

var infoCmd = &cobra.Command{
	Use:   "info <url|id>",
	Short: "Show a video's title, duration and segments",
	Long: `Look up a YouTube video and list its 30 second segments.

Example:
  yt-clipper info "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
  yt-clipper info dQw4w9WgXcQ --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "print the raw JSON response")
}

func runInfo(cmd *cobra.Command, args []string) error {
	svc, err := newServices(cmd.Context(), GetConfig(), logger)
	if err != nil {
		return err
	}
	svc.loadCookies(cmd.Context(), logger)

	return RunInfoWithDependencies(cmd.Context(), svc.metadata, args[0], infoJSON, os.Stdout)
}

// RunInfoWithDependencies runs the info command with injected dependencies (for testing)
func RunInfoWithDependencies(ctx context.Context, provider MetadataProvider, input string, asJSON bool, out io.Writer) error {
	ref, err := video.ParseVideoInput(input)
	if err != nil {
		return err
	}

	info, err := provider.VideoInfo(ctx, ref.ID)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Fprintln(out, renderInfo(info))
	return nil
}

func renderInfo(info *clip.VideoInfo) string {
	row := func(label, value string) string {
		return infoLabelStyle.Render(label) + value
	}

	segments := make([]string, 0, len(info.Segments))
	for i, seg := range info.Segments {
		segments = append(segments, fmt.Sprintf("%3d  %s  (%ds)", i+1, seg, seg.Width()))
	}

	return infoBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		infoTitleStyle.Render(info.Title),
		"",
		row("Duration", video.TimestampFromSeconds(info.Duration).String()),
		row("Thumbnail", info.Thumbnail),
		row("Segments", fmt.Sprintf("%d", len(info.Segments))),
		"",
		strings.Join(segments, "\n"),
	))
}
