package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"yt-clipper/application/clip"
	"yt-clipper/domain/video"
	"yt-clipper/infrastructure/filesystem"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	clipStart  string
	clipEnd    string
	clipOutput string
	clipForce  bool
)

// ClipExtractor prepares and streams audio clips
type ClipExtractor interface {
	Prepare(ctx context.Context, req *video.ClipRequest) (*clip.Clip, error)
	Stream(ctx context.Context, c *clip.Clip, dst io.Writer) error
}

var clipCmd = &cobra.Command{
	Use:   "clip <url|id>",
	Short: "Cut a window of a video's audio into an MP3",
	Long: `Cut the [start, end) window of a video's audio into an MP3 file.

Times are seconds, MM:SS or HH:MM:SS. The file is named
<Title>_<start>-<end>.mp3 unless --output is given; --output - writes to stdout.

Example:
  yt-clipper clip dQw4w9WgXcQ --start 1:00 --end 1:30
  yt-clipper clip "https://youtu.be/dQw4w9WgXcQ" --end 45 --output clips/
  yt-clipper clip dQw4w9WgXcQ --output - | mpv -`,
	Args: cobra.ExactArgs(1),
	RunE: runClip,
}

func init() {
	rootCmd.AddCommand(clipCmd)
	clipCmd.Flags().StringVar(&clipStart, "start", "0", "window start")
	clipCmd.Flags().StringVar(&clipEnd, "end", "30", "window end")
	clipCmd.Flags().StringVarP(&clipOutput, "output", "o", "", "output file or directory, - for stdout")
	clipCmd.Flags().BoolVarP(&clipForce, "force", "f", false, "overwrite an existing file")
}

func runClip(cmd *cobra.Command, args []string) error {
	svc, err := newServices(cmd.Context(), GetConfig(), logger)
	if err != nil {
		return err
	}

	verifyCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := svc.encoder.VerifyInstalled(verifyCtx); err != nil {
		return fmt.Errorf("ffmpeg verification failed: %w", err)
	}

	svc.loadCookies(cmd.Context(), logger)

	return RunClipWithDependencies(cmd.Context(), svc.extract, afero.NewOsFs(), ClipInput{
		Video:  args[0],
		Start:  clipStart,
		End:    clipEnd,
		Output: clipOutput,
		Force:  clipForce,
	}, os.Stdout, os.Stderr)
}

// ClipInput represents the input for a clip operation
type ClipInput struct {
	Video  string
	Start  string
	End    string
	Output string
	Force  bool
}

// RunClipWithDependencies runs the clip command with injected dependencies (for testing).
// Progress goes to status; audio goes to stdout only with Output "-".
func RunClipWithDependencies(ctx context.Context, extractor ClipExtractor, fs afero.Fs, input ClipInput, stdout, status io.Writer) error {
	ref, err := video.ParseVideoInput(input.Video)
	if err != nil {
		return err
	}

	start, err := video.ParseOffset(input.Start)
	if err != nil {
		return fmt.Errorf("invalid start time: %w", err)
	}
	end, err := video.ParseOffset(input.End)
	if err != nil {
		return fmt.Errorf("invalid end time: %w", err)
	}

	req, err := video.NewClipRequest(ref.ID, start.TotalSeconds(), end.TotalSeconds())
	if err != nil {
		return err
	}

	c, err := extractor.Prepare(ctx, req)
	if err != nil {
		return err
	}

	if input.Output == "-" {
		return extractor.Stream(ctx, c, stdout)
	}

	path := input.Output
	if path == "" {
		path = c.Filename
	} else if isDir, _ := afero.IsDir(fs, path); isDir || os.IsPathSeparator(path[len(path)-1]) {
		path = filepath.Join(path, c.Filename)
	}

	if filesystem.NewChecker(fs).Exists(path) && !input.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	fmt.Fprintf(status, "Clipping %q %s...\n", c.Source.Title, req.Window)

	if err := filesystem.WriteAtomic(fs, path, func(w io.Writer) error {
		return extractor.Stream(ctx, c, w)
	}); err != nil {
		return err
	}

	fmt.Fprintf(status, "Successfully created: %s\n", path)
	return nil
}
