package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// pipeWaitDelay bounds how long a killed process may hold its pipes open
const pipeWaitDelay = 5 * time.Second

// stderrTail is how much of stderr is kept for error messages
const stderrTail = 512

// CommandRunner defines the interface for running external commands
// This allows mocking exec.Command in tests
type CommandRunner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Pipe runs a command with src as stdin and dst as stdout
	Pipe(ctx context.Context, src io.Reader, dst io.Writer, name string, args ...string) error
}

// ExecCommandRunner is the production implementation using os/exec
type ExecCommandRunner struct{}

// Output executes a command and returns its output
func (r *ExecCommandRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.Output()
}

// Pipe copies src into the command's stdin while its stdout is written to dst.
// The command may exit before src is drained; a failing src is reported even
// when the command exits cleanly on the truncated input.
func (r *ExecCommandRunner) Pipe(ctx context.Context, src io.Reader, dst io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = dst
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = pipeWaitDelay

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	copyErr := make(chan error, 1)
	go func() {
		_, err := io.Copy(stdin, src)
		// report before closing so a clean exit on EOF still sees the failure
		copyErr <- err
		stdin.Close()
	}()

	waitErr := cmd.Wait()

	var srcErr error
	select {
	case err := <-copyErr:
		if err != nil && !isClosedPipe(err) {
			srcErr = err
		}
	default:
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if srcErr != nil {
		return fmt.Errorf("reading input: %w", srcErr)
	}
	if waitErr != nil {
		if msg := tail(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", waitErr, msg)
		}
		return waitErr
	}
	return nil
}

func isClosedPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		s = s[len(s)-stderrTail:]
	}
	return s
}
