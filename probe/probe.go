// Package probe builds synchronize checks for conditions outside the process:
// commands that eventually exit cleanly or print something, and files that
// eventually appear or contain something.
//
//	err := synchronize.Do(ctx, synchronize.Any(
//	    probe.FileContains("/var/log/app.log", "Success"),
//	    probe.FileContains("/var/log/app.log", "Login failed"),
//	), 20*time.Second)
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/amp-labs/amp-sync/synchronize"
)

var (
	// ErrStart is returned (fatally) when a command cannot be started.
	ErrStart = errors.New("cannot start command")

	// ErrTextNotFound is returned while expected text has not appeared yet.
	ErrTextNotFound = errors.New("text not found")

	// ErrFileMissing is returned while a file does not exist yet.
	ErrFileMissing = errors.New("file missing")
)

// ExitError is the retryable error for a command that exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}

	return msg
}

const maxStderr = 512

func trimOutput(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxStderr {
		cut := maxStderr
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}

		s = s[:cut] + "..."
	}

	return s
}

// startError decides whether a failure to run is worth retrying. A missing
// or non-executable binary won't fix itself.
func startError(command string, err error) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return synchronize.Fatal(fmt.Errorf("%w %s: %w", ErrStart, command, err))
	}

	return fmt.Errorf("%s: %w", command, err)
}

// Command holds once name exits with status 0. Any other status is retried;
// a command that cannot be started is fatal.
func Command(name string, args ...string) synchronize.Check {
	return func(ctx context.Context) error {
		var stderr []byte

		c := New(ctx, name, args...).SetStderrObserver(func(b []byte) { stderr = b })

		code, err := c.Run()
		if err != nil {
			return startError(c.String(), err)
		}

		if code != 0 {
			return &ExitError{Command: c.String(), Code: code, Stderr: trimOutput(stderr)}
		}

		return nil
	}
}

// OutputContains holds once name prints text on stdout. The exit status is
// not considered; a command that cannot be started is fatal.
func OutputContains(text string, name string, args ...string) synchronize.Check {
	return func(ctx context.Context) error {
		var stdout []byte

		c := New(ctx, name, args...).SetStdoutObserver(func(b []byte) { stdout = b })

		if _, err := c.Run(); err != nil {
			return startError(c.String(), err)
		}

		if !bytes.Contains(stdout, []byte(text)) {
			return fmt.Errorf("%w: %q in output of %s", ErrTextNotFound, text, c.String())
		}

		return nil
	}
}

// FileExists holds once path exists. Errors other than "does not exist"
// (permission denied, for instance) are fatal.
func FileExists(path string) synchronize.Check {
	return func(_ context.Context) error {
		_, err := os.Stat(path)

		return fileError(path, err)
	}
}

// FileContains holds once path exists and contains text.
func FileContains(path string, text string) synchronize.Check {
	return func(_ context.Context) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fileError(path, err)
		}

		if !bytes.Contains(data, []byte(text)) {
			return fmt.Errorf("%w: %q in %s", ErrTextNotFound, text, path)
		}

		return nil
	}
}

func fileError(path string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrFileMissing, path)
	default:
		return synchronize.Fatal(err)
	}
}
