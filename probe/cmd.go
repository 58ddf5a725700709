package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/amp-labs/amp-sync/logger"
)

const waitDelay = 250 * time.Millisecond

// Cmd is a small builder around exec.Cmd that reports exit status instead of
// treating a non-zero exit as an error.
type Cmd struct {
	ctx      context.Context //nolint:containedctx
	cmd      *exec.Cmd
	finished []func()
}

// New prepares name with args, inheriting the current environment. The
// process is killed if ctx is done before it exits.
func New(ctx context.Context, name string, args ...string) *Cmd {
	c := exec.CommandContext(ctx, name, args...)
	c.Env = os.Environ()
	// Children that outlive a killed process may hold the output pipes open.
	c.WaitDelay = waitDelay

	return &Cmd{
		ctx: ctx,
		cmd: c,
	}
}

func (c *Cmd) SetDir(dir string) *Cmd {
	c.cmd.Dir = dir

	return c
}

// SetStdoutObserver buffers stdout and hands it to f once the process exits.
func (c *Cmd) SetStdoutObserver(f func([]byte)) *Cmd {
	var buf bytes.Buffer

	c.cmd.Stdout = &buf
	c.finished = append(c.finished, func() {
		f(buf.Bytes())
	})

	return c
}

// SetStderrObserver buffers stderr and hands it to f once the process exits.
func (c *Cmd) SetStderrObserver(f func([]byte)) *Cmd {
	var buf bytes.Buffer

	c.cmd.Stderr = &buf
	c.finished = append(c.finished, func() {
		f(buf.Bytes())
	})

	return c
}

func (c *Cmd) AppendEnv(key, value string) *Cmd {
	c.cmd.Env = append(c.cmd.Env, key+"="+value)

	return c
}

// String returns the command line.
func (c *Cmd) String() string {
	return strings.Join(c.cmd.Args, " ")
}

// Run starts the process and waits for it. It returns the exit status; the
// error is non-nil only when the process could not be run to completion
// (missing binary, permission denied, killed). A process killed because ctx
// ended reports ctx.Err().
func (c *Cmd) Run() (int, error) {
	logger.Get(c.ctx).Debug("run cmd", "cmd", c.String())

	err := c.cmd.Run()

	for _, f := range c.finished {
		f()
	}

	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}

	if ctxErr := c.ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return -1, fmt.Errorf("%w (%w)", ctxErr, err)
	}

	return -1, err
}
