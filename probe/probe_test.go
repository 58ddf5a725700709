package probe

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/amp-labs/amp-sync/synchronize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCmd_Run(t *testing.T) {
	t.Parallel()
	requireShell(t)

	var stdout, stderr []byte

	code, err := New(t.Context(), "sh", "-c", `echo "$GREETING"; echo oops >&2; exit 3`).
		AppendEnv("GREETING", "hello").
		SetStdoutObserver(func(b []byte) { stdout = b }).
		SetStderrObserver(func(b []byte) { stderr = b }).
		Run()

	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, "hello\n", string(stdout))
	assert.Equal(t, "oops\n", string(stderr))
}

func TestCmd_SetDir(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()

	var stdout []byte

	code, err := New(t.Context(), "sh", "-c", "pwd").
		SetDir(dir).
		SetStdoutObserver(func(b []byte) { stdout = b }).
		Run()

	require.NoError(t, err)
	assert.Equal(t, 0, code)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Contains(t, string(stdout), filepath.Base(resolved))
}

func TestCommand(t *testing.T) {
	t.Parallel()
	requireShell(t)

	require.NoError(t, Command("sh", "-c", "exit 0")(t.Context()))

	err := Command("sh", "-c", "echo not ready >&2; exit 1")(t.Context())

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
	assert.Equal(t, "not ready", exitErr.Stderr)
	assert.False(t, synchronize.IsFatal(err))
}

func TestCommand_MissingBinaryIsFatal(t *testing.T) {
	t.Parallel()

	calls := 0
	start := time.Now()

	err := synchronize.Do(t.Context(), func(ctx context.Context) error {
		calls++

		return Command("amp-sync-definitely-not-a-binary")(ctx)
	}, 10*time.Second)

	require.ErrorIs(t, err, ErrStart)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCommand_EventuallySucceeds(t *testing.T) {
	t.Parallel()
	requireShell(t)

	marker := filepath.Join(t.TempDir(), "ready")
	time.AfterFunc(30*time.Millisecond, func() { _ = os.WriteFile(marker, nil, 0o600) })

	err := synchronize.Do(t.Context(), Command("test", "-f", marker), time.Second,
		synchronize.WithInterval(5*time.Millisecond))
	require.NoError(t, err)
}

func TestCommand_KilledAtWindowDeadline(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}

	start := time.Now()
	err := synchronize.Do(t.Context(), Command("sleep", "5"), 100*time.Millisecond,
		synchronize.WithInterval(10*time.Millisecond))

	require.ErrorIs(t, err, synchronize.ErrTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, synchronize.IsFatal(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestOutputContains(t *testing.T) {
	t.Parallel()
	requireShell(t)

	require.NoError(t, OutputContains("Success", "sh", "-c", "echo Login Success")(t.Context()))

	err := OutputContains("Success", "sh", "-c", "echo Loading; exit 2")(t.Context())
	require.ErrorIs(t, err, ErrTextNotFound)
	assert.False(t, synchronize.IsFatal(err))

	err = OutputContains("x", "amp-sync-definitely-not-a-binary")(t.Context())
	assert.True(t, synchronize.IsFatal(err))
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "flag")

	err := FileExists(path)(t.Context())
	require.ErrorIs(t, err, ErrFileMissing)
	assert.False(t, synchronize.IsFatal(err))

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	require.NoError(t, FileExists(path)(t.Context()))
}

func TestFileContains_ComposedLoginExample(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "page.txt")
	time.AfterFunc(20*time.Millisecond, func() { _ = os.WriteFile(path, []byte("Loading..."), 0o600) })
	time.AfterFunc(60*time.Millisecond, func() { _ = os.WriteFile(path, []byte("Login failed: bad password"), 0o600) })

	err := synchronize.Do(t.Context(), synchronize.Any(
		FileContains(path, "Success"),
		FileContains(path, "Login failed"),
	), time.Second, synchronize.WithInterval(5*time.Millisecond))
	require.NoError(t, err)
}

func TestFileContains_TimesOut(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "page.txt")
	require.NoError(t, os.WriteFile(path, []byte("Loading..."), 0o600))

	err := synchronize.Do(t.Context(), FileContains(path, "Success"), 20*time.Millisecond,
		synchronize.WithInterval(5*time.Millisecond))
	require.ErrorIs(t, err, synchronize.ErrTimeout)
	require.ErrorIs(t, err, ErrTextNotFound)
}

func TestTrimOutput(t *testing.T) {
	t.Parallel()

	long := make([]byte, 2*maxStderr)
	for i := range long {
		long[i] = 'a'
	}

	assert.Len(t, trimOutput(long), maxStderr+3)
	assert.Equal(t, "x", trimOutput([]byte("  x\n")))

	// "é" is two bytes; the odd prefix puts byte maxStderr mid-rune.
	wide := trimOutput([]byte("a" + strings.Repeat("é", maxStderr)))
	assert.True(t, utf8.ValidString(wide))
	assert.True(t, strings.HasSuffix(wide, "..."))
	assert.Len(t, wide, maxStderr-1+3)
}
