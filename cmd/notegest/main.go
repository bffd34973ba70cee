// Command notegest extracts business entries from OneNote notebooks into
// spreadsheet and JSON exports.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/notegest/internal/pipeline"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// errUsage marks failures that cobra already reported with usage text.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the CLI and maps its outcome to a process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errUsage) && !errors.Is(err, pipeline.ErrNoEntries) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return exitCode(err)
}

// exitCode is the single place errors become exit statuses. A run with no
// valid entries succeeds unless --fail-on-empty turned it into a failure.
func exitCode(err error) int {
	var empty *emptyResultError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &empty):
		return 1
	case errors.Is(err, pipeline.ErrNoEntries):
		return 0
	default:
		return 1
	}
}

// emptyResultError is returned for ErrNoEntries under --fail-on-empty.
type emptyResultError struct{ err error }

func (e *emptyResultError) Error() string { return e.err.Error() }
func (e *emptyResultError) Unwrap() error { return e.err }
