// Command genesis-validate scans a cloud project for compliance and
// isolation violations and renders scored reports.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes. Scan failure (a completed scan whose overall status is FAIL)
// is distinct from operational errors so CI gates can tell them apart.
const (
	exitPass  = 0
	exitFail  = 1
	exitError = 2
)

// errOverallFail signals a completed scan with overall status FAIL. The
// report has already been printed; main only maps it to the exit code.
var errOverallFail = errors.New("overall status FAIL")

func main() {
	ctx, stop := rootContext()
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errOverallFail) {
			os.Exit(exitFail)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitError)
	}
	os.Exit(exitPass)
}

// rootContext returns a context cancelled on interrupt or termination. A
// scan in flight sees the cancellation, lets its running checks finish, and
// persists a partial report instead of dying mid-run.
func rootContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
