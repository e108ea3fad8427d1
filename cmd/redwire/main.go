// Command redwire computes the arrival order of redstone signal lines.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/redwire/internal/cli"
	rwerrors "github.com/matzehuels/redwire/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	os.Exit(exitCode(cli.Execute(ctx)))
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	var malformed *rwerrors.MalformedRunError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130 // Standard shell convention for SIGINT
	case errors.As(err, &malformed):
		return 2
	}
	fmt.Fprintln(os.Stderr, "Error:", rwerrors.UserMessage(err))
	return 1
}
