package common

import (
	"context"
	"time"

	"github.com/minwonhaeso/esc-server/internal/observability"
	"github.com/minwonhaeso/esc-server/internal/tools/ui"
)

type Action func(ctx context.Context) ([]string, error)

// Run executes a tool action, through the TUI unless ci is set, and prints
// the machine-readable result in ci mode.
func Run(tool, command string, ci bool, timeout time.Duration, action Action) ([]string, error) {
	start := time.Now()
	var (
		details []string
		err     error
	)
	if ci {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		details, err = action(ctx)
		cancel()
	} else {
		details, err = ui.Run(tool+" "+command, timeout, action)
	}

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ctx := context.Background()
	observability.RecordToolCommandRun(ctx, tool, command, outcome)
	observability.RecordToolCommandDuration(ctx, tool, command, outcome, time.Since(start))

	if ci {
		PrintCIResult(err == nil, tool+" "+command, details, err)
	}
	return details, err
}
