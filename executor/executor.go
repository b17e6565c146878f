package executor

// Package executor runs a single shell command with a bounded wall-clock
// time and folds every failure mode into a normalized result record.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime/debug"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/cowanml/SDK/model"
	"github.com/rs/zerolog"
)

// DefaultTimeout is the hard wall-clock bound for one command execution.
const DefaultTimeout = 300 * time.Second

// Executor runs shell commands and classifies their outcome.
type Executor struct {
	logger zerolog.Logger

	// Shell is the interpreter the command line is handed to, so pipes
	// and redirections in the command are honored.
	Shell string
	// Timeout bounds the wall-clock time of one execution.
	Timeout time.Duration
}

// New returns an Executor with the default shell and timeout.
func New(logger zerolog.Logger) *Executor {
	return &Executor{
		logger:  logger,
		Shell:   "sh",
		Timeout: DefaultTimeout,
	}
}

// Execute runs command through the shell interpreter with stdout and stderr
// merged into one captured stream. It never returns an error: a non-zero
// exit, a timeout, an operator interrupt, and an unstartable shell are all
// folded into the returned record. The second return value is the full
// captured output regardless of outcome.
func (e *Executor) Execute(ctx context.Context, command string) (model.Results, string) {
	results := model.NewResults()

	runCtx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.Shell, "-c", command)

	// One buffer for both streams preserves the interleaving the command
	// produced; os/exec serializes writes when the writers are identical.
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	// A surviving grandchild can hold the output pipes open after the
	// kill; WaitDelay lets Run return anyway.
	cmd.WaitDelay = time.Second

	e.logger.Debug().
		Str("invocation", shellescape.QuoteCommand([]string{e.Shell, "-c", command})).
		Dur("timeout", e.Timeout).
		Msg("Executing command")

	runErr := cmd.Run()

	var (
		status    model.Status
		exception *string
		report    string
		raw       = out.String()
	)

	switch {
	case ctx.Err() != nil:
		// Interrupted from outside (operator ^C): the child has been
		// killed, but the record is still built and still reported.
		// Keep the point of interruption for the dashboard.
		desc := fmt.Sprintf("run interrupted: %v\n%s", context.Cause(ctx), debug.Stack())
		status = model.StatusFailed
		exception = &desc
		raw = desc
		e.logger.Warn().Msg("Run interrupted")

	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		desc := fmt.Sprintf("command timed out after %s", e.Timeout)
		status = model.StatusFailed
		exception = &desc
		report = raw
		e.logger.Warn().Dur("timeout", e.Timeout).Msg("Command timed out")

	case errors.Is(runErr, exec.ErrWaitDelay):
		// Only returned when the exit status was zero: the command
		// passed but left a child holding the output pipes open past
		// WaitDelay. The partial capture still goes back to the caller.
		status = model.StatusPassed
		e.logger.Info().Msg("Command completed successfully")

	case runErr != nil:
		var desc string
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			desc = fmt.Sprintf("command failed with exit code %d", exitErr.ExitCode())
			e.logger.Info().
				Int("exit_code", exitErr.ExitCode()).
				Msg("Command completed with failure")
		} else {
			// The shell itself could not be started.
			desc = fmt.Sprintf("command could not be executed: %v", runErr)
			e.logger.Error().Err(runErr).Msg("Failed to execute command")
		}
		status = model.StatusFailed
		exception = &desc
		report = raw

	default:
		status = model.StatusPassed
		e.logger.Info().Msg("Command completed successfully")
	}

	results.Call = model.PhaseResult{
		Passed:    status == model.StatusPassed,
		Status:    status,
		Exception: exception,
		Report:    report,
	}

	return results, raw
}
