package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/cowanml/SDK/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestExecutor() *Executor {
	return New(zerolog.Nop())
}

func TestExecutePassingCommand(t *testing.T) {
	e := newTestExecutor()

	results, raw := e.Execute(context.Background(), "echo hello")

	require.True(t, results.Call.Passed)
	require.Equal(t, model.StatusPassed, results.Call.Status)
	require.Nil(t, results.Call.Exception)
	// Output of a passing command is discarded from the record but still
	// returned for display.
	require.Empty(t, results.Call.Report)
	require.Equal(t, "hello\n", raw)
}

func TestExecuteBackgroundChildKeepsPipeOpen(t *testing.T) {
	e := newTestExecutor()

	start := time.Now()
	results, raw := e.Execute(context.Background(), "sleep 5 & echo started")
	elapsed := time.Since(start)

	// The shell exits zero immediately while the sleep it left behind
	// holds the output pipe open until WaitDelay cuts the wait short.
	// The exit status, not the abandoned pipe, classifies the run.
	require.True(t, results.Call.Passed)
	require.Equal(t, model.StatusPassed, results.Call.Status)
	require.Nil(t, results.Call.Exception)
	require.Empty(t, results.Call.Report)
	require.Contains(t, raw, "started\n")
	require.Less(t, elapsed, 4*time.Second)
}

func TestExecuteFailingCommandKeepsOutput(t *testing.T) {
	e := newTestExecutor()

	results, raw := e.Execute(context.Background(), "echo boom; exit 3")

	require.False(t, results.Call.Passed)
	require.Equal(t, model.StatusFailed, results.Call.Status)
	require.NotNil(t, results.Call.Exception)
	require.Contains(t, *results.Call.Exception, "exit code 3")
	require.Equal(t, "boom\n", results.Call.Report)
	require.Equal(t, "boom\n", raw)
}

func TestExecuteFailingCommandWithoutOutput(t *testing.T) {
	e := newTestExecutor()

	results, raw := e.Execute(context.Background(), "exit 1")

	require.False(t, results.Call.Passed)
	require.NotNil(t, results.Call.Exception)
	require.Contains(t, *results.Call.Exception, "exit code 1")
	// No output was produced, so the report is the empty capture, not
	// some placeholder.
	require.Empty(t, results.Call.Report)
	require.Empty(t, raw)
}

func TestExecuteMergesStderrIntoStdout(t *testing.T) {
	e := newTestExecutor()

	results, _ := e.Execute(context.Background(), "echo out; echo err 1>&2; false")

	require.Equal(t, model.StatusFailed, results.Call.Status)
	require.Equal(t, "out\nerr\n", results.Call.Report)
}

func TestExecuteTimeout(t *testing.T) {
	e := newTestExecutor()
	e.Timeout = 100 * time.Millisecond

	start := time.Now()
	results, _ := e.Execute(context.Background(), "echo early; sleep 5")
	elapsed := time.Since(start)

	require.False(t, results.Call.Passed)
	require.Equal(t, model.StatusFailed, results.Call.Status)
	require.NotNil(t, results.Call.Exception)
	require.Contains(t, *results.Call.Exception, "timed out")
	// Output emitted before the deadline survives in the report.
	require.Equal(t, "early\n", results.Call.Report)
	// The call returns at the deadline, not after the command would have
	// finished on its own.
	require.Less(t, elapsed, 3*time.Second)
}

func TestExecuteInterrupt(t *testing.T) {
	e := newTestExecutor()

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(50*time.Millisecond, cancel)
	defer timer.Stop()

	start := time.Now()
	results, raw := e.Execute(ctx, "sleep 5")
	elapsed := time.Since(start)

	require.False(t, results.Call.Passed)
	require.Equal(t, model.StatusFailed, results.Call.Status)
	require.NotNil(t, results.Call.Exception)
	require.Contains(t, *results.Call.Exception, "run interrupted")
	require.Empty(t, results.Call.Report)
	// The raw output carries the captured stack of the interruption point.
	require.Contains(t, raw, "goroutine")
	require.Less(t, elapsed, 3*time.Second)
}

func TestExecuteUnstartableShell(t *testing.T) {
	e := newTestExecutor()
	e.Shell = "/nonexistent/shell"

	results, _ := e.Execute(context.Background(), "echo hello")

	require.False(t, results.Call.Passed)
	require.Equal(t, model.StatusFailed, results.Call.Status)
	require.NotNil(t, results.Call.Exception)
	require.Contains(t, *results.Call.Exception, "could not be executed")
}

func TestExecuteDeterministicCommandYieldsEqualRecords(t *testing.T) {
	e := newTestExecutor()

	first, _ := e.Execute(context.Background(), "echo same")
	second, _ := e.Execute(context.Background(), "echo same")

	require.Equal(t, first, second)

	firstFail, _ := e.Execute(context.Background(), "echo same; exit 2")
	secondFail, _ := e.Execute(context.Background(), "echo same; exit 2")

	require.Equal(t, firstFail.Call.Status, secondFail.Call.Status)
	require.Equal(t, *firstFail.Call.Exception, *secondFail.Call.Exception)
	require.Equal(t, firstFail.Call.Report, secondFail.Call.Report)

	if !strings.HasSuffix(firstFail.Call.Report, "\n") {
		t.Errorf("expected captured output to end with newline, got %q", firstFail.Call.Report)
	}
}
