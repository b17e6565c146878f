package report

// Package report turns test events into dashboard records. It owns the
// payload layout for the three event kinds, the console summary printed
// for command runs, and the delivery of the final envelope.

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/cowanml/SDK/config"
	"github.com/cowanml/SDK/executor"
	"github.com/cowanml/SDK/model"
)

// Sentinel names the dashboard uses to group lifecycle events apart from
// real test results.
const (
	lifecycleModule = "_conftest"
	startFunction   = "_discover_environment"
	endFunction     = "_end"
	startTestName   = "Set Environment"
	endTestName     = "End Test Series"

	// commandFunction is recorded for every command run.
	commandFunction = "main"
)

// Reporter builds and delivers one dashboard record per event.
type Reporter struct {
	logger zerolog.Logger
	cfg    config.Config
	exec   *executor.Executor
	client *Client

	// Out receives console output for command runs. Defaults to
	// os.Stdout.
	Out io.Writer
}

// New returns a Reporter wired to the given executor and dashboard client.
func New(logger zerolog.Logger, cfg config.Config, exec *executor.Executor, client *Client) *Reporter {
	return &Reporter{
		logger: logger,
		cfg:    cfg,
		exec:   exec,
		client: client,
		Out:    os.Stdout,
	}
}

// Report handles one event: it runs the command if there is one, prints
// the console summary, and posts the envelope. A failing command is a
// reportable outcome, not an error; only a delivery fault is returned.
func (r *Reporter) Report(ctx context.Context, ev Event) error {
	var data model.EventData

	switch ev := ev.(type) {
	case Start:
		data = r.startEvent()
	case End:
		data = r.endEvent()
	case CommandRun:
		data = r.commandEvent(ctx, ev)
	default:
		return fmt.Errorf("unknown event type %T", ev)
	}

	env := model.Envelope{
		ID:   r.cfg.SiteID,
		Key:  r.cfg.SiteToken,
		Data: data,
	}

	// An interrupt cancels the execution context, but the record still
	// has to reach the dashboard.
	return r.client.Send(context.WithoutCancel(ctx), env)
}

// startEvent snapshots the run identity and site configuration under the
// "Set Environment" sentinel.
func (r *Reporter) startEvent() model.EventData {
	now := model.Timestamp(time.Now())

	return model.EventData{
		RunID:         r.cfg.RunID,
		Branch:        r.cfg.Branch,
		TestName:      startTestName,
		TestStartTime: now,
		TestEndTime:   now,
		Module:        lifecycleModule,
		Function:      startFunction,
		Results:       struct{}{},
		Extras: map[string]any{
			"start_time": now,
			"git_branch": r.cfg.Branch,
			"config": map[string]any{
				"im_number":        r.cfg.IMNumber,
				"maintainer_email": r.cfg.Maintainer,
			},
		},
	}
}

// endEvent closes the series under the "End Test Series" sentinel.
func (r *Reporter) endEvent() model.EventData {
	now := model.Timestamp(time.Now())

	return model.EventData{
		RunID:         r.cfg.RunID,
		Branch:        r.cfg.Branch,
		TestName:      endTestName,
		TestStartTime: now,
		TestEndTime:   now,
		Module:        lifecycleModule,
		Function:      endFunction,
		Results:       struct{}{},
		Extras:        map[string]any{},
	}
}

// commandEvent runs the command, prints the console summary, and builds
// the result record.
func (r *Reporter) commandEvent(ctx context.Context, ev CommandRun) model.EventData {
	group := strings.ToLower(r.cfg.TestsGroup)

	name := ev.Name
	if name == "" {
		name = firstToken(ev.Command)
	}

	startTime := model.Timestamp(time.Now())
	results, raw := r.exec.Execute(ctx, ev.Command)
	endTime := model.Timestamp(time.Now())

	if ev.ShowOutput {
		fmt.Fprintln(r.Out, raw)
	}
	fmt.Fprintf(r.Out, "### %s: %s\n", name, colorStatus(results.Call.Status))

	return model.EventData{
		RunID:         r.cfg.RunID,
		Branch:        r.cfg.Branch,
		TestName:      name,
		TestStartTime: startTime,
		TestEndTime:   endTime,
		Module:        group,
		Function:      commandFunction,
		Results:       results,
		Extras: map[string]any{
			"tests_group": group,
		},
	}
}

// firstToken returns the first whitespace-delimited token of s, or s
// itself when it has none.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}

	return fields[0]
}

// colorStatus renders the status word for the console summary. Color is
// suppressed automatically when stdout is not a terminal.
func colorStatus(s model.Status) string {
	switch s {
	case model.StatusPassed:
		return color.GreenString(string(s))
	case model.StatusFailed:
		return color.RedString(string(s))
	}

	return string(s)
}
