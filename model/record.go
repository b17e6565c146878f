package model

import "time"

// TimeLayout is the timestamp layout the dashboard ingests. Earlier
// generations of the reporting tooling emitted this exact format, and the
// dashboard's parser is keyed to it.
const TimeLayout = "2006-01-02 15:04:05.000000"

// Timestamp formats t in the dashboard's timestamp layout.
func Timestamp(t time.Time) string {
	return t.Format(TimeLayout)
}

// Status classifies the outcome of a test phase. The zero value marks a
// phase that has not been classified yet.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// PhaseResult is the pass/fail outcome of one logical phase of a test run.
type PhaseResult struct {
	// Whether the phase passed; always equals Status == StatusPassed
	Passed bool `json:"passed"`
	// Outcome classification ("passed", "failed", or empty while unset)
	Status Status `json:"status"`
	// Description of the failure cause; null when the phase passed
	Exception *string `json:"exception"`
	// Captured combined stdout/stderr; populated only when the phase failed
	Report string `json:"report"`
}

// Results is the normalized record of one command execution. There is no
// setup step distinct from the invocation itself, so the setup phase is
// fixed and always reports passed; the call phase carries the actual
// outcome. A record is built fresh per execution and embedded in exactly
// one envelope.
type Results struct {
	Setup PhaseResult `json:"setup"`
	Call  PhaseResult `json:"call"`
}

// NewResults returns a fresh record with the fixed setup phase and a
// still-unclassified call phase.
func NewResults() Results {
	return Results{
		Setup: PhaseResult{
			Passed: true,
			Status: StatusPassed,
		},
	}
}

// EventData is the per-event payload describing what happened and when.
type EventData struct {
	// Identifier shared by every event of one reporting series
	RunID string `json:"run_id"`
	// Git branch the run was reported from
	Branch string `json:"branch"`
	// Display name of the event (command name or lifecycle sentinel)
	TestName string `json:"test_name"`
	// When the event started, in TimeLayout
	TestStartTime string `json:"test_start_time"`
	// When the event ended, in TimeLayout
	TestEndTime string `json:"test_end_time"`
	// Suite/category label for command events, lifecycle sentinel otherwise
	Module string `json:"module"`
	// Entry point sentinel within the module
	Function string `json:"function"`
	// A Results record for command events, an empty object for lifecycle
	// events
	Results any `json:"results"`
	// Extra values whose contents depend on the event kind; never null
	Extras map[string]any `json:"extras"`
}

// Envelope is the outer object sent to the dashboard: reporting-site
// identity plus one event payload.
type Envelope struct {
	// Site id registered with the dashboard
	ID string `json:"id"`
	// Site token authenticating the report
	Key string `json:"key"`
	// The event being reported
	Data EventData `json:"data"`
}
