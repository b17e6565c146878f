package report

// Event is one of the three things the reporter can send: a series start,
// a series end, or a command run. Exactly one variant is constructed at
// the CLI boundary, so no arity checking happens past it.
type Event interface {
	isEvent()
}

// Start announces a new test series and snapshots the discovered
// environment.
type Start struct{}

// End closes a test series.
type End struct{}

// CommandRun executes one shell command and reports its outcome.
type CommandRun struct {
	// Command is the shell command line to execute.
	Command string
	// Name is the display name; when empty, the command's first
	// whitespace-delimited token is used.
	Name string
	// ShowOutput additionally prints the raw captured output to the
	// console.
	ShowOutput bool
}

func (Start) isEvent()      {}
func (End) isEvent()        {}
func (CommandRun) isEvent() {}
