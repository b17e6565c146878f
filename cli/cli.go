package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/cowanml/SDK/config"
	"github.com/cowanml/SDK/executor"
	"github.com/cowanml/SDK/report"
)

const AppName = "citest"

type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {

	// Default log level until the --log flag is parsed
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	logger :=
		log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
		})

	app := &App{
		logger: logger,
	}
	app.cli = &cli.App{
		Name:  AppName,
		Usage: "Run test commands and report their results to the CI dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "command",
				Aliases: []string{"c"},
				Usage:   "Shell command to execute and report",
			},
			&cli.BoolFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Report the start of a test series",
			},
			&cli.BoolFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "Report the end of a test series",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "Display name for the command (defaults to its first word)",
			},
			&cli.BoolFlag{
				Name:  "stdout",
				Usage: "Print the command's captured output to the console",
			},
			&cli.StringFlag{
				Name:    "log",
				Aliases: []string{"l"},
				Usage:   "Log level: NOTSET, DEBUG, INFO, WARNING, ERROR or CRITICAL",
				Value:   "NOTSET",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := parseLevel(c.String("log"))
			if err != nil {
				return err
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
		Action: app.run,
	}
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}

// run reports the single event selected by the mode flags. The selection
// happens before anything else so a bad invocation fails without touching
// the environment or the network.
func (a *App) run(c *cli.Context) error {
	ev, err := selectEvent(c)
	if err != nil {
		return err
	}

	cfg := config.FromEnv(a.logger)

	// Ctrl-C cancels the running command; the interrupted result is still
	// reported. A second Ctrl-C after stop() kills the process as usual.
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	client := report.NewClient(a.logger, cfg.DashboardURL, report.WithInsecureLegacyTLS())
	reporter := report.New(a.logger, cfg, executor.New(a.logger), client)

	return reporter.Report(ctx, ev)
}

// selectEvent maps the mode flags onto exactly one event. An empty
// --command value counts as absent.
func selectEvent(c *cli.Context) (report.Event, error) {
	command := c.String("command")

	modes := 0
	if command != "" {
		modes++
	}
	if c.Bool("start") {
		modes++
	}
	if c.Bool("end") {
		modes++
	}
	if modes != 1 {
		return nil, fmt.Errorf("exactly one of --command, --start or --end is required")
	}

	switch {
	case c.Bool("start"):
		return report.Start{}, nil
	case c.Bool("end"):
		return report.End{}, nil
	}

	return report.CommandRun{
		Command:    command,
		Name:       c.String("name"),
		ShowOutput: c.Bool("stdout"),
	}, nil
}

// parseLevel translates the legacy level names onto zerolog levels. NOTSET
// historically meant warnings and above.
func parseLevel(name string) (zerolog.Level, error) {
	switch strings.ToUpper(name) {
	case "NOTSET":
		return zerolog.WarnLevel, nil
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "INFO":
		return zerolog.InfoLevel, nil
	case "WARNING":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	case "CRITICAL":
		return zerolog.FatalLevel, nil
	}

	return zerolog.NoLevel, fmt.Errorf("unknown log level %q (expected NOTSET, DEBUG, INFO, WARNING, ERROR or CRITICAL)", name)
}
