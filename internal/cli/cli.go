package cli

import (
	"errors"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/vk/buildgridgo/internal/app"
	"github.com/vk/buildgridgo/internal/config"
)

// NewApp builds the buildgridgo command tree. Reports and validation output
// go to outW, logs and errors to errW. The returned app never calls os.Exit
// itself; the caller inspects the returned error's exit code.
func NewApp(outW, errW io.Writer) *cli.App {
	return &cli.App{
		Name:      "buildgridgo",
		Usage:     "a declarative build-matrix orchestrator",
		Writer:    outW,
		ErrWriter: errW,
		// Exit codes are handled by the caller so tests can observe them.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-format",
				Value: "text",
				Usage: "log output format: 'text' or 'json'",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "logging level: 'debug', 'info', 'warn' or 'error'",
			},
		},
		Commands: cli.Commands{
			runCommand(outW, errW),
			validateCommand(outW, errW),
			serveCommand(outW, errW),
		},
	}
}

func runCommand(outW, errW io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "execute a pipeline across its whole build matrix",
		ArgsUsage: "<pipeline-path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "cancel remaining environments once one fails",
			},
			&cli.BoolFlag{
				Name:  "fail-fast-on-infra",
				Usage: "treat provisioning failures as fail-fast triggers",
			},
			&cli.Int64Flag{
				Name:  "concurrency",
				Usage: "max environments running at once, 0 = unbounded",
			},
			&cli.StringSliceFlag{
				Name:  "only-env",
				Usage: "run only matching environments, AXIS=VALUE[,AXIS=VALUE...]; repeatable",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "default per-step timeout, overrides the pipeline's",
			},
			&cli.StringFlag{
				Name:  "report-file",
				Usage: "write the report as a .json/.yaml artifact",
			},
			&cli.BoolFlag{
				Name:  "keep-workspaces",
				Usage: "retain per-environment workspaces after the run",
			},
			&cli.BoolFlag{
				Name:  "inherit-env",
				Usage: "pass the full host environment to every step",
			},
			&cli.StringFlag{
				Name:  "events-url",
				Usage: "socket.io endpoint to stream run events to",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "re-run when the pipeline definition changes",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "list every step outcome in the summary",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := newConfig(c)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			return mapExit(app.NewApp(outW, errW, cfg).Run(c.Context))
		},
	}
}

func validateCommand(outW, errW io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "parse, validate and expand a pipeline without running it",
		ArgsUsage: "<pipeline-path>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "only-env",
				Usage: "restrict the printed plan to matching environments",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := newConfig(c)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			return mapExit(app.NewApp(outW, errW, cfg).Validate(c.Context))
		},
	}
}

func serveCommand(outW, errW io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "serve",
		Usage:     "expose the pipeline as an HTTP trigger endpoint",
		ArgsUsage: "<pipeline-path>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Value: ":8422",
				Usage: "bind address for the trigger server",
			},
			&cli.Int64Flag{
				Name:  "concurrency",
				Usage: "max environments running at once, 0 = unbounded",
			},
			&cli.BoolFlag{
				Name:  "fail-fast",
				Usage: "cancel remaining environments once one fails",
			},
			&cli.BoolFlag{
				Name:  "inherit-env",
				Usage: "pass the full host environment to every step",
			},
			&cli.StringFlag{
				Name:  "events-url",
				Usage: "socket.io endpoint to stream run events to",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := newConfig(c)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			return mapExit(app.NewApp(outW, errW, cfg).Serve(c.Context))
		},
	}
}

// newConfig assembles the app configuration from the command's flags and
// positional argument.
func newConfig(c *cli.Context) (*app.Config, error) {
	if c.NArg() != 1 {
		return nil, errors.New("exactly one pipeline path argument is required")
	}
	return app.NewConfig(app.Config{
		PipelinePath:    c.Args().First(),
		FailFast:        c.Bool("fail-fast"),
		FailFastOnInfra: c.Bool("fail-fast-on-infra"),
		Concurrency:     c.Int64("concurrency"),
		OnlyEnv:         c.StringSlice("only-env"),
		StepTimeout:     c.Duration("timeout"),
		ReportFile:      c.String("report-file"),
		KeepWorkspaces:  c.Bool("keep-workspaces"),
		InheritEnv:      c.Bool("inherit-env"),
		EventsURL:       c.String("events-url"),
		Watch:           c.Bool("watch"),
		Verbose:         c.Bool("verbose"),
		LogFormat:       c.String("log-format"),
		LogLevel:        c.String("log-level"),
		ListenAddr:      c.String("listen"),
	})
}

// mapExit converts application error kinds into exit-coded CLI errors:
// malformed definitions exit 2, run failures and everything else exit 1.
func mapExit(err error) error {
	if err == nil {
		return nil
	}
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return cli.Exit(err.Error(), 2)
	}
	if errors.Is(err, app.ErrRunFailed) {
		return cli.Exit(err.Error(), 1)
	}
	return cli.Exit(err.Error(), 1)
}
