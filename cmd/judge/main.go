// Command judge runs a program or grades it against an exercise from the
// command line, with the same sandbox configuration as remote-judge.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/codepractice/remote-judge/cmd/remote-judge/config"
	"github.com/codepractice/remote-judge/cmd/remote-judge/version"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// errTestsFailed makes the process exit with 1 without extra output
var errTestsFailed = errors.New("some test cases failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newCommand(os.Stdout).Run(ctx, os.Args)
	switch {
	case errors.Is(err, errTestsFailed):
		os.Exit(1)
	case err != nil:
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

// app holds the state shared by the sub commands
type app struct {
	conf   config.Config
	logger *zap.Logger
	out    io.Writer
}

func newCommand(out io.Writer) *cli.Command {
	a := &app{out: out}
	return &cli.Command{
		Name:    "judge",
		Usage:   "run and grade programs on a remote sandbox",
		Version: version.Version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "backend",
				Usage: "sandbox backend: judge0, piston or gojudge (overrides RJ_BACKEND)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "client side timeout per sandbox call (overrides RJ_REQUEST_TIMEOUT)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "print debug logs",
			},
		},
		Before: a.before,
		After: func(ctx context.Context, _ *cli.Command) error {
			if a.logger != nil {
				a.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "run a program once and print its output",
				ArgsUsage: "<source file>",
				Flags: []cli.Flag{
					langFlag(),
					&cli.StringFlag{
						Name:    "stdin",
						Aliases: []string{"i"},
						Usage:   "standard input of the program",
					},
					&cli.StringFlag{
						Name:    "stdin-file",
						Aliases: []string{"f"},
						Usage:   "read standard input from file",
					},
				},
				Action: a.run,
			},
			{
				Name:      "test",
				Usage:     "grade a program against the test cases of an exercise",
				ArgsUsage: "<exercise file> <source file>",
				Flags:     []cli.Flag{langFlag()},
				Action:    a.test,
			},
			{
				Name:      "exercises",
				Usage:     "list the exercises of a directory",
				ArgsUsage: "[dir]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "category",
						Usage: "only list exercises of the category",
					},
					&cli.StringFlag{
						Name:  "difficulty",
						Usage: "only list exercises of the difficulty (easy, medium, hard)",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "only list exercises whose title or description contains the text",
					},
				},
				Action: a.exercises,
			},
			{
				Name:   "languages",
				Usage:  "list the supported languages",
				Action: a.languages,
			},
		},
	}
}

func langFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "lang",
		Aliases: []string{"l"},
		Usage:   "language of the source, guessed from the file extension by default",
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if err := a.conf.LoadEnv(); err != nil {
		return ctx, fmt.Errorf("load config: %w", err)
	}
	if cmd.IsSet("backend") {
		a.conf.Backend = cmd.String("backend")
	}
	if cmd.IsSet("timeout") {
		a.conf.RequestTimeout = cmd.Duration("timeout")
	}

	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.Level.SetLevel(zap.WarnLevel)
	if cmd.Bool("debug") {
		config.Level.SetLevel(zap.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return ctx, fmt.Errorf("init logger: %w", err)
	}
	a.logger = logger
	return ctx, nil
}
