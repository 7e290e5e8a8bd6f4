// Command nttkit searches NTT-friendly primes and roots of unity, inspects
// transform tables and checks the transform engines available on this machine.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const (
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"
	outputFlag    = "output"

	logFormatDefault = "default"
	logFormatJSON    = "json"

	outputText = "text"
	outputYAML = "yaml"
)

var (
	Version = "DEV"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "nttkit: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "nttkit",
		Usage:     "Number theoretic transform toolkit",
		UsageText: "nttkit [global options] command [command options]",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    logLevelFlag,
				Usage:   "Application logging level {debug, info, warn, error}",
				Value:   "info",
				EnvVars: []string{"NTTKIT_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    logFormatFlag,
				Usage:   "Log output format {default, json}",
				Value:   logFormatDefault,
				EnvVars: []string{"NTTKIT_LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:    outputFlag,
				Aliases: []string{"o"},
				Usage:   "Result output format {text, yaml}",
				Value:   outputText,
				EnvVars: []string{"NTTKIT_OUTPUT"},
			},
		},
		Commands: []*cli.Command{
			primesCommand(),
			rootCommand(),
			tableCommand(),
			cpuCommand(),
			selftestCommand(),
		},
	}
}

func createLogger(c *cli.Context) zerolog.Logger {
	level, err := zerolog.ParseLevel(c.String(logLevelFlag))
	if err != nil {
		level = zerolog.InfoLevel
	}
	var writer io.Writer
	switch c.String(logFormatFlag) {
	case logFormatJSON:
		writer = c.App.ErrWriter
	default:
		writer = zerolog.ConsoleWriter{
			Out:        c.App.ErrWriter,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(writer).With().Timestamp().Logger().Level(level)
}
