// Command circuit-tracer finds every shortest trace between the two terminals
// of a circuit board.
//
// Without a subcommand it reads one board file and prints the solutions:
//
//	circuit-tracer -s|-q -c|-g <filename>
//
// The serve subcommand runs the HTTP server exposing the REST API, a WebSocket
// feed and an /mcp endpoint, with optional ngrok tunneling. The mcp subcommand
// runs an MCP stdio server that proxies to that API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/circuit-tracer/circuit/board"
	"github.com/wricardo/circuit-tracer/circuit/config"
	"github.com/wricardo/circuit-tracer/circuit/trace"
	"github.com/wricardo/circuit-tracer/logging"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "circuit-tracer"
)

// usageText is printed whenever the board arguments are malformed
const usageText = `Usage: circuit-tracer -s|-q -c|-g <filename>
  -s for stack or -q for queue
  -c for console output or -g for GUI output
`

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCommand builds the command tree
func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:      AppName,
		Usage:     "find all shortest traces between the terminals of a circuit board",
		UsageText: "circuit-tracer -s|-q -c|-g <filename>\ncircuit-tracer [global options] serve|mcp|version",
		Version:   Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "s", Usage: "use a stack (depth-first) frontier"},
			&cli.BoolFlag{Name: "q", Usage: "use a queue (breadth-first) frontier"},
			&cli.BoolFlag{Name: "c", Usage: "print solutions to the console"},
			&cli.BoolFlag{Name: "g", Usage: "graphical output (not supported)"},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML settings file",
				Sources: cli.EnvVars(config.EnvConfigFile),
			},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Action: runTrace,
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Fprintf(cmd.Root().Writer, "%s v%s\n", AppName, Version)
					return nil
				},
			},
		},
	}
}

// runTrace is the root action: load one board, search it, print the result
func runTrace(ctx context.Context, cmd *cli.Command) error {
	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}

	stack, queue := cmd.Bool("s"), cmd.Bool("q")
	console, gui := cmd.Bool("c"), cmd.Bool("g")
	if stack == queue || console == gui || cmd.Args().Len() != 1 {
		fmt.Fprint(out, usageText)
		return nil
	}

	kind := trace.Queue
	if stack {
		kind = trace.Stack
	}
	filename := cmd.Args().First()

	logger := zap.NewNop()
	if cmd.Bool("debug") {
		l, err := logging.New("debug", true)
		if err != nil {
			return err
		}
		defer l.Sync()
		logger = l
	}

	b, err := board.Load(filename)
	if err != nil {
		return reportLoadError(out, filename, err)
	}

	result, err := trace.NewTracer(trace.WithStorage(kind), trace.WithLogger(logger)).Search(ctx, b)
	if err != nil {
		return err
	}

	if gui {
		fmt.Fprintln(out, "GUI output not supported")
		return nil
	}
	printSolutions(out, result)
	return nil
}

// reportLoadError prints the console message for a board that could not be read
func reportLoadError(out io.Writer, filename string, err error) error {
	var formatErr *board.FormatError
	switch {
	case errors.As(err, &formatErr) && formatErr.Line > 0:
		fmt.Fprintf(out, "Invalid file format: line %d: %s\n", formatErr.Line, formatErr.Reason)
	case errors.As(err, &formatErr):
		fmt.Fprintf(out, "Invalid file format: %s\n", formatErr.Reason)
	case errors.Is(err, board.ErrFileAccess):
		fmt.Fprintf(out, "File not found: %s\n", filename)
	default:
		fmt.Fprintf(out, "Invalid file format: %v\n", err)
	}
	return cli.Exit("", 1)
}

// printSolutions writes every solution board followed by a blank line
func printSolutions(out io.Writer, result *trace.Result) {
	for _, path := range result.Solutions {
		fmt.Fprintln(out, path.Board().String())
	}
}
