// Package main provides the chapterforge CLI: a subcommand-free,
// positional-argument front end over the chapterforge library's mux
// and read entry points.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/chapterforge/chapterforge"
	"github.com/chapterforge/chapterforge/internal/logging"
)

var errInvalidArgCount = errors.New("expected 1 argument (read mode) or 3 arguments (write mode)")

func main() {
	ctx := context.Background()

	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "print the version and exit",
	}

	appl := &cli.Command{
		Name:      "chapterforge",
		Usage:     "Author and read M4A/MP4 audiobook and podcast chapter metadata",
		ArgsUsage: "<input.m4a> | <input.(aac|m4a|mp4)> <chapters.json> <output.m4a>",
		Version:   chapterforge.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "export-jpegs",
				Usage: "directory to export chapter images to (read mode only)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "error, warn, info, or debug",
				Value: "warn",
			},
			&cli.BoolFlag{
				Name:  "faststart",
				Usage: "write moov before mdat (write mode only)",
			},
		},
		Action: run,
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(os.Stderr, "chapterforge: %v\n", err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "chapterforge: %v\n", err)
		os.Exit(1)
	}
}

// usageError marks a failure as an argument/usage mistake (exit 2)
// rather than a runtime failure (exit 1), per the CLI's two-tier exit
// code contract.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func run(_ context.Context, cmd *cli.Command) error {
	logging.SetLevel(logging.ParseLevel(cmd.String("log-level")))

	switch cmd.NArg() {
	case 1:
		return runRead(cmd.Args().First(), cmd.String("export-jpegs"))
	case 3:
		return runWrite(cmd.Args().Get(0), cmd.Args().Get(1), cmd.Args().Get(2), cmd.Bool("faststart"))
	default:
		return &usageError{fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())}
	}
}
