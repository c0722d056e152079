package command

import (
	"context"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/infra/buildinfo"
)

// Run executes the CLI and returns the process exit code. Failures are
// printed to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := App()
	app.Writer = stdout
	app.ErrWriter = stderr

	if err := app.RunContext(ctx, args); err != nil {
		PrintError(stderr, err)
		return ExitCode(err)
	}
	return 0
}

// App creates the CLI application. Its root action runs a merge.
func App() *cli.App {
	return &cli.App{
		Name:      "snapshot-merger",
		Usage:     "Merge a ledger's general state into a network's validator set",
		UsageText: "snapshot-merger --mainnet-ledger DIR --ledger-to-merge DIR --output-directory DIR [--warp-slot SLOT]",
		Version:   buildinfo.String(),
		Flags:     append(globalFlags(), mergeFlags()...),
		Action:    mergeAction,
		Commands: []*cli.Command{
			InspectCommand(),
			VerifyCommand(),
			ImportCommand(),
		},
		HideHelpCommand: true,
		OnUsageError:    usageError,
	}
}

// globalFlags are accepted by the merge and by every subcommand (given
// before the subcommand name).
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"f"},
			Usage:   "Result format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:  "metrics-textfile",
			Usage: "Write prometheus metrics to this file when done",
		},
	}
}

// overrides collects the flags the user set, keyed by config path.
// Unset flags leave config file and environment values in place.
func overrides(c *cli.Context) map[string]any {
	out := map[string]any{}
	set := func(flag, key string, value any) {
		if c.IsSet(flag) {
			out[key] = value
		}
	}

	set("log-level", "log.level", c.String("log-level"))
	set("log-format", "log.format", c.String("log-format"))
	set("output", "output.format", c.String("output"))
	set("metrics-textfile", "metrics.textfile", c.String("metrics-textfile"))
	set("workers", "merge.workers", c.Int("workers"))
	set("workers", "writer.workers", c.Int("workers"))
	set("segment-size", "writer.max_segment_size", c.Uint64("segment-size"))
	set("overwrite", "writer.overwrite", c.Bool("overwrite"))
	return out
}

// requireFlags reports the first of names that was not given.
func requireFlags(c *cli.Context, names ...string) error {
	for _, name := range names {
		if !c.IsSet(name) || c.String(name) == "" {
			return domain.ErrInvalidArgument.WithDetailsf("missing required flag --%s", name)
		}
	}
	return nil
}

func usageError(_ *cli.Context, err error, _ bool) error {
	return domain.ErrInvalidArgument.WithCause(err)
}
