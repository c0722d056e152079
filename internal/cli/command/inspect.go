package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/snapshot-merger/internal/core/service"
	"github.com/yndnr/snapshot-merger/internal/storage/ledger"
	"github.com/yndnr/snapshot-merger/internal/telemetry/logger"
)

// InspectCommand summarizes a ledger directory.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show a ledger's slot, capitalization and account counts",
		UsageText: "snapshot-merger inspect --ledger DIR",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "ledger",
				Usage: "Ledger directory (required)",
			},
		},
		Action:       inspectAction,
		OnUsageError: usageError,
	}
}

func inspectAction(c *cli.Context) error {
	if err := requireFlags(c, "ledger"); err != nil {
		return err
	}
	env, err := setup(c)
	if err != nil {
		return err
	}

	l, err := ledger.NewLoader(logger.Slog(env.log)).Load(c.Context, c.String("ledger"))
	if err != nil {
		return err
	}
	summary, err := service.Summarize(l)
	if err != nil {
		return err
	}
	if !summary.Consistent {
		env.log.Warn("recorded capitalization does not match balances", "dir", summary.Dir)
	}
	return env.print(summary)
}
