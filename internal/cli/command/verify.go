package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/storage/snapshot"
)

// VerifyCommand re-reads an archive and checks it against its manifest.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:         "verify",
		Usage:        "Check a snapshot archive's segments, digests and capitalization",
		UsageText:    "snapshot-merger verify ARCHIVE",
		ArgsUsage:    "ARCHIVE",
		Action:       verifyAction,
		OnUsageError: usageError,
	}
}

func verifyAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return domain.ErrInvalidArgument.WithDetails("verify takes exactly one archive path")
	}
	env, err := setup(c)
	if err != nil {
		return err
	}

	report, err := snapshot.Verify(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	env.log.Info("archive verified", "path", report.Path, "segments", report.Segments)
	return env.print(report)
}
