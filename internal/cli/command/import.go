package command

import (
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/storage/ledger"
	"github.com/yndnr/snapshot-merger/internal/storage/snapshot"
	"github.com/yndnr/snapshot-merger/internal/telemetry/logger"
)

// ImportResult describes a ledger directory created from an archive.
type ImportResult struct {
	LedgerDir      string `json:"ledger_dir" yaml:"ledger_dir"`
	Archive        string `json:"archive" yaml:"archive"`
	Slot           uint64 `json:"slot" yaml:"slot"`
	Accounts       int    `json:"accounts" yaml:"accounts"`
	Capitalization uint64 `json:"capitalization" yaml:"capitalization" table:"sol"`
}

// ImportCommand turns a snapshot archive back into a ledger directory.
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Create a ledger directory from a snapshot archive",
		UsageText: "snapshot-merger import --archive FILE [--genesis FILE] --ledger-dir DIR",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "archive",
				Usage: "Snapshot archive (required)",
			},
			&cli.StringFlag{
				Name:  "genesis",
				Usage: "Genesis file (default: genesis.bin next to the archive)",
			},
			&cli.StringFlag{
				Name:  "ledger-dir",
				Usage: "Ledger directory to create (required)",
			},
		},
		Action:       importAction,
		OnUsageError: usageError,
	}
}

func importAction(c *cli.Context) error {
	if err := requireFlags(c, "archive", "ledger-dir"); err != nil {
		return err
	}
	env, err := setup(c)
	if err != nil {
		return err
	}

	path := c.String("archive")
	genesisPath := c.String("genesis")
	if genesisPath == "" {
		genesisPath = filepath.Join(filepath.Dir(path), ledger.GenesisFile)
	}
	genesis, err := ledger.ReadGenesis(genesisPath)
	if err != nil {
		return err
	}

	store, report, err := snapshot.ReadArchive(c.Context, path)
	if err != nil {
		return err
	}

	dir := c.String("ledger-dir")
	l := &domain.Ledger{Dir: dir, Store: store}
	if err := ledger.Write(dir, l, genesis, logger.Slog(env.log)); err != nil {
		return err
	}

	return env.print(&ImportResult{
		LedgerDir:      dir,
		Archive:        report.Path,
		Slot:           report.Slot,
		Accounts:       report.Accounts,
		Capitalization: report.Capitalization,
	})
}
