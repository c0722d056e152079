package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/snapshot-merger/internal/cli/output"
	"github.com/yndnr/snapshot-merger/internal/core/service"
	"github.com/yndnr/snapshot-merger/internal/storage/ledger"
	"github.com/yndnr/snapshot-merger/internal/storage/snapshot"
	"github.com/yndnr/snapshot-merger/internal/telemetry/logger"
)

// Merge flag names.
const (
	flagMainnetLedger = "mainnet-ledger"
	flagLedgerToMerge = "ledger-to-merge"
	flagOutputDir     = "output-directory"
	flagWarpSlot      = "warp-slot"
)

func mergeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  flagMainnetLedger,
			Usage: "Source ledger whose general account state is imported (required)",
		},
		&cli.StringFlag{
			Name:  flagLedgerToMerge,
			Usage: "Target ledger whose validators, stake and genesis are kept (required)",
		},
		&cli.StringFlag{
			Name:    flagOutputDir,
			Aliases: []string{"o"},
			Usage:   "Directory receiving the snapshot archive and genesis.bin (required)",
		},
		&cli.Uint64Flag{
			Name:  flagWarpSlot,
			Usage: "Advance the merged snapshot to this slot",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Goroutines used for classification and segment encoding",
		},
		&cli.Uint64Flag{
			Name:  "segment-size",
			Usage: "Maximum bytes per account segment",
		},
		&cli.BoolFlag{
			Name:  "overwrite",
			Usage: "Replace an existing archive for the same slot",
		},
		&cli.BoolFlag{
			Name:  "progress",
			Usage: "Draw a progress bar on stderr while staging segments",
		},
	}
}

// mergeRequest builds the pipeline request from flags.
func mergeRequest(c *cli.Context) (service.MergeRequest, error) {
	if err := requireFlags(c, flagMainnetLedger, flagLedgerToMerge, flagOutputDir); err != nil {
		return service.MergeRequest{}, err
	}
	req := service.MergeRequest{
		SourceDir: c.String(flagMainnetLedger),
		TargetDir: c.String(flagLedgerToMerge),
		OutputDir: c.String(flagOutputDir),
	}
	if c.IsSet(flagWarpSlot) {
		slot := c.Uint64(flagWarpSlot)
		req.WarpSlot = &slot
	}
	return req, nil
}

func mergeAction(c *cli.Context) error {
	if c.Args().Present() {
		return usageError(c, fmt.Errorf("unexpected argument %q", c.Args().First()), false)
	}
	req, err := mergeRequest(c)
	if err != nil {
		return err
	}
	env, err := setup(c)
	if err != nil {
		return err
	}

	pc, err := env.cfg.PipelineConfig()
	if err != nil {
		return err
	}
	slogger := logger.Slog(env.log)
	loader := ledger.NewLoader(slogger)
	writer := snapshot.NewBatchWriter(env.cfg.WriterConfig(), slogger, env.metrics)

	var bar *output.ProgressBar
	if c.Bool("progress") {
		bar = output.NewProgressBar(env.stderr, "staging segments")
		writer.OnProgress(bar.Update)
	}

	ctx := logger.WithLogger(c.Context, env.log)
	result, err := service.NewPipeline(loader, loader, writer, pc, env.metrics).Run(ctx, req)
	if bar != nil {
		if err == nil {
			bar.Finish()
		} else {
			fmt.Fprintln(env.stderr)
		}
	}
	env.flushMetrics()
	if err != nil {
		return err
	}

	env.log.Info("merge complete",
		"run_id", result.RunID,
		"archive", result.Archive.Path,
		"accounts", result.Stats.FinalAccounts,
		"capitalization", result.Stats.CapitalizationAfter)
	return env.print(result)
}
