package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/telemetry/logger"
	"github.com/yndnr/snapshot-merger/internal/telemetry/metric"
)

// LedgerLoader opens a ledger directory.
type LedgerLoader interface {
	Load(ctx context.Context, dir string) (*domain.Ledger, error)
}

// GenesisProvider reads a ledger's genesis file.
type GenesisProvider interface {
	GenesisBytes(dir string) ([]byte, error)
}

// SnapshotWriter writes a merged snapshot to an output directory.
type SnapshotWriter interface {
	Write(ctx context.Context, snap *domain.MergedSnapshot, outputDir string) (*domain.ArchiveHandle, error)
}

// Stage is a pipeline state.
type Stage string

// Pipeline stages in execution order, followed by the two terminal states.
const (
	StageLoad   Stage = "load"
	StageMerge  Stage = "merge"
	StageVerify Stage = "verify"
	StageWarp   Stage = "warp"
	StageWrite  Stage = "write"
	StageDone   Stage = "done"
	StageFailed Stage = "failed"
)

// StageError is returned by Run; it names the stage that failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// MergeRequest describes one merge invocation.
type MergeRequest struct {
	// SourceDir is the ledger whose general state is imported.
	SourceDir string
	// TargetDir is the ledger whose validators and genesis are preserved.
	TargetDir string
	// OutputDir receives the archive and genesis.bin.
	OutputDir string
	// WarpSlot, when set, advances the merged store to that slot.
	WarpSlot *uint64
}

// MergeResult is the outcome of a successful Run.
type MergeResult struct {
	RunID   string                `json:"run_id" yaml:"run_id"`
	Archive *domain.ArchiveHandle `json:"archive" yaml:"archive"`
	Stats   *MergeStats           `json:"stats" yaml:"stats"`
	Warped  bool                  `json:"warped" yaml:"warped"`
}

// PipelineConfig holds configuration for Pipeline.
type PipelineConfig struct {
	Policy  DeclaredPolicy
	Planner *PlannerConfig
	// ValidatorPrograms overrides DefaultValidatorPrograms when non-empty.
	ValidatorPrograms []domain.Pubkey
}

// Pipeline drives a merge through its stages. Each stage either advances
// to the next one or moves the run to StageFailed; nothing is written
// before StageWrite.
type Pipeline struct {
	loader  LedgerLoader
	genesis GenesisProvider
	writer  SnapshotWriter
	planner *Planner
	policy  DeclaredPolicy
	metrics *metric.Registry
}

// NewPipeline creates a Pipeline. metrics may be nil.
func NewPipeline(loader LedgerLoader, genesis GenesisProvider, writer SnapshotWriter, config *PipelineConfig, metrics *metric.Registry) *Pipeline {
	if config == nil {
		config = &PipelineConfig{Policy: DefaultDeclaredPolicy()}
	}
	return &Pipeline{
		loader:  loader,
		genesis: genesis,
		writer:  writer,
		planner: NewPlanner(NewClassifier(config.ValidatorPrograms), config.Planner, metrics),
		policy:  config.Policy,
		metrics: metrics,
	}
}

// run carries the state shared between stages.
type run struct {
	req     MergeRequest
	id      string
	source  *domain.Ledger
	target  *domain.Ledger
	genesis []byte
	merged  *domain.Store
	stats   *MergeStats
	warped  bool
	archive *domain.ArchiveHandle
}

// Run executes the pipeline. On failure the error is a *StageError
// wrapping the stage's *domain.DomainError.
func (p *Pipeline) Run(ctx context.Context, req MergeRequest) (*MergeResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, &StageError{Stage: StageLoad, Err: err}
	}

	r := &run{req: req, id: ulid.Make().String()}
	ctx = logger.WithRunID(ctx, r.id)

	stage := StageLoad
	for stage != StageDone {
		sctx := logger.WithStage(ctx, string(stage))
		start := time.Now()

		next, err := p.step(sctx, stage, r)
		p.metrics.ObserveStage(string(stage), time.Since(start))
		if err != nil {
			logger.L(sctx).Error("stage failed", "error", err)
			return nil, &StageError{Stage: stage, Err: err}
		}
		logger.L(sctx).Debug("stage complete", "elapsed", time.Since(start).Round(time.Millisecond))
		stage = next
	}

	return &MergeResult{RunID: r.id, Archive: r.archive, Stats: r.stats, Warped: r.warped}, nil
}

func (p *Pipeline) step(ctx context.Context, stage Stage, r *run) (Stage, error) {
	switch stage {
	case StageLoad:
		return StageMerge, p.load(ctx, r)
	case StageMerge:
		return StageVerify, p.merge(ctx, r)
	case StageVerify:
		if r.req.WarpSlot == nil {
			return StageWrite, p.verify(ctx, r)
		}
		return StageWarp, p.verify(ctx, r)
	case StageWarp:
		return StageWrite, p.warp(ctx, r)
	case StageWrite:
		return StageDone, p.write(ctx, r)
	default:
		return StageFailed, fmt.Errorf("unknown stage %q", stage)
	}
}

func validateRequest(req MergeRequest) error {
	switch {
	case req.SourceDir == "":
		return domain.ErrInvalidArgument.WithDetails("source ledger directory is required")
	case req.TargetDir == "":
		return domain.ErrInvalidArgument.WithDetails("target ledger directory is required")
	case req.OutputDir == "":
		return domain.ErrInvalidArgument.WithDetails("output directory is required")
	}
	return nil
}

// load opens both ledgers in parallel and reads the target genesis.
func (p *Pipeline) load(ctx context.Context, r *run) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l, err := p.loader.Load(gctx, r.req.SourceDir)
		if err != nil {
			return err
		}
		r.source = l
		return nil
	})
	g.Go(func() error {
		l, err := p.loader.Load(gctx, r.req.TargetDir)
		if err != nil {
			return err
		}
		r.target = l
		return nil
	})
	g.Go(func() error {
		b, err := p.genesis.GenesisBytes(r.req.TargetDir)
		if err != nil {
			return err
		}
		r.genesis = b
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	p.metrics.Loaded("source", r.source.Store.Len())
	p.metrics.Loaded("target", r.target.Store.Len())
	logger.L(ctx).Info("ledgers loaded",
		"source_accounts", r.source.Store.Len(),
		"source_slot", r.source.Store.Slot(),
		"target_accounts", r.target.Store.Len(),
		"target_slot", r.target.Store.Slot(),
		"genesis_bytes", len(r.genesis))
	return nil
}

func (p *Pipeline) merge(ctx context.Context, r *run) error {
	declared := DeclaredSet(r.target, p.policy)
	logger.L(ctx).Debug("target declared set", "addresses", len(declared))

	merged, stats, err := p.planner.Merge(ctx, r.source.Store, r.target.Store, declared)
	if err != nil {
		return err
	}
	r.merged, r.stats = merged, stats
	return nil
}

func (p *Pipeline) verify(ctx context.Context, r *run) error {
	store, err := RecomputeCapitalization(r.merged)
	if err != nil {
		return err
	}
	r.merged = store
	r.stats.CapitalizationAfter = store.Capitalization()
	p.metrics.Merged(store.Len(), store.Capitalization())

	logger.L(ctx).Info("capitalization recomputed",
		"before", r.stats.CapitalizationBefore,
		"after", r.stats.CapitalizationAfter)
	return nil
}

func (p *Pipeline) warp(ctx context.Context, r *run) error {
	from := r.merged.Slot()
	store, err := Warp(r.merged, *r.req.WarpSlot)
	if err != nil {
		return err
	}
	r.merged = store
	r.warped = true
	logger.L(ctx).Info("slot warped", "from", from, "to", store.Slot())
	return nil
}

func (p *Pipeline) write(ctx context.Context, r *run) error {
	snap := &domain.MergedSnapshot{
		Store:   r.merged,
		Genesis: r.genesis,
		RunID:   r.id,
	}
	if r.warped {
		slot := r.merged.Slot()
		snap.WarpSlot = &slot
		snap.WarpedFrom = r.target.Store.Slot()
	}

	handle, err := p.writer.Write(ctx, snap, r.req.OutputDir)
	if err != nil {
		return err
	}
	r.archive = handle
	return nil
}
