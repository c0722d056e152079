package service

import (
	"context"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spaolacci/murmur3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/telemetry/logger"
	"github.com/yndnr/snapshot-merger/internal/telemetry/metric"
	"github.com/yndnr/snapshot-merger/pkg/cmap"
)

// MergeStats counts what the planner did with every input account.
type MergeStats struct {
	SourceAccounts int `json:"source_accounts" yaml:"source_accounts"`
	TargetAccounts int `json:"target_accounts" yaml:"target_accounts"`

	// Source accounts dropped as validator identity state.
	ExcludedVote    int `json:"excluded_vote" yaml:"excluded_vote"`
	ExcludedStake   int `json:"excluded_stake" yaml:"excluded_stake"`
	ExcludedProgram int `json:"excluded_program" yaml:"excluded_program"`

	// SourceCopied counts source accounts written to the result.
	SourceCopied int `json:"source_copied" yaml:"source_copied"`
	// Shadowed counts source accounts dropped because a target identity
	// account holds the same address.
	Shadowed int `json:"shadowed" yaml:"shadowed"`

	TargetIdentityRetained int `json:"target_identity_retained" yaml:"target_identity_retained"`
	TargetGeneralRetained  int `json:"target_general_retained" yaml:"target_general_retained"`
	TargetGeneralReplaced  int `json:"target_general_replaced" yaml:"target_general_replaced"`

	FinalAccounts        int    `json:"final_accounts" yaml:"final_accounts"`
	CapitalizationBefore uint64 `json:"capitalization_before" yaml:"capitalization_before" table:"sol"`
	CapitalizationAfter  uint64 `json:"capitalization_after" yaml:"capitalization_after" table:"sol"`
}

// Excluded returns the total number of source accounts dropped by classification.
func (s *MergeStats) Excluded() int {
	return s.ExcludedVote + s.ExcludedStake + s.ExcludedProgram
}

// PlannerConfig holds configuration for Planner.
type PlannerConfig struct {
	// Workers is the number of classification goroutines (default: GOMAXPROCS).
	Workers int

	// ProgressEvery logs progress every N inserted accounts (default: 250,000).
	ProgressEvery int

	// ProgressInterval logs progress at least this often (default: 10s).
	ProgressInterval time.Duration
}

// DefaultPlannerConfig returns default configuration.
func DefaultPlannerConfig() *PlannerConfig {
	return &PlannerConfig{
		Workers:          runtime.GOMAXPROCS(0),
		ProgressEvery:    250_000,
		ProgressInterval: 10 * time.Second,
	}
}

// Planner merges a source store into a target store.
type Planner struct {
	classifier *Classifier
	config     *PlannerConfig
	metrics    *metric.Registry
}

// NewPlanner creates a Planner. metrics may be nil.
func NewPlanner(classifier *Classifier, config *PlannerConfig, metrics *metric.Registry) *Planner {
	if classifier == nil {
		classifier = defaultClassifier
	}
	def := DefaultPlannerConfig()
	if config == nil {
		config = def
	} else {
		cp := *config
		config = &cp
	}
	if config.Workers <= 0 {
		config.Workers = def.Workers
	}
	if config.ProgressEvery <= 0 {
		config.ProgressEvery = def.ProgressEvery
	}
	if config.ProgressInterval <= 0 {
		config.ProgressInterval = def.ProgressInterval
	}
	return &Planner{classifier: classifier, config: config, metrics: metrics}
}

func pubkeyHash(p domain.Pubkey) uint64 {
	return murmur3.Sum64(p[:])
}

// Merge builds a new store from source and target. Target identity
// accounts always survive and win ties. Source identity accounts never
// survive. Where both sides carry a general account, the source copy is
// kept. The result is at the target's slot with a zero capitalization;
// callers must run RecomputeCapitalization on it.
//
// Both inputs are checked against their recorded capitalization first and
// are never modified. The result holds clones of the input accounts.
func (p *Planner) Merge(ctx context.Context, source, target *domain.Store, declared domain.AddressSet) (*domain.Store, *MergeStats, error) {
	if err := VerifyCapitalization("source", source); err != nil {
		return nil, nil, err
	}
	if err := VerifyCapitalization("target", target); err != nil {
		return nil, nil, err
	}

	stats := &MergeStats{
		SourceAccounts:       source.Len(),
		TargetAccounts:       target.Len(),
		CapitalizationBefore: target.Capitalization(),
	}
	log := logger.L(ctx)

	// Target tags, keyed by address.
	targetTags := cmap.New[domain.Pubkey, domain.ClassificationTag](pubkeyHash)
	if err := p.classify(ctx, target, func(a *domain.Account) error {
		targetTags.Set(a.Address, p.classifier.Classify(a, declared))
		return nil
	}); err != nil {
		return nil, nil, err
	}

	// Source accounts that pass the filter, keyed by address. The source side
	// is classified with an empty declared set.
	kept := cmap.New[domain.Pubkey, struct{}](pubkeyHash)
	excluded := cmap.New[domain.Pubkey, string](pubkeyHash)
	if err := p.classify(ctx, source, func(a *domain.Account) error {
		if p.classifier.Classify(a, nil) == domain.ValidatorIdentity {
			excluded.Set(a.Address, p.classifier.Reason(a))
			return nil
		}
		kept.Set(a.Address, struct{}{})
		return nil
	}); err != nil {
		return nil, nil, err
	}

	result := domain.NewStoreWithCapacity(target.Slot(), 0, target.Len()+kept.Count())

	progress := rate.Sometimes{Every: p.config.ProgressEvery, Interval: p.config.ProgressInterval}
	insert := func(a *domain.Account) error {
		if err := result.Insert(a.Clone()); err != nil {
			return err
		}
		var err error
		progress.Do(func() {
			err = ctx.Err()
			log.Info("merge progress",
				"inserted", humanize.Comma(int64(result.Len())),
				"total", humanize.Comma(int64(target.Len()+kept.Count())))
		})
		return err
	}

	// Sequential, address ordered insertion keeps the outcome independent of
	// worker scheduling.
	var insertErr error
	target.Range(func(a *domain.Account) bool {
		tag, _ := targetTags.Get(a.Address)
		switch {
		case tag == domain.ValidatorIdentity:
			stats.TargetIdentityRetained++
		case kept.Has(a.Address):
			stats.TargetGeneralReplaced++
			return true
		default:
			stats.TargetGeneralRetained++
		}
		insertErr = insert(a)
		return insertErr == nil
	})
	if insertErr != nil {
		return nil, nil, insertErr
	}

	source.Range(func(a *domain.Account) bool {
		if !kept.Has(a.Address) {
			return true
		}
		if tag, ok := targetTags.Get(a.Address); ok && tag == domain.ValidatorIdentity {
			stats.Shadowed++
			return true
		}
		stats.SourceCopied++
		insertErr = insert(a)
		return insertErr == nil
	})
	if insertErr != nil {
		return nil, nil, insertErr
	}

	reasons := make(map[string]int)
	excluded.Range(func(_ domain.Pubkey, reason string) bool {
		reasons[reason]++
		return true
	})
	for reason, c := range reasons {
		switch reason {
		case ReasonVote:
			stats.ExcludedVote = c
		case ReasonStake:
			stats.ExcludedStake = c
		default:
			stats.ExcludedProgram += c
		}
		p.metrics.Excluded(reason, c)
	}
	stats.FinalAccounts = result.Len()
	p.metrics.Shadowed("target", stats.Shadowed)
	p.metrics.Shadowed("source", stats.TargetGeneralReplaced)

	log.Info("merge planned",
		"source_accounts", stats.SourceAccounts,
		"target_accounts", stats.TargetAccounts,
		"excluded", stats.Excluded(),
		"shadowed", stats.Shadowed,
		"target_general_replaced", stats.TargetGeneralReplaced,
		"final_accounts", stats.FinalAccounts)

	return result, stats, nil
}

// classify runs fn over every account of store on the configured number of
// workers. Accounts are sharded by address hash, so each address is seen by
// exactly one worker.
func (p *Planner) classify(ctx context.Context, store *domain.Store, fn func(a *domain.Account) error) error {
	workers := p.config.Workers
	shards := make([][]*domain.Account, workers)
	for _, a := range store.Accounts() {
		i := pubkeyHash(a.Address) % uint64(workers)
		shards[i] = append(shards[i], a)
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, shard := range shards {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, a := range shard {
				if err := fn(a); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
