package config

import (
	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/core/service"
	"github.com/yndnr/snapshot-merger/internal/infra/confloader"
	"github.com/yndnr/snapshot-merger/internal/storage/snapshot"
)

// Load builds the configuration from Default(), the YAML file at path (if
// any), the environment and overrides, then verifies it. overrides uses
// dotted keys such as "writer.overwrite".
func Load(path string, overrides map[string]any) (*MergerConfig, error) {
	cfg := Default()
	loader := confloader.NewLoader(
		confloader.WithConfigFile(path),
		confloader.WithOverrides(overrides),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, domain.ErrInvalidArgument.WithDetails("load config").WithCause(err)
	}
	if err := Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// PipelineConfig converts the merge section. cfg must have passed Verify.
func (cfg *MergerConfig) PipelineConfig() (*service.PipelineConfig, error) {
	programs, err := parseAll(cfg.Merge.ValidatorPrograms)
	if err != nil {
		return nil, err
	}
	owners, err := parseAll(cfg.Merge.PreserveOwners)
	if err != nil {
		return nil, err
	}
	addresses, err := parseAll(cfg.Merge.PreserveAddresses)
	if err != nil {
		return nil, err
	}

	planner := service.DefaultPlannerConfig()
	planner.Workers = cfg.Merge.Workers

	return &service.PipelineConfig{
		Policy: service.DeclaredPolicy{
			PreserveOwners:    owners,
			PreserveAddresses: addresses,
		},
		Planner:           planner,
		ValidatorPrograms: programs,
	}, nil
}

// WriterConfig converts the writer section.
func (cfg *MergerConfig) WriterConfig() *snapshot.WriterConfig {
	return &snapshot.WriterConfig{
		MaxSegmentSize:   cfg.Writer.MaxSegmentSize,
		Workers:          cfg.Writer.Workers,
		CompressionLevel: cfg.Writer.CompressionLevel,
		Overwrite:        cfg.Writer.Overwrite,
	}
}
