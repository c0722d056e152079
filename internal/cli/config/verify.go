package config

import (
	"fmt"
	"slices"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/storage/snapshot"
	"github.com/yndnr/snapshot-merger/internal/telemetry/logger"
)

var (
	logFormats    = []string{"text", "json"}
	outputFormats = []string{"table", "json", "yaml"}
)

// Verify validates the configuration. Failures are domain.ErrInvalidArgument.
func Verify(cfg *MergerConfig) error {
	if err := verifyMerge(&cfg.Merge); err != nil {
		return err
	}
	if err := verifyWriter(&cfg.Writer); err != nil {
		return err
	}
	if err := verifyLog(&cfg.Log); err != nil {
		return err
	}
	if !slices.Contains(outputFormats, cfg.Output.Format) {
		return invalid("output.format %q: want one of %v", cfg.Output.Format, outputFormats)
	}
	return nil
}

func verifyMerge(cfg *MergeSection) error {
	if cfg.Workers < 1 {
		return invalid("merge.workers must be at least 1, got %d", cfg.Workers)
	}
	for key, list := range map[string][]string{
		"merge.validator_programs": cfg.ValidatorPrograms,
		"merge.preserve_owners":    cfg.PreserveOwners,
		"merge.preserve_addresses": cfg.PreserveAddresses,
	} {
		if _, err := parseAll(list); err != nil {
			return domain.ErrInvalidArgument.WithDetailsf("%s: %v", key, err)
		}
	}
	return nil
}

func verifyWriter(cfg *WriterSection) error {
	if cfg.MaxSegmentSize < snapshot.RecordHeaderSize {
		return invalid("writer.max_segment_size must be at least %d bytes, got %d", snapshot.RecordHeaderSize, cfg.MaxSegmentSize)
	}
	if cfg.MaxSegmentSize > snapshot.DefaultMaxSegmentSize {
		return invalid("writer.max_segment_size must be at most %d bytes, got %d", uint64(snapshot.DefaultMaxSegmentSize), cfg.MaxSegmentSize)
	}
	if cfg.Workers < 1 {
		return invalid("writer.workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.CompressionLevel < 1 || cfg.CompressionLevel > 22 {
		return invalid("writer.compression_level must be within 1-22, got %d", cfg.CompressionLevel)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !logger.ValidLevel(cfg.Level) {
		return invalid("log.level %q: want debug, info, warn or error", cfg.Level)
	}
	if !slices.Contains(logFormats, cfg.Format) {
		return invalid("log.format %q: want one of %v", cfg.Format, logFormats)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf(format, args...))
}

func parseAll(list []string) ([]domain.Pubkey, error) {
	out := make([]domain.Pubkey, 0, len(list))
	for _, s := range list {
		pk, err := domain.ParsePubkey(s)
		if err != nil {
			return nil, err
		}
		out = append(out, pk)
	}
	return out, nil
}
